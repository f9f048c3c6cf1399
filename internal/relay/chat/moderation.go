package chat

import (
	"strings"
)

// Moderator rejects queries matching a configured denylist before any
// upstream cost is incurred. Matching is a pure case-insensitive substring
// check over all configured phrases; a hit on any phrase invalidates the
// query with no allow-list override.
type Moderator struct {
	phrases []string
}

// NewModerator creates a Moderator from the configured denylist.
func NewModerator(phrases []string) *Moderator {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Moderator{phrases: lowered}
}

// IsValid reports whether the query passes the moderation gate.
func (m *Moderator) IsValid(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range m.phrases {
		if strings.Contains(q, phrase) {
			return false
		}
	}
	return true
}
