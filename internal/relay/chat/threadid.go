// Package chat implements the conversation relay: thread identifier
// normalization, the moderation gate, the turn state machine that drives the
// assistant service and satisfies tool-call pauses, and the HTTP endpoint
// the widget talks to.
package chat

import (
	"sort"
	"strings"
)

// ThreadID is the normalized form of a conversation thread identifier:
// either a trimmed non-empty string or none. Internal code never branches
// on inbound identifier shape; everything funnels through NormalizeThreadID
// at the boundary.
type ThreadID struct {
	value   string
	present bool
}

// NoThreadID is the absent identifier.
var NoThreadID = ThreadID{}

// SomeThreadID wraps a raw string as a ThreadID, trimming it.
// An empty or whitespace-only string yields the absent identifier.
func SomeThreadID(s string) ThreadID {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoThreadID
	}
	return ThreadID{value: s, present: true}
}

// IsPresent reports whether a usable identifier exists.
func (t ThreadID) IsPresent() bool {
	return t.present
}

// Value returns the identifier string, or "" when absent.
func (t ThreadID) Value() string {
	return t.value
}

// OrNull returns the identifier string, or nil when absent. Used to shape
// the thread_id field of JSON responses.
func (t ThreadID) OrNull() any {
	if !t.present {
		return nil
	}
	return t.value
}

// NormalizeThreadID collapses heterogeneous inbound representations of a
// thread identifier into the canonical form. Strings are trimmed; objects
// are probed for an "id" field, then for the first string-typed value in
// sorted key order. Any other shape degrades to the absent identifier.
// Normalization is idempotent and never fails.
func NormalizeThreadID(raw any) ThreadID {
	switch v := raw.(type) {
	case nil:
		return NoThreadID
	case ThreadID:
		return v
	case string:
		return SomeThreadID(v)
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			return SomeThreadID(id)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := v[k].(string); ok {
				return SomeThreadID(s)
			}
		}
		return NoThreadID
	default:
		return NoThreadID
	}
}
