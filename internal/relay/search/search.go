// Package search defines the web-search collaborator contract and its
// Tavily-backed implementation. Transport and service errors are returned to
// the caller; the relay converts them to inline tool output rather than
// failing the turn.
package search

import (
	"context"
)

// RankedResult is one entry of a ranked result listing.
type RankedResult struct {
	Title string
	URL   string
}

// Result is the outcome of one search call. Answer carries the service's
// synthesized answer when present; Results carries the ranked listing.
type Result struct {
	Answer  string
	Results []RankedResult
}

// Searcher is the search-service collaborator contract.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}
