package search

import (
	"context"
)

// Result represents a single ranked search hit from any provider.
type Result struct {
	Title   string
	URL     string
	Snippet string
	// Score is the provider's relevance score; higher means more relevant.
	// Scores are comparable within a single request.
	Score  float64
	Source string // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}
