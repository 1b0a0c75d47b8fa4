package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache provides search response caching
type Cache interface {
	// GetSearchResult retrieves a cached search response by key
	// Returns nil if not found
	GetSearchResult(ctx context.Context, key string) (*SearchResult, error)

	// SetSearchResult stores a search response with TTL
	SetSearchResult(ctx context.Context, key string, result *SearchResult, ttl time.Duration) error

	// InvalidateSearches removes all cached search responses. Called after
	// a delete, since any cached ranking may reference the removed record.
	InvalidateSearches(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// SearchResult is a cached search response. Results holds the already
// shaped result objects so a hit replays the identical body.
type SearchResult struct {
	Query   string          `json:"query"`
	Results json.RawMessage `json:"results"`
	Total   int             `json:"total"`
}
