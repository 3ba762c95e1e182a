package domain

import "context"

// Connector fetches raw listings from one specific platform. Implementations
// must apply source-specific filtering (sponsored entries, zero-price or
// nameless items) before returning, and must honor ctx cancellation.
type Connector interface {
	// Platform returns the platform identifier.
	Platform() Platform
	// Name returns the human-readable platform name.
	Name() string
	// Search returns up to limit listings matching the query.
	Search(ctx context.Context, query string, limit int) ([]Listing, error)
}

// ResultCache is a process-wide store of fully assembled search responses,
// keyed by normalized query. Implementations must be safe for concurrent use.
type ResultCache interface {
	Get(query string) (*SearchResponse, bool)
	Set(query string, response *SearchResponse)
	Stats() CacheStats
	Clear()
}
