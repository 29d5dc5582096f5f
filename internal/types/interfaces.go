// Package types defines interfaces for metamatch components.
package types

import "context"

// Provider is the core abstraction for metadata sources (TMDB, RAWG, etc.)
type Provider interface {
	// Name returns the provider identifier (e.g., "tmdb-movie", "rawg")
	Name() string

	// Configured reports whether the provider has the credential it needs
	Configured() bool

	// SearchByTitleYear returns the provider's candidates for the query
	SearchByTitleYear(ctx context.Context, q Query) ([]Candidate, error)

	// FetchDetail returns the extended payload for a chosen candidate
	FetchDetail(ctx context.Context, c Candidate) (Metadata, error)
}

// TrailerSource resolves a trailer link independently of the main provider
type TrailerSource interface {
	// Name returns the source identifier
	Name() string

	// Configured reports whether the source has the credential it needs
	Configured() bool

	// FindTrailer returns trailer fields or ErrMatchNotFound
	FindTrailer(ctx context.Context, q Query) (Metadata, error)
}

// CacheStore persists provider payloads keyed by identifier and release year
type CacheStore interface {
	// Get returns the record stored under key
	Get(key string) (*CacheRecord, bool)

	// Put stamps provenance for q onto the payload and persists the store
	Put(key string, payload Metadata, q Query) error

	// IsValid reports whether rec may be served for q without refetching
	IsValid(rec *CacheRecord, q Query) bool

	// Keys returns all stored keys, sorted
	Keys() []string

	// Path returns the backing file path (empty for memory stores)
	Path() string
}
