// Package provider implements metadata providers for movies, TV shows and games.
package provider

import (
	"sort"
	"strings"

	"github.com/mydehq/metamatch/internal/config"
	"github.com/mydehq/metamatch/internal/fetcher"
	"github.com/mydehq/metamatch/internal/types"
)

// Registry maps each media kind to the provider that resolves it
type Registry struct {
	providers map[types.MediaKind]types.Provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[types.MediaKind]types.Provider)}
}

// Register sets the provider for a media kind, replacing any previous one
func (r *Registry) Register(kind types.MediaKind, p types.Provider) {
	r.providers[kind] = p
}

// For returns the provider registered for kind
func (r *Registry) For(kind types.MediaKind) (types.Provider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, types.ErrProviderNotFound{Kind: kind}
	}
	return p, nil
}

// Kinds returns the registered media kinds, sorted
func (r *Registry) Kinds() []types.MediaKind {
	kinds := make([]types.MediaKind, 0, len(r.providers))
	for k := range r.providers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Names returns the registered provider names in kind order
func (r *Registry) Names() []string {
	kinds := r.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = r.providers[k].Name()
	}
	return names
}

// NewDefaultRegistry wires TMDB for movies and TV and RAWG for games
func NewDefaultRegistry(cfg *config.Config, f *fetcher.Fetcher, opts ...Option) *Registry {
	r := NewRegistry()
	tmdbOpts := withBase(cfg.Providers.TMDB.BaseURL, opts)
	r.Register(types.MediaKindMovie, NewTMDBMovie(cfg.Providers.TMDB.APIKey, f, tmdbOpts...))
	r.Register(types.MediaKindTV, NewTMDBTV(cfg.Providers.TMDB.APIKey, f, tmdbOpts...))
	r.Register(types.MediaKindGame, NewRAWG(cfg.Providers.RAWG.APIKey, f, withBase(cfg.Providers.RAWG.BaseURL, opts)...))
	return r
}

// NewDefaultTrailerSource builds the YouTube trailer source from cfg
func NewDefaultTrailerSource(cfg *config.Config, f *fetcher.Fetcher, opts ...Option) *YouTubeTrailers {
	return NewYouTubeTrailers(cfg.Providers.YouTube.APIKey, f, withBase(cfg.Providers.YouTube.BaseURL, opts)...)
}

// withBase puts the configured base URL first so explicit options still win
func withBase(baseURL string, opts []Option) []Option {
	return append([]Option{WithBaseURL(baseURL)}, opts...)
}

type options struct {
	baseURL string
}

// Option customizes a provider
type Option func(*options)

// WithBaseURL points the provider at a different API root. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			o.baseURL = u
		}
	}
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func orDefault(f *fetcher.Fetcher) *fetcher.Fetcher {
	if f == nil {
		return fetcher.New()
	}
	return f
}
