// Package api provides the core implementation for metamatch operations.
// This package is used by both the CLI and the public library API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mydehq/metamatch/internal/catalog"
	"github.com/mydehq/metamatch/internal/config"
	"github.com/mydehq/metamatch/internal/database"
	"github.com/mydehq/metamatch/internal/fetcher"
	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/provider"
	"github.com/mydehq/metamatch/internal/types"
)

// Option is a functional option for configuring operations
type Option func(*Options)

// Options holds configuration for metamatch operations
type Options struct {
	ConfigPath string
	EntriesDir string
	OutputPath string
	CachePath  string
	Force      bool
	DryRun     bool
	Logger     *log.Logger
	HTTPClient *http.Client
}

// WithConfig specifies a custom config file path
func WithConfig(path string) Option {
	return func(o *Options) { o.ConfigPath = path }
}

// WithEntries overrides the entries directory
func WithEntries(dir string) Option {
	return func(o *Options) { o.EntriesDir = dir }
}

// WithOutput overrides where merged records are written
func WithOutput(path string) Option {
	return func(o *Options) { o.OutputPath = path }
}

// WithCache overrides the cache file path
func WithCache(path string) Option {
	return func(o *Options) { o.CachePath = path }
}

// WithForce treats every cached record as stale
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// WithDryRun enriches entries without writing the output file
func WithDryRun() Option {
	return func(o *Options) { o.DryRun = true }
}

// WithLogger sets the logger used for progress and diagnostics
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithHTTPClient overrides the HTTP client used for provider calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

func newOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return options
}

// Report summarizes one enrichment run
type Report struct {
	RunID      string
	OutputPath string
	DryRun     bool
	Duration   time.Duration
	Results    []Result
	Outcomes   map[Outcome]int
	Skipped    []error
	Providers  []string
}

// Records returns the merged records in entry order
func (r *Report) Records() []types.Record {
	records := make([]types.Record, len(r.Results))
	for i, res := range r.Results {
		records[i] = res.Record
	}
	return records
}

// Run loads every entry, enriches it and writes the merged records.
// Provider failures never abort the run; only setup errors are returned.
func Run(ctx context.Context, opts ...Option) (*Report, error) {
	start := time.Now()
	options := newOptions(opts)

	cfg, err := loadConfig(options)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := options.Logger.With("run", runID[:8])
	if cfg.Path != "" {
		logger.Debug("Loaded config", "path", cfg.Path)
	}

	store, err := database.Open(cfg.Cache.Path,
		database.WithForceRefresh(cfg.Cache.ForceRefresh),
		database.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if cfg.Cache.ForceRefresh {
		logger.Info("Force refresh enabled, ignoring cached data")
	}

	entries, skipped, err := catalog.Load(cfg.Entries.Dir, cfg.Entries.Legacy)
	for _, s := range skipped {
		logger.Warn("Skipping entry", "error", s)
	}
	if err != nil {
		return nil, err
	}

	f := newFetcher(cfg, options, logger)
	registry := provider.NewDefaultRegistry(cfg, f)
	trailers := provider.NewDefaultTrailerSource(cfg, f)

	logger.Info("Enriching entries", "count", len(entries), "cache", store.Path())
	r := NewReconciler(store, registry, trailers, WithLogger(logger))
	results := r.EnrichAll(ctx, entries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:      runID,
		OutputPath: cfg.Output,
		DryRun:     options.DryRun,
		Results:    results,
		Outcomes:   make(map[Outcome]int, len(Outcomes)),
		Skipped:    skipped,
		Providers:  registry.Names(),
	}
	for _, res := range results {
		report.Outcomes[res.Outcome]++
	}

	if !options.DryRun {
		if err := writeRecords(cfg.Output, report.Records()); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// writeRecords writes records as an indented JSON array
func writeRecords(path string, records []types.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}
	return nil
}

// MatchResult is the scored candidate list for one query
type MatchResult struct {
	Provider   string
	Query      types.Query
	Candidates int

	// Ranked holds candidates clearing the title floor, highest total first
	Ranked []matcher.Scored[types.Candidate]
	Best   *matcher.Scored[types.Candidate]
}

// Match searches the provider for q and scores every candidate, without
// touching the cache. It is meant for inspecting why a title does or does
// not resolve.
func Match(ctx context.Context, q types.Query, opts ...Option) (*MatchResult, error) {
	options := newOptions(opts)

	cfg, err := loadConfig(options)
	if err != nil {
		return nil, err
	}

	registry := provider.NewDefaultRegistry(cfg, newFetcher(cfg, options, options.Logger))
	p, err := registry.For(q.Kind)
	if err != nil {
		return nil, err
	}
	if !p.Configured() {
		return nil, types.ErrCredentialMissing{Provider: p.Name()}
	}

	candidates, err := p.SearchByTitleYear(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked := matcher.Rank(candidates, q, matcher.CandidateAccessors)
	result := &MatchResult{
		Provider:   p.Name(),
		Query:      q,
		Candidates: len(candidates),
	}
	if best, ok := matcher.Best(ranked); ok {
		result.Best = &best
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	result.Ranked = ranked
	return result, nil
}

// CacheEntry describes one cached record
type CacheEntry struct {
	Key     string
	Title   string
	Year    int
	Kind    types.MediaKind
	Version int
	Current bool
}

// CachePath returns the cache file path in effect
func CachePath(opts ...Option) (string, error) {
	cfg, err := loadConfig(newOptions(opts))
	if err != nil {
		return "", err
	}
	return cfg.Cache.Path, nil
}

// CacheList returns every cached record, sorted by key
func CacheList(opts ...Option) ([]CacheEntry, error) {
	store, err := openCache(newOptions(opts))
	if err != nil {
		return nil, err
	}

	var list []CacheEntry
	for _, key := range store.Keys() {
		rec, _ := store.Get(key)
		list = append(list, CacheEntry{
			Key:     key,
			Title:   rec.QueryTitleNorm,
			Year:    rec.QueryYear,
			Kind:    rec.QueryKind,
			Version: rec.SchemaVersion,
			Current: rec.SchemaVersion == database.SchemaVersion,
		})
	}
	return list, nil
}

// CacheInfo returns the cached record stored under key
func CacheInfo(key string, opts ...Option) (*types.CacheRecord, error) {
	store, err := openCache(newOptions(opts))
	if err != nil {
		return nil, err
	}

	rec, ok := store.Get(key)
	if !ok {
		return nil, fmt.Errorf("no cached record for %q", key)
	}
	return rec, nil
}

// CacheSearch returns cache keys fuzzily matching query, closest first
func CacheSearch(query string, opts ...Option) ([]string, error) {
	store, err := openCache(newOptions(opts))
	if err != nil {
		return nil, err
	}
	return database.Search(store, query), nil
}

func loadConfig(o *Options) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.EntriesDir != "" {
		cfg.Entries.Dir = o.EntriesDir
	}
	if o.OutputPath != "" {
		cfg.Output = o.OutputPath
	}
	if o.CachePath != "" {
		cfg.Cache.Path = o.CachePath
	}
	if o.Force {
		cfg.Cache.ForceRefresh = true
	}
	return cfg, nil
}

func openCache(o *Options) (*database.Store, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(cfg.Cache.Path, database.WithLogger(o.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

func newFetcher(cfg *config.Config, o *Options, logger *log.Logger) *fetcher.Fetcher {
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Fetch.Timeout}
	}
	return fetcher.New(
		fetcher.WithHTTPClient(client),
		fetcher.WithDefaults(cfg.Fetch.Attempts, cfg.Fetch.Backoff),
		fetcher.WithUserAgent(cfg.Fetch.UserAgent),
		fetcher.WithLogger(logger),
	)
}

// Re-export commonly used types from subpackages
type (
	Entry       = types.Entry
	Query       = types.Query
	MediaKind   = types.MediaKind
	Metadata    = types.Metadata
	Record      = types.Record
	CacheRecord = types.CacheRecord
	Scored      = matcher.Scored[types.Candidate]
)

// Re-export matching utilities
var (
	NormalizeTitle   = matcher.NormalizeTitle
	CleanSearchTitle = matcher.CleanSearchTitle
	ScoreTitleMatch  = matcher.ScoreTitleMatch
	ParseMediaKind   = types.ParseMediaKind
	Verdict          = catalog.Verdict
)
