package api

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mydehq/metamatch/internal/database"
	"github.com/mydehq/metamatch/internal/provider"
	"github.com/mydehq/metamatch/internal/types"
)

// Outcome describes how an entry's record was produced
type Outcome string

const (
	// OutcomeCacheHit means a valid cached record was served without network access
	OutcomeCacheHit Outcome = "cache_hit"
	// OutcomeFetched means the provider returned a fresh payload, now cached
	OutcomeFetched Outcome = "fetched"
	// OutcomeStaleFallback means the provider failed and an outdated cached record was served
	OutcomeStaleFallback Outcome = "stale_fallback"
	// OutcomeLocalOnly means no external data was available
	OutcomeLocalOnly Outcome = "local_only"
)

// Outcomes lists every outcome in report order
var Outcomes = []Outcome{OutcomeCacheHit, OutcomeFetched, OutcomeStaleFallback, OutcomeLocalOnly}

// Providers looks up the provider for a media kind. *provider.Registry implements it.
type Providers interface {
	For(kind types.MediaKind) (types.Provider, error)
}

// Result is the merged record for one entry
type Result struct {
	Entry   types.Entry
	Record  types.Record
	Outcome Outcome
}

// Reconciler enriches entries from the cache or the providers.
// It never fails: every entry yields a record.
type Reconciler struct {
	store     types.CacheStore
	providers Providers
	trailers  types.TrailerSource
	logger    *log.Logger
}

// NewReconciler creates a Reconciler. trailers may be nil. Only the logger
// option is read from opts.
func NewReconciler(store types.CacheStore, providers Providers, trailers types.TrailerSource, opts ...Option) *Reconciler {
	options := newOptions(opts)
	return &Reconciler{
		store:     store,
		providers: providers,
		trailers:  trailers,
		logger:    options.Logger,
	}
}

// EnrichAll enriches entries one at a time, preserving order
func (r *Reconciler) EnrichAll(ctx context.Context, entries []types.Entry) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, r.Enrich(ctx, entry))
	}
	return results
}

// Enrich produces the merged record for a single entry
func (r *Reconciler) Enrich(ctx context.Context, entry types.Entry) Result {
	q := entry.Query()
	key := database.Key(entry.Identifier, entry.ReleaseYear)
	logger := r.logger.With("entry", entry.Identifier)
	ctx = log.WithContext(ctx, logger)

	cached, hasCached := r.store.Get(key)
	if hasCached && r.store.IsValid(cached, q) {
		logger.Debug("Using cached data", "title", entry.Title)
		return r.result(entry, database.StripProvenance(cached), OutcomeCacheHit)
	}
	if hasCached {
		logger.Debug("Refreshing stale cache", "title", entry.Title)
	}

	logger.Info("Fetching data", "title", entry.Title, "kind", entry.Kind)
	payload, err := r.fetch(ctx, q, logger)
	if err == nil && !payload.IsEmpty() {
		if err := r.store.Put(key, payload, q); err != nil {
			logger.Warn("Failed to write cache", "key", key, "error", err)
		}
		return r.result(entry, payload, OutcomeFetched)
	}
	logFetchFailure(logger, entry, err)

	if hasCached {
		logger.Warn("Using stale cache fallback", "title", entry.Title)
		return r.result(entry, database.StripProvenance(cached), OutcomeStaleFallback)
	}
	return r.result(entry, types.Metadata{}, OutcomeLocalOnly)
}

// fetch resolves the main payload, then adds trailer fields when possible
func (r *Reconciler) fetch(ctx context.Context, q types.Query, logger *log.Logger) (types.Metadata, error) {
	p, err := r.providers.For(q.Kind)
	if err != nil {
		return types.Metadata{}, err
	}

	payload, err := provider.Resolve(ctx, p, q)
	if err != nil || payload.IsEmpty() {
		return payload, err
	}

	if r.trailers == nil || !r.trailers.Configured() {
		return payload, nil
	}
	trailer, err := r.trailers.FindTrailer(ctx, q)
	if err != nil {
		logger.Debug("No trailer found", "source", r.trailers.Name(), "error", err)
		return payload, nil
	}
	payload.Merge(trailer)
	return payload, nil
}

func (r *Reconciler) result(entry types.Entry, payload types.Metadata, outcome Outcome) Result {
	return Result{Entry: entry, Record: MergeRecord(entry, payload), Outcome: outcome}
}

func logFetchFailure(logger *log.Logger, entry types.Entry, err error) {
	var (
		missing  types.ErrCredentialMissing
		notFound types.ErrMatchNotFound
		noKind   types.ErrProviderNotFound
	)
	switch {
	case err == nil:
		logger.Info("Provider returned no data", "title", entry.Title)
	case errors.As(err, &missing):
		logger.Warn("Credential not set, skipping external data", "provider", missing.Provider, "title", entry.Title)
	case errors.As(err, &notFound):
		logger.Info("Matching failed", "provider", notFound.Provider, "title", entry.Title)
	case errors.As(err, &noKind):
		logger.Debug("No provider for kind", "kind", noKind.Kind)
	default:
		logger.Warn("Fetch failed", "title", entry.Title, "error", err)
	}
}

// MergeRecord overlays payload onto the authored fields. Authored values for
// local-priority fields are kept whenever they are non-empty.
func MergeRecord(entry types.Entry, payload types.Metadata) types.Record {
	fetched := payload.Fields()
	record := make(types.Record, len(entry.Fields)+len(fetched))
	for k, v := range entry.Fields {
		record[k] = v
	}
	for k, v := range fetched {
		record[k] = v
	}
	for _, k := range types.LocalPriorityFields {
		if v, ok := entry.Fields[k]; ok && !isBlank(v) {
			record[k] = v
		}
	}
	return record
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}
