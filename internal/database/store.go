// Package database persists provider payloads in a schema-versioned JSON cache file.
package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/mydehq/metamatch/internal/matcher"
	"github.com/mydehq/metamatch/internal/types"
)

// SchemaVersion is stamped on every record. Records written under any other
// version are treated as stale.
const SchemaVersion = 5

// Store is a JSON-file backed cache. The whole file is loaded on Open and
// rewritten on every Put. A Store without a path keeps records in memory only.
type Store struct {
	mu         sync.RWMutex
	path       string
	records    map[string]*types.CacheRecord
	// unreadable keeps records that failed to decode so rewrites do not drop them
	unreadable map[string]json.RawMessage

	forceRefresh bool
	logger       *log.Logger
	loadWarning  error
}

var _ types.CacheStore = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithForceRefresh makes every record invalid, forcing a refetch
func WithForceRefresh(force bool) Option {
	return func(s *Store) {
		s.forceRefresh = force
	}
}

// WithLogger sets the logger used for load and write diagnostics
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func newStore(path string, opts []Option) *Store {
	s := &Store{
		path:       path,
		records:    make(map[string]*types.CacheRecord),
		unreadable: make(map[string]json.RawMessage),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemoryStore creates a store that never touches disk
func NewMemoryStore(opts ...Option) *Store {
	return newStore("", opts)
}

// Open loads the cache file at path. A missing file yields an empty store.
// A file that is not a JSON object also yields an empty store; the parse error
// is logged and kept in LoadWarning. A single record that does not decode is
// skipped with a warning and written back untouched on the next Put.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}

	s := newStore(path, opts)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.loadWarning = types.ErrCacheParse{Path: path, Err: err}
		s.logger.Warn("Cache file is corrupt, starting empty", "path", path, "error", err)
		return s, nil
	}

	for key, blob := range raw {
		if bytes.Equal(bytes.TrimSpace(blob), []byte("null")) {
			continue
		}
		var rec types.CacheRecord
		if err := json.Unmarshal(blob, &rec); err != nil {
			s.logger.Warn("Skipping unreadable cache record", "key", key, "path", path, "error", err)
			s.unreadable[key] = blob
			continue
		}
		s.records[key] = &rec
	}
	return s, nil
}

// LoadWarning returns the parse error hit while loading, if any
func (s *Store) LoadWarning() error {
	return s.loadWarning
}

// Path returns the backing file path, empty for memory stores
func (s *Store) Path() string {
	return s.path
}

// ForceRefresh reports whether every record is treated as invalid
func (s *Store) ForceRefresh() bool {
	return s.forceRefresh
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns a copy of the record stored under key
func (s *Store) Get(key string) (*types.CacheRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

// Keys returns all stored keys, sorted
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsValid reports whether rec was produced by the current schema for the same query
func (s *Store) IsValid(rec *types.CacheRecord, q types.Query) bool {
	if rec == nil || s.forceRefresh {
		return false
	}
	return rec.SchemaVersion == SchemaVersion &&
		rec.QueryTitleNorm == matcher.NormalizeTitle(q.Title) &&
		rec.QueryYear == q.Year &&
		rec.QueryKind == q.Kind
}

// Put stores payload under key with provenance derived from q, then rewrites the file
func (s *Store) Put(key string, payload types.Metadata, q types.Query) error {
	rec := &types.CacheRecord{
		Metadata:       payload,
		SchemaVersion:  SchemaVersion,
		QueryTitleNorm: matcher.NormalizeTitle(q.Title),
		QueryYear:      q.Year,
		QueryKind:      q.Kind,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
	delete(s.unreadable, key)
	if s.path == "" {
		return nil
	}
	return s.persist()
}

// persist writes every record to disk under an advisory lock. Caller holds s.mu.
func (s *Store) persist() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock cache %s: %w", s.path, err)
	}
	defer func() { _ = lock.Unlock() }()

	all := make(map[string]any, len(s.records)+len(s.unreadable))
	for k, blob := range s.unreadable {
		all[k] = blob
	}
	for k, rec := range s.records {
		all[k] = rec
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write cache %s: %w", s.path, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cache %s: %w", s.path, err)
	}
	return nil
}

// Key builds the cache key for an entry
func Key(identifier string, releaseYear int) string {
	return identifier + "_" + strconv.Itoa(releaseYear)
}

// StripProvenance returns the payload without cache bookkeeping fields
func StripProvenance(rec *types.CacheRecord) types.Metadata {
	if rec == nil {
		return types.Metadata{}
	}
	return rec.Metadata
}
