// Package metamatch enriches locally authored media reviews with metadata
// from TMDB, RAWG and YouTube, caching every payload on disk.
//
// This package mirrors the CLI functionality and provides a compatible API
// for integrating metamatch into other Go applications.
package metamatch

import (
	"github.com/mydehq/metamatch/internal/api"
	"github.com/mydehq/metamatch/internal/version"
)

// Re-export all types from internal/api
type (
	Option      = api.Option
	Options     = api.Options
	Report      = api.Report
	Result      = api.Result
	Outcome     = api.Outcome
	MatchResult = api.MatchResult
	CacheEntry  = api.CacheEntry
	Entry       = api.Entry
	Query       = api.Query
	MediaKind   = api.MediaKind
	Metadata    = api.Metadata
	Record      = api.Record
	CacheRecord = api.CacheRecord
	Scored      = api.Scored
)

// Outcomes
const (
	OutcomeCacheHit      = api.OutcomeCacheHit
	OutcomeFetched       = api.OutcomeFetched
	OutcomeStaleFallback = api.OutcomeStaleFallback
	OutcomeLocalOnly     = api.OutcomeLocalOnly
)

// Re-export all option constructors
var (
	WithConfig     = api.WithConfig
	WithEntries    = api.WithEntries
	WithOutput     = api.WithOutput
	WithCache      = api.WithCache
	WithForce      = api.WithForce
	WithDryRun     = api.WithDryRun
	WithLogger     = api.WithLogger
	WithHTTPClient = api.WithHTTPClient
)

// Re-export all core functions
var (
	Run            = api.Run
	Match          = api.Match
	MergeRecord    = api.MergeRecord
	CachePath      = api.CachePath
	CacheList      = api.CacheList
	CacheInfo      = api.CacheInfo
	CacheSearch    = api.CacheSearch
	NormalizeTitle = api.NormalizeTitle
	ParseMediaKind = api.ParseMediaKind
	Verdict        = api.Verdict
)

// AllOutcomes lists every outcome in report order
var AllOutcomes = api.Outcomes

// Version returns the module version
func Version() string {
	return version.String()
}
