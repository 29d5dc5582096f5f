// Package types defines custom error types for metamatch.
package types

import "fmt"

// ErrCredentialMissing indicates a provider has no API key configured
type ErrCredentialMissing struct {
	Provider string
}

func (e ErrCredentialMissing) Error() string {
	return fmt.Sprintf("%s credential not set", e.Provider)
}

// ErrMatchNotFound indicates no candidate scored high enough. It is a normal outcome.
type ErrMatchNotFound struct {
	Provider string
	Title    string
}

func (e ErrMatchNotFound) Error() string {
	return fmt.Sprintf("%s: no confident match for %q", e.Provider, e.Title)
}

// FetchError is returned once every fetch attempt has failed
type FetchError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Label, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrAPIError indicates a non-2xx response from an external API
type ErrAPIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e ErrAPIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// ErrCacheParse indicates the persisted cache could not be decoded
type ErrCacheParse struct {
	Path string
	Err  error
}

func (e ErrCacheParse) Error() string {
	return fmt.Sprintf("could not parse cache file %s: %v", e.Path, e.Err)
}

func (e ErrCacheParse) Unwrap() error {
	return e.Err
}

// EntryParseError indicates a malformed local entry that was skipped
type EntryParseError struct {
	File   string
	Reason string
}

func (e *EntryParseError) Error() string {
	return fmt.Sprintf("skipping invalid entry %q: %s", e.File, e.Reason)
}

// ErrNoEntries indicates no loadable local entries exist
type ErrNoEntries struct {
	Dir string
}

func (e ErrNoEntries) Error() string {
	return fmt.Sprintf("no valid entries found in %s", e.Dir)
}

// ErrConfigInvalid indicates a configuration error
type ErrConfigInvalid struct {
	Path   string
	Reason string
}

func (e ErrConfigInvalid) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Reason)
}

// ErrProviderNotFound indicates no provider is registered for a media kind
type ErrProviderNotFound struct {
	Kind MediaKind
}

func (e ErrProviderNotFound) Error() string {
	return fmt.Sprintf("no provider registered for kind: %s", e.Kind)
}
