// Package fetcher performs provider HTTP calls with bounded retries.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mydehq/metamatch/internal/types"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 350 * time.Millisecond
	DefaultTimeout  = 15 * time.Second

	defaultUserAgent = "metamatch/1.0 (+https://github.com/mydehq/metamatch)"

	// maxErrorBody bounds how much of a failed response is kept for the error message
	maxErrorBody = 512
)

// Request describes one outbound call. It is rebuilt for every attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
}

// Get is shorthand for a GET request without extra headers
func Get(url string) Request {
	return Request{Method: http.MethodGet, URL: url}
}

// Options control the retry loop for a single call
type Options struct {
	// Label names the call in logs and errors (e.g. "TMDB movie search")
	Label    string
	Attempts int
	// Backoff of zero uses the fetcher default. Disable waiting through WithDefaults.
	Backoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	}
	if o.Label == "" {
		o.Label = "request"
	}
	return o
}

// Fetcher executes requests with linear backoff between failed attempts
type Fetcher struct {
	client    *http.Client
	sleep     func(time.Duration)
	userAgent string
	defaults  Options
	logger    *log.Logger
}

// Option customizes the fetcher
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithSleeper overrides how backoff waits are performed (useful for tests)
func WithSleeper(sleep func(time.Duration)) Option {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua = strings.TrimSpace(ua); ua != "" {
			f.userAgent = ua
		}
	}
}

// WithDefaults sets the attempts and backoff used when a call leaves them unset.
// A zero backoff retries without waiting; a negative one keeps the default.
func WithDefaults(attempts int, backoff time.Duration) Option {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.defaults.Attempts = attempts
		}
		if backoff >= 0 {
			f.defaults.Backoff = backoff
		}
	}
}

// WithLogger sets the logger used for per-attempt diagnostics
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		sleep:     time.Sleep,
		userAgent: defaultUserAgent,
		defaults:  Options{Attempts: DefaultAttempts, Backoff: DefaultBackoff},
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchJSON runs req until it yields a 2xx response that decodes into dest.
// Transport failures, non-2xx statuses and undecodable bodies each count as a
// failed attempt. After the last attempt a *types.FetchError is returned.
func (f *Fetcher) FetchJSON(ctx context.Context, req Request, opts Options, dest any) error {
	if opts.Attempts <= 0 {
		opts.Attempts = f.defaults.Attempts
	}
	if opts.Backoff == 0 {
		opts.Backoff = f.defaults.Backoff
	}
	opts = opts.withDefaults()

	var lastErr error
	made := 0
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		made = attempt
		lastErr = f.do(ctx, req, opts.Label, dest)
		if lastErr == nil {
			return nil
		}

		// A cancelled context fails every later attempt too
		if attempt == opts.Attempts || ctx.Err() != nil {
			break
		}

		wait := opts.Backoff * time.Duration(attempt)
		f.logger.Debug("Fetch attempt failed, retrying",
			"label", opts.Label,
			"attempt", attempt,
			"of", opts.Attempts,
			"wait", wait,
			"error", lastErr,
		)
		if wait > 0 {
			f.sleep(wait)
		}
	}

	return &types.FetchError{Label: opts.Label, Attempts: made, Err: lastErr}
}

func (f *Fetcher) do(ctx context.Context, spec Request, label string, dest any) error {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", redactQuery(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return types.ErrAPIError{
			Service:    label,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactQuery drops the query string from transport errors, since providers
// carry API keys as query parameters.
func redactQuery(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if i := strings.IndexByte(urlErr.URL, '?'); i >= 0 {
			urlErr.URL = urlErr.URL[:i]
		}
	}
	return err
}
