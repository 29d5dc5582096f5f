package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mydehq/metamatch/internal/types"
)

const (
	// FileName is the project-local config file looked up in the working directory
	FileName = "metamatch.yml"

	DefaultEntriesDir  = "_data/reviews"
	DefaultLegacyFile  = "_data/_reviews-raw.json"
	DefaultCachePath   = "_data/.cache/external-data.json"
	DefaultOutputPath  = "_data/enriched.json"
	DefaultAttempts    = 3
	DefaultBackoff     = 350 * time.Millisecond
	DefaultHTTPTimeout = 15 * time.Second
)

// Environment variables read once at load time
const (
	EnvTMDBKey      = "TMDB_API_KEY"
	EnvRAWGKey      = "RAWG_API_KEY"
	EnvYouTubeKey   = "YOUTUBE_API_KEY"
	EnvForceRefresh = "REFRESH_EXTERNAL_DATA"
)

// Config is the full metamatch configuration.
type Config struct {
	Entries   EntriesConfig   `yaml:"entries"`
	Output    string          `yaml:"output"`
	Cache     CacheConfig     `yaml:"cache"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Providers ProvidersConfig `yaml:"providers"`

	// Path is the file the config was read from, empty when only defaults apply
	Path string `yaml:"-"`
}

type EntriesConfig struct {
	Dir    string `yaml:"dir"`
	Legacy string `yaml:"legacy"`
}

type CacheConfig struct {
	Path         string `yaml:"path"`
	ForceRefresh bool   `yaml:"force_refresh"`
}

type FetchConfig struct {
	Attempts  int           `yaml:"attempts"`
	Backoff   time.Duration `yaml:"backoff"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

type ProvidersConfig struct {
	TMDB    ProviderConfig `yaml:"tmdb"`
	RAWG    ProviderConfig `yaml:"rawg"`
	YouTube ProviderConfig `yaml:"youtube"`
}

// ProviderConfig holds a provider credential. BaseURL is only set to point at a mirror or a test server.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		Entries: EntriesConfig{
			Dir:    DefaultEntriesDir,
			Legacy: DefaultLegacyFile,
		},
		Output: DefaultOutputPath,
		Cache: CacheConfig{
			Path: DefaultCachePath,
		},
		Fetch: FetchConfig{
			Attempts: DefaultAttempts,
			Backoff:  DefaultBackoff,
			Timeout:  DefaultHTTPTimeout,
		},
	}
}

// Load reads the configuration from customPath or the standard locations,
// then applies environment overrides. A missing file is not an error.
func Load(customPath string) (*Config, error) {
	cfg := Default()

	path := customPath
	if path == "" {
		path = findConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, types.ErrConfigInvalid{Path: path, Reason: err.Error()}
		}
		cfg.Path = path
	}

	ApplyEnv(&cfg, os.LookupEnv)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides credentials and the force-refresh flag from the environment.
// lookup has the signature of os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTMDBKey); ok && strings.TrimSpace(v) != "" {
		cfg.Providers.TMDB.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRAWGKey); ok && strings.TrimSpace(v) != "" {
		cfg.Providers.RAWG.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvYouTubeKey); ok && strings.TrimSpace(v) != "" {
		cfg.Providers.YouTube.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvForceRefresh); ok && strings.EqualFold(strings.TrimSpace(v), "true") {
		cfg.Cache.ForceRefresh = true
	}
}

// Validate checks that the configuration is usable
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	invalid := func(reason string) error {
		return types.ErrConfigInvalid{Path: cfg.Path, Reason: reason}
	}

	if strings.TrimSpace(cfg.Cache.Path) == "" {
		return invalid("cache.path must not be empty")
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return invalid("output must not be empty")
	}
	if strings.TrimSpace(cfg.Entries.Dir) == "" && strings.TrimSpace(cfg.Entries.Legacy) == "" {
		return invalid("entries.dir or entries.legacy must be set")
	}
	if cfg.Fetch.Attempts < 1 {
		return invalid(fmt.Sprintf("fetch.attempts must be at least 1, got %d", cfg.Fetch.Attempts))
	}
	if cfg.Fetch.Backoff < 0 {
		return invalid("fetch.backoff must not be negative")
	}
	if cfg.Fetch.Timeout < 0 {
		return invalid("fetch.timeout must not be negative")
	}
	return nil
}

// findConfig searches for the config file in standard locations.
func findConfig() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	// XDG_CONFIG_HOME
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			xdgConfig = filepath.Join(home, ".config")
		}
	}

	if xdgConfig != "" {
		path := filepath.Join(xdgConfig, "metamatch", "config.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// /etc fallback
	etcPath := "/etc/metamatch/config.yml"
	if _, err := os.Stat(etcPath); err == nil {
		return etcPath
	}

	return ""
}
