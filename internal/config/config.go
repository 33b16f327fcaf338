package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the remotejobs scraper.
type Config struct {
	DBPath         string
	ScrapeInterval time.Duration
	FetchTimeout   time.Duration
	Sources        []SourceConfig
	RateLimit      RateLimitConfig
	API            APIConfig
}

// SourceConfig enables or disables a single job source.
type SourceConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// RateLimitConfig controls source-level rate limiting.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same source
	SourceOverrides map[string]time.Duration // per-source overrides, keyed by source name
}

// MinDelayFor returns the configured delay for the given source, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.SourceOverrides[source]; ok {
		return d
	}
	return r.MinDelay
}

// APIConfig controls the optional read-only HTTP API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

const (
	defaultDBPath         = "data/jobs.db"
	defaultScrapeInterval = 1 * time.Hour
	defaultFetchTimeout   = 30 * time.Second
	defaultMinDelay       = 2 * time.Second
	defaultAPIAddr        = ":8080"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	DBPath         string             `yaml:"db_path"`
	ScrapeInterval string             `yaml:"scrape_interval"`
	FetchTimeout   string             `yaml:"fetch_timeout"`
	Sources        []SourceConfig     `yaml:"sources"`
	RateLimit      rawRateLimitConfig `yaml:"rate_limit"`
	API            APIConfig          `yaml:"api"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

// Default returns a Config with all sources enabled and built-in defaults,
// used when no config file is present.
func Default() *Config {
	return &Config{
		DBPath:         defaultDBPath,
		ScrapeInterval: defaultScrapeInterval,
		FetchTimeout:   defaultFetchTimeout,
		Sources: []SourceConfig{
			{Name: "remoteok", Enabled: true},
			{Name: "weworkremotely", Enabled: true},
			{Name: "indeed", Enabled: true},
			{Name: "reddit", Enabled: true},
		},
		RateLimit: RateLimitConfig{MinDelay: defaultMinDelay},
		API:       APIConfig{Enabled: false, Addr: defaultAPIAddr},
	}
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if raw.DBPath != "" {
		cfg.DBPath = raw.DBPath
	}

	if raw.ScrapeInterval != "" {
		cfg.ScrapeInterval, err = time.ParseDuration(raw.ScrapeInterval)
		if err != nil {
			return nil, fmt.Errorf("parse scrape_interval %q: %w", raw.ScrapeInterval, err)
		}
	}

	if raw.FetchTimeout != "" {
		cfg.FetchTimeout, err = time.ParseDuration(raw.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch_timeout %q: %w", raw.FetchTimeout, err)
		}
	}

	if len(raw.Sources) > 0 {
		cfg.Sources = raw.Sources
	}

	if raw.RateLimit.MinDelay != "" {
		cfg.RateLimit.MinDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	overrides := make(map[string]time.Duration)
	for source, rawDelay := range raw.RateLimit.SourceOverrides {
		d, err := time.ParseDuration(rawDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.source_overrides[%q]: %w", source, err)
		}
		overrides[source] = d
	}
	if len(overrides) > 0 {
		cfg.RateLimit.SourceOverrides = overrides
	}

	if raw.API.Enabled {
		cfg.API.Enabled = true
	}
	if raw.API.Addr != "" {
		cfg.API.Addr = raw.API.Addr
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if cfg.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape_interval must be positive, got %v", cfg.ScrapeInterval)
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", cfg.FetchTimeout)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}

	enabled := 0
	for _, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("every source needs a name")
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.API.Enabled && cfg.API.Addr == "" {
		return fmt.Errorf("api.addr is required when api.enabled is true")
	}

	return nil
}
