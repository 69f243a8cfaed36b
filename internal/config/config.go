// Package config loads the service configuration from YAML with
// environment variable overrides. Missing files fall back to defaults
// so the server can start with zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"scholarhub/internal/reliability"
)

// Config holds all ScholarHub configuration.
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Federated search settings
	Search SearchConfig `yaml:"search"`

	// Reliability scoring weights
	Reliability reliability.Weights `yaml:"reliability"`

	// Local persistence
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// AllowedOrigins for cross-origin requests. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// SearchConfig configures the federated search layer.
type SearchConfig struct {
	DefaultMaxResults int    `yaml:"default_max_results"`
	Timeout           string `yaml:"timeout"`

	// Optional upstream credentials
	SemanticScholarAPIKey string `yaml:"semantic_scholar_api_key"`
	CrossrefMailto        string `yaml:"crossref_mailto"`

	// Sources to skip, by name
	DisabledSources []string `yaml:"disabled_sources"`
}

// StoreConfig configures the SQLite cache and history database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
	CacheTTL     string `yaml:"cache_ttl"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     "15s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "10s",
		},

		Search: SearchConfig{
			DefaultMaxResults: 15,
			Timeout:           "30s",
		},

		Reliability: reliability.DefaultWeights(),

		Store: StoreConfig{
			DatabasePath: "data/scholarhub.db",
			CacheTTL:     "1h",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}
	if key := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); key != "" {
		c.Search.SemanticScholarAPIKey = key
	}
	if mailto := os.Getenv("CROSSREF_MAILTO"); mailto != "" {
		c.Search.CrossrefMailto = mailto
	}
	if path := os.Getenv("SCHOLARHUB_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Search.DefaultMaxResults < 1 {
		return fmt.Errorf("default_max_results must be positive, got %d", c.Search.DefaultMaxResults)
	}
	if sum := c.Reliability.Sum(); sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("reliability weights must sum to 1.0, got %.2f", sum)
	}
	if _, err := time.ParseDuration(c.Search.Timeout); err != nil {
		return fmt.Errorf("invalid search timeout %q: %w", c.Search.Timeout, err)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SearchTimeout returns the per-search timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return durationOr(c.Search.Timeout, 30*time.Second)
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Store.CacheTTL, time.Hour)
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 60*time.Second)
}

// ShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
