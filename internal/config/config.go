package config

import (
	"time"

	"github.com/claimlens/claimlens/internal/ailink"
)

// Config represents the complete application configuration.
//
// Layers, lowest precedence first: built-in defaults, the YAML config file,
// a .env file, process environment, runtime overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	AILink   ailink.Config  `mapstructure:"ailink"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Health   HealthConfig   `mapstructure:"health"`
	Debug    DebugConfig    `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
// History and the result cache are only written when Enabled is set.
type StoreConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig controls reuse of earlier analyses of the same claim.
// A zero TTL disables the cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AnalyzerConfig selects the prompt and, optionally, pins a provider or model
// for claim analysis. Empty values defer to AILink routing.
type AnalyzerConfig struct {
	PromptSlug string `mapstructure:"prompt_slug"`
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
}

// FeedConfig contains defaults for the feed command.
type FeedConfig struct {
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`

	// BearerToken protects the dedicated metrics port. The /metrics route on
	// the API listener stays open and forwards the token itself.
	BearerToken string `mapstructure:"bearer_token"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
