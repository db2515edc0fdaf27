// Package config provides configuration management for the ATIP dashboard.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// ATIP_UPSTREAM_BASE_URL.
const EnvPrefix = "ATIP"

// Config holds all configuration for the ATIP dashboard.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Upstream contains the ATIP API client settings.
	Upstream UpstreamConfig `mapstructure:"upstream"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Leaderboard contains leaderboard fetch settings.
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	// Home contains home page settings.
	Home HomeConfig `mapstructure:"home"`
	// Suggest contains search-bar settings.
	Suggest SuggestConfig `mapstructure:"suggest"`
	// Debug contains API debug page settings.
	Debug DebugConfig `mapstructure:"debug"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UpstreamConfig holds ATIP API client configuration.
type UpstreamConfig struct {
	// BaseURL is the ATIP API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the per-request timeout. Zero leaves requests bounded only by
	// the inbound request context.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int `mapstructure:"burst_size"`
	// MaxRetries is the retry count for 429/5xx responses (default: 0).
	MaxRetries int `mapstructure:"max_retries"`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// LeaderboardConfig holds leaderboard settings.
type LeaderboardConfig struct {
	// Limit is the number of ranked entries fetched per metric.
	Limit int `mapstructure:"limit"`
}

// HomeConfig holds home page settings.
type HomeConfig struct {
	// PreviewLimit is the number of entries in each leaderboard preview.
	PreviewLimit int `mapstructure:"preview_limit"`
}

// SuggestConfig holds search-bar settings.
type SuggestConfig struct {
	// Limit is the maximum number of suggestions shown.
	Limit int `mapstructure:"limit"`
	// SessionCapacity bounds the number of search sessions kept in memory.
	SessionCapacity int `mapstructure:"session_capacity"`
}

// DebugConfig holds API debug page settings.
type DebugConfig struct {
	// AuthorID is the author exercised by the debug checks.
	AuthorID string `mapstructure:"author_id"`
	// PaperID is the paper exercised by the debug checks.
	PaperID string `mapstructure:"paper_id"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from a .env file, environment variables and
// config files, in increasing order of precedence for the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/atip-dashboard")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Upstream defaults
	v.SetDefault("upstream.base_url", "http://18.143.177.82")
	v.SetDefault("upstream.timeout", "0s")
	v.SetDefault("upstream.rate_limit", 20.0)
	v.SetDefault("upstream.burst_size", 20)
	v.SetDefault("upstream.max_retries", 0)
	v.SetDefault("upstream.user_agent", "ATIP-Dashboard/1.0")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "atip")

	v.SetDefault("leaderboard.limit", 100)
	v.SetDefault("home.preview_limit", 5)
	v.SetDefault("suggest.limit", 5)
	v.SetDefault("suggest.session_capacity", 10000)

	v.SetDefault("debug.author_id", "143977260")
	v.SetDefault("debug.paper_id", "219965343")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Metrics.Enabled && c.Server.MetricsPort == c.Server.HTTPPort {
		return fmt.Errorf("metrics port must differ from HTTP port: %d", c.Server.MetricsPort)
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid upstream base_url: %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative")
	}
	if c.Upstream.RateLimit <= 0 {
		return fmt.Errorf("upstream rate_limit must be positive")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream max_retries must not be negative")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Leaderboard.Limit <= 0 {
		return fmt.Errorf("leaderboard limit must be positive")
	}
	if c.Home.PreviewLimit <= 0 {
		return fmt.Errorf("home preview_limit must be positive")
	}
	if c.Suggest.Limit <= 0 {
		return fmt.Errorf("suggest limit must be positive")
	}
	if c.Suggest.SessionCapacity <= 0 {
		return fmt.Errorf("suggest session_capacity must be positive")
	}

	return nil
}
