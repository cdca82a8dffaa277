package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Default API locations, matching the browser build of the original UI:
	// a local dev server, or the same-origin /api mount in production.
	defaultDevBaseURL  = "http://localhost:8000"
	defaultProdBaseURL = "/api"
)

// Config holds all configuration for the web frontend
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Query     QueryConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Display   DisplayConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// APIConfig describes where the price API lives
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Origin is used to resolve a relative BaseURL such as "/api".
	Origin string `mapstructure:"origin"`
}

// QueryConfig tunes the shared query cache
type QueryConfig struct {
	StaleTime              time.Duration `mapstructure:"stale_time"`
	Retry                  int           `mapstructure:"retry"`
	RetryDelay             time.Duration `mapstructure:"retry_delay"`
	GCTime                 time.Duration `mapstructure:"gc_time"`
	MaxEntries             int           `mapstructure:"max_entries"`
	SummaryRefetchInterval time.Duration `mapstructure:"summary_refetch_interval"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	Timezone    string `mapstructure:"timezone"`
	RecentLimit int    `mapstructure:"recent_limit"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricewatch/")

	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The browser build read these names; keep honoring them.
	_ = v.BindEnv("api.base_url", "PRICEWATCH_API_BASE_URL", "VITE_API_BASE_URL")
	_ = v.BindEnv("server.port", "PRICEWATCH_SERVER_PORT", "PORT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.API.BaseURL == "" {
		config.API.BaseURL = DefaultBaseURL(config.Server.Environment)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", EnvDevelopment)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("api.origin", "http://localhost:8000")

	v.SetDefault("query.stale_time", "30s")
	v.SetDefault("query.retry", 1)
	v.SetDefault("query.retry_delay", "1s")
	v.SetDefault("query.gc_time", "5m")
	v.SetDefault("query.max_entries", 1000)
	v.SetDefault("query.summary_refetch_interval", "60s")

	v.SetDefault("ratelimit.per_ip", 20)
	v.SetDefault("ratelimit.burst", 60)

	v.SetDefault("log.level", "info")

	v.SetDefault("display.timezone", "Asia/Seoul")
	v.SetDefault("display.recent_limit", 10)
}

// DefaultBaseURL returns the API base used when none is configured
func DefaultBaseURL(environment string) string {
	if environment == EnvProduction {
		return defaultProdBaseURL
	}
	return defaultDevBaseURL
}

// ResolvedBaseURL returns an absolute API base URL. Relative bases are
// joined onto the configured origin.
func (c APIConfig) ResolvedBaseURL() (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if base.IsAbs() {
		return strings.TrimRight(base.String(), "/"), nil
	}

	origin, err := url.Parse(c.Origin)
	if err != nil || !origin.IsAbs() {
		return "", fmt.Errorf("api base url %q is relative and api origin %q is not absolute", c.BaseURL, c.Origin)
	}
	return strings.TrimRight(origin.ResolveReference(base).String(), "/"), nil
}

// Location returns the display time zone
func (c DisplayConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Server.Environment {
	case EnvDevelopment, EnvProduction, "test":
	default:
		return fmt.Errorf("server environment must be 'development', 'production' or 'test', got: %s", config.Server.Environment)
	}

	if _, err := config.API.ResolvedBaseURL(); err != nil {
		return err
	}

	if config.Query.StaleTime <= 0 {
		return fmt.Errorf("query stale time must be positive, got: %s", config.Query.StaleTime)
	}
	if config.Query.Retry < 0 {
		return fmt.Errorf("query retry must not be negative, got: %d", config.Query.Retry)
	}
	if config.Query.MaxEntries <= 0 {
		return fmt.Errorf("query max entries must be positive, got: %d", config.Query.MaxEntries)
	}

	if _, err := config.Display.Location(); err != nil {
		return fmt.Errorf("unknown display timezone %q: %w", config.Display.Timezone, err)
	}
	if config.Display.RecentLimit < 1 || config.Display.RecentLimit > 100 {
		return fmt.Errorf("display recent limit must be between 1 and 100, got: %d", config.Display.RecentLimit)
	}

	return nil
}
