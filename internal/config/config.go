package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the Ads Tracker application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Meta      MetaConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MetaConfig configures access to the Facebook Graph API.
type MetaConfig struct {
	// AccessToken is the long-lived system user token.
	AccessToken string
	// APIVersion is the Graph API version path segment, e.g. "v19.0".
	APIVersion string
	// BaseURL overrides the Graph API host; used in tests.
	BaseURL string
	// PrimaryAccountID is the ad account shown by default.
	PrimaryAccountID string
	// AccountIDs is the full set of ad accounts in scope.
	AccountIDs []string
	// RequestTimeout bounds every outbound Graph API call.
	RequestTimeout time.Duration
}

type AuthConfig struct {
	Enabled bool
	// Password is the shared dashboard secret, validated server-side only.
	Password   string
	SessionTTL time.Duration
	SkipPaths  []string
}

// CacheConfig configures the fetch-layer TTL cache.
type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADS_TRACKER_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADS_TRACKER_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADS_TRACKER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADS_TRACKER_DB_HOST", "localhost"),
			Port:     getIntEnv("ADS_TRACKER_DB_PORT", 5432),
			User:     getEnv("ADS_TRACKER_DB_USER", "adstracker"),
			Password: getEnv("ADS_TRACKER_DB_PASSWORD", "adstracker_secret"),
			DBName:   getEnv("ADS_TRACKER_DB_NAME", "adstracker"),
			SSLMode:  getEnv("ADS_TRACKER_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADS_TRACKER_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADS_TRACKER_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADS_TRACKER_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADS_TRACKER_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADS_TRACKER_REDIS_DB", 0),
		},
		Meta: MetaConfig{
			AccessToken:      getEnv("ADS_TRACKER_META_ACCESS_TOKEN", ""),
			APIVersion:       getEnv("ADS_TRACKER_META_API_VERSION", "v19.0"),
			BaseURL:          getEnv("ADS_TRACKER_META_BASE_URL", "https://graph.facebook.com"),
			PrimaryAccountID: getEnv("ADS_TRACKER_META_PRIMARY_ACCOUNT", ""),
			AccountIDs:       getSliceEnv("ADS_TRACKER_META_ACCOUNTS", nil),
			RequestTimeout:   getDurationEnv("ADS_TRACKER_META_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			Enabled:    getBoolEnv("ADS_TRACKER_AUTH_ENABLED", true),
			Password:   getEnv("ADS_TRACKER_DASHBOARD_PASSWORD", ""),
			SessionTTL: getDurationEnv("ADS_TRACKER_SESSION_TTL", 12*time.Hour),
			SkipPaths:  getSliceEnv("ADS_TRACKER_AUTH_SKIP_PATHS", []string{"/health", "/metrics", "/api/login"}),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("ADS_TRACKER_CACHE_TTL", 60*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ADS_TRACKER_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ADS_TRACKER_RATE_LIMIT_RPS", 50),
			Burst:   getIntEnv("ADS_TRACKER_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("ADS_TRACKER_LOG_LEVEL", "info"),
			Format: getEnv("ADS_TRACKER_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADS_TRACKER_METRICS_ENABLED", true),
			Path:    getEnv("ADS_TRACKER_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Meta.AccessToken == "" {
		return fmt.Errorf("ADS_TRACKER_META_ACCESS_TOKEN is required")
	}
	if c.Meta.PrimaryAccountID == "" {
		return fmt.Errorf("ADS_TRACKER_META_PRIMARY_ACCOUNT is required")
	}
	if c.Auth.Enabled && c.Auth.Password == "" {
		return fmt.Errorf("ADS_TRACKER_DASHBOARD_PASSWORD is required when auth is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
