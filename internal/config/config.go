// config.go

// Environment variable loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all env configuration vars for the API server.
type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	LogLevel    slog.Level

	// JWTSecret verifies inbound bearer tokens. Required -- the server
	// cannot authenticate anyone without it.
	JWTSecret string

	// CORSOrigins is the list of allowed browser origins, from a
	// comma-separated CORS_ORIGIN value. Defaults to the localhost dev origin.
	CORSOrigins []string

	// Rate limit policy applied per authenticated subject.
	// Defaults: ceiling=60, window=60s (60 requests per minute).
	RateCeiling int
	RateWindow  time.Duration

	// Counter sweep. Defaults: interval=24h, retention=168h (7 days).
	SweepInterval  time.Duration
	SweepRetention time.Duration

	// Guitar search cache. Defaults: capacity=200, ttl=30s.
	SearchCacheCapacity int
	SearchCacheTTL      time.Duration

	// Per-request deadline enforced by the router. Default 30s.
	RequestTimeout time.Duration
}

// LoadConfig reads environment variables and returns a validated Config.
// Returns an error if required variables (DATABASE_URL, REDIS_URL, JWT_SECRET) are missing.
func LoadConfig() (*Config, error) {
	// Create config obj
	cfg := &Config{}

	// Attempt to get db url, if missing, err
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Attempt to get redis url, if missing, err
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	// Token verification secret, if missing, err
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Attempt to get port num, default to 8080
	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	// Parse log level, default to info
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	// Allowed origins -- comma-separated list, trailing slashes stripped.
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:3000"
	}
	for _, p := range strings.Split(corsOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	// Rate limit policy. If a value is missing or invalid, fall back to the
	// default so a misconfigured env doesn't silently disable rate limiting.
	cfg.RateCeiling = envInt("RATE_CEILING", 60)
	cfg.RateWindow = envDuration("RATE_WINDOW", 60*time.Second)

	cfg.SweepInterval = envDuration("SWEEP_INTERVAL", 24*time.Hour)
	cfg.SweepRetention = envDuration("SWEEP_RETENTION", 7*24*time.Hour)

	cfg.SearchCacheCapacity = envInt("SEARCH_CACHE_CAPACITY", 200)
	cfg.SearchCacheTTL = envDuration("SEARCH_CACHE_TTL", 30*time.Second)

	cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", 30*time.Second)

	return cfg, nil
}

// envInt reads an env var as int, returning def if missing or unparseable.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// envDuration reads an env var as time.Duration, returning def if missing or unparseable.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
