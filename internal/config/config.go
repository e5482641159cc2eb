package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HorizonURL             string
	DatabaseURL            string
	HorizonRetryMax        int
	HorizonRetryBaseDelay  time.Duration
	SourceCacheTTL         time.Duration
	RefreshWorkerInterval  time.Duration
	SnapshotWorkerInterval time.Duration
	HTTPPort               string
	AdminAPIKey            string
	GoogleSheetsID         string
	GoogleCredentialsJSON  string
	NetworkProfilePath     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		HorizonURL:             envOrDefault("HORIZON_URL", ""),
		DatabaseURL:            envOrDefaultWarn("DATABASE_URL", ""),
		HorizonRetryMax:        envOrDefaultInt("HORIZON_RETRY_MAX", 5),
		HorizonRetryBaseDelay:  envOrDefaultDuration("HORIZON_RETRY_BASE_DELAY", 2*time.Second),
		SourceCacheTTL:         envOrDefaultDuration("SOURCE_CACHE_TTL", 30*time.Second),
		RefreshWorkerInterval:  envOrDefaultPositiveDuration("REFRESH_WORKER_INTERVAL", 1*time.Minute),
		SnapshotWorkerInterval: envOrDefaultPositiveDuration("SNAPSHOT_WORKER_INTERVAL", 24*time.Hour),
		HTTPPort:               envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:            os.Getenv("ADMIN_API_KEY"),
		GoogleSheetsID:         os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleCredentialsJSON:  os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		NetworkProfilePath:     os.Getenv("NETWORK_PROFILE"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultPositiveDuration(key string, defaultVal time.Duration) time.Duration {
	d := envOrDefaultDuration(key, defaultVal)
	if d <= 0 {
		slog.Warn("non-positive duration env var, using default", "key", key, "value", d, "default", defaultVal)
		return defaultVal
	}
	return d
}
