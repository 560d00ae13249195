package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Analytics AnalyticsConfig
	Reconcile ReconcileConfig
	Auth      AuthConfig
	Display   DisplayConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Driver       string // "sqlite" or "pgx"
	Path         string // file path for sqlite, connection string for pgx
	QueryTimeout time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AnalyticsConfig bounds trend computations.
type AnalyticsConfig struct {
	MaxTrendBuckets int
}

// ReconcileConfig controls bulk and scheduled reconciliation.
type ReconcileConfig struct {
	Workers    int
	Schedule   string // cron expression; empty disables the scheduler
	RunTimeout time.Duration
}

// AuthConfig holds credentials for machine-to-machine endpoints.
type AuthConfig struct {
	InternalAPIKey string
}

// DisplayConfig controls how the CLI renders money.
type DisplayConfig struct {
	Currency string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	queryTimeout, err := getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	maxBuckets, err := getEnvInt("MAX_TREND_BUCKETS", 400)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("RECONCILE_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	runTimeout, err := getEnvDuration("RECONCILE_RUN_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Path:         getEnv("DB_PATH", "./data/rental_metrics.db"),
			QueryTimeout: queryTimeout,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Analytics: AnalyticsConfig{
			MaxTrendBuckets: maxBuckets,
		},
		Reconcile: ReconcileConfig{
			Workers:    workers,
			Schedule:   os.Getenv("RECONCILE_SCHEDULE"),
			RunTimeout: runTimeout,
		},
		Auth: AuthConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
		},
		Display: DisplayConfig{
			Currency: strings.ToUpper(getEnv("DISPLAY_CURRENCY", "EUR")),
		},
	}

	if config.Analytics.MaxTrendBuckets < 1 {
		return nil, fmt.Errorf("MAX_TREND_BUCKETS must be positive, got %d", config.Analytics.MaxTrendBuckets)
	}
	if config.Reconcile.Workers < 1 {
		return nil, fmt.Errorf("RECONCILE_WORKERS must be positive, got %d", config.Reconcile.Workers)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
