// Package config loads application configuration from the environment,
// with a .env file as an optional local override.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port           string
	DatabasePath   string
	JWTSecret      string
	TokenExpiry    time.Duration
	LogLevel       string
	LogFormat      string
	RateLimitRPS   float64
	RateLimitBurst int
	FxCacheTTL     time.Duration

	// FxRates is an optional comma-separated "FROM/TO=rate" list used to
	// seed a static rate source. Empty means no rate source: foreign
	// expenses are recorded without a snapshot.
	FxRates string
}

// Load reads configuration from the environment. A missing .env file is
// not an error; OS environment variables and defaults apply either way.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	jwtSecret := getEnv("JWT_SECRET", "dev-only-insecure-secret-change-me-32b")
	if jwtSecret == "dev-only-insecure-secret-change-me-32b" {
		slog.Warn("using default insecure JWT_SECRET; set JWT_SECRET for production")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DB_PATH", "./data/tripledger.db"),
		JWTSecret:      jwtSecret,
		TokenExpiry:    getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),
		FxCacheTTL:     getEnvDuration("FX_CACHE_TTL", 15*time.Minute),
		FxRates:        getEnv("FX_RATES", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("invalid float in environment, using default", "key", key, "value", value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
	}
	return fallback
}
