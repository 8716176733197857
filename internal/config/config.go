// Package config loads process configuration from environment variables
// (with an optional .env file for local development, per the pack's
// godotenv convention) layered under flag defaults, following the
// teacher's flag-based CLI surface for the server entrypoint.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/danslapman/stubbery/internal/store/pgstore"
)

// Config is the full server configuration.
type Config struct {
	Host string
	Port int

	LogLevel string
	LogFile  string

	// UsePostgres selects pgstore over the zero-config memstore default.
	UsePostgres bool
	Postgres    pgstore.Config
}

// Load reads .env (if present, silently ignored if missing) then builds a
// Config from environment variables, falling back to sane defaults for
// anything unset.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Host:     getEnv("STUBBERY_HOST", "0.0.0.0"),
		Port:     getEnvInt("STUBBERY_PORT", 8080),
		LogLevel: getEnv("STUBBERY_LOG_LEVEL", "info"),
		LogFile:  getEnv("STUBBERY_LOG_FILE", ""),
	}

	if dbName := getEnv("STUBBERY_DB_NAME", ""); dbName != "" {
		cfg.UsePostgres = true
		cfg.Postgres = pgstore.Config{
			Host:     getEnv("STUBBERY_DB_HOST", "localhost"),
			Port:     getEnvInt("STUBBERY_DB_PORT", 5432),
			User:     getEnv("STUBBERY_DB_USER", "stubbery"),
			Password: getEnv("STUBBERY_DB_PASSWORD", ""),
			DBName:   dbName,
			SSLMode:  getEnv("STUBBERY_DB_SSLMODE", "disable"),
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
