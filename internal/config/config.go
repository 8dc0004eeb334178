// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret is the HS256 key session tokens are signed with. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool
}

// ClientConfig holds the configuration of the kendala CLI.
type ClientConfig struct {
	// APIURL is the base URL of the trip-storage API.
	APIURL string

	// DataDir holds drafts.db and the CLI log file. Defaults to ~/.kendala.
	DataDir string

	// Debug mirrors CLI logs to stderr at debug level.
	Debug bool
}

const defaultMaxBodyBytes = 1 << 20

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.Itoa(defaultMaxBodyBytes)), 10, 64)
	if err != nil || maxBody <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be a positive integer")
	}
	cfg.MaxBodyBytes = maxBody

	cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadClient reads the CLI configuration. Nothing is required.
func LoadClient() (ClientConfig, error) {
	loadDotEnv()

	cfg := ClientConfig{
		APIURL:  strings.TrimRight(getEnv("KENDALA_API_URL", "http://localhost:8080"), "/"),
		DataDir: os.Getenv("KENDALA_DATA_DIR"),
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ClientConfig{}, fmt.Errorf("config.LoadClient: KENDALA_DATA_DIR not set and no home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".kendala")
	}

	var err error
	cfg.Debug, err = getBool("KENDALA_DEBUG", false)
	if err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// loadDotEnv reads .env if it exists. godotenv never overrides variables
// that are already set.
func loadDotEnv() {
	_ = godotenv.Load()
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
