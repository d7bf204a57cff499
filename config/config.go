// Package config loads runtime configuration from the environment.
// A .env file is honored when present (loaded by the command entrypoint
// before Load runs); real environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server needs to start.
type Config struct {
	// HTTP server
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Storage
	DBPath string

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	// Demo seed data on startup (dev only)
	SeedDemo bool
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	shutdownSecs, err := getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		ShutdownTimeout: time.Duration(shutdownSecs) * time.Second,
		DBPath:          getEnv("DB_PATH", "./data/books.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
		SeedDemo:        getEnvBool("SEED_DEMO", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
