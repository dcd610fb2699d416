// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvDB       = "BTO_DB"
	EnvLogLevel = "BTO_LOG_LEVEL"
	EnvFormat   = "BTO_FORMAT"
	EnvMetrics  = "BTO_METRICS"
)

// Config is the CLI configuration. Command-line flags override these values.
type Config struct {
	// DBPath is the SQLite database holding the journal and snapshots.
	DBPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// Format is the output format: text or json.
	Format string
	// Metrics dumps the Prometheus registry to stderr after each command.
	Metrics bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DBPath:   "bto.db",
		LogLevel: "info",
		Format:   "text",
	}
}

// Load reads the given .env files (default: ".env" in the working directory)
// and then the environment. Missing .env files are not an error; variables
// already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	cfg.DBPath = getEnv(EnvDB, cfg.DBPath)
	cfg.LogLevel = strings.ToLower(getEnv(EnvLogLevel, cfg.LogLevel))
	cfg.Format = strings.ToLower(getEnv(EnvFormat, cfg.Format))

	if v := os.Getenv(EnvMetrics); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %q is not a boolean", EnvMetrics, v)
		}
		cfg.Metrics = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown formats and log levels and an empty database path.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%s must not be empty", EnvDB)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("%s: unknown format %q (want text or json)", EnvFormat, c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	return nil
}

// Level returns the slog level for LogLevel. Call after Validate.
func (c Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
