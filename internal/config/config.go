// Package config reads zotp settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ExportDir   string
	LogLevel    slog.Level
	LogFile     string
	ScanWorkers int
}

func Load() (*Config, error) {
	level, err := parseLevel(getEnv("ZOTP_LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}

	workers, err := strconv.Atoi(getEnv("ZOTP_SCAN_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("ZOTP_SCAN_WORKERS must be an integer: %w", err)
	}

	cfg := &Config{
		ExportDir:   getEnv("ZOTP_EXPORT_DIR", "."),
		LogLevel:    level,
		LogFile:     os.Getenv("ZOTP_LOG_FILE"),
		ScanWorkers: workers,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ExportDir == "" {
		return fmt.Errorf("ZOTP_EXPORT_DIR must not be empty")
	}

	if c.ScanWorkers < 1 {
		return fmt.Errorf("ZOTP_SCAN_WORKERS must be at least 1")
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("ZOTP_LOG_LEVEL must be one of debug, info, warn, error: got %q", s)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
