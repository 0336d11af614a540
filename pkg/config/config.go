// Package config resolves command-line defaults from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	// DefaultDBPath is the SQLite database read when no snapshot file is given.
	DefaultDBPath = "journey.db"
	// DefaultLogLevel is used when JOURNEY_LOG_LEVEL is unset.
	DefaultLogLevel = "warn"
)

// DBPath returns the database path from JOURNEY_DB, falling back to
// DefaultDBPath.
func DBPath() string {
	if env := os.Getenv("JOURNEY_DB"); env != "" {
		return env
	}
	return DefaultDBPath
}

// CollectionsPath returns the snapshot file from JOURNEY_COLLECTIONS, or "".
// A non-empty path takes precedence over the database.
func CollectionsPath() string {
	return os.Getenv("JOURNEY_COLLECTIONS")
}

// LogLevel returns the log level name from JOURNEY_LOG_LEVEL, falling back
// to DefaultLogLevel.
func LogLevel() string {
	if env := os.Getenv("JOURNEY_LOG_LEVEL"); env != "" {
		return env
	}
	return DefaultLogLevel
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
