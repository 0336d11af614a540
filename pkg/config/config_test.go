package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBPath(t *testing.T) {
	t.Setenv("JOURNEY_DB", "")
	assert.Equal(t, DefaultDBPath, DBPath())

	t.Setenv("JOURNEY_DB", "/tmp/other.db")
	assert.Equal(t, "/tmp/other.db", DBPath())
}

func TestCollectionsPath(t *testing.T) {
	t.Setenv("JOURNEY_COLLECTIONS", "")
	assert.Equal(t, "", CollectionsPath())

	t.Setenv("JOURNEY_COLLECTIONS", "snap.json")
	assert.Equal(t, "snap.json", CollectionsPath())
}

func TestLogLevel(t *testing.T) {
	t.Setenv("JOURNEY_LOG_LEVEL", "")
	assert.Equal(t, DefaultLogLevel, LogLevel())

	t.Setenv("JOURNEY_LOG_LEVEL", "debug")
	assert.Equal(t, "debug", LogLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
