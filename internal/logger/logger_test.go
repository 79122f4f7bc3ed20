package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expect    slog.Level
		expectErr bool
	}{
		{"debug", "debug", slog.LevelDebug, false},
		{"default-info", "", slog.LevelInfo, false},
		{"warning", "WARNING", slog.LevelWarn, false},
		{"error", "error", slog.LevelError, false},
		{"invalid", "verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := levelFromString(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, level)
		})
	}
}

func TestProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := newWithWriter(Config{Level: "info", Environment: "production"}, &buf)
	require.NoError(t, err)

	l.Info("hello", "user", "u1")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"user":"u1"`)
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := newWithWriter(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	l.Info("quiet")
	l.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestFileSinkRotatesThroughLumberjack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	var buf bytes.Buffer
	l, err := newWithWriter(Config{Level: "info", File: path}, &buf)
	require.NoError(t, err)

	l.Info("to-file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to-file")
	assert.Contains(t, buf.String(), "to-file")
}

func TestInitAndL(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		once = sync.Once{}
		global = nil
		slog.SetDefault(prev)
	})

	assert.Equal(t, slog.Default(), L())

	l, err := Init(Config{Level: "debug", Environment: "dev"})
	require.NoError(t, err)
	assert.Same(t, l, L())

	again, err := Init(Config{Level: "error", Environment: "prod"})
	require.NoError(t, err)
	assert.Same(t, l, again)
}
