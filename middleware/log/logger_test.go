package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gopher0727/Accounts/config"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return New(zap.New(core)), logs
}

func TestNewLogger(t *testing.T) {
	t.Run("stdout text", func(t *testing.T) {
		l, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout"})
		require.NoError(t, err)
		l.Debug("test debug message")
		assert.NoError(t, l.Close())
	})

	t.Run("file output is JSON", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "accounts.log")
		l, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile})
		require.NoError(t, err)

		l.Info("bot created", zap.Uint64("bot_id", 42), zap.String("username", "Helper"))
		require.NoError(t, l.Close())

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "bot created", entry["message"])
		assert.Equal(t, float64(42), entry["bot_id"])
		assert.Equal(t, "Helper", entry["username"])
		assert.NotEmpty(t, entry["timestamp"])
	})

	t.Run("unwritable file path", func(t *testing.T) {
		_, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestWithContext(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)

	l.InfoContext(WithTraceID(context.Background(), "trace-abc-123"), "with trace")
	l.InfoContext(context.Background(), "without trace")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-abc-123", entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestWithFieldsChaining(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)

	l.WithFields(zap.Uint64("owner_id", 1)).WithTraceID("t-1").Warn("rate limited")

	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, uint64(1), entry.ContextMap()["owner_id"])
	assert.Equal(t, "t-1", entry.ContextMap()["trace_id"])
}
