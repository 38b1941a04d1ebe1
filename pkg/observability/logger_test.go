package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates text logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Output: &buf})
		require.NotNil(t, logger)

		logger.Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("creates JSON logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, JSON: true, Output: &buf})

		logger.Info("test message", "key", "value")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "test message", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelWarn, Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
	})

	t.Run("adds service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{JSON: true, Output: &buf, Service: "calsync-test", Version: "1.0.0"})

		logger.Info("test")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "calsync-test", logEntry["service"])
		assert.Equal(t, "1.0.0", logEntry["version"])
	})

	t.Run("adds scope from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{JSON: true, Output: &buf}).With("extra", "attr")

		ctx := WithCorrelationID(context.Background(), "corr-123")
		ctx = WithOperation(ctx, "provider.sync")
		ctx = WithProvider(ctx, "google")
		logger.InfoContext(ctx, "sync started")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "corr-123", logEntry[CorrelationIDKey])
		assert.Equal(t, "provider.sync", logEntry[OperationKey])
		assert.Equal(t, "google", logEntry[ProviderKey])
		assert.Equal(t, "attr", logEntry["extra"])
	})

	t.Run("omits empty scope", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger(LogConfig{JSON: true, Output: &buf}).Info("plain")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.NotContains(t, logEntry, CorrelationIDKey)
		assert.NotContains(t, logEntry, ProviderKey)
	})
}

func TestLogConfigs(t *testing.T) {
	cli := CLILogConfig("1.2.3")
	assert.Equal(t, slog.LevelWarn, cli.Level)
	assert.False(t, cli.JSON)
	assert.Equal(t, "calsync", cli.Service)
	assert.Equal(t, "1.2.3", cli.Version)

	daemon := DaemonLogConfig("1.2.3")
	assert.Equal(t, slog.LevelInfo, daemon.Level)
	assert.True(t, daemon.JSON)
	assert.True(t, daemon.AddSource)
}

func TestLogConfigOverride(t *testing.T) {
	base := CLILogConfig("dev")

	cfg := base.Override("debug", "json")
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)

	kept := cfg.Override("", "")
	assert.Equal(t, cfg, kept)

	assert.False(t, cfg.Override("", "TEXT").JSON)
	assert.Equal(t, slog.LevelWarn, base.Level)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, OperationFromContext(context.Background()))
}

func TestScopeCopiesOnWrite(t *testing.T) {
	base := WithCorrelationID(context.Background(), "corr-1")
	google := WithProvider(base, "google")
	outlook := WithProvider(base, "outlook")

	assert.Equal(t, "corr-1", CorrelationIDFromContext(google))
	assert.Equal(t, "google", ProviderFromContext(google))
	assert.Equal(t, "outlook", ProviderFromContext(outlook))
	assert.Empty(t, ProviderFromContext(base))
}
