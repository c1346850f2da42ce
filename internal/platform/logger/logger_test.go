package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{" warning ", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("writes json at configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := setup(&buf, config.ServerConfig{LogLevel: "warn"})
		require.NoError(t, err)
		require.NotNil(t, l)

		l.Info("hidden")
		l.Warn("shown", slog.String("component", "test"))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "test", entry["component"])
	})

	t.Run("installs default logger", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := setup(&buf, config.ServerConfig{LogLevel: "debug"})
		require.NoError(t, err)
		assert.Same(t, l, slog.Default())

		slog.Debug("via default")
		assert.Contains(t, buf.String(), "via default")
	})

	t.Run("invalid level falls back to info with warning", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := setup(&buf, config.ServerConfig{LogLevel: "chatty"})
		require.NoError(t, err)

		assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
		assert.Contains(t, buf.String(), "invalid log level configured")
		assert.Contains(t, buf.String(), "chatty")
	})
}

func TestFromContextOrDefault(t *testing.T) {
	defaultLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{
			name:     "nil_context_returns_default",
			ctx:      nil,
			expected: defaultLogger,
		},
		{
			name:     "context_without_logger_returns_default",
			ctx:      context.Background(),
			expected: defaultLogger,
		},
		{
			name:     "context_with_logger_returns_context_logger",
			ctx:      WithLogger(context.Background(), customLogger),
			expected: customLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.expected, FromContextOrDefault(tt.ctx, defaultLogger))
		})
	}
}

func TestWithLogger(t *testing.T) {
	t.Run("valid_logger", func(t *testing.T) {
		customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), customLogger)
		assert.Same(t, customLogger, FromContext(ctx))
	})

	t.Run("missing_logger_uses_slog_default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("nil_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			WithLogger(context.Background(), nil)
		})
	})
}
