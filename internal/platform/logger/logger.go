package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/taskmaster/internal/config"
)

// ParseLevel maps a configured level name onto a slog.Level. The second return
// value is false when the name is not recognised, in which case LevelInfo is
// returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New builds a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger on stdout,
// installs it as the slog default and returns it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return setup(os.Stdout, cfg)
}

func setup(w io.Writer, cfg config.ServerConfig) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.LogLevel)

	logger := New(w, level)
	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", cfg.LogLevel),
			slog.String("default_level", "info"))
	}

	slog.SetDefault(logger)
	return logger, nil
}
