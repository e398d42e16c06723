// Package logging provides the structured logger used by operations,
// serialization and the command line tool.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with consistent field names for map operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
// Unknown strings map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithOperation adds an operation field to the logger.
func (l *Logger) WithOperation(op string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op),
	}
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key []int32) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithStore adds a blob store field to the logger.
func (l *Logger) WithStore(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", kind),
	}
}

// LogOperation logs the outcome of an operation over a map.
func (l *Logger) LogOperation(ctx context.Context, op string, blocks int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"blocks", blocks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"blocks", blocks,
			"elapsed", elapsed,
		)
	}
}

// LogSave logs a serialized map being written.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "map saved",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a serialized map being read.
func (l *Logger) LogLoad(ctx context.Context, name string, blocks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "map loaded",
			"name", name,
			"blocks", blocks,
		)
	}
}
