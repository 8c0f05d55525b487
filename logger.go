package satangles

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with satangles-specific field helpers.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithFunction adds the cached-function name to the logger.
func (l *Logger) WithFunction(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("function", name),
	}
}

// WithFingerprint adds the cache fingerprint to the logger.
func (l *Logger) WithFingerprint(fp string) *Logger {
	return &Logger{
		Logger: l.Logger.With("fingerprint", fp),
	}
}
