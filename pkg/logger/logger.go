package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a thin wrapper around slog shared by all packages so that
// callers never depend on the handler configuration directly.
type Logger struct {
	s *slog.Logger
}

// New creates a text logger writing to stderr at the given level.
// Unknown level strings fall back to "info".
func New(level string) *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a logger with the given key/value pairs attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{s: l.s.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.s.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.s.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.s.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.s.Error(msg, args...) }
