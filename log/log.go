// Package log provides structured logging for the simulator. It wraps
// log/slog with per-module child loggers, a replaceable process-wide default
// and attribute helpers for 32-bit machine values.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is used by components that were not given a logger.
var defaultLogger = New(os.Stderr, slog.LevelInfo)

// New creates a Logger that writes JSON records at or above level to w.
func New(w io.Writer, level slog.Level) *Logger {
	return NewWithHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewWithHandler creates a Logger backed by h. The CLI uses it to install a
// terminal handler.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return NewWithHandler(slog.DiscardHandler)
}

// SetDefault replaces the process-wide default logger. nil is ignored.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the process-wide default logger. Loggers derived from it
// with Module keep the handler that was current at derivation time.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger tagged with a "module" attribute: cpu,
// loader, console or cli.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Enabled reports whether records at level would be emitted. The per-step
// trace in the CPU checks this before formatting anything.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.inner.Enabled(context.Background(), level)
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Hex32 returns an attribute rendering v as 0x-prefixed, zero-padded hex,
// the form used for addresses and instruction words in every log line.
func Hex32(key string, v uint32) slog.Attr {
	return slog.String(key, fmt.Sprintf("0x%08x", v))
}
