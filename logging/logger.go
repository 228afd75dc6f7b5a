// Package logging provides a small abstraction over log/slog so the rest of
// the codebase depends on a minimal Logger interface. Callers can plug any
// structured logger; the built-in constructors cover JSON/text slog handlers
// plus a no-op implementation for tests.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the minimal structured logging interface used across packages.
// Arguments follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement Logger.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger { return &SlogAdapter{Logger: logger} }

// NewDefaultLogger creates a Logger backed by slog.Default().
func NewDefaultLogger() Logger { return NewSlogAdapter(slog.Default()) }

// Config controls construction of the default structured logger.
type Config struct {
	Level     slog.Level
	Format    string // "json" (default) or "text"
	Output    io.Writer
	AddSource bool
}

// New builds a Logger from cfg; a nil cfg yields JSON at info level on stdout.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// WithSession returns a logger that attaches the session id to every entry.
func WithSession(l Logger, sessionID string) Logger {
	if sa, ok := l.(*SlogAdapter); ok {
		return &SlogAdapter{Logger: sa.Logger.With("session_id", sessionID)}
	}
	return &fieldsLogger{inner: l, fields: []any{"session_id", sessionID}}
}

// fieldsLogger prepends fixed key/value pairs to every entry of an arbitrary
// Logger implementation.
type fieldsLogger struct {
	inner  Logger
	fields []any
}

func (f *fieldsLogger) Debug(msg string, args ...any) { f.inner.Debug(msg, f.merge(args)...) }
func (f *fieldsLogger) Info(msg string, args ...any)  { f.inner.Info(msg, f.merge(args)...) }
func (f *fieldsLogger) Warn(msg string, args ...any)  { f.inner.Warn(msg, f.merge(args)...) }
func (f *fieldsLogger) Error(msg string, args ...any) { f.inner.Error(msg, f.merge(args)...) }

func (f *fieldsLogger) merge(args []any) []any {
	merged := make([]any, 0, len(f.fields)+len(args))
	merged = append(merged, f.fields...)
	return append(merged, args...)
}

// LogToolCall records one tool invocation outcome at the appropriate level.
func LogToolCall(l Logger, tool, requestID string, dur time.Duration, err error) {
	if err != nil {
		l.Error("tool.call.failed", "tool", tool, "request_id", requestID, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("tool.call.success", "tool", tool, "request_id", requestID, "duration_ms", dur.Milliseconds())
}

// LogReasonerStep records one reasoner invocation outcome.
func LogReasonerStep(l Logger, provider string, turns int, dur time.Duration, err error) {
	if err != nil {
		l.Error("reasoner.step.failed", "provider", provider, "turns", turns, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("reasoner.step.complete", "provider", provider, "turns", turns, "duration_ms", dur.Milliseconds())
}

// NoOpLogger discards all log messages. Useful for tests.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}
