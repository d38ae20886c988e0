// Package logging provides structured logging for the pezzo elevation
// pipeline.
//
// This package uses Go's standard library log/slog for structured, leveled
// logging. All output goes to stderr (or a caller-provided writer); the
// pipeline never writes log records to stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
	// loggerMu protects defaultLogger.
	loggerMu sync.RWMutex
)

func init() {
	// Initialize with a default logger (text to stderr, warn level): a
	// setuid binary should be quiet unless asked otherwise.
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level slog.Level
	// Format is the output format ("text" or "json").
	Format string
	// Output is the log output destination.
	Output io.Writer
}

// NewLogger creates a new structured logger with the given configuration.
func NewLogger(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return slog.New(handler)
}

// SetDefault sets the default global logger.
func SetDefault(logger *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = logger
}

// Default returns the default global logger.
func Default() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// WithUser returns a logger with invoker context.
func WithUser(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("user", name))
}

// WithTarget returns a logger with target-identity context.
func WithTarget(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("target", name))
}

// WithTty returns a logger with controlling-terminal context.
func WithTty(logger *slog.Logger, path string) *slog.Logger {
	return logger.With(slog.String("tty", path))
}

// WithCommand returns a logger with resolved-command context.
func WithCommand(logger *slog.Logger, path string) *slog.Logger {
	return logger.With(slog.String("command", path))
}

// ParseLevel parses a log level string and returns the corresponding
// slog.Level. Valid values: "debug", "info", "warn", "error".
// Returns slog.LevelWarn for invalid values.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Helper functions for common log patterns.

// Info logs an info message using the default logger.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}
