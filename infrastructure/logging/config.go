// Package logging provides a unified logging setup with build-tag-based
// prod/dev split: prod writes to rotating log files, dev writes to stderr only.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum log level to emit.
	Level slog.Level
	// Dir is the directory for log files (prod only).
	// If empty, defaults to os.UserCacheDir()/browserboot/logs.
	Dir string
	// MaxSizeMB is the maximum size in megabytes of a single log file before rotation.
	MaxSizeMB int
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int
	// MaxAgeDays is the maximum number of days to retain old log files.
	MaxAgeDays int
	// Compress determines if rotated log files should be compressed.
	Compress bool
	// AddSource adds source file:line to log entries.
	AddSource bool
	// Format is FormatText or FormatJSON. Empty selects the build's default:
	// text on stderr for dev, JSON in files for prod.
	Format string
	// Console also copies prod log output to stderr.
	Console bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		Dir:        "", // resolved in Setup
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
		AddSource:  false,
	}
}

// ParseLevel converts a level name (debug, info, warn, error) into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat validates a format name. Empty is allowed and means the default.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}

// newHandler builds the slog handler for w. fallback applies when cfg.Format is empty.
func newHandler(w io.Writer, cfg *Config, fallback string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	format := cfg.Format
	if format == "" {
		format = fallback
	}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// DefaultLogDir returns the default log directory path.
// Tries os.UserCacheDir, then os.TempDir.
func DefaultLogDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "browserboot", "logs")
}

// --- Global logger access ---

var globalLogger *slog.Logger

// L returns the global logger. If Setup has not been called, returns slog.Default().
func L() *slog.Logger {
	if globalLogger != nil {
		return globalLogger
	}
	return slog.Default()
}

// setGlobal sets the package-level logger and also slog.SetDefault.
func setGlobal(logger *slog.Logger) {
	globalLogger = logger
	slog.SetDefault(logger)
}

// --- Context-based logging ---

type ctxKey struct{}

// With returns a new context that carries the given logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From extracts the logger from context. If none is present, returns L().
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return L()
}

// WithAttrs returns a new context carrying a logger enriched with the given attributes.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	return With(ctx, From(ctx).With(args...))
}
