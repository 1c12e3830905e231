//go:build prod

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes logging for production mode.
// Logs are written as JSON to a rotating browserboot.log; cfg.Console mirrors
// them to stderr for CI job output.
// Returns the configured logger, a close function for the log file, and any error.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	dir := cfg.Dir
	if dir == "" {
		dir = DefaultLogDir()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "browserboot.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	var w io.Writer = lj
	if cfg.Console {
		w = io.MultiWriter(lj, os.Stderr)
	}

	logger := slog.New(newHandler(w, cfg, FormatJSON))
	setGlobal(logger)

	return logger, lj.Close, nil
}
