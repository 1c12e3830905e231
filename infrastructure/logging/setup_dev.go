//go:build !prod

package logging

import (
	"log/slog"
	"os"
)

// Setup initializes logging for development mode.
// Logs go to os.Stderr, as text unless cfg.Format asks for JSON, so command
// output on stdout stays clean. The returned close function is a no-op.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := slog.New(newHandler(os.Stderr, cfg, FormatText))
	setGlobal(logger)

	return logger, func() error { return nil }, nil
}
