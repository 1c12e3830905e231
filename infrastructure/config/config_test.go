package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine != browser.EngineChromeDP {
		t.Errorf("Engine = %q, want %q", cfg.Engine, browser.EngineChromeDP)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.PageLoadTimeout != 30*time.Second {
		t.Errorf("PageLoadTimeout = %s, want 30s", cfg.PageLoadTimeout)
	}
	if cfg.CIBinaryEnv != "ChromeWebDriver" {
		t.Errorf("CIBinaryEnv = %q, want ChromeWebDriver", cfg.CIBinaryEnv)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned error for defaults: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browserboot.yaml")
	data := []byte(`
engine: selenium
mode: headless
max_attempts: 5
page_load_timeout: 45s
browser:
  remote_url: http://grid.internal:4444/wd/hub
history:
  enabled: true
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Engine != "selenium" || cfg.Mode != "headless" {
		t.Errorf("Engine = %q, Mode = %q", cfg.Engine, cfg.Mode)
	}
	if cfg.MaxAttempts != 5 || cfg.PageLoadTimeout != 45*time.Second {
		t.Errorf("MaxAttempts = %d, PageLoadTimeout = %s", cfg.MaxAttempts, cfg.PageLoadTimeout)
	}
	if cfg.Browser.RemoteURL != "http://grid.internal:4444/wd/hub" {
		t.Errorf("RemoteURL = %q", cfg.Browser.RemoteURL)
	}
	// Unset keys keep their defaults.
	if cfg.Browser.WindowWidth != 1920 || cfg.History.Database != "browserboot" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if !cfg.History.Enabled {
		t.Error("history.enabled not applied")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() accepted a missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"BROWSERBOOT_ENGINE":            "playwright",
		"BROWSERBOOT_MAX_ATTEMPTS":      "4",
		"BROWSERBOOT_PAGE_LOAD_TIMEOUT": "10s",
		"BROWSERBOOT_HISTORY_ENABLED":   "true",
		"BROWSERBOOT_LOG_LEVEL":         "warn",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() returned error: %v", err)
	}

	if cfg.Engine != "playwright" {
		t.Errorf("Engine = %q, want playwright", cfg.Engine)
	}
	if cfg.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", cfg.MaxAttempts)
	}
	if cfg.PageLoadTimeout != 10*time.Second {
		t.Errorf("PageLoadTimeout = %s, want 10s", cfg.PageLoadTimeout)
	}
	if !cfg.History.Enabled {
		t.Error("HistoryEnabled not applied")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Mode != "standard" {
		t.Errorf("Mode = %q, want untouched default", cfg.Mode)
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(mapLookup(map[string]string{"BROWSERBOOT_MAX_ATTEMPTS": "many"})); err == nil {
		t.Error("ApplyEnv() accepted a non-numeric attempt count")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Engine = "lynx" }},
		{"unknown mode", func(c *Config) { c.Mode = "firefox" }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"zero timeout", func(c *Config) { c.PageLoadTimeout = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() returned nil")
			}
		})
	}

	cfg := Default()
	cfg.Engine = "lynx"
	if err := cfg.Validate(); !errors.Is(err, browser.ErrUnknownEngine) {
		t.Errorf("Validate() error = %v, want ErrUnknownEngine", err)
	}
}

func TestCIBinaryPath(t *testing.T) {
	cfg := Default()
	lookup := mapLookup(map[string]string{
		"ChromeWebDriver": "path/to/bin",
		"AGENT_CHROME":    "/opt/chrome",
	})

	if got := cfg.CIBinaryPath(lookup); got != "path/to/bin" {
		t.Errorf("CIBinaryPath() = %q, want path/to/bin", got)
	}

	cfg.CIBinaryEnv = "AGENT_CHROME"
	if got := cfg.CIBinaryPath(lookup); got != "/opt/chrome" {
		t.Errorf("CIBinaryPath() = %q, want /opt/chrome", got)
	}

	cfg.CIBinaryEnv = "UNSET"
	if got := cfg.CIBinaryPath(lookup); got != "" {
		t.Errorf("CIBinaryPath() = %q, want empty", got)
	}
}

func TestLaunchMode(t *testing.T) {
	cfg := Default()
	cfg.Mode = "CI"

	mode, err := cfg.LaunchMode()
	if err != nil || mode != launch.ModeCIAgent {
		t.Errorf("LaunchMode() = %v, %v", mode, err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Browser.RemoteURL = "http://grid:4444/wd/hub"
	cfg.Log.Level = "debug"
	cfg.Log.Format = "JSON"
	cfg.Log.Console = true

	dc := cfg.DriverConfig()
	if dc.RemoteURL != "http://grid:4444/wd/hub" || dc.WindowWidth != 1920 {
		t.Errorf("DriverConfig() = %+v", dc)
	}

	lc, err := cfg.LoggingConfig()
	if err != nil {
		t.Fatalf("LoggingConfig() returned error: %v", err)
	}
	if lc.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", lc.Level)
	}
	if lc.Format != "json" || !lc.Console {
		t.Errorf("Format = %q, Console = %v", lc.Format, lc.Console)
	}
}
