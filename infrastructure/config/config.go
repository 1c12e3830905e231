// Package config loads application settings from defaults, an optional YAML
// file and BROWSERBOOT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
	"browserboot/infrastructure/logging"
)

// DefaultCIBinaryEnv names the variable holding the CI agent's browser binary.
const DefaultCIBinaryEnv = "ChromeWebDriver"

// Config is the full application configuration.
type Config struct {
	Engine          string        `yaml:"engine"`
	Mode            string        `yaml:"mode"`
	MaxAttempts     int           `yaml:"max_attempts"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`

	// CIBinaryEnv is the environment variable read for the ci-agent binary path.
	CIBinaryEnv string `yaml:"ci_binary_env"`

	// ProfilesDir replaces the embedded launch profiles when set.
	ProfilesDir string `yaml:"profiles_dir"`

	Browser BrowserConfig `yaml:"browser"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// BrowserConfig holds engine settings shared by all modes.
type BrowserConfig struct {
	WindowWidth    int    `yaml:"window_width"`
	WindowHeight   int    `yaml:"window_height"`
	MuteAudio      bool   `yaml:"mute_audio"`
	HideScrollbars bool   `yaml:"hide_scrollbars"`
	ProfileRoot    string `yaml:"profile_root"`
	DriverPath     string `yaml:"driver_path"`
	DriverPort     int    `yaml:"driver_port"`
	RemoteURL      string `yaml:"remote_url"`
}

// HistoryConfig controls run recording in MongoDB.
type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	MongoURI string `yaml:"mongo_uri"`
	Database string `yaml:"database"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Dir       string `yaml:"dir"`
	Console   bool   `yaml:"console"`
	AddSource bool   `yaml:"add_source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	driver := browser.DefaultDriverConfig()

	return &Config{
		Engine:          browser.EngineChromeDP,
		Mode:            launch.ModeStandard.String(),
		MaxAttempts:     3,
		PageLoadTimeout: 30 * time.Second,
		CIBinaryEnv:     DefaultCIBinaryEnv,
		Browser: BrowserConfig{
			WindowWidth:    driver.WindowWidth,
			WindowHeight:   driver.WindowHeight,
			MuteAudio:      driver.MuteAudio,
			HideScrollbars: driver.HideScrollbars,
			DriverPort:     driver.DriverPort,
		},
		History: HistoryConfig{
			MongoURI: "mongodb://localhost:27017",
			Database: "browserboot",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any,
// and then with the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be corrected later.
func (c *Config) Validate() error {
	var errs []error

	if !validEngine(c.Engine) {
		errs = append(errs, fmt.Errorf("%w: %q", browser.ErrUnknownEngine, c.Engine))
	}
	if _, err := launch.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.PageLoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("page_load_timeout must be positive, got %s", c.PageLoadTimeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LaunchMode returns the configured default mode.
func (c *Config) LaunchMode() (launch.Mode, error) {
	return launch.ParseMode(c.Mode)
}

// CIBinaryPath reads the ci-agent browser binary from the variable named by
// CIBinaryEnv. It returns "" when the variable is unset.
func (c *Config) CIBinaryPath(lookup func(string) (string, bool)) string {
	name := c.CIBinaryEnv
	if name == "" {
		name = DefaultCIBinaryEnv
	}
	v, _ := lookup(name)
	return v
}

// DriverConfig converts the browser section for the launchers.
func (c *Config) DriverConfig() *browser.DriverConfig {
	return &browser.DriverConfig{
		WindowWidth:    c.Browser.WindowWidth,
		WindowHeight:   c.Browser.WindowHeight,
		MuteAudio:      c.Browser.MuteAudio,
		HideScrollbars: c.Browser.HideScrollbars,
		ProfileRoot:    c.Browser.ProfileRoot,
		DriverPath:     c.Browser.DriverPath,
		DriverPort:     c.Browser.DriverPort,
		RemoteURL:      c.Browser.RemoteURL,
	}
}

// LoggingConfig converts the log section for logging.Setup.
func (c *Config) LoggingConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Dir = c.Log.Dir
	lc.Console = c.Log.Console
	lc.AddSource = c.Log.AddSource
	return lc, nil
}

func validEngine(name string) bool {
	for _, e := range browser.Engines() {
		if e == name {
			return true
		}
	}
	return false
}
