package config

import (
	"fmt"
	"time"

	"github.com/mstoykov/envconfig"
)

// envConfig mirrors the settings that can be overridden from the environment.
// Unset variables leave their field nil.
type envConfig struct {
	Engine          *string        `envconfig:"BROWSERBOOT_ENGINE"`
	Mode            *string        `envconfig:"BROWSERBOOT_MODE"`
	MaxAttempts     *int           `envconfig:"BROWSERBOOT_MAX_ATTEMPTS"`
	PageLoadTimeout *time.Duration `envconfig:"BROWSERBOOT_PAGE_LOAD_TIMEOUT"`
	CIBinaryEnv     *string        `envconfig:"BROWSERBOOT_CI_BINARY_ENV"`
	ProfilesDir     *string        `envconfig:"BROWSERBOOT_PROFILES_DIR"`

	WindowWidth  *int    `envconfig:"BROWSERBOOT_WINDOW_WIDTH"`
	WindowHeight *int    `envconfig:"BROWSERBOOT_WINDOW_HEIGHT"`
	ProfileRoot  *string `envconfig:"BROWSERBOOT_PROFILE_ROOT"`
	DriverPath   *string `envconfig:"BROWSERBOOT_DRIVER_PATH"`
	DriverPort   *int    `envconfig:"BROWSERBOOT_DRIVER_PORT"`
	RemoteURL    *string `envconfig:"BROWSERBOOT_REMOTE_URL"`

	HistoryEnabled *bool   `envconfig:"BROWSERBOOT_HISTORY_ENABLED"`
	MongoURI       *string `envconfig:"BROWSERBOOT_MONGO_URI"`
	MongoDatabase  *string `envconfig:"BROWSERBOOT_MONGO_DATABASE"`

	LogLevel   *string `envconfig:"BROWSERBOOT_LOG_LEVEL"`
	LogFormat  *string `envconfig:"BROWSERBOOT_LOG_FORMAT"`
	LogDir     *string `envconfig:"BROWSERBOOT_LOG_DIR"`
	LogConsole *bool   `envconfig:"BROWSERBOOT_LOG_CONSOLE"`
}

// ApplyEnv overlays the variables found by lookup onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var env envConfig
	if err := envconfig.Process("", &env, lookup); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setString(&c.Engine, env.Engine)
	setString(&c.Mode, env.Mode)
	setInt(&c.MaxAttempts, env.MaxAttempts)
	if env.PageLoadTimeout != nil {
		c.PageLoadTimeout = *env.PageLoadTimeout
	}
	setString(&c.CIBinaryEnv, env.CIBinaryEnv)
	setString(&c.ProfilesDir, env.ProfilesDir)

	setInt(&c.Browser.WindowWidth, env.WindowWidth)
	setInt(&c.Browser.WindowHeight, env.WindowHeight)
	setString(&c.Browser.ProfileRoot, env.ProfileRoot)
	setString(&c.Browser.DriverPath, env.DriverPath)
	setInt(&c.Browser.DriverPort, env.DriverPort)
	setString(&c.Browser.RemoteURL, env.RemoteURL)

	if env.HistoryEnabled != nil {
		c.History.Enabled = *env.HistoryEnabled
	}
	setString(&c.History.MongoURI, env.MongoURI)
	setString(&c.History.Database, env.MongoDatabase)

	setString(&c.Log.Level, env.LogLevel)
	setString(&c.Log.Format, env.LogFormat)
	setString(&c.Log.Dir, env.LogDir)
	if env.LogConsole != nil {
		c.Log.Console = *env.LogConsole
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
