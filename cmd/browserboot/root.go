package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"browserboot/infrastructure/config"
	"browserboot/infrastructure/logging"
)

// cli carries state shared by all commands.
type cli struct {
	configPath string
	logLevel   string

	settings *config.Config
	logger   *slog.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "browserboot",
		Short: "Start a browser for end-to-end tests",
		Long: `browserboot launches Chrome in one of three modes (standard, ci-agent,
headless), clears cookies, opens a start URL and maximizes the window,
retrying the whole sequence when the browser fails to come up.

Settings are read from an optional YAML file and BROWSERBOOT_* environment
variables. The ci-agent browser binary is taken from the variable named by
ci_binary_env (ChromeWebDriver by default).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLog != nil {
				return c.closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newOpenCmd(c),
		newProfilesCmd(c),
		newHistoryCmd(c),
	)

	return cmd
}

// setup loads configuration and initializes logging.
func (c *cli) setup() error {
	settings, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		settings.Log.Level = c.logLevel
	}

	logCfg, err := settings.LoggingConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}

	c.settings = settings
	c.logger = logger
	c.closeLog = closeLog
	return nil
}
