package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"browserboot/application"
	"browserboot/domain/launch"
)

// profileView is the printed form of a resolved profile.
type profileView struct {
	Mode           string         `yaml:"mode"`
	Headless       bool           `yaml:"headless"`
	StartMaximized bool           `yaml:"start_maximized"`
	BinaryPath     string         `yaml:"binary_path,omitempty"`
	Prefs          map[string]any `yaml:"prefs"`
	Args           []string       `yaml:"args"`
}

func newProfilesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles [mode]",
		Short: "Print the resolved launch profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(c, args)
		},
	}
}

func runProfiles(c *cli, args []string) error {
	registry, err := application.LoadProfiles(c.settings.ProfilesDir)
	if err != nil {
		return err
	}

	modes := registry.Modes()
	if len(args) == 1 {
		mode, err := launch.ParseMode(args[0])
		if err != nil {
			return err
		}
		modes = []launch.Mode{mode}
	}

	overrides := launch.Overrides{BinaryPath: c.settings.CIBinaryPath(os.LookupEnv)}

	views := make([]profileView, 0, len(modes))
	for _, mode := range modes {
		p, err := registry.Resolve(mode, overrides)
		if err != nil {
			return err
		}
		views = append(views, profileView{
			Mode:           p.Mode.String(),
			Headless:       p.Headless,
			StartMaximized: p.StartMaximized,
			BinaryPath:     p.BinaryPath,
			Prefs:          p.Prefs,
			Args:           p.FlagArgs(),
		})
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("failed to print profiles: %w", err)
	}
	return nil
}
