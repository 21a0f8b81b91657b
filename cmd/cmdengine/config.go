// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/cmdengine/internal/config"
)

func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect cmdengine configuration",
		Long: `Inspect cmdengine configuration.

Configuration is read from config.cue or config.toml in:
  - Linux: ~/.config/cmdengine/
  - macOS: ~/Library/Application Support/cmdengine/
  - Windows: %APPDATA%\cmdengine\

CMDENGINE_* environment variables override file values, e.g.
CMDENGINE_ENGINE_SEPARATOR or CMDENGINE_UI_VERBOSE.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			data, err := cfg.TOML()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = app.stdout.Write(data)
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return err
			}
			if loaded.Path != "" {
				fmt.Fprintln(app.stdout, loaded.Path)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("(using defaults; looked in "+dir+" and the working directory)"))
			return nil
		},
	})

	return cfgCmd
}
