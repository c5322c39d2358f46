// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kospack/kospack/internal/config"
	"github.com/kospack/kospack/internal/issue"
)

// newConfigCommand creates the `kospack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kospack configuration",
		Long: `Manage kospack configuration.

Configuration is stored in:
  - Linux: ~/.config/kospack/config.cue
  - macOS: ~/Library/Application Support/kospack/config.cue
  - Windows: %APPDATA%\kospack\config.cue

A config.cue in the working directory is used when the user file is absent.
Every key can be overridden with a KOSPACK_ environment variable, for
example KOSPACK_BUILD_DIR or KOSPACK_UI_VERBOSE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			showConfig(app, cfg, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.flags.configPath
			if path == "" {
				var err error
				if path, err = config.FilePath(""); err != nil {
					return err
				}
			}
			if err := config.CreateDefaultConfig(path, force); err != nil {
				ctx := issue.NewErrorContext().WithOperation("create configuration").WithResource(path)
				if errors.Is(err, config.ErrConfigExists) {
					ctx = ctx.WithSuggestion("Use --force to overwrite the existing file")
				}
				return ctx.Wrap(err).BuildError()
			}
			app.printf("%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			path, err := config.FilePath("")
			if err != nil {
				return err
			}
			app.printf("Config directory: %s\n", dir)
			app.printf("Config file: %s\n", path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			app.printf("%s", config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, cfg *config.Config, path string) {
	valueStyle := SuccessStyle

	app.println(TitleStyle.Render("Current Configuration"))
	app.println()
	if path != "" {
		app.printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		app.printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	app.println()

	app.printf("%s: %s\n", keyStyle.Render("build_dir"), valueStyle.Render(cfg.BuildDir))
	app.printf("%s: %s\n", keyStyle.Render("boot_dir"), valueStyle.Render(cfg.BootDir))
	app.printf("%s: %s\n", keyStyle.Render("installer"), valueStyle.Render(cfg.Installer))
	app.printf("%s: %s\n", keyStyle.Render("jobs"), valueStyle.Render(fmt.Sprint(cfg.Jobs)))

	app.println()
	app.printf("%s:\n", keyStyle.Render("ui"))
	app.printf("  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	app.printf("  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	app.println()
	app.printf("%s:\n", keyStyle.Render("watch"))
	app.printf("  patterns: %s\n", valueStyle.Render(strings.Join(cfg.Watch.Patterns, ", ")))
	app.printf("  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce))
}
