// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"libris-cli/internal/config"
	"libris-cli/internal/issue"
)

// newConfigCommand creates the `libris config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage libris configuration",
		Long: `Manage libris configuration.

Configuration is stored in:
  - Linux: ~/.config/libris/config.cue
  - macOS: ~/Library/Application Support/libris/config.cue
  - Windows: %APPDATA%\libris\config.cue

A config.cue in the working directory is used when none exists there.
Every key can be overridden with LIBRIS_<SECTION>_<KEY>, e.g. LIBRIS_REDIS_ADDR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		}),
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return initConfig(app)
		}),
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app)
		}),
	})

	var schema bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			if schema {
				_, err := io.WriteString(app.stdout, config.Schema())
				return err
			}

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			_, err = io.WriteString(app.stdout, config.GenerateCUE(cfg))
			return err
		}),
	}
	dumpCmd.Flags().BoolVar(&schema, "schema", false, "print the CUE schema config files are validated against")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	keyStyle := NameStyle
	valueStyle := SuccessStyle
	out := app.stdout

	_, _ = fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	_, _ = fmt.Fprintln(out)

	path, found, err := config.FilePath(app.loadOptions())
	if err == nil && found {
		_, _ = fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		_, _ = fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s:\n", keyStyle.Render("redis"))
	_, _ = fmt.Fprintf(out, "  addr: %s\n", valueStyle.Render(cfg.Redis.Addr))
	if cfg.Redis.Username != "" {
		_, _ = fmt.Fprintf(out, "  username: %s\n", valueStyle.Render(cfg.Redis.Username))
	}
	if cfg.Redis.Password != "" {
		_, _ = fmt.Fprintf(out, "  password: %s\n", SubtitleStyle.Render("(set)"))
	}
	_, _ = fmt.Fprintf(out, "  db: %s\n", valueStyle.Render(fmt.Sprint(cfg.Redis.DB)))
	_, _ = fmt.Fprintf(out, "  dial_timeout: %s\n", valueStyle.Render(cfg.Redis.DialTimeout.String()))
	_, _ = fmt.Fprintf(out, "  read_timeout: %s\n", valueStyle.Render(cfg.Redis.ReadTimeout.String()))

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s:\n", keyStyle.Render("scripts"))
	_, _ = fmt.Fprintf(out, "  dir: %s\n", valueStyle.Render(cfg.Scripts.Dir))
	_, _ = fmt.Fprintf(out, "  extension: %s\n", valueStyle.Render(cfg.Scripts.Extension))
	_, _ = fmt.Fprintf(out, "  library_dir: %s\n", valueStyle.Render(cfg.Scripts.LibraryDir))
	_, _ = fmt.Fprintf(out, "  concurrency: %s\n", valueStyle.Render(fmt.Sprint(cfg.Scripts.Concurrency)))

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	_, _ = fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))
	_, _ = fmt.Fprintf(out, "  format: %s\n", valueStyle.Render(string(cfg.Log.Format)))

	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig(app.configDir)
	if err != nil {
		return issue.WrapWithOperation(err, "create config file")
	}

	if !created {
		_, _ = fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("•"), path)
		return nil
	}

	_, _ = fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	path, found, err := config.FilePath(app.loadOptions())
	if err != nil {
		return err
	}

	status := "(not created)"
	if found {
		status = "(exists)"
	}
	_, _ = fmt.Fprintf(app.stdout, "Config file: %s %s\n", path, SubtitleStyle.Render(status))
	return nil
}
