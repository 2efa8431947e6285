// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the libris command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "libris",
		Short: "Load and run Redis Lua scripts by name",
		Long: TitleStyle.Render("libris") + SubtitleStyle.Render(" - Load and run Redis Lua scripts by name") + `

libris reads a directory of Lua scripts, prepends the shared library
code found in its lib/ subdirectory, registers every composed script
with Redis and runs them by file name.

` + SubtitleStyle.Render("Layout:") + `
  scripts/
    lib/util.lua        prepended to every script
    rate_limit.lua      runs as 'rate_limit'
    incr_by.lua         runs as 'incr_by'

` + SubtitleStyle.Render("Examples:") + `
  libris list                       List discovered scripts
  libris load                       Register every script with Redis
  libris exec incr_by counter 5     Run 'incr_by' with two keys
  libris show rate_limit            Print the composed body
  libris config show                Show current configuration`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/libris/config.cue)")
	pf.StringVarP(&app.flags.scriptsDir, "scripts", "s", "", "script directory (overrides scripts.dir)")
	pf.StringVar(&app.flags.redisAddr, "redis", "", "Redis address host:port (overrides redis.addr)")

	rootCmd.AddCommand(
		newLoadCommand(app),
		newListCommand(app),
		newShowCommand(app),
		newExecCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with production dependencies.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// runE adapts a handler so ActionableError guidance is rendered before the
// error is handed back to cobra.
func (a *App) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			a.renderError(err)
		}
		return err
	}
}
