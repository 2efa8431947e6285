// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"libris-cli/internal/logging"
	"libris-cli/internal/scripts"
)

// newLoadCommand creates `libris load`.
func newLoadCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Register every script with Redis",
		Long: `Discover the scripts in the script directory, compose each with the
library prelude and send SCRIPT LOAD for all of them. Nothing is
registered if any script is rejected.`,
		Args: cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd.Context(), app)
		}),
	}
}

func runLoad(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	reg, closeStore, err := app.openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	width := nameWidth(reg.Names())
	for _, name := range reg.Names() {
		s, _ := reg.Lookup(name)
		_, _ = fmt.Fprintf(app.stdout, "%s %s %s\n",
			SuccessStyle.Render("✓"),
			NameStyle.Render(pad(name, width)),
			HashStyle.Render(s.Hash))
	}

	_, _ = fmt.Fprintf(app.stdout, "\n%s\n", SubtitleStyle.Render(
		fmt.Sprintf("Registered %d %s from %s", reg.Len(), plural(reg.Len(), "script", "scripts"), reg.Dir())))
	return nil
}

// newListCommand creates `libris list`.
func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List discovered scripts",
		Long: `List the scripts found in the script directory with the hash their
composed body will have in Redis. Redis is not contacted.`,
		Args: cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), app)
		}),
	}
}

func runList(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := app.compose(ctx, cfg)
	if err != nil {
		return err
	}

	if len(c.Names) == 0 {
		_, _ = fmt.Fprintln(app.stdout, SubtitleStyle.Render("No scripts found in "+c.Dir))
		return nil
	}

	width := nameWidth(c.Names)
	for _, name := range c.Names {
		s := c.Scripts[name]
		_, _ = fmt.Fprintf(app.stdout, "%s  %s  %s\n",
			NameStyle.Render(pad(name, width)),
			HashStyle.Render(s.Hash),
			SubtitleStyle.Render(s.Source.Path))
	}
	return nil
}

// newShowCommand creates `libris show <name>`.
func newShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a script's composed body",
		Long: `Print the exact text libris sends to Redis for a script: the library
prelude, a newline, then the script file. Redis is not contacted.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), app, args[0])
		}),
		ValidArgsFunction: app.completeScriptNames,
	}
}

func runShow(ctx context.Context, app *App, name string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := app.compose(ctx, cfg)
	if err != nil {
		return err
	}

	s, ok := c.Scripts[name]
	if !ok {
		return notFoundError(&scripts.ScriptNotFoundError{Name: name, Available: c.Names})
	}

	_, _ = io.WriteString(app.stdout, s.Body)
	if !strings.HasSuffix(s.Body, "\n") {
		_, _ = io.WriteString(app.stdout, "\n")
	}
	return nil
}

// newExecCommand creates `libris exec <name> [args...]`.
func newExecCommand(app *App) *cobra.Command {
	var timeout time.Duration

	execCmd := &cobra.Command{
		Use:   "exec <name> [args...]",
		Short: "Run a script by name",
		Long: `Register the scripts with Redis, then run one by name. Every argument
is passed to the script as a key (KEYS[1], KEYS[2], ...).

Exit status is 2 when the script itself raised an error.`,
		Example: `  libris exec incr_by counter 5
  libris exec --timeout 2s rate_limit user:42`,
		Args: cobra.MinimumNArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), app, args[0], args[1:], timeout)
		}),
		ValidArgsFunction: app.completeScriptNames,
	}

	execCmd.Flags().DurationVar(&timeout, "timeout", 0, "abort if the script has not replied within this duration (0 disables)")

	return execCmd
}

func runExec(ctx context.Context, app *App, name string, args []string, timeout time.Duration) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	reg, closeStore, err := app.openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ctx = logging.WithLogger(ctx, app.logger(cfg))

	evalArgs := make([]any, len(args))
	for i, a := range args {
		evalArgs[i] = a
	}

	reply, err := reg.Execute(ctx, name, evalArgs...)
	if errors.Is(err, redis.Nil) {
		reply, err = nil, nil
	}
	if err != nil {
		return execError(ctx, name, err)
	}

	formatReply(app.stdout, reply)
	return nil
}

// execError classifies a failed Execute. A Redis error reply means the script
// ran and failed, which gets its own exit code.
func execError(ctx context.Context, name string, err error) error {
	if errors.Is(err, scripts.ErrScriptNotFound) {
		return notFoundError(err)
	}

	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		logging.FromContext(ctx).Debug("script raised an error", "name", name, "err", err)
		return &ExitError{Code: ExitScriptError, Err: fmt.Errorf("script %s: %w", name, err)}
	}

	return fmt.Errorf("execute %s: %w", name, err)
}

// completeScriptNames offers discovered script names for the first argument.
func (a *App) completeScriptNames(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := a.loadConfig(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	c, err := scripts.Compose(cfg.Scripts.Dir, registryOptions(cfg, logging.Discard())...)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.Names, cobra.ShellCompDirectiveNoFileComp
}

// formatReply prints a script reply the way redis-cli does.
func formatReply(w io.Writer, reply any) {
	writeReply(w, reply, "", true)
}

func writeReply(w io.Writer, reply any, indent string, top bool) {
	switch v := reply.(type) {
	case nil:
		_, _ = fmt.Fprintln(w, "(nil)")
	case int64:
		_, _ = fmt.Fprintf(w, "(integer) %d\n", v)
	case float64:
		_, _ = fmt.Fprintf(w, "(double) %g\n", v)
	case bool:
		_, _ = fmt.Fprintf(w, "(boolean) %t\n", v)
	case string:
		if top {
			_, _ = fmt.Fprintln(w, v)
			return
		}
		_, _ = fmt.Fprintf(w, "%q\n", v)
	case error:
		_, _ = fmt.Fprintf(w, "(error) %s\n", v.Error())
	case []any:
		if len(v) == 0 {
			_, _ = fmt.Fprintln(w, "(empty array)")
			return
		}
		for i, item := range v {
			label := fmt.Sprintf("%d) ", i+1)
			if i > 0 {
				_, _ = io.WriteString(w, indent)
			}
			_, _ = io.WriteString(w, label)
			writeReply(w, item, indent+strings.Repeat(" ", len(label)), false)
		}
	case map[any]any:
		if len(v) == 0 {
			_, _ = fmt.Fprintln(w, "(empty hash)")
			return
		}
		keys := slices.SortedFunc(maps.Keys(v), func(a, b any) int {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		})
		for i, k := range keys {
			label := fmt.Sprintf("%d# ", i+1)
			if i > 0 {
				_, _ = io.WriteString(w, indent)
			}
			_, _ = fmt.Fprintf(w, "%s%q => ", label, fmt.Sprint(k))
			writeReply(w, v[k], indent+strings.Repeat(" ", len(label)), false)
		}
	default:
		_, _ = fmt.Fprintf(w, "%v\n", v)
	}
}

func nameWidth(names []string) int {
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	return width
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
