// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"libris-cli/internal/config"
	"libris-cli/internal/discovery"
	"libris-cli/internal/issue"
	"libris-cli/internal/logging"
	"libris-cli/internal/scripts"
	"libris-cli/internal/store"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every cobra handler receives the App and goes through it for
	// configuration, store access and output.
	App struct {
		Config      ConfigProvider
		Stores      StoreFactory
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
		issueStyle  string
		configDir   string
		flags       globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Stores      StoreFactory
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer

		// IssueStyle is the glamour style used for catalog issues ("auto" by default).
		IssueStyle string
		// ConfigDir replaces the platform config directory when set.
		ConfigDir  string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// ScriptStore is the store surface the CLI needs: the registry's Store plus
	// connection management.
	ScriptStore interface {
		scripts.Store
		Ping(ctx context.Context) error
		Close() error
	}

	// StoreFactory opens a store for the given connection settings.
	StoreFactory func(cfg config.RedisConfig) ScriptStore

	// DiagnosticRenderer renders discovery diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, w io.Writer)
	}

	// globalFlags holds persistent root flag values.
	globalFlags struct {
		configPath string
		verbose    bool
		scriptsDir string
		redisAddr  string
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stores == nil {
		deps.Stores = func(cfg config.RedisConfig) ScriptStore { return store.New(cfg) }
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}
	if deps.IssueStyle == "" {
		deps.IssueStyle = "auto"
	}

	return &App{
		Config:      deps.Config,
		Stores:      deps.Stores,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		issueStyle:  deps.IssueStyle,
		configDir:   deps.ConfigDir,
	}
}

// loadConfig loads configuration and applies root flag overrides on top.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && ae.Issue == 0 {
			ae.Issue = issue.ConfigLoadFailedId
		}
		return nil, err
	}

	if a.flags.scriptsDir != "" {
		cfg.Scripts.Dir = a.flags.scriptsDir
	}
	if a.flags.redisAddr != "" {
		cfg.Redis.Addr = a.flags.redisAddr
	}
	if a.flags.verbose {
		cfg.Log.Level = config.LogLevelDebug
	}
	return cfg, nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath, ConfigDirPath: a.configDir}
}

// logger returns a logger writing to stderr per cfg.
func (a *App) logger(cfg *config.Config) *log.Logger {
	return logging.New(cfg.Log, a.stderr)
}

// registryOptions maps script settings onto registry options.
func registryOptions(cfg *config.Config, logger *log.Logger) []scripts.Option {
	return []scripts.Option{
		scripts.WithLogger(logger),
		scripts.WithExtension(cfg.Scripts.Extension),
		scripts.WithLibraryDir(cfg.Scripts.LibraryDir),
		scripts.WithConcurrency(cfg.Scripts.Concurrency),
	}
}

// compose reads the script directory without touching the store.
func (a *App) compose(ctx context.Context, cfg *config.Config) (*scripts.Composition, error) {
	c, err := scripts.Compose(cfg.Scripts.Dir, registryOptions(cfg, a.logger(cfg))...)
	if err != nil {
		return nil, scriptDirError(cfg.Scripts.Dir, err)
	}
	a.Diagnostics.Render(ctx, c.Diagnostics, a.stderr)
	return c, nil
}

// openRegistry connects to the store and builds a registry from the script
// directory. The returned close function releases the store connection.
func (a *App) openRegistry(ctx context.Context, cfg *config.Config) (*scripts.Registry, func(), error) {
	logger := a.logger(cfg)
	s := a.Stores(cfg.Redis)
	closeStore := func() {
		if err := s.Close(); err != nil {
			logger.Debug("closing store", "err", err)
		}
	}

	if err := s.Ping(ctx); err != nil {
		closeStore()
		return nil, nil, issue.NewErrorContext().
			WithOperation("connect to Redis").
			WithResource(cfg.Redis.Addr).
			WithIssue(issue.StoreUnreachableId).
			WithSuggestion("Pass --redis host:port or set LIBRIS_REDIS_ADDR").
			Wrap(err).
			BuildError()
	}

	reg, err := scripts.New(ctx, s, cfg.Scripts.Dir, registryOptions(cfg, logger)...)
	if err != nil {
		closeStore()
		return nil, nil, scriptDirError(cfg.Scripts.Dir, err)
	}
	a.Diagnostics.Render(ctx, reg.Diagnostics(), a.stderr)
	return reg, closeStore, nil
}

// scriptDirError classifies a registry construction failure.
func scriptDirError(dir string, err error) error {
	var (
		collision *discovery.ScriptCollisionError
		regErr    *scripts.RegistrationError
	)
	switch {
	case errors.As(err, &collision):
		return issue.NewErrorContext().
			WithOperation("discover scripts").
			WithResource(dir).
			WithIssue(issue.ScriptCollisionId).
			WithSuggestion(fmt.Sprintf("Rename %s or %s", filepath.Base(collision.FirstFile), filepath.Base(collision.SecondFile))).
			Wrap(err).
			BuildError()
	case errors.As(err, &regErr):
		return issue.NewErrorContext().
			WithOperation("register scripts").
			WithResource(regErr.Name).
			WithIssue(issue.RegistrationFailedId).
			WithSuggestion("Run 'libris show " + regErr.Name + "' to inspect the composed body").
			Wrap(err).
			BuildError()
	case errors.Is(err, fs.ErrNotExist):
		return issue.NewErrorContext().
			WithOperation("read script directory").
			WithResource(dir).
			WithIssue(issue.ScriptDirNotFoundId).
			WithSuggestion("Pass --scripts <dir> or set scripts.dir in the config file").
			Wrap(err).
			BuildError()
	case errors.Is(err, fs.ErrPermission):
		return issue.NewErrorContext().
			WithOperation("read script directory").
			WithResource(dir).
			WithIssue(issue.PermissionDeniedId).
			Wrap(err).
			BuildError()
	default:
		return issue.WrapWithContext(err, "read script directory", dir)
	}
}

// notFoundError wraps a missing script lookup.
func notFoundError(err error) error {
	var nf *scripts.ScriptNotFoundError
	if !errors.As(err, &nf) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation("find script").
		WithResource(nf.Name).
		WithIssue(issue.ScriptNotFoundId).
		WithSuggestion("Run 'libris list' to see available scripts").
		Wrap(err).
		BuildError()
}

// renderError prints suggestions and the catalog issue for err to stderr.
// The error line itself is printed by fang.
func (a *App) renderError(err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}

	if ae.HasSuggestions() {
		for _, s := range ae.Suggestions {
			_, _ = fmt.Fprintf(a.stderr, "  • %s\n", s)
		}
	}
	if a.flags.verbose && ae.Cause != nil {
		_, _ = fmt.Fprintln(a.stderr, SubtitleStyle.Render(ae.Format(true)))
	}

	if entry := ae.CatalogIssue(); entry != nil {
		rendered, renderErr := entry.Render(a.issueStyle)
		if renderErr != nil {
			_, _ = fmt.Fprintln(a.stderr, string(entry.MarkdownMsg()))
			return
		}
		_, _ = fmt.Fprint(a.stderr, rendered)
	}
}

// Render writes diagnostics to w with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, w io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("error")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, diag.Message)
	}
}
