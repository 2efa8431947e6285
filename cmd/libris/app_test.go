// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"libris-cli/internal/config"
	"libris-cli/internal/discovery"
	"libris-cli/internal/issue"
	"libris-cli/internal/scripts"
	"libris-cli/internal/testutil"
	"libris-cli/internal/testutil/storetest"
)

type (
	// staticConfig is a ConfigProvider returning a fixed result.
	staticConfig struct {
		cfg *config.Config
		err error
	}

	// recorderStore adds connection management to a storetest.Recorder.
	recorderStore struct {
		*storetest.Recorder
		pingErr error
		closed  bool
	}

	testCLI struct {
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (s *staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (s *recorderStore) Ping(context.Context) error { return s.pingErr }

func (s *recorderStore) Close() error {
	s.closed = true
	return nil
}

func newTestCLI(t *testing.T, deps Dependencies) *testCLI {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	deps.Stdout = stdout
	deps.Stderr = stderr
	if deps.Config == nil {
		deps.Config = &staticConfig{cfg: config.DefaultConfig()}
	}
	if deps.IssueStyle == "" {
		deps.IssueStyle = "notty"
	}
	if deps.ConfigDir == "" {
		deps.ConfigDir = t.TempDir()
	}

	return &testCLI{app: NewApp(deps), stdout: stdout, stderr: stderr}
}

func (c *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()

	root := NewRootCommand(c.app)
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	return root.ExecuteContext(context.Background())
}

func requireIssue(t *testing.T, err error, want issue.Id) {
	t.Helper()

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v (%T), want *issue.ActionableError", err, err)
	}
	if ae.Issue != want {
		t.Errorf("ActionableError.Issue = %d, want %d", ae.Issue, want)
	}
}

func TestNewApp_Defaults(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})
	if app.Config == nil {
		t.Error("Config is nil")
	}
	if app.Stores == nil {
		t.Error("Stores is nil")
	}
	if app.Diagnostics == nil {
		t.Error("Diagnostics is nil")
	}
	if app.stdout == nil || app.stderr == nil {
		t.Error("output writers not defaulted")
	}
	if app.issueStyle != "auto" {
		t.Errorf("issueStyle = %q, want auto", app.issueStyle)
	}

	s := app.Stores(config.DefaultConfig().Redis)
	if s == nil {
		t.Fatal("default StoreFactory returned nil")
	}
	testutil.MustClose(t, s)
}

func TestApp_LoadConfigFlagOverrides(t *testing.T) {
	t.Parallel()

	cli := newTestCLI(t, Dependencies{})
	cli.app.flags = globalFlags{scriptsDir: "/srv/lua", redisAddr: "cache:6380", verbose: true}

	cfg, err := cli.app.loadConfig(context.Background())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Scripts.Dir != "/srv/lua" {
		t.Errorf("Scripts.Dir = %q, want /srv/lua", cfg.Scripts.Dir)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Errorf("Redis.Addr = %q, want cache:6380", cfg.Redis.Addr)
	}
	if cfg.Log.Level != config.LogLevelDebug {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestApp_LoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cli := newTestCLI(t, Dependencies{Config: config.NewProvider()})
	err := cli.run(t, "--config", "/nonexistent/libris.cue", "list")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	requireIssue(t, err, issue.ConfigLoadFailedId)

	if !strings.Contains(cli.stderr.String(), "Verify the file path is correct") {
		t.Errorf("stderr missing suggestion, got:\n%s", cli.stderr.String())
	}
}

func TestApp_OpenRegistryErrors(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteScriptDir(t, map[string]string{"get.lua": "return 1"})

	tests := []struct {
		name  string
		store *recorderStore
		want  issue.Id
	}{
		{
			name:  "ping failure",
			store: &recorderStore{Recorder: storetest.New(), pingErr: errors.New("connection refused")},
			want:  issue.StoreUnreachableId,
		},
		{
			name:  "load rejected",
			store: &recorderStore{Recorder: storetest.New(storetest.WithLoadError(errors.New("ERR syntax")))},
			want:  issue.RegistrationFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cli := newTestCLI(t, Dependencies{
				Stores: func(config.RedisConfig) ScriptStore { return tt.store },
			})
			err := cli.run(t, "--scripts", dir, "load")
			if err == nil {
				t.Fatal("expected error")
			}
			requireIssue(t, err, tt.want)
			if !tt.store.closed {
				t.Error("store was not closed after failure")
			}
		})
	}
}

func TestScriptDirError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	collision := testutil.WriteScriptDir(t, map[string]string{
		"Report.lua": "return 1",
		"report.lua": "return 2",
	})

	_, missingErr := scripts.Compose(dir + "/missing")
	_, collisionErr := scripts.Compose(collision)

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"missing directory", missingErr, issue.ScriptDirNotFoundId},
		{"collision", collisionErr, issue.ScriptCollisionId},
		{"registration", &scripts.RegistrationError{Name: "get", Err: errors.New("ERR")}, issue.RegistrationFailedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err == nil {
				t.Fatal("precondition: expected a construction error")
			}
			err := scriptDirError(dir, tt.err)
			requireIssue(t, err, tt.want)
			if !errors.Is(err, tt.err) {
				t.Errorf("classified error does not wrap the original")
			}
		})
	}

	t.Run("unclassified", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("disk on fire")
		err := scriptDirError(dir, cause)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.Issue != 0 {
			t.Fatalf("scriptDirError() = %v, want ActionableError without issue", err)
		}
	})
}

func TestDefaultDiagnosticRenderer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &defaultDiagnosticRenderer{}
	r.Render(context.Background(), []discovery.Diagnostic{
		{Severity: discovery.SeverityWarning, Code: discovery.CodeIdentifierInvalid, Message: "odd name", Path: "/s/9x.lua"},
		{Severity: discovery.SeverityError, Code: discovery.CodeIdentifierEmpty, Message: "empty name"},
	}, &buf)

	out := buf.String()
	for _, want := range []string{"warning", "odd name (/s/9x.lua)", "error", "empty name"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApp_RenderError(t *testing.T) {
	t.Parallel()

	cli := newTestCLI(t, Dependencies{})
	cli.app.renderError(issue.NewErrorContext().
		WithOperation("find script").
		WithIssue(issue.ScriptNotFoundId).
		WithSuggestion("Run 'libris list'").
		BuildError())

	out := cli.stderr.String()
	if !strings.Contains(out, "Run 'libris list'") {
		t.Errorf("stderr missing suggestion:\n%s", out)
	}
	if !strings.Contains(out, "Script not found") {
		t.Errorf("stderr missing catalog issue:\n%s", out)
	}

	cli.stderr.Reset()
	cli.app.renderError(errors.New("plain"))
	if cli.stderr.Len() != 0 {
		t.Errorf("plain errors should render nothing, got %q", cli.stderr.String())
	}
}

func startMiniredis(t *testing.T) string {
	t.Helper()
	return miniredis.RunT(t).Addr()
}
