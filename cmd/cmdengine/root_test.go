// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/fang"
	"go.uber.org/goleak"

	"github.com/invowk/cmdengine/internal/clock"
	"github.com/invowk/cmdengine/internal/config"
	"github.com/invowk/cmdengine/internal/demo"
	"github.com/invowk/cmdengine/internal/issue"
	"github.com/invowk/cmdengine/pkg/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticConfig struct {
	cfg *config.Config
	err error
}

func (p staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return p.cfg, p.err
}

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(t *testing.T, cfg *config.Config, clk clock.Clock) *testApp {
	t.Helper()

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app, err := NewApp(Dependencies{
		Config:   staticConfig{cfg: cfg},
		Clock:    clk,
		Settings: &Settings{LogLevel: "error", User: "ada", Owner: "ada"},
		Stdout:   stdout,
		Stderr:   stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() unexpected error: %v", err)
	}
	return &testApp{App: app, stdout: stdout, stderr: stderr}
}

func (a *testApp) execute(t *testing.T, stdin string, args ...string) error {
	t.Helper()

	root := NewRootCommand(a.App)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(t.Context())
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr issue.Id
	}{
		{name: "echo", args: []string{"run", "echo", "hello", "world"}, want: "hello world"},
		{name: "quoted input", args: []string{"run", "math sum 1 2 3"}, want: "6"},
		{name: "whoami from settings", args: []string{"run", "whoami"}, want: "ada"},
		{name: "unknown command", args: []string{"run", "juggle"}, want: "command_not_found", wantErr: issue.CommandNotFoundId},
		{name: "check failure", args: []string{"run", "fun", "shout", "quietly"}, want: "parameter_checks_failed", wantErr: issue.CommandFailedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, nil, nil)
			err := app.execute(t, "", tt.args...)
			if !strings.Contains(app.stdout.String(), tt.want) {
				t.Errorf("stdout = %q, want it to contain %q", app.stdout.String(), tt.want)
			}
			if tt.wantErr == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != 1 {
				t.Fatalf("error = %v, want *ExitError with code 1", err)
			}
			ae, ok := issue.AsActionable(err)
			if !ok {
				t.Fatalf("error %v is not actionable", err)
			}
			if ae.Issue != tt.wantErr {
				t.Errorf("issue = %v, want %v", ae.Issue, tt.wantErr)
			}
		})
	}
}

func TestRun_WaitsForBackgroundCommands(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, nil)
	if err := app.execute(t, "", "run", "fun", "nap", "1ms"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := app.stdout.String()
	for _, want := range []string{"started in background", "[background] fun nap 1ms", "rested"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout = %q, want it to contain %q", out, want)
		}
	}
}

func TestRepl(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, nil)
	stdin := "echo first\n\n   \nm add 1s 2s\nfun paint teal\n"
	if err := app.execute(t, stdin, "repl"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(app.stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d output lines, want 3:\n%s", len(lines), app.stdout.String())
	}
	if lines[0] != "first" || lines[1] != "3s" {
		t.Errorf("lines = %q", lines[:2])
	}
	if !strings.Contains(lines[2], "type_parse_failed") {
		t.Errorf("paint teal = %q, want a type parse failure", lines[2])
	}
}

func TestSession_WaitCooldown(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Time{})
	app := newTestApp(t, nil, clk)
	s, err := app.openSession(t.Context(), rootFlags{})
	if err != nil {
		t.Fatalf("openSession() unexpected error: %v", err)
	}

	for i := range 3 {
		if r := s.execute(t.Context(), "fun roll", 0); !r.IsSuccessful() {
			t.Fatalf("roll #%d failed: %s", i+1, r.Reason())
		}
	}
	if r := s.execute(t.Context(), "fun roll", 0); r.Kind() != engine.KindCommandOnCooldown {
		t.Fatalf("roll without retries = %v, want cooldown", r.Kind())
	}

	done := make(chan engine.Result, 1)
	go func() { done <- s.execute(context.Background(), "fun roll", 1) }()
	for clk.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	clk.Advance(10 * time.Second)
	if r := <-done; !r.IsSuccessful() {
		t.Errorf("roll with retry = %v (%s), want success", r.Kind(), r.Reason())
	}
}

func TestTree(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, nil)
	if err := app.execute(t, "", "tree"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := app.stdout.String()
	for _, want := range []string{"demo", "math", "(math, m)", "fun roll", "(int, int)", "admin legacy", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
}

func TestTree_Source(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, nil)
	if err := app.execute(t, "", "tree", "--demo", "--source"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.stdout.String() != string(demo.TreeSource()) {
		t.Error("tree --source should print the bundled tree verbatim")
	}
}

func TestOpenSession_Errors(t *testing.T) {
	t.Parallel()

	badEngine := config.DefaultConfig()
	badEngine.Engine.Comparison = "fuzzy"

	tests := []struct {
		name string
		cfg  *config.Config
		args []string
		want issue.Id
	}{
		{name: "missing tree file", args: []string{"tree", "--tree", "/nonexistent/tree.cue"}, want: issue.TreeFileNotFoundId},
		{name: "invalid engine config", cfg: badEngine, args: []string{"tree"}, want: issue.EngineOptionsInvalidId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, tt.cfg, nil)
			err := app.execute(t, "", tt.args...)
			ae, ok := issue.AsActionable(err)
			if !ok {
				t.Fatalf("error = %v, want an actionable error", err)
			}
			if ae.Issue != tt.want {
				t.Errorf("issue = %v, want %v", ae.Issue, tt.want)
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Engine.Separator = "."
	app := newTestApp(t, cfg, nil)
	if err := app.execute(t, "", "config", "show"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := app.stdout.String()
	for _, want := range []string{"[engine]", "separator", "ignore_case", "[ui]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, nil)
	app.ui = config.UIConfig{Style: config.StyleNoTTY}
	err := &ExitError{Code: 1, Err: issue.NewErrorContext().
		WithOperation("execute command").
		WithResource("juggle").
		WithIssue(issue.CommandNotFoundId).
		Wrap(errors.New("No command found matching the input.")).
		BuildError()}

	var buf bytes.Buffer
	app.renderError(&buf, fang.Styles{}, err)
	if !strings.Contains(buf.String(), "juggle") {
		t.Errorf("rendered error = %q, want it to name the input", buf.String())
	}

	buf.Reset()
	app.renderError(&buf, fang.Styles{}, &ExitError{Code: 1})
	if buf.Len() != 0 {
		t.Errorf("bare exit error rendered %q, want nothing", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "exit error", err: &ExitError{Code: 3}, want: 3},
		{name: "wrapped exit error", err: fmt.Errorf("run: %w", &ExitError{Code: 4}), want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
