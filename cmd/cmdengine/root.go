// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/cmdengine/internal/config"
	"github.com/invowk/cmdengine/internal/issue"
	"github.com/invowk/cmdengine/internal/telemetry"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the cmdengine command hierarchy around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "cmdengine",
		Short: "Match and execute text commands against a CUE command tree",
		Long: TitleStyle.Render("cmdengine") + SubtitleStyle.Render(" - a text command engine") + `

cmdengine matches input lines against a tree of modules and commands,
resolves overloads, binds typed arguments, evaluates checks and
cooldowns, then runs the selected handler.

Trees are declared in CUE files. Without --tree, the bundled demo tree
is loaded.

` + SubtitleStyle.Render("Examples:") + `
  cmdengine run echo hello world      Run one input line
  cmdengine run --tree ./tree.cue ping
  cmdengine repl                      Read input lines from stdin
  cmdengine tree                      List the loaded commands
  cmdengine config show               Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cmdengine/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.treePath, "tree", "", "CUE tree file (default is the 'tree' config key, then the demo tree)")

	rootCmd.AddCommand(
		newRunCommand(app, flags),
		newReplCommand(app, flags),
		newTreeCommand(app, flags),
		newConfigCommand(app, flags),
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

// Execute runs the CLI and exits with the resulting status code.
func Execute() {
	os.Exit(runCLI(context.Background()))
}

func runCLI(ctx context.Context) int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return exitFailure
	}

	shutdown := func(context.Context) error { return nil }
	if ts, err := telemetry.SettingsFromEnv(); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
	} else if shutdown, err = telemetry.Setup(ctx, ts); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
	}
	defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()

	err = fang.Execute(ctx, NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	)
	return exitCode(err)
}

// renderError prints err, rendering the linked guide for actionable errors.
func (a *App) renderError(w io.Writer, styles fang.Styles, err error) {
	ae, ok := issue.AsActionable(err)
	if !ok {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return
		}
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	if a.ui.Verbose {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(true))
		return
	}
	style := a.ui.Style
	if style == "" {
		style = config.StyleAuto
	}
	fmt.Fprintln(w, ae.Render(style))
}
