// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"strings"
	"sync/atomic"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/invowk/cmdengine/internal/clock"
	"github.com/invowk/cmdengine/internal/config"
	"github.com/invowk/cmdengine/internal/demo"
	"github.com/invowk/cmdengine/internal/issue"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/engine"
	"github.com/invowk/cmdengine/pkg/treefile"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

// demoTreeName labels the bundled tree in diagnostics.
const demoTreeName = "<demo>"

type (
	// App wires CLI services and shared dependencies. Every cobra handler
	// receives an App and builds its engine through it.
	App struct {
		Config   config.Provider
		Bindings treefile.Bindings
		Types    func() *typeparser.Registry
		Clock    clock.Clock
		Settings Settings
		stdout   io.Writer
		stderr   io.Writer
		// ui is the UI section of the last loaded config, used to render errors.
		ui config.UIConfig
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Bindings *treefile.Bindings
		Types    func() *typeparser.Registry
		Clock    clock.Clock
		Settings *Settings
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// Settings is the CLI runtime environment.
	Settings struct {
		LogLevel string `env:"CMDENGINE_LOG_LEVEL" envDefault:"warn"`
		// User and Owner feed the "user" and "owner" services of every invocation.
		User  string `env:"CMDENGINE_USER"`
		Owner string `env:"CMDENGINE_OWNER"`
	}

	// rootFlags are the persistent flags shared by every subcommand.
	rootFlags struct {
		configPath string
		treePath   string
		verbose    bool
		// demo forces the bundled tree.
		demo bool
	}

	// session is one loaded configuration, tree and engine.
	session struct {
		cfg      *config.Config
		treeName string
		engine   *engine.Engine
		logger   *log.Logger
		clock    clock.Clock
		services commandtree.ServiceMap
		printer  *printer
		// failed counts background invocations that did not succeed.
		failed atomic.Int32
	}
)

// SettingsFromEnv reads Settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Bindings == nil {
		b := demo.Bindings()
		deps.Bindings = &b
	}
	if deps.Types == nil {
		deps.Types = demo.Types
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Settings == nil {
		s, err := SettingsFromEnv()
		if err != nil {
			return nil, err
		}
		deps.Settings = &s
	}

	return &App{
		Config:   deps.Config,
		Bindings: *deps.Bindings,
		Types:    deps.Types,
		Clock:    deps.Clock,
		Settings: *deps.Settings,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{ReportTimestamp: true, Prefix: "cmdengine"})
	level, err := log.ParseLevel(a.Settings.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func (a *App) loadConfig(ctx context.Context, flags rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	a.ui = cfg.UI
	if flags.verbose {
		a.ui.Verbose = true
	}
	return cfg, nil
}

// loadTree resolves the tree file from the flag, then the config, then the
// bundled demo tree.
func (a *App) loadTree(cfg *config.Config, flags rootFlags, types *typeparser.Registry) (*commandtree.ModuleBuilder, string, error) {
	path := flags.treePath
	if path == "" {
		path = cfg.Tree
	}
	if flags.demo {
		path = ""
	}
	loader := treefile.Loader{Bindings: a.Bindings, Types: types}
	if path == "" {
		root, err := loader.Parse(demo.TreeSource(), demoTreeName)
		return root, demoTreeName, err
	}

	root, err := loader.Load(path)
	if err == nil {
		return root, path, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, path, issue.NewErrorContext().
			WithOperation("load tree file").
			WithResource(path).
			WithIssue(issue.TreeFileNotFoundId).
			WithSuggestion("Check the --tree path or the 'tree' config key").
			Wrap(err).
			BuildError()
	}
	return nil, path, issue.NewErrorContext().
		WithOperation("load tree file").
		WithResource(path).
		WithIssue(issue.TreeFileInvalidId).
		Wrap(err).
		BuildError()
}

// openSession loads configuration and the tree, then builds an engine.
func (a *App) openSession(ctx context.Context, flags rootFlags) (*session, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	verbose := flags.verbose || cfg.UI.Verbose
	logger := a.newLogger(verbose)

	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure engine").
			WithIssue(issue.EngineOptionsInvalidId).
			Wrap(err).
			BuildError()
	}

	types := a.Types()
	root, treeName, err := a.loadTree(cfg, flags, types)
	if err != nil {
		return nil, err
	}
	tree, err := commandtree.Build(root, commandtree.BuildOptions{Comparison: opts.Comparison, Separator: opts.Separator})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("build command tree").
			WithResource(treeName).
			WithIssue(issue.TreeBuildFailedId).
			Wrap(err).
			BuildError()
	}

	s := &session{
		cfg:      cfg,
		treeName: treeName,
		logger:   logger,
		clock:    a.Clock,
		services: commandtree.ServiceMap{
			demo.ServiceUser:  a.Settings.User,
			demo.ServiceOwner: a.Settings.Owner,
			demo.ServiceClock: a.Clock,
		},
		printer: &printer{out: a.stdout, verbose: verbose},
	}

	opts.TypeParsers = types
	opts.Logger = logger
	opts.Clock = a.Clock
	opts.OnExecuted = s.onBackground
	opts.OnFailed = s.onBackground
	s.engine, err = engine.New(tree, opts)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("create engine").
			WithResource(treeName).
			WithIssue(issue.EngineOptionsInvalidId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("engine ready", "tree", treeName, "commands", len(s.engine.Commands()))
	return s, nil
}

func (s *session) newContext() *commandtree.ExecutionContext {
	return commandtree.NewExecutionContext(maps.Clone(s.services))
}

// execute runs input, waiting out up to retries cooldowns.
func (s *session) execute(ctx context.Context, input string, retries int) engine.Result {
	for attempt := 0; ; attempt++ {
		result := s.engine.Execute(ctx, input, s.newContext())
		onCooldown, ok := result.(*engine.CommandOnCooldownResult)
		if !ok || attempt >= retries {
			return result
		}
		wait := onCooldown.RetryAfter()
		s.logger.Info("waiting for cooldown", "retry_after", wait, "attempt", attempt+1)
		select {
		case <-s.clock.After(wait):
		case <-ctx.Done():
			return result
		}
	}
}

// onBackground prints the results of handlers that ran in the background.
// Synchronous results are printed by the caller.
func (s *session) onBackground(_ context.Context, ec *commandtree.ExecutionContext, result engine.Result) {
	if !ranInBackground(ec, result, s.engine.Options().DefaultRunMode) {
		return
	}
	if !result.IsSuccessful() {
		s.failed.Add(1)
	}
	input := ec.Command().FullName()
	if raw, ok := ec.RawArguments(); ok && strings.TrimSpace(raw) != "" {
		input += " " + strings.TrimSpace(raw)
	}
	s.printer.background(input, result)
}

func ranInBackground(ec *commandtree.ExecutionContext, result engine.Result, fallback commandtree.RunMode) bool {
	cmd := ec.Command()
	if cmd == nil || cmd.RunMode().Resolve(fallback) != commandtree.RunModeParallel {
		return false
	}
	switch r := result.(type) {
	case *engine.SuccessResult:
		return !r.Deferred
	case *engine.ExecutionFailedResult:
		return r.Step >= engine.StepBeforeHooks
	default:
		return false
	}
}

// resultError converts a failed result into the error returned to cobra.
func resultError(input string, result engine.Result) error {
	id := issue.CommandFailedId
	suggestion := "Run again with --verbose to see the pipeline logs"
	if result.Kind() == engine.KindCommandNotFound {
		id = issue.CommandNotFoundId
		suggestion = "List the loaded commands with 'cmdengine tree'"
	}
	return &ExitError{Code: exitFailure, Err: issue.NewErrorContext().
		WithOperation("execute command").
		WithResource(input).
		WithIssue(id).
		WithSuggestion(suggestion).
		Wrap(errors.New(result.Reason())).
		BuildError()}
}
