// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/cmdengine/internal/cooldown"
	"github.com/invowk/cmdengine/internal/matcher"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

// ErrNilTree is returned by New when no tree is given.
var ErrNilTree = errors.New("engine requires a command tree")

type (
	// Match is one command whose alias path prefixes an input.
	Match = matcher.Match

	// Engine executes input against an immutable command tree. It is safe for
	// concurrent use; the only mutable state is the cooldown table and the
	// runtime disabled set.
	Engine struct {
		tree      *commandtree.Tree
		opts      Options
		resolver  *typeparser.Resolver
		cooldowns *cooldown.Manager
		logger    *log.Logger
		tracer    trace.Tracer

		mu       sync.RWMutex
		disabled map[*commandtree.Command]bool

		background errgroup.Group
	}
)

// New validates opts and tree together and returns a ready engine. The
// type parser registry in opts is frozen.
func New(tree *commandtree.Tree, opts Options) (*Engine, error) {
	if tree == nil {
		return nil, ErrNilTree
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	if err := tree.Validate(commandtree.BuildOptions{Comparison: opts.Comparison, Separator: opts.Separator}); err != nil {
		return nil, err
	}

	resolver := typeparser.NewResolver(opts.TypeParsers, typeparser.Config{
		Comparison:   opts.Comparison,
		AbsenceNouns: opts.AbsenceNouns,
	})
	var unsupported []*commandtree.NodeError
	for _, cmd := range tree.Commands() {
		for _, p := range cmd.Parameters() {
			if !resolver.CanParse(p) {
				unsupported = append(unsupported, &commandtree.NodeError{
					Path: "command '" + cmd.Name() + "' parameter '" + p.Name() + "'",
					Err:  &typeparser.UnsupportedTypeError{Type: p.Type()},
				})
			}
		}
	}
	if len(unsupported) > 0 {
		return nil, &commandtree.BuildError{Errors: unsupported}
	}

	return &Engine{
		tree:     tree,
		opts:     opts,
		resolver: resolver,
		cooldowns: cooldown.New(cooldown.Options{
			Clock:      opts.Clock,
			DefaultKey: opts.CooldownKeyGenerator,
			IdleTTL:    opts.CooldownIdleTTL,
		}),
		logger:   opts.Logger,
		tracer:   opts.Tracer,
		disabled: make(map[*commandtree.Command]bool),
	}, nil
}

// Options returns the effective options, with defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// Tree returns the command tree.
func (e *Engine) Tree() *commandtree.Tree {
	return e.tree
}

// Commands returns every command in declaration order.
func (e *Engine) Commands() []*commandtree.Command {
	return e.tree.Commands()
}

// FindCommands returns the commands whose alias path prefixes input, in the
// order Execute would try them, without executing anything.
func (e *Engine) FindCommands(input string) []Match {
	return matcher.Find(e.tree.Root(), input, e.matchOptions())
}

// Disable marks cmd disabled at runtime, overriding its declaration.
func (e *Engine) Disable(cmd *commandtree.Command) {
	e.mu.Lock()
	e.disabled[cmd] = true
	e.mu.Unlock()
}

// Enable marks cmd enabled at runtime, overriding its declaration.
func (e *Engine) Enable(cmd *commandtree.Command) {
	e.mu.Lock()
	e.disabled[cmd] = false
	e.mu.Unlock()
}

// IsDisabled reports whether cmd is currently disabled.
func (e *Engine) IsDisabled(cmd *commandtree.Command) bool {
	e.mu.RLock()
	override, ok := e.disabled[cmd]
	e.mu.RUnlock()
	if ok {
		return override
	}
	return cmd.IsDisabled()
}

// ResetCooldowns restores every cooldown bucket of cmd.
func (e *Engine) ResetCooldowns(cmd *commandtree.Command) {
	e.cooldowns.Reset(cmd)
}

// ResetAllCooldowns drops every cooldown bucket.
func (e *Engine) ResetAllCooldowns() {
	e.cooldowns.ResetAll()
}

// Wait blocks until every background handler has returned.
func (e *Engine) Wait() error {
	return e.background.Wait()
}

func (e *Engine) matchOptions() matcher.Options {
	return matcher.Options{
		Separator:   e.opts.Separator,
		Requirement: e.opts.SeparatorRequirement,
		Comparison:  e.opts.Comparison,
	}
}

func (e *Engine) owns(cmd *commandtree.Command) bool {
	cmds := e.tree.Commands()
	i := cmd.Index()
	return i >= 0 && i < len(cmds) && cmds[i] == cmd
}
