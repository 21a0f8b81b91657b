// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"slices"
	"time"
)

// DefaultSeparator is the separator assumed when none is configured.
const DefaultSeparator = " "

type (
	// ModuleBuilder declares a module. Builders are mutable and not safe for
	// concurrent use; Build snapshots them into an immutable tree.
	ModuleBuilder struct {
		name        string
		description string
		aliases     []string
		modules     []*ModuleBuilder
		commands    []*CommandBuilder
		checks      []Check
		before      Hook
		after       Hook
	}

	// CommandBuilder declares a command.
	CommandBuilder struct {
		name        string
		description string
		aliases     []string
		parameters  []*ParameterBuilder
		priority    int
		runMode     RunMode
		checks      []Check
		cooldowns   []Cooldown
		disabled    bool
		handler     Handler
	}

	// ParameterBuilder declares a parameter.
	ParameterBuilder struct {
		name         string
		description  string
		typ          TypeTag
		optional     bool
		nullable     bool
		remainder    bool
		multiple     bool
		defaultValue any
		checks       []ParameterCheck
		parser       TypeParser
	}

	// BuildOptions carries the engine settings that alias validation depends on.
	BuildOptions struct {
		// Comparison decides alias uniqueness.
		Comparison Comparison
		// Separator may not appear inside an alias. Defaults to DefaultSeparator.
		Separator string
	}

	// Tree is a validated, immutable command tree.
	Tree struct {
		root     *Module
		commands []*Command
	}
)

// NewModule starts a module declaration.
func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// WithDescription sets the help text.
func (b *ModuleBuilder) WithDescription(description string) *ModuleBuilder {
	b.description = description
	return b
}

// WithAliases appends aliases. A module without aliases is transparent.
func (b *ModuleBuilder) WithAliases(aliases ...string) *ModuleBuilder {
	b.aliases = append(b.aliases, aliases...)
	return b
}

// AddModule appends child modules.
func (b *ModuleBuilder) AddModule(children ...*ModuleBuilder) *ModuleBuilder {
	b.modules = append(b.modules, children...)
	return b
}

// AddCommand appends commands.
func (b *ModuleBuilder) AddCommand(commands ...*CommandBuilder) *ModuleBuilder {
	b.commands = append(b.commands, commands...)
	return b
}

// WithChecks appends module-level checks.
func (b *ModuleBuilder) WithChecks(checks ...Check) *ModuleBuilder {
	b.checks = append(b.checks, checks...)
	return b
}

// WithBefore sets the hook run before handlers in this subtree.
func (b *ModuleBuilder) WithBefore(h Hook) *ModuleBuilder {
	b.before = h
	return b
}

// WithAfter sets the hook run after handlers in this subtree.
func (b *ModuleBuilder) WithAfter(h Hook) *ModuleBuilder {
	b.after = h
	return b
}

// NewCommand starts a command declaration.
func NewCommand(name string, handler Handler) *CommandBuilder {
	return &CommandBuilder{name: name, handler: handler}
}

// WithDescription sets the help text.
func (b *CommandBuilder) WithDescription(description string) *CommandBuilder {
	b.description = description
	return b
}

// WithAliases appends aliases.
func (b *CommandBuilder) WithAliases(aliases ...string) *CommandBuilder {
	b.aliases = append(b.aliases, aliases...)
	return b
}

// WithParameters appends parameters.
func (b *CommandBuilder) WithParameters(params ...*ParameterBuilder) *CommandBuilder {
	b.parameters = append(b.parameters, params...)
	return b
}

// WithPriority sets the overload priority.
func (b *CommandBuilder) WithPriority(priority int) *CommandBuilder {
	b.priority = priority
	return b
}

// WithRunMode overrides the engine's default run mode.
func (b *CommandBuilder) WithRunMode(mode RunMode) *CommandBuilder {
	b.runMode = mode
	return b
}

// WithChecks appends command-level checks.
func (b *CommandBuilder) WithChecks(checks ...Check) *CommandBuilder {
	b.checks = append(b.checks, checks...)
	return b
}

// WithCooldown appends a cooldown of amount calls per period, counted per key.
// A nil key uses the engine's default key generator.
func (b *CommandBuilder) WithCooldown(amount int, per time.Duration, bucketType string, key KeyFunc) *CommandBuilder {
	b.cooldowns = append(b.cooldowns, Cooldown{Amount: amount, Per: per, BucketType: bucketType, Key: key})
	return b
}

// Disabled marks the command as administratively disabled.
func (b *CommandBuilder) Disabled() *CommandBuilder {
	b.disabled = true
	return b
}

// NewParameter starts a parameter declaration.
func NewParameter(name string, typ TypeTag) *ParameterBuilder {
	return &ParameterBuilder{name: name, typ: typ}
}

// WithDescription sets the help text.
func (b *ParameterBuilder) WithDescription(description string) *ParameterBuilder {
	b.description = description
	return b
}

// Optional marks the parameter optional with the given default value.
func (b *ParameterBuilder) Optional(defaultValue any) *ParameterBuilder {
	b.optional = true
	b.defaultValue = defaultValue
	return b
}

// Nullable lets absence nouns bind to no value.
func (b *ParameterBuilder) Nullable() *ParameterBuilder {
	b.nullable = true
	return b
}

// Remainder makes the parameter take the rest of the raw text verbatim.
func (b *ParameterBuilder) Remainder() *ParameterBuilder {
	b.remainder = true
	return b
}

// Multiple makes the parameter collect every remaining token.
func (b *ParameterBuilder) Multiple() *ParameterBuilder {
	b.multiple = true
	return b
}

// WithChecks appends parameter-level checks.
func (b *ParameterBuilder) WithChecks(checks ...ParameterCheck) *ParameterBuilder {
	b.checks = append(b.checks, checks...)
	return b
}

// WithParser sets a custom type parser consulted before the registry.
func (b *ParameterBuilder) WithParser(parser TypeParser) *ParameterBuilder {
	b.parser = parser
	return b
}

// Build snapshots the builders rooted at root into an immutable tree and
// validates it. Every problem found is reported in a single *BuildError.
func Build(root *ModuleBuilder, opts BuildOptions) (*Tree, error) {
	if root == nil {
		root = NewModule("root")
	}
	tree := &Tree{}
	tree.root = tree.module(root, nil)
	if err := tree.Validate(opts); err != nil {
		return nil, err
	}
	return tree, nil
}

// Root returns the root module.
func (t *Tree) Root() *Module { return t.root }

// Commands returns every command in depth-first declaration order: a module's
// own commands first, then those of its child modules.
func (t *Tree) Commands() []*Command { return slices.Clone(t.commands) }

func (t *Tree) module(b *ModuleBuilder, parent *Module) *Module {
	m := &Module{
		name:        b.name,
		description: b.description,
		aliases:     slices.Clone(b.aliases),
		parent:      parent,
		checks:      slices.Clone(b.checks),
		before:      b.before,
		after:       b.after,
	}
	for _, cb := range b.commands {
		m.commands = append(m.commands, t.command(cb, m))
	}
	for _, mb := range b.modules {
		m.modules = append(m.modules, t.module(mb, m))
	}
	return m
}

func (t *Tree) command(b *CommandBuilder, module *Module) *Command {
	c := &Command{
		module:      module,
		name:        b.name,
		description: b.description,
		aliases:     slices.Clone(b.aliases),
		priority:    b.priority,
		runMode:     b.runMode,
		checks:      slices.Clone(b.checks),
		disabled:    b.disabled,
		handler:     b.handler,
		index:       len(t.commands),
	}
	for i := range b.cooldowns {
		cd := b.cooldowns[i]
		c.cooldowns = append(c.cooldowns, &cd)
	}
	for i, pb := range b.parameters {
		c.parameters = append(c.parameters, &Parameter{
			command:      c,
			name:         pb.name,
			description:  pb.description,
			typ:          pb.typ,
			optional:     pb.optional,
			nullable:     pb.nullable,
			remainder:    pb.remainder,
			multiple:     pb.multiple,
			defaultValue: pb.defaultValue,
			checks:       slices.Clone(pb.checks),
			parser:       pb.parser,
			index:        i,
		})
	}
	t.commands = append(t.commands, c)
	return c
}
