// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"slices"
	"strings"
)

// Command is an invocable node of the tree.
type Command struct {
	module      *Module
	name        string
	description string
	aliases     []string
	parameters  []*Parameter
	priority    int
	runMode     RunMode
	checks      []Check
	cooldowns   []*Cooldown
	disabled    bool
	handler     Handler
	index       int
}

// Module returns the owning module.
func (c *Command) Module() *Module { return c.module }

// Name returns the command's name.
func (c *Command) Name() string { return c.name }

// Description returns the command's help text.
func (c *Command) Description() string { return c.description }

// Aliases returns a copy of the command's aliases. An empty list means the
// command is invoked by its module's path.
func (c *Command) Aliases() []string { return slices.Clone(c.aliases) }

// Parameters returns the parameters in declaration order.
func (c *Command) Parameters() []*Parameter { return slices.Clone(c.parameters) }

// Priority returns the overload priority. Higher values are tried first.
func (c *Command) Priority() int { return c.priority }

// RunMode returns the declared run mode, which may be RunModeDefault.
func (c *Command) RunMode() RunMode { return c.runMode }

// Checks returns the command-level checks.
func (c *Command) Checks() []Check { return slices.Clone(c.checks) }

// Cooldowns returns the cooldown definitions. The pointers identify buckets and
// are stable for the lifetime of the tree.
func (c *Command) Cooldowns() []*Cooldown { return slices.Clone(c.cooldowns) }

// IsDisabled reports whether the command was declared disabled.
func (c *Command) IsDisabled() bool { return c.disabled }

// Handler returns the invocation callback.
func (c *Command) Handler() Handler { return c.handler }

// Index returns the command's position in depth-first declaration order.
func (c *Command) Index() int { return c.index }

// FullAliases returns every full alias path of the command joined with
// separator, e.g. "admin ban" and "a ban" for a module aliased "admin" and "a".
func (c *Command) FullAliases(separator string) []string {
	paths := [][]string{nil}
	for _, mod := range c.module.Lineage() {
		paths = expandPaths(paths, mod.aliases)
	}
	paths = expandPaths(paths, c.aliases)

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, strings.Join(p, separator))
	}
	return out
}

// FullName returns the primary full alias path joined with a space, or the
// command's name when it has no alias path at all.
func (c *Command) FullName() string {
	path := c.module.FullPath()
	if len(c.aliases) > 0 {
		path = append(path, c.aliases[0])
	}
	if len(path) == 0 {
		return c.name
	}
	return strings.Join(path, " ")
}

// Signature returns the parameter type sequence, e.g. "(int, string...)".
func (c *Command) Signature() string {
	parts := make([]string, 0, len(c.parameters))
	for _, p := range c.parameters {
		parts = append(parts, p.signature())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func expandPaths(paths [][]string, aliases []string) [][]string {
	if len(aliases) == 0 {
		return paths
	}
	out := make([][]string, 0, len(paths)*len(aliases))
	for _, p := range paths {
		for _, a := range aliases {
			out = append(out, append(slices.Clone(p), a))
		}
	}
	return out
}
