// SPDX-License-Identifier: MPL-2.0

package commandtree

import "slices"

// Module groups commands and child modules under zero or more aliases.
//
// A module without aliases is transparent: its children are matched as if they
// were declared directly in the parent. The root module is always transparent.
type Module struct {
	name        string
	description string
	aliases     []string
	parent      *Module
	modules     []*Module
	commands    []*Command
	checks      []Check
	before      Hook
	after       Hook
}

// Name returns the module's name.
func (m *Module) Name() string { return m.name }

// Description returns the module's help text.
func (m *Module) Description() string { return m.description }

// Aliases returns a copy of the module's aliases.
func (m *Module) Aliases() []string { return slices.Clone(m.aliases) }

// Parent returns the parent module, or nil for the root.
func (m *Module) Parent() *Module { return m.parent }

// Modules returns the child modules in declaration order.
func (m *Module) Modules() []*Module { return slices.Clone(m.modules) }

// Commands returns the module's own commands in declaration order.
func (m *Module) Commands() []*Command { return slices.Clone(m.commands) }

// Checks returns the module-level checks.
func (m *Module) Checks() []Check { return slices.Clone(m.checks) }

// Before returns the hook run before the handler of any command in this subtree.
func (m *Module) Before() Hook { return m.before }

// After returns the hook run after the handler of any command in this subtree.
func (m *Module) After() Hook { return m.after }

// IsTransparent reports whether the module has no aliases of its own.
func (m *Module) IsTransparent() bool { return len(m.aliases) == 0 }

// IsRoot reports whether the module has no parent.
func (m *Module) IsRoot() bool { return m.parent == nil }

// Lineage returns the chain of modules from the root down to m.
func (m *Module) Lineage() []*Module {
	var chain []*Module
	for cur := m; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

// FullPath returns the module's primary alias path from the root, skipping
// transparent modules.
func (m *Module) FullPath() []string {
	var path []string
	for _, mod := range m.Lineage() {
		if len(mod.aliases) > 0 {
			path = append(path, mod.aliases[0])
		}
	}
	return path
}

// Walk calls fn for m and every descendant module depth-first, in declaration
// order. Walking stops early when fn returns false.
func (m *Module) Walk(fn func(*Module) bool) bool {
	if !fn(m) {
		return false
	}
	for _, child := range m.modules {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
