// SPDX-License-Identifier: MPL-2.0

package commandtree

import "slices"

// Parameter is one declared argument of a command.
type Parameter struct {
	command      *Command
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
	index        int
}

// Command returns the owning command.
func (p *Parameter) Command() *Command { return p.command }

// Name returns the parameter's name.
func (p *Parameter) Name() string { return p.name }

// Description returns the parameter's help text.
func (p *Parameter) Description() string { return p.description }

// Type returns the declared type tag.
func (p *Parameter) Type() TypeTag { return p.typ }

// IsOptional reports whether the parameter may be omitted.
func (p *Parameter) IsOptional() bool { return p.optional }

// IsNullable reports whether an absence noun binds to no value.
func (p *Parameter) IsNullable() bool { return p.nullable }

// IsRemainder reports whether the parameter takes the rest of the raw text verbatim.
func (p *Parameter) IsRemainder() bool { return p.remainder }

// IsMultiple reports whether the parameter collects every remaining token.
func (p *Parameter) IsMultiple() bool { return p.multiple }

// DefaultValue returns the value bound when an optional parameter is absent.
func (p *Parameter) DefaultValue() any { return p.defaultValue }

// Checks returns the parameter-level checks.
func (p *Parameter) Checks() []ParameterCheck { return slices.Clone(p.checks) }

// Parser returns the custom type parser override, or nil.
func (p *Parameter) Parser() TypeParser { return p.parser }

// Index returns the parameter's position within its command.
func (p *Parameter) Index() int { return p.index }

// FriendlyTypeName returns the type name used in generated failure reasons,
// e.g. "int" or "nullable int".
func (p *Parameter) FriendlyTypeName() string {
	if p.nullable {
		return "nullable " + string(p.typ)
	}
	return string(p.typ)
}

func (p *Parameter) signature() string {
	s := string(p.typ)
	if p.nullable {
		s += "?"
	}
	switch {
	case p.remainder:
		s += " remainder"
	case p.multiple:
		s += "..."
	}
	return s
}
