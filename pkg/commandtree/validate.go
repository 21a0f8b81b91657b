// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidName is returned when a module, command or parameter has an empty name.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidAlias is returned when an alias is empty, contains whitespace or the
	// separator, or is declared on the root module.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrDuplicateAlias is returned when an alias is repeated within one alias list
	// or shared by sibling modules.
	ErrDuplicateAlias = errors.New("duplicate alias")
	// ErrMissingAlias is returned when a command has no alias path at all.
	ErrMissingAlias = errors.New("missing alias")
	// ErrMissingHandler is returned when a command has no handler.
	ErrMissingHandler = errors.New("missing handler")
	// ErrParameterOrder is returned when a required parameter follows an optional one.
	ErrParameterOrder = errors.New("required parameter after optional parameter")
	// ErrRemainderNotLast is returned when a remainder parameter is not the last one.
	ErrRemainderNotLast = errors.New("remainder parameter must be last")
	// ErrMultipleNotLast is returned when a multiple parameter is not the last one.
	ErrMultipleNotLast = errors.New("multiple parameter must be last")
	// ErrRemainderMultiple is returned when a parameter is both remainder and multiple.
	ErrRemainderMultiple = errors.New("parameter cannot be both remainder and multiple")
	// ErrInvalidParameter is returned for other parameter declaration problems.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidCheck is returned when a check has no evaluation routine.
	ErrInvalidCheck = errors.New("invalid check")
	// ErrCheckTypeMismatch is returned when a parameter check does not accept the
	// parameter's declared type.
	ErrCheckTypeMismatch = errors.New("parameter check does not accept parameter type")
	// ErrDuplicateSignature is returned when two commands in one module share an
	// alias and an identical parameter signature.
	ErrDuplicateSignature = errors.New("duplicate command signature")
)

type (
	// NodeError locates one build problem in the tree.
	// It wraps one of the package-level sentinel errors.
	NodeError struct {
		// Path locates the node, e.g. "module 'admin' command 'ban' parameter 'user'".
		Path string
		// Err is the sentinel or typed error describing the problem.
		Err error
		// Detail adds node-specific context to Err.
		Detail string
	}

	// BuildError collects every problem found while building or validating a tree.
	BuildError struct {
		Errors []*NodeError
	}

	nodePath struct {
		parts []string
	}

	validator struct {
		opts   BuildOptions
		errors []*NodeError
	}
)

// Error implements the error interface for NodeError.
func (e *NodeError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is() compatibility.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// Error implements the error interface by listing every problem.
func (e *BuildError) Error() string {
	if len(e.Errors) == 1 {
		return "command tree: " + e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("command tree has ")
	b.WriteString(strconv.Itoa(len(e.Errors)))
	b.WriteString(" errors:")
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes every collected problem to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err)
	}
	return out
}

// Validate rechecks the tree against opts. The engine calls it with its own
// comparison mode and separator, which may differ from those used at Build.
func (t *Tree) Validate(opts BuildOptions) error {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	v := &validator{opts: opts}
	if ok, errs := opts.Comparison.IsValid(); !ok {
		for _, err := range errs {
			v.add(nodePath{}, err, "")
		}
	}
	if len(t.root.aliases) > 0 {
		v.add(nodePath{}.module(t.root), ErrInvalidAlias, "the root module cannot have aliases")
	}
	v.validateModule(t.root, nodePath{})
	if len(v.errors) > 0 {
		return &BuildError{Errors: v.errors}
	}
	return nil
}

func (v *validator) add(path nodePath, err error, detail string) {
	v.errors = append(v.errors, &NodeError{Path: path.String(), Err: err, Detail: detail})
}

func (v *validator) validateModule(m *Module, parentPath nodePath) {
	path := parentPath
	if !m.IsRoot() {
		path = parentPath.module(m)
		if strings.TrimSpace(m.name) == "" {
			v.add(path, ErrInvalidName, "module name is empty")
		}
		v.validateAliases(path, m.aliases)
	}
	v.validateChecks(path, m.checks)

	v.validateSiblingModules(path, m.modules)
	for _, c := range m.commands {
		v.validateCommand(c, path)
	}
	v.validateSignatures(path, m.commands)
	for _, child := range m.modules {
		v.validateModule(child, path)
	}
}

func (v *validator) validateAliases(path nodePath, aliases []string) {
	for i, alias := range aliases {
		switch {
		case strings.TrimSpace(alias) == "":
			v.add(path, ErrInvalidAlias, "alias is empty")
			continue
		case strings.ContainsFunc(alias, isSpace):
			v.add(path, ErrInvalidAlias, fmt.Sprintf("alias %q contains whitespace", alias))
		case strings.Contains(alias, v.opts.Separator):
			v.add(path, ErrInvalidAlias, fmt.Sprintf("alias %q contains the separator %q", alias, v.opts.Separator))
		}
		for _, prev := range aliases[:i] {
			if v.opts.Comparison.Equal(prev, alias) {
				v.add(path, ErrDuplicateAlias, fmt.Sprintf("alias %q is repeated", alias))
				break
			}
		}
	}
}

func (v *validator) validateSiblingModules(path nodePath, modules []*Module) {
	seen := make(map[string]int)
	for i, m := range modules {
		for _, alias := range m.aliases {
			key := v.opts.Comparison.Fold(alias)
			if owner, ok := seen[key]; ok && owner != i {
				v.add(path.module(m), ErrDuplicateAlias,
					fmt.Sprintf("alias %q is already used by sibling module '%s'", alias, modules[owner].name))
				continue
			}
			seen[key] = i
		}
	}
}

func (v *validator) validateChecks(path nodePath, checks []Check) {
	for i, c := range checks {
		if c.Run == nil {
			v.add(path, ErrInvalidCheck, fmt.Sprintf("check #%d (%s) has no routine", i+1, c.DisplayName()))
		}
	}
}

func (v *validator) validateCommand(c *Command, modulePath nodePath) {
	path := modulePath.command(c)
	if strings.TrimSpace(c.name) == "" {
		v.add(path, ErrInvalidName, "command name is empty")
	}
	if c.handler == nil {
		v.add(path, ErrMissingHandler, "")
	}
	v.validateAliases(path, c.aliases)
	if len(c.aliases) == 0 && len(c.module.FullPath()) == 0 {
		v.add(path, ErrMissingAlias, "a command without aliases must live in an aliased module")
	}
	if ok, errs := c.runMode.IsValid(); !ok {
		for _, err := range errs {
			v.add(path, err, "")
		}
	}
	v.validateChecks(path, c.checks)
	for _, cd := range c.cooldowns {
		if ok, errs := cd.IsValid(); !ok {
			for _, err := range errs {
				v.add(path, err, "")
			}
		}
	}
	v.validateParameters(c, path)
}

func (v *validator) validateParameters(c *Command, commandPath nodePath) {
	seenOptional := false
	seenNames := make(map[string]bool)
	last := len(c.parameters) - 1
	for i, p := range c.parameters {
		path := commandPath.parameter(p)
		if strings.TrimSpace(p.name) == "" {
			v.add(path, ErrInvalidName, "parameter name is empty")
		} else if seenNames[p.name] {
			v.add(path, ErrInvalidParameter, "parameter name is repeated")
		}
		seenNames[p.name] = true

		if ok, errs := p.typ.IsValid(); !ok {
			for _, err := range errs {
				v.add(path, err, "")
			}
		}
		if p.optional {
			seenOptional = true
		} else if seenOptional {
			v.add(path, ErrParameterOrder, "")
		}
		if !p.optional && p.defaultValue != nil {
			v.add(path, ErrInvalidParameter, "only optional parameters can have a default value")
		}
		if p.remainder && p.multiple {
			v.add(path, ErrRemainderMultiple, "")
		}
		if p.remainder && i != last {
			v.add(path, ErrRemainderNotLast, "")
		}
		if p.multiple && i != last {
			v.add(path, ErrMultipleNotLast, "")
		}
		for j, pc := range p.checks {
			if pc.Run == nil {
				v.add(path, ErrInvalidCheck, fmt.Sprintf("check #%d (%s) has no routine", j+1, pc.DisplayName()))
			}
			if pc.Accepts != nil && !pc.Accepts(p.typ) {
				v.add(path, ErrCheckTypeMismatch, fmt.Sprintf("check %s does not accept type %s", pc.DisplayName(), p.typ))
			}
		}
	}
}

// validateSignatures rejects overloads that can never be told apart.
func (v *validator) validateSignatures(path nodePath, commands []*Command) {
	for i, c := range commands {
		for _, prev := range commands[:i] {
			if prev.Signature() != c.Signature() || !v.aliasesOverlap(prev.aliases, c.aliases) {
				continue
			}
			v.add(path.command(c), ErrDuplicateSignature,
				fmt.Sprintf("same alias and signature %s as command '%s'", c.Signature(), prev.name))
			break
		}
	}
}

func (v *validator) aliasesOverlap(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	for _, x := range a {
		if v.opts.Comparison.EqualAny(x, b) {
			return true
		}
	}
	return false
}

func (p nodePath) with(part string) nodePath {
	parts := make([]string, len(p.parts), len(p.parts)+1)
	copy(parts, p.parts)
	return nodePath{parts: append(parts, part)}
}

func (p nodePath) module(m *Module) nodePath {
	if m.IsRoot() {
		return p.with("root module")
	}
	return p.with("module '" + m.name + "'")
}

func (p nodePath) command(c *Command) nodePath {
	return p.with("command '" + c.name + "'")
}

func (p nodePath) parameter(param *Parameter) nodePath {
	return p.with("parameter '" + param.name + "'")
}

func (p nodePath) String() string {
	return strings.Join(p.parts, " ")
}
