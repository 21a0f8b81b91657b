// SPDX-License-Identifier: MPL-2.0

package treefile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/invowk/cmdengine/internal/check"
	"github.com/invowk/cmdengine/internal/cueutil"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

// Bundled parameter check names.
const (
	CheckMinimum    = "minimum"
	CheckMaximum    = "maximum"
	CheckContains   = "contains"
	CheckStartsWith = "starts_with"
)

var (
	//go:embed treefile_schema.cue
	treeSchema []byte

	// ErrUnknownBinding is returned when a tree file names something the
	// bindings do not provide.
	ErrUnknownBinding = errors.New("unknown binding")

	// ErrInvalidValue is returned when a declared value cannot be converted.
	ErrInvalidValue = errors.New("invalid value")
)

type (
	// Loader turns tree files into module builders.
	Loader struct {
		Bindings Bindings
		// Types converts declared default values. Nil converts primitives only.
		Types *typeparser.Registry
	}

	// FieldError is one problem at a path in a tree file.
	FieldError struct {
		Path string
		Err  error
	}

	// LoadError lists every binding and value problem in a tree file.
	LoadError struct {
		File   string
		Errors []*FieldError
	}

	resolver struct {
		*Loader
		errs []*FieldError
	}
)

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Error implements the error interface for LoadError.
func (e *LoadError) Error() string {
	if len(e.Errors) == 1 {
		return e.File + ": " + e.Errors[0].Error()
	}
	lines := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		lines = append(lines, fe.Error())
	}
	return fmt.Sprintf("%s: %d errors:\n  %s", e.File, len(lines), strings.Join(lines, "\n  "))
}

// Unwrap returns every field error for errors.Is() and errors.As().
func (e *LoadError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		out[i] = fe
	}
	return out
}

// Load reads and parses the tree file at path.
func (l *Loader) Load(path string) (*commandtree.ModuleBuilder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file %s: %w", path, err)
	}
	return l.Parse(data, path)
}

// Parse decodes a tree file and resolves its bindings. filename is used in
// error messages only.
func (l *Loader) Parse(data []byte, filename string) (*commandtree.ModuleBuilder, error) {
	doc, err := Decode(data, filename)
	if err != nil {
		return nil, err
	}
	r := &resolver{Loader: l}
	root := r.module(doc, "")
	if len(r.errs) > 0 {
		return nil, &LoadError{File: filename, Errors: r.errs}
	}
	return root, nil
}

// Decode validates a tree file against the schema without resolving bindings.
func Decode(data []byte, filename string) (*ModuleSpec, error) {
	decoded, err := cueutil.Decode[ModuleSpec](treeSchema, data, "#Tree", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return decoded.Value, nil
}

func (r *resolver) fail(path string, err error) {
	r.errs = append(r.errs, &FieldError{Path: path, Err: err})
}

func (r *resolver) unknown(path, kind, name string) {
	r.fail(path, fmt.Errorf("%w: %s %q", ErrUnknownBinding, kind, name))
}

func (r *resolver) module(spec *ModuleSpec, path string) *commandtree.ModuleBuilder {
	b := commandtree.NewModule(spec.Name).
		WithDescription(spec.Description).
		WithAliases(spec.Aliases...).
		WithChecks(r.checks(spec.Checks, join(path, "checks"))...)
	if spec.Before != "" {
		if hook, ok := r.Bindings.Hooks[spec.Before]; ok {
			b.WithBefore(hook)
		} else {
			r.unknown(join(path, "before"), "hook", spec.Before)
		}
	}
	if spec.After != "" {
		if hook, ok := r.Bindings.Hooks[spec.After]; ok {
			b.WithAfter(hook)
		} else {
			r.unknown(join(path, "after"), "hook", spec.After)
		}
	}
	for i := range spec.Commands {
		b.AddCommand(r.command(&spec.Commands[i], index(join(path, "commands"), i)))
	}
	for i := range spec.Modules {
		b.AddModule(r.module(&spec.Modules[i], index(join(path, "modules"), i)))
	}
	return b
}

func (r *resolver) command(spec *CommandSpec, path string) *commandtree.CommandBuilder {
	handler, ok := r.Bindings.Handlers[spec.Handler]
	if !ok {
		r.unknown(join(path, "handler"), "handler", spec.Handler)
	}
	b := commandtree.NewCommand(spec.Name, handler).
		WithDescription(spec.Description).
		WithAliases(spec.Aliases...).
		WithPriority(spec.Priority).
		WithChecks(r.checks(spec.Checks, join(path, "checks"))...)

	mode, err := commandtree.ParseRunMode(spec.RunMode)
	if err != nil {
		r.fail(join(path, "run_mode"), err)
	}
	b.WithRunMode(mode)
	if spec.Disabled {
		b.Disabled()
	}

	for i, cd := range spec.Cooldowns {
		at := index(join(path, "cooldowns"), i)
		per, err := time.ParseDuration(cd.Per)
		if err != nil {
			r.fail(join(at, "per"), fmt.Errorf("%w: %w", ErrInvalidValue, err))
			continue
		}
		var key commandtree.KeyFunc
		if cd.Key != "" {
			if key, ok = r.Bindings.Keys[cd.Key]; !ok {
				r.unknown(join(at, "key"), "key function", cd.Key)
			}
		}
		b.WithCooldown(cd.Amount, per, cd.Bucket, key)
	}

	params := make([]*commandtree.ParameterBuilder, 0, len(spec.Parameters))
	for i := range spec.Parameters {
		params = append(params, r.parameter(&spec.Parameters[i], index(join(path, "parameters"), i)))
	}
	return b.WithParameters(params...)
}

func (r *resolver) parameter(spec *ParameterSpec, path string) *commandtree.ParameterBuilder {
	tag := commandtree.TypeTag(spec.Type)
	b := commandtree.NewParameter(spec.Name, tag).WithDescription(spec.Description)

	var parser commandtree.TypeParser
	if spec.Parser != "" {
		var ok bool
		if parser, ok = r.Bindings.Parsers[spec.Parser]; ok {
			b.WithParser(parser)
		} else {
			r.unknown(join(path, "parser"), "type parser", spec.Parser)
		}
	}

	if spec.Optional || spec.Default != nil {
		var def any
		if spec.Default != nil {
			def = r.literal(tag, *spec.Default, parser != nil, join(path, "default"))
		}
		b.Optional(def)
	}
	if spec.Nullable {
		b.Nullable()
	}
	if spec.Remainder {
		b.Remainder()
	}
	if spec.Multiple {
		b.Multiple()
	}

	checks := make([]commandtree.ParameterCheck, 0, len(spec.Checks))
	for i, ref := range spec.Checks {
		if c, ok := r.parameterCheck(ref, index(join(path, "checks"), i)); ok {
			checks = append(checks, c)
		}
	}
	return b.WithChecks(checks...)
}

// literal converts a declared default. Types only a custom parser understands
// keep the declared text.
func (r *resolver) literal(tag commandtree.TypeTag, text string, custom bool, path string) any {
	v, err := r.Types.ParseLiteral(tag, text)
	if err == nil {
		return v
	}
	if errors.Is(err, typeparser.ErrUnsupportedType) && (custom || r.Types.Supports(tag)) {
		return text
	}
	r.fail(path, fmt.Errorf("%w: %w", ErrInvalidValue, err))
	return nil
}

func (r *resolver) checks(refs []CheckRef, path string) []commandtree.Check {
	out := make([]commandtree.Check, 0, len(refs))
	for i, ref := range refs {
		c, ok := r.Bindings.Checks[ref.Name]
		if !ok {
			r.unknown(join(index(path, i), "name"), "check", ref.Name)
			continue
		}
		if c.Name == "" {
			c.Name = ref.Name
		}
		if ref.Group != "" {
			c.Group = ref.Group
		}
		out = append(out, c)
	}
	return out
}

func (r *resolver) parameterCheck(ref ParameterCheckRef, path string) (commandtree.ParameterCheck, bool) {
	cmp := commandtree.ComparisonIgnoreCase
	if ref.CaseSensitive {
		cmp = commandtree.ComparisonCaseSensitive
	}

	var c commandtree.ParameterCheck
	switch ref.Name {
	case CheckMinimum, CheckMaximum:
		if ref.Value == nil {
			r.fail(join(path, "value"), fmt.Errorf("%w: %s requires a numeric value", ErrInvalidValue, ref.Name))
			return c, false
		}
		if ref.Name == CheckMinimum {
			c = check.Minimum(*ref.Value)
		} else {
			c = check.Maximum(*ref.Value)
		}
	case CheckContains, CheckStartsWith:
		if ref.Text == nil {
			r.fail(join(path, "text"), fmt.Errorf("%w: %s requires text", ErrInvalidValue, ref.Name))
			return c, false
		}
		if ref.Name == CheckContains {
			c = check.Contains(*ref.Text, cmp)
		} else {
			c = check.StartsWith(*ref.Text, cmp)
		}
	default:
		bound, ok := r.Bindings.ParameterChecks[ref.Name]
		if !ok {
			r.unknown(join(path, "name"), "parameter check", ref.Name)
			return c, false
		}
		c = bound
		if c.Name == "" {
			c.Name = ref.Name
		}
	}
	if ref.Group != "" {
		c.Group = ref.Group
	}
	return c, true
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
