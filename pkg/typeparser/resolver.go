// SPDX-License-Identifier: MPL-2.0

package typeparser

import (
	"context"
	"slices"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// DefaultAbsenceNouns are the words bound as "no value" when none are configured.
var DefaultAbsenceNouns = []string{"null", "none", "nothing"}

type (
	// Config is the engine-wide parsing configuration.
	Config struct {
		// Comparison applies to enum names and absence nouns.
		Comparison commandtree.Comparison
		// AbsenceNouns are recognized as "no value" for nullable and optional
		// parameters. Nil selects DefaultAbsenceNouns; an empty non-nil slice
		// disables absence recognition.
		AbsenceNouns []string
	}

	// Resolver parses parameters against a frozen registry.
	Resolver struct {
		registry *Registry
		cmp      commandtree.Comparison
		nouns    []string
	}

	// BindFailure reports the parameter that failed to bind and the parser result.
	BindFailure struct {
		Parameter *commandtree.Parameter
		Result    commandtree.TypeParserResult
		// Raw is the slice that failed to parse.
		Raw string
	}
)

// NewResolver freezes registry and binds it to cfg. A nil registry resolves
// built-in primitives only.
func NewResolver(registry *Registry, cfg Config) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	registry.Freeze()
	nouns := cfg.AbsenceNouns
	if nouns == nil {
		nouns = DefaultAbsenceNouns
	}
	return &Resolver{registry: registry, cmp: cfg.Comparison, nouns: slices.Clone(nouns)}
}

// Registry returns the underlying frozen registry.
func (rv *Resolver) Registry() *Registry {
	return rv.registry
}

// IsAbsenceNoun reports whether raw is one of the configured absence nouns.
func (rv *Resolver) IsAbsenceNoun(raw string) bool {
	return rv.cmp.EqualAny(raw, rv.nouns)
}

// CanParse reports whether p can be parsed by its override or the registry.
func (rv *Resolver) CanParse(p *commandtree.Parameter) bool {
	return p.Parser() != nil || rv.registry.Supports(p.Type())
}

// Parse converts one raw slice for p. A failure with no reason from the
// underlying parser is given the generated "Failed to parse <type>." reason.
func (rv *Resolver) Parse(ctx context.Context, p *commandtree.Parameter, raw string, ec *commandtree.ExecutionContext) commandtree.TypeParserResult {
	result := rv.parse(ctx, p, raw, ec)
	if !result.IsSuccessful() && result.Reason() == "" {
		return commandtree.ParseFailed(FailureReason(p))
	}
	return result
}

func (rv *Resolver) parse(ctx context.Context, p *commandtree.Parameter, raw string, ec *commandtree.ExecutionContext) commandtree.TypeParserResult {
	if custom := p.Parser(); custom != nil {
		return custom.Parse(ctx, p, raw, ec)
	}
	if (p.IsNullable() || p.IsOptional()) && rv.IsAbsenceNoun(raw) {
		return commandtree.ParsedNoValue()
	}

	parser, enum := rv.registry.lookup(p.Type())
	if parser != nil {
		return parser.Parse(ctx, p, raw, ec)
	}
	if v, ok, known := parsePrimitive(p.Type(), raw); known {
		if !ok {
			return commandtree.ParseFailed("")
		}
		return commandtree.Parsed(v)
	}
	if enum != nil {
		if v, ok := enum.Parse(raw, rv.cmp); ok {
			return commandtree.Parsed(v)
		}
		return commandtree.ParseFailed("")
	}
	return commandtree.ParseFailed((&UnsupportedTypeError{Type: p.Type()}).Error())
}

// Bind converts the tokenized slices of cmd into argument values in parameter
// order. Each value in raw is a string, or a []string for multiple parameters;
// parameters missing from raw take their default value. Multiple parameters
// bind to []any. A parameter that parsed to no value binds to nil.
func (rv *Resolver) Bind(ctx context.Context, cmd *commandtree.Command, raw map[*commandtree.Parameter]any, ec *commandtree.ExecutionContext) ([]any, *BindFailure) {
	params := cmd.Parameters()
	args := make([]any, len(params))
	for i, p := range params {
		if err := ctx.Err(); err != nil {
			return nil, &BindFailure{Parameter: p, Result: commandtree.ParseFailed(err.Error())}
		}
		value, present := raw[p]
		if !present {
			args[i] = p.DefaultValue()
			continue
		}
		switch v := value.(type) {
		case string:
			bound, failure := rv.bindOne(ctx, p, v, ec)
			if failure != nil {
				return nil, failure
			}
			args[i] = bound
		case []string:
			values := make([]any, 0, len(v))
			for _, item := range v {
				bound, failure := rv.bindOne(ctx, p, item, ec)
				if failure != nil {
					return nil, failure
				}
				values = append(values, bound)
			}
			args[i] = values
		default:
			args[i] = v
		}
	}
	return args, nil
}

func (rv *Resolver) bindOne(ctx context.Context, p *commandtree.Parameter, raw string, ec *commandtree.ExecutionContext) (any, *BindFailure) {
	result := rv.Parse(ctx, p, raw, ec)
	if !result.IsSuccessful() {
		return nil, &BindFailure{Parameter: p, Result: result, Raw: raw}
	}
	v, _ := result.Value()
	return v, nil
}

// FailureReason returns the generated reason for a failed parse of p.
func FailureReason(p *commandtree.Parameter) string {
	return "Failed to parse " + p.FriendlyTypeName() + "."
}
