// SPDX-License-Identifier: MPL-2.0

package commandtree

import "context"

type (
	// TypeParserResult is the tagged outcome of converting one raw slice:
	// a value, an explicit absence of value, or a failure with an optional reason.
	TypeParserResult struct {
		value    any
		hasValue bool
		failed   bool
		reason   string
	}

	// TypeParser converts a raw argument slice into a typed value. Parameters may
	// carry their own TypeParser, which takes precedence over the registry.
	TypeParser interface {
		Parse(ctx context.Context, p *Parameter, raw string, ec *ExecutionContext) TypeParserResult
	}

	// TypeParserFunc adapts a function to the TypeParser interface.
	TypeParserFunc func(ctx context.Context, p *Parameter, raw string, ec *ExecutionContext) TypeParserResult

	// Handler is the invocation callback of a command. A nil value with a nil
	// error is reported as success with no value.
	Handler func(ctx context.Context, ec *ExecutionContext) (any, error)

	// Hook runs around the handler of every command in a module subtree.
	Hook func(ctx context.Context, ec *ExecutionContext) error
)

// Parse implements TypeParser.
func (f TypeParserFunc) Parse(ctx context.Context, p *Parameter, raw string, ec *ExecutionContext) TypeParserResult {
	return f(ctx, p, raw, ec)
}

// Parsed returns a successful result carrying v.
func Parsed(v any) TypeParserResult {
	return TypeParserResult{value: v, hasValue: true}
}

// ParsedNoValue returns a successful result that explicitly carries no value.
func ParsedNoValue() TypeParserResult {
	return TypeParserResult{}
}

// ParseFailed returns a failed result. An empty reason lets the engine
// generate one from the parameter's declared type.
func ParseFailed(reason string) TypeParserResult {
	return TypeParserResult{failed: true, reason: reason}
}

// IsSuccessful reports whether parsing succeeded.
func (r TypeParserResult) IsSuccessful() bool {
	return !r.failed
}

// Value returns the parsed value and whether one is present.
func (r TypeParserResult) Value() (any, bool) {
	return r.value, r.hasValue
}

// Reason returns the failure reason, which may be empty.
func (r TypeParserResult) Reason() string {
	return r.reason
}
