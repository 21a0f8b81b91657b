// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"context"
	"maps"
	"strings"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

const (
	// FailureNone means tokenizing succeeded.
	FailureNone Failure = iota
	// FailureUnclosedQuote means an opening quote had no matching close.
	FailureUnclosedQuote
	// FailureUnexpectedQuote means a quote appeared inside an unquoted token.
	FailureUnexpectedQuote
	// FailureMissingSeparator means a closing quote was directly followed by text.
	FailureMissingSeparator
	// FailureTooFewArguments means required parameters were left unfilled.
	FailureTooFewArguments
	// FailureTooManyArguments means tokens were left over after the last parameter.
	FailureTooManyArguments
)

type (
	// Failure classifies a tokenizing failure.
	Failure int

	// QuoteMap maps opening quote runes to their closing runes.
	QuoteMap map[rune]rune

	// Config carries the engine settings a parser needs.
	Config struct {
		// Separator delimits tokens in addition to whitespace.
		Separator string
		// Quotes is the quote map. Nil selects DefaultQuoteMap.
		Quotes QuoteMap
		// IgnoreExtraArguments drops tokens beyond the last parameter instead of failing.
		IgnoreExtraArguments bool
	}

	// Parser tokenizes the raw argument text of ec's command.
	Parser interface {
		Parse(ctx context.Context, ec *commandtree.ExecutionContext, cfg Config) Result
	}

	// ParserFunc adapts a function to the Parser interface.
	ParserFunc func(ctx context.Context, ec *commandtree.ExecutionContext, cfg Config) Result

	// Result is the outcome of tokenizing.
	Result struct {
		// Command is the command the text was tokenized for.
		Command *commandtree.Command
		// Arguments holds a string per filled parameter, or a []string for a
		// multiple parameter. Unfilled parameters are absent.
		Arguments map[*commandtree.Parameter]any
		// Failure is FailureNone on success.
		Failure Failure
		// Parameter is the parameter being filled when the failure occurred, if known.
		Parameter *commandtree.Parameter
		// Position is the rune offset of the failure in the raw text, or -1.
		Position int
		// Detail overrides the generated failure reason when set.
		Detail string

		missing []*commandtree.Parameter
	}
)

// DefaultQuoteMap returns a fresh copy of the built-in quote pairs.
func DefaultQuoteMap() QuoteMap {
	return QuoteMap{
		'"': '"',
		'“': '”',
		'„': '“',
		'«': '»',
		'‹': '›',
		'「': '」',
		'『': '』',
	}
}

// Parse implements Parser.
func (f ParserFunc) Parse(ctx context.Context, ec *commandtree.ExecutionContext, cfg Config) Result {
	return f(ctx, ec, cfg)
}

// String returns a short name for the failure kind.
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureUnclosedQuote:
		return "unclosed_quote"
	case FailureUnexpectedQuote:
		return "unexpected_quote"
	case FailureMissingSeparator:
		return "missing_separator"
	case FailureTooFewArguments:
		return "too_few_arguments"
	case FailureTooManyArguments:
		return "too_many_arguments"
	default:
		return "unknown"
	}
}

// Succeeded returns a successful result.
func Succeeded(cmd *commandtree.Command, args map[*commandtree.Parameter]any) Result {
	return Result{Command: cmd, Arguments: args, Position: -1}
}

// Failed returns a failed result.
func Failed(cmd *commandtree.Command, failure Failure, param *commandtree.Parameter, position int) Result {
	return Result{Command: cmd, Failure: failure, Parameter: param, Position: position}
}

// TooFew returns a FailureTooFewArguments result listing the missing parameters.
func TooFew(cmd *commandtree.Command, missing []*commandtree.Parameter, position int) Result {
	r := Failed(cmd, FailureTooFewArguments, nil, position)
	if len(missing) > 0 {
		r.Parameter = missing[0]
	}
	r.missing = missing
	return r
}

// IsSuccessful reports whether tokenizing succeeded.
func (r Result) IsSuccessful() bool {
	return r.Failure == FailureNone
}

// MissingParameters returns the required parameters left unfilled, in order,
// starting at the failing parameter. It is empty unless Failure is
// FailureTooFewArguments.
func (r Result) MissingParameters() []*commandtree.Parameter {
	if r.Failure != FailureTooFewArguments {
		return nil
	}
	if r.missing != nil {
		return append([]*commandtree.Parameter(nil), r.missing...)
	}
	if r.Parameter == nil || r.Command == nil {
		return nil
	}
	var missing []*commandtree.Parameter
	for _, p := range r.Command.Parameters()[r.Parameter.Index():] {
		if !p.IsOptional() {
			missing = append(missing, p)
		}
	}
	return missing
}

// Reason returns the human-readable failure reason.
func (r Result) Reason() string {
	if r.Detail != "" {
		return r.Detail
	}
	switch r.Failure {
	case FailureNone:
		return ""
	case FailureUnclosedQuote:
		return "A quotation mark was left unclosed."
	case FailureUnexpectedQuote:
		return "Encountered an unexpected quotation mark."
	case FailureMissingSeparator:
		return "Whitespace is required between arguments."
	case FailureTooFewArguments:
		missing := r.MissingParameters()
		names := make([]string, 0, len(missing))
		for _, p := range missing {
			names = append(names, "'"+p.Name()+"'")
		}
		if len(names) == 1 {
			return "Required parameter " + names[0] + " is missing."
		}
		return "Required parameters " + strings.Join(names, ", ") + " are missing."
	case FailureTooManyArguments:
		return "Too many arguments provided."
	default:
		return "Failed to parse arguments."
	}
}

func (q QuoteMap) clone() QuoteMap {
	if q == nil {
		return DefaultQuoteMap()
	}
	return maps.Clone(q)
}

// missingFrom lists the unfilled required parameters starting at index from.
func missingFrom(params []*commandtree.Parameter, from int, args map[*commandtree.Parameter]any) []*commandtree.Parameter {
	var missing []*commandtree.Parameter
	for _, p := range params[from:] {
		if p.IsOptional() {
			continue
		}
		if _, filled := args[p]; filled {
			continue
		}
		missing = append(missing, p)
	}
	return missing
}
