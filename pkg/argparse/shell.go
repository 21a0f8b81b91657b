// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"context"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Shell tokenizes with POSIX shell word splitting and quoting. Parameter
// expansions are kept literally. Failure positions are not tracked.
//
// The configured separator and quote map do not apply; a remainder parameter
// receives the remaining words joined by single spaces.
type Shell struct{}

// Parse implements Parser.
func (Shell) Parse(_ context.Context, ec *commandtree.ExecutionContext, cfg Config) Result {
	cmd := ec.Command()
	raw, _ := ec.RawArguments()
	params := cmd.Parameters()

	words, err := shell.Fields(raw, func(name string) string { return "$" + name })
	if err != nil {
		if syntax.IsIncomplete(err) {
			return Failed(cmd, FailureUnclosedQuote, firstParameter(params), -1)
		}
		r := Failed(cmd, FailureUnexpectedQuote, firstParameter(params), -1)
		r.Detail = "Failed to split arguments: " + err.Error() + "."
		return r
	}

	args := make(map[*commandtree.Parameter]any, len(params))
	pi := 0
	for wi := 0; wi < len(words); wi++ {
		if pi >= len(params) {
			if cfg.IgnoreExtraArguments {
				break
			}
			return Failed(cmd, FailureTooManyArguments, nil, -1)
		}
		p := params[pi]
		switch {
		case p.IsRemainder():
			args[p] = strings.Join(words[wi:], " ")
			wi = len(words)
			pi++
		case p.IsMultiple():
			list, _ := args[p].([]string)
			args[p] = append(list, words[wi])
		default:
			args[p] = words[wi]
			pi++
		}
	}

	if pi < len(params) {
		if missing := missingFrom(params, pi, args); len(missing) > 0 {
			return TooFew(cmd, missing, -1)
		}
	}
	return Succeeded(cmd, args)
}

func firstParameter(params []*commandtree.Parameter) *commandtree.Parameter {
	if len(params) == 0 {
		return nil
	}
	return params[0]
}
