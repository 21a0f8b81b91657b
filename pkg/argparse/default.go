// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"context"
	"unicode"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

type (
	// Default is the built-in tokenizer.
	//
	// Inside a quoted token a backslash escapes the closing quote or another
	// backslash, and a doubled closing quote stands for one literal closing quote.
	// A remainder parameter never causes FailureTooManyArguments; when it is
	// optional and the input is exhausted it is simply left unfilled.
	Default struct{}

	tokenizer struct {
		runes     []rune
		separator []rune
		quotes    QuoteMap
	}
)

// Parse implements Parser.
func (Default) Parse(_ context.Context, ec *commandtree.ExecutionContext, cfg Config) Result {
	cmd := ec.Command()
	raw, _ := ec.RawArguments()
	params := cmd.Parameters()
	separator := cfg.Separator
	if separator == "" {
		separator = commandtree.DefaultSeparator
	}
	tk := &tokenizer{runes: []rune(raw), separator: []rune(separator), quotes: cfg.Quotes.clone()}

	args := make(map[*commandtree.Parameter]any, len(params))
	pi := 0
	pos := 0
	n := len(tk.runes)
	for {
		pos = tk.skipDelimiters(pos)
		if pos >= n {
			break
		}
		if pi >= len(params) {
			if cfg.IgnoreExtraArguments {
				break
			}
			return Failed(cmd, FailureTooManyArguments, nil, pos)
		}

		p := params[pi]
		if p.IsRemainder() {
			args[p] = string(tk.runes[pos:])
			pi++
			break
		}

		token, next, failure, at := tk.next(pos)
		if failure != FailureNone {
			return Failed(cmd, failure, p, at)
		}
		if p.IsMultiple() {
			list, _ := args[p].([]string)
			args[p] = append(list, token)
		} else {
			args[p] = token
			pi++
		}
		pos = next
	}

	if pi < len(params) {
		if missing := missingFrom(params, pi, args); len(missing) > 0 {
			return TooFew(cmd, missing, n)
		}
	}
	return Succeeded(cmd, args)
}

func (tk *tokenizer) isSeparatorAt(i int) bool {
	if len(tk.separator) == 0 || i+len(tk.separator) > len(tk.runes) {
		return false
	}
	for j, r := range tk.separator {
		if tk.runes[i+j] != r {
			return false
		}
	}
	return true
}

// delimiterWidth returns the rune width of the delimiter at i, or 0.
func (tk *tokenizer) delimiterWidth(i int) int {
	if unicode.IsSpace(tk.runes[i]) {
		return 1
	}
	if tk.isSeparatorAt(i) {
		return len(tk.separator)
	}
	return 0
}

func (tk *tokenizer) skipDelimiters(i int) int {
	for i < len(tk.runes) {
		w := tk.delimiterWidth(i)
		if w == 0 {
			break
		}
		i += w
	}
	return i
}

// next reads the token starting at i. On failure it returns the failure kind
// and the rune offset it refers to.
func (tk *tokenizer) next(i int) (token string, next int, failure Failure, at int) {
	if closing, ok := tk.quotes[tk.runes[i]]; ok {
		return tk.quoted(i, closing)
	}

	start := i
	for i < len(tk.runes) && tk.delimiterWidth(i) == 0 {
		if _, ok := tk.quotes[tk.runes[i]]; ok {
			return "", 0, FailureUnexpectedQuote, i
		}
		i++
	}
	return string(tk.runes[start:i]), i, FailureNone, -1
}

func (tk *tokenizer) quoted(open int, closing rune) (string, int, Failure, int) {
	n := len(tk.runes)
	var buf []rune
	for i := open + 1; i < n; i++ {
		r := tk.runes[i]
		if r == '\\' && i+1 < n && (tk.runes[i+1] == closing || tk.runes[i+1] == '\\') {
			buf = append(buf, tk.runes[i+1])
			i++
			continue
		}
		if r != closing {
			buf = append(buf, r)
			continue
		}
		if i+1 < n && tk.runes[i+1] == closing {
			buf = append(buf, closing)
			i++
			continue
		}
		end := i + 1
		if end < n && tk.delimiterWidth(end) == 0 {
			return "", 0, FailureMissingSeparator, end
		}
		return string(buf), end, FailureNone, -1
	}
	return "", 0, FailureUnclosedQuote, open
}
