// SPDX-License-Identifier: MPL-2.0

// Package matcher resolves raw input against the alias paths of a command tree.
package matcher

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

type (
	// Options controls segment matching.
	Options struct {
		Separator   string
		Requirement commandtree.SeparatorRequirement
		Comparison  commandtree.Comparison
	}

	// Match is one command whose alias path prefixes the input.
	Match struct {
		Command *commandtree.Command
		// Alias is the alias that matched the command, or the last module alias
		// for a command invoked by its module path.
		Alias string
		// Path is every alias segment consumed, outermost first.
		Path []string
		// Arguments is the raw text left after the path.
		Arguments string
	}

	matcher struct {
		opts    Options
		matches []Match
	}
)

// Find returns every command whose alias path prefixes input, ordered by
// path depth (deepest first), then priority (highest first), then declaration
// order. An empty result means no command was found.
func Find(root *commandtree.Module, input string, opts Options) []Match {
	if opts.Separator == "" {
		opts.Separator = commandtree.DefaultSeparator
	}
	m := &matcher{opts: opts}
	m.searchChildren(root, strings.TrimLeftFunc(input, unicode.IsSpace), nil)

	slices.SortStableFunc(m.matches, func(a, b Match) int {
		if c := cmp.Compare(len(b.Path), len(a.Path)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Command.Priority(), a.Command.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.Command.Index(), b.Command.Index())
	})
	return m.matches
}

func (m *matcher) searchModule(mod *commandtree.Module, input string, path []string) {
	if mod.IsTransparent() {
		m.searchChildren(mod, input, path)
		return
	}
	for _, alias := range mod.Aliases() {
		if rest, ok := m.consume(input, alias); ok {
			m.searchChildren(mod, rest, append(slices.Clone(path), alias))
		}
	}
}

func (m *matcher) searchChildren(mod *commandtree.Module, input string, path []string) {
	for _, cmd := range mod.Commands() {
		aliases := cmd.Aliases()
		if len(aliases) == 0 {
			if len(path) > 0 {
				m.add(cmd, path[len(path)-1], path, input)
			}
			continue
		}
		for _, alias := range aliases {
			if rest, ok := m.consume(input, alias); ok {
				m.add(cmd, alias, append(slices.Clone(path), alias), rest)
				break
			}
		}
	}
	for _, child := range mod.Modules() {
		m.searchModule(child, input, path)
	}
}

func (m *matcher) add(cmd *commandtree.Command, alias string, path []string, rest string) {
	m.matches = append(m.matches, Match{
		Command:   cmd,
		Alias:     alias,
		Path:      slices.Clone(path),
		Arguments: rest,
	})
}

// consume strips alias and the following separators from the front of input
// according to the separator requirement.
func (m *matcher) consume(input, alias string) (string, bool) {
	rest, ok := m.opts.Comparison.CutPrefix(input, alias)
	if !ok {
		return input, false
	}
	switch m.opts.Requirement {
	case commandtree.SeparatorNone:
		return rest, true
	case commandtree.SeparatorOptional:
		return m.trimSeparators(rest), true
	default:
		if rest == "" {
			return rest, true
		}
		trimmed := m.trimSeparators(rest)
		if trimmed == rest {
			return input, false
		}
		return trimmed, true
	}
}

func (m *matcher) trimSeparators(s string) string {
	blank := strings.TrimSpace(m.opts.Separator) == ""
	for {
		switch {
		case strings.HasPrefix(s, m.opts.Separator):
			s = s[len(m.opts.Separator):]
		case blank && startsWithSpace(s):
			s = strings.TrimLeftFunc(s, unicode.IsSpace)
		default:
			return s
		}
	}
}

func startsWithSpace(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
