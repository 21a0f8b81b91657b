// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold returns the comparison key for s. Case-sensitive comparisons return s unchanged.
// A fresh Caser is used per call because cases.Caser keeps state between calls.
func (c Comparison) Fold(s string) string {
	if c == ComparisonCaseSensitive {
		return s
	}
	return cases.Fold().String(s)
}

// Equal reports whether a and b are equal under the comparison mode.
func (c Comparison) Equal(a, b string) bool {
	if a == b {
		return true
	}
	if c == ComparisonCaseSensitive {
		return false
	}
	return c.Fold(a) == c.Fold(b)
}

// CutPrefix reports whether s begins with prefix under the comparison mode and
// returns the remainder of s after the matched runes. Runes of s are folded one
// at a time, so folds that change length ("ß" and "SS") still line up. A match
// must end on a rune boundary of s.
func (c Comparison) CutPrefix(s, prefix string) (string, bool) {
	if c == ComparisonCaseSensitive {
		return strings.CutPrefix(s, prefix)
	}

	want := c.Fold(prefix)
	var folded strings.Builder
	end := 0
	for end < len(s) && folded.Len() < len(want) {
		r, size := utf8.DecodeRuneInString(s[end:])
		end += size
		folded.WriteString(c.Fold(string(r)))
	}
	if folded.String() != want {
		return s, false
	}
	return s[end:], true
}

// HasPrefix reports whether s begins with prefix under the comparison mode.
func (c Comparison) HasPrefix(s, prefix string) bool {
	_, ok := c.CutPrefix(s, prefix)
	return ok
}

// Contains reports whether substr is within s under the comparison mode.
func (c Comparison) Contains(s, substr string) bool {
	return strings.Contains(c.Fold(s), c.Fold(substr))
}

// EqualAny reports whether s equals any of the candidates under the comparison mode.
func (c Comparison) EqualAny(s string, candidates []string) bool {
	for _, candidate := range candidates {
		if c.Equal(candidate, s) {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
