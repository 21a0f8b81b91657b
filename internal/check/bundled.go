// SPDX-License-Identifier: MPL-2.0

package check

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Minimum requires a numeric argument of at least n, or a string of at least n runes.
func Minimum(n float64) commandtree.ParameterCheck {
	return bound("minimum", n, func(v float64) bool { return v >= n })
}

// Maximum requires a numeric argument of at most n, or a string of at most n runes.
func Maximum(n float64) commandtree.ParameterCheck {
	return bound("maximum", n, func(v float64) bool { return v <= n })
}

// Contains requires a string argument containing value under cmp.
func Contains(value string, cmp commandtree.Comparison) commandtree.ParameterCheck {
	return commandtree.ParameterCheck{
		Name:    "contains",
		Accepts: isString,
		Run: func(_ context.Context, argument any, _ *commandtree.ExecutionContext) commandtree.CheckResult {
			s, _ := argument.(string)
			if cmp.Contains(s, value) {
				return commandtree.Passed()
			}
			return commandtree.Failed(fmt.Sprintf("The provided argument must contain the %s value: %s.", sensitivity(cmp), value))
		},
	}
}

// StartsWith requires a string argument starting with value under cmp.
func StartsWith(value string, cmp commandtree.Comparison) commandtree.ParameterCheck {
	return commandtree.ParameterCheck{
		Name:    "starts_with",
		Accepts: isString,
		Run: func(_ context.Context, argument any, _ *commandtree.ExecutionContext) commandtree.CheckResult {
			s, _ := argument.(string)
			if cmp.HasPrefix(s, value) {
				return commandtree.Passed()
			}
			return commandtree.Failed(fmt.Sprintf("The provided argument must start with the %s value: %s.", sensitivity(cmp), value))
		},
	}
}

func bound(kind string, n float64, ok func(float64) bool) commandtree.ParameterCheck {
	return commandtree.ParameterCheck{
		Name:    kind,
		Accepts: func(tag commandtree.TypeTag) bool {
			return tag.IsNumeric() || tag == commandtree.TypeDuration || isString(tag)
		},
		Run: func(_ context.Context, argument any, _ *commandtree.ExecutionContext) commandtree.CheckResult {
			measure := "value"
			v, numeric := toFloat(argument)
			if s, isStr := argument.(string); isStr {
				measure = "length"
				v, numeric = float64(utf8.RuneCountInString(s)), true
			}
			if numeric && ok(v) {
				return commandtree.Passed()
			}
			return commandtree.Failed(fmt.Sprintf("The provided argument must have a %s %s of %s.",
				kind, measure, strconv.FormatFloat(n, 'f', -1, 64)))
		},
	}
}

func isString(tag commandtree.TypeTag) bool {
	return tag == commandtree.TypeString
}

func sensitivity(cmp commandtree.Comparison) string {
	if cmp.IsCaseSensitive() {
		return "case-sensitive"
	}
	return "case-insensitive"
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Duration:
		return float64(n), true
	default:
		return 0, false
	}
}
