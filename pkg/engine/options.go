// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/invowk/cmdengine/internal/clock"
	"github.com/invowk/cmdengine/pkg/argparse"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

const tracerName = "github.com/invowk/cmdengine/pkg/engine"

// ErrInvalidOptions is returned when engine options fail validation.
var ErrInvalidOptions = errors.New("invalid engine options")

type (
	// Clock supplies time to the cooldown manager.
	Clock = clock.Clock

	// EventFunc receives the final result of an invocation.
	EventFunc func(ctx context.Context, ec *commandtree.ExecutionContext, result Result)

	// Options configures an Engine. The zero value is usable; see DefaultOptions
	// for the values it resolves to.
	Options struct {
		// Comparison governs alias matching, enum names and absence nouns.
		Comparison commandtree.Comparison
		// DefaultRunMode applies to commands declared with RunModeDefault.
		DefaultRunMode commandtree.RunMode
		// IgnoreExtraArguments drops surplus tokens instead of failing.
		IgnoreExtraArguments bool
		// Separator delimits alias segments and arguments. Defaults to " ".
		Separator string
		// SeparatorRequirement is the policy at alias segment boundaries.
		SeparatorRequirement commandtree.SeparatorRequirement
		// ArgumentParser tokenizes raw arguments. Defaults to argparse.Default.
		ArgumentParser argparse.Parser
		// CooldownKeyGenerator keys cooldowns without their own key function.
		// Defaults to a single global bucket per cooldown.
		CooldownKeyGenerator commandtree.KeyFunc
		// QuoteMap maps opening to closing quotes. Defaults to argparse.DefaultQuoteMap.
		QuoteMap argparse.QuoteMap
		// AbsenceNouns bind as "no value". Defaults to typeparser.DefaultAbsenceNouns.
		AbsenceNouns []string
		// TypeParsers holds custom parsers and enums. It is frozen by New.
		TypeParsers *typeparser.Registry

		// Logger receives pipeline logs. Defaults to a discarding logger.
		Logger *log.Logger
		// Tracer creates pipeline spans. Defaults to the global tracer provider.
		Tracer trace.Tracer
		// Clock drives cooldown windows. Defaults to the system clock.
		Clock Clock
		// CooldownIdleTTL evicts idle, expired cooldown buckets. Zero never evicts.
		CooldownIdleTTL time.Duration

		// OnExecuted is called with every successful final result.
		OnExecuted EventFunc
		// OnFailed is called with every failed final result.
		OnFailed EventFunc
	}

	// InvalidOptionsError lists every problem found in Options.
	// It wraps ErrInvalidOptions for errors.Is() compatibility.
	InvalidOptionsError struct {
		Problems []string
	}
)

// Error implements the error interface for InvalidOptionsError.
func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidOptions, strings.Join(e.Problems, "; "))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOptionsError) Unwrap() error {
	return ErrInvalidOptions
}

// DefaultOptions returns the options the zero value resolves to.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

// Validate checks option values after defaults are applied and reports every
// problem found.
func (o Options) Validate() error {
	o = o.withDefaults()
	var problems []string
	if ok, errs := o.Comparison.IsValid(); !ok {
		problems = append(problems, errs[0].Error())
	}
	if ok, errs := o.DefaultRunMode.IsValid(); !ok {
		problems = append(problems, errs[0].Error())
	}
	if ok, errs := o.SeparatorRequirement.IsValid(); !ok {
		problems = append(problems, errs[0].Error())
	}
	for open, closing := range o.QuoteMap {
		if open == 0 || closing == 0 {
			problems = append(problems, "quote map contains a NUL quote")
			continue
		}
		if strings.ContainsRune(o.Separator, open) || strings.ContainsRune(o.Separator, closing) {
			problems = append(problems, "separator "+strconv.Quote(o.Separator)+" contains quote "+strconv.QuoteRune(open))
		}
	}
	for _, noun := range o.AbsenceNouns {
		if strings.TrimSpace(noun) == "" {
			problems = append(problems, "absence nouns cannot be blank")
			break
		}
	}
	if o.CooldownIdleTTL < 0 {
		problems = append(problems, "cooldown idle TTL cannot be negative")
	}
	if len(problems) > 0 {
		return &InvalidOptionsError{Problems: problems}
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = commandtree.DefaultSeparator
	}
	if o.ArgumentParser == nil {
		o.ArgumentParser = argparse.Default{}
	}
	if o.CooldownKeyGenerator == nil {
		o.CooldownKeyGenerator = commandtree.GlobalKey
	}
	if o.QuoteMap == nil {
		o.QuoteMap = argparse.DefaultQuoteMap()
	}
	if o.AbsenceNouns == nil {
		o.AbsenceNouns = append([]string(nil), typeparser.DefaultAbsenceNouns...)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	if o.Clock == nil {
		o.Clock = clock.Real{}
	}
	return o
}

func (o Options) argparseConfig() argparse.Config {
	return argparse.Config{
		Separator:            o.Separator,
		Quotes:               o.QuoteMap,
		IgnoreExtraArguments: o.IgnoreExtraArguments,
	}
}
