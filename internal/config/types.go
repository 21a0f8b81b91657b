// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/invowk/cmdengine/pkg/argparse"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/engine"
)

const (
	// ParserDefault selects the built-in tokenizer.
	ParserDefault = "default"
	// ParserShell selects the POSIX shell word splitter.
	ParserShell = "shell"

	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the complete cmdengine configuration.
	Config struct {
		Tree   string       `json:"tree,omitempty" mapstructure:"tree" toml:"tree,omitempty"`
		Engine EngineConfig `json:"engine" mapstructure:"engine" toml:"engine"`
		UI     UIConfig     `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// EngineConfig mirrors engine.Options in configuration spelling.
	EngineConfig struct {
		Comparison           string            `json:"comparison" mapstructure:"comparison" toml:"comparison"`
		DefaultRunMode       string            `json:"default_run_mode" mapstructure:"default_run_mode" toml:"default_run_mode"`
		IgnoreExtraArguments bool              `json:"ignore_extra_arguments" mapstructure:"ignore_extra_arguments" toml:"ignore_extra_arguments"`
		Separator            string            `json:"separator" mapstructure:"separator" toml:"separator"`
		SeparatorRequirement string            `json:"separator_requirement" mapstructure:"separator_requirement" toml:"separator_requirement"`
		ArgumentParser       string            `json:"argument_parser" mapstructure:"argument_parser" toml:"argument_parser"`
		Quotes               map[string]string `json:"quotes,omitempty" mapstructure:"quotes" toml:"quotes,omitempty"`
		AbsenceNouns         []string          `json:"absence_nouns" mapstructure:"absence_nouns" toml:"absence_nouns"`
		// CooldownIdleTTL is a Go duration literal; "0s" disables eviction.
		CooldownIdleTTL string `json:"cooldown_idle_ttl" mapstructure:"cooldown_idle_ttl" toml:"cooldown_idle_ttl"`
	}

	// UIConfig configures CLI output.
	UIConfig struct {
		Verbose bool   `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		Style   string `json:"style" mapstructure:"style" toml:"style"`
	}

	// InvalidConfigError lists every field that failed conversion.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Comparison:           commandtree.ComparisonIgnoreCase.String(),
			DefaultRunMode:       commandtree.RunModeSequential.String(),
			Separator:            commandtree.DefaultSeparator,
			SeparatorRequirement: commandtree.SeparatorMandatory.String(),
			ArgumentParser:       ParserDefault,
			AbsenceNouns:         []string{"null", "none", "nothing"},
			CooldownIdleTTL:      "0s",
		},
		UI: UIConfig{Style: StyleAuto},
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// EngineOptions converts the engine section to engine.Options. Logger,
// tracer, clock and events are left for the caller.
func (c *Config) EngineOptions() (engine.Options, error) {
	ec := c.Engine
	var errs []error
	field := func(name string, err error) {
		errs = append(errs, fmt.Errorf("engine.%s: %w", name, err))
	}

	var opts engine.Options
	var err error
	if opts.Comparison, err = commandtree.ParseComparison(ec.Comparison); err != nil {
		field("comparison", err)
	}
	if opts.DefaultRunMode, err = commandtree.ParseRunMode(ec.DefaultRunMode); err != nil {
		field("default_run_mode", err)
	}
	if opts.SeparatorRequirement, err = commandtree.ParseSeparatorRequirement(ec.SeparatorRequirement); err != nil {
		field("separator_requirement", err)
	}
	opts.IgnoreExtraArguments = ec.IgnoreExtraArguments
	opts.Separator = ec.Separator
	opts.AbsenceNouns = ec.AbsenceNouns

	switch strings.ToLower(ec.ArgumentParser) {
	case "", ParserDefault:
		opts.ArgumentParser = argparse.Default{}
	case ParserShell:
		opts.ArgumentParser = argparse.Shell{}
	default:
		field("argument_parser", fmt.Errorf("unknown parser %q (valid: default, shell)", ec.ArgumentParser))
	}

	if len(ec.Quotes) > 0 {
		opts.QuoteMap = make(argparse.QuoteMap, len(ec.Quotes))
		for open, closing := range ec.Quotes {
			o, c, ok := singleRunes(open, closing)
			if !ok {
				field("quotes", fmt.Errorf("%q: %q must map one character to one character", open, closing))
				continue
			}
			opts.QuoteMap[o] = c
		}
	}

	if ec.CooldownIdleTTL != "" {
		if opts.CooldownIdleTTL, err = time.ParseDuration(ec.CooldownIdleTTL); err != nil {
			field("cooldown_idle_ttl", err)
		}
	}

	if len(errs) > 0 {
		return engine.Options{}, &InvalidConfigError{FieldErrors: errs}
	}
	if err := opts.Validate(); err != nil {
		return engine.Options{}, &InvalidConfigError{FieldErrors: []error{err}}
	}
	return opts, nil
}

func singleRunes(a, b string) (rune, rune, bool) {
	if utf8.RuneCountInString(a) != 1 || utf8.RuneCountInString(b) != 1 {
		return 0, 0, false
	}
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	return ra, rb, true
}
