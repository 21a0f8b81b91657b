// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ComparisonIgnoreCase compares aliases, enum names and absence nouns with
	// Unicode case folding. It is the zero value.
	ComparisonIgnoreCase Comparison = iota
	// ComparisonCaseSensitive compares strings byte for byte.
	ComparisonCaseSensitive
)

const (
	// RunModeDefault defers to the engine's configured default run mode.
	RunModeDefault RunMode = iota
	// RunModeSequential makes the caller wait for the handler to return.
	RunModeSequential
	// RunModeParallel starts the handler in the background once every gate passed.
	RunModeParallel
)

const (
	// SeparatorMandatory requires the separator (or end of input) after every alias segment.
	SeparatorMandatory SeparatorRequirement = iota
	// SeparatorOptional consumes separators after a segment when present but does not require them.
	SeparatorOptional
	// SeparatorNone never consumes a separator at segment boundaries.
	SeparatorNone
)

// Built-in primitive type tags understood by the type parser registry.
const (
	TypeString  TypeTag = "string"
	TypeBool    TypeTag = "bool"
	TypeRune    TypeTag = "rune"
	TypeInt     TypeTag = "int"
	TypeInt8    TypeTag = "int8"
	TypeInt16   TypeTag = "int16"
	TypeInt32   TypeTag = "int32"
	TypeInt64   TypeTag = "int64"
	TypeUint    TypeTag = "uint"
	TypeUint8   TypeTag = "uint8"
	TypeUint16  TypeTag = "uint16"
	TypeUint32  TypeTag = "uint32"
	TypeUint64  TypeTag = "uint64"
	TypeFloat32 TypeTag = "float32"
	TypeFloat64 TypeTag = "float64"
	// TypeDuration parses Go duration literals such as "1m30s".
	TypeDuration TypeTag = "duration"
)

var (
	// ErrInvalidComparison is returned when a Comparison value is not recognized.
	ErrInvalidComparison = errors.New("invalid comparison mode")
	// ErrInvalidRunMode is returned when a RunMode value is not recognized.
	ErrInvalidRunMode = errors.New("invalid run mode")
	// ErrInvalidSeparatorRequirement is returned when a SeparatorRequirement value is not recognized.
	ErrInvalidSeparatorRequirement = errors.New("invalid separator requirement")
	// ErrInvalidTypeTag is returned when a TypeTag is empty or contains whitespace.
	ErrInvalidTypeTag = errors.New("invalid type tag")
)

type (
	// Comparison selects how aliases, enum member names and absence nouns are compared.
	Comparison int

	// RunMode governs whether the host awaits a handler before accepting the next input.
	RunMode int

	// SeparatorRequirement is the policy for separators between alias segments and
	// between the last segment and the raw argument text.
	SeparatorRequirement int

	// TypeTag is the stable identifier of a parameter's declared type. Built-in
	// primitive tags are declared as constants; enum and custom tags are any other
	// non-empty token registered with the type parser registry.
	TypeTag string

	// InvalidEnumValueError is returned when a Comparison, RunMode or
	// SeparatorRequirement holds an unknown value. Sentinel is one of the
	// package-level ErrInvalid* errors.
	InvalidEnumValueError struct {
		Sentinel error
		Value    int
	}

	// InvalidTypeTagError is returned when a TypeTag is empty or contains whitespace.
	// It wraps ErrInvalidTypeTag for errors.Is() compatibility.
	InvalidTypeTagError struct {
		Value TypeTag
	}
)

// Error implements the error interface for InvalidEnumValueError.
func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("%s: %d", e.Sentinel, e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEnumValueError) Unwrap() error {
	return e.Sentinel
}

// Error implements the error interface for InvalidTypeTagError.
func (e *InvalidTypeTagError) Error() string {
	return fmt.Sprintf("invalid type tag %q", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidTypeTagError) Unwrap() error {
	return ErrInvalidTypeTag
}

// IsValid returns whether the Comparison is one of the defined modes,
// and a list of validation errors if it is not.
func (c Comparison) IsValid() (bool, []error) {
	switch c {
	case ComparisonIgnoreCase, ComparisonCaseSensitive:
		return true, nil
	default:
		return false, []error{&InvalidEnumValueError{Sentinel: ErrInvalidComparison, Value: int(c)}}
	}
}

// String returns the configuration spelling of the comparison mode.
func (c Comparison) String() string {
	switch c {
	case ComparisonIgnoreCase:
		return "ignore_case"
	case ComparisonCaseSensitive:
		return "case_sensitive"
	default:
		return "unknown"
	}
}

// IsCaseSensitive reports whether the comparison distinguishes letter case.
func (c Comparison) IsCaseSensitive() bool {
	return c == ComparisonCaseSensitive
}

// ParseComparison parses the configuration spelling of a comparison mode.
// The empty string selects ComparisonIgnoreCase.
func ParseComparison(value string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ignore_case":
		return ComparisonIgnoreCase, nil
	case "case_sensitive":
		return ComparisonCaseSensitive, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: ignore_case, case_sensitive)", ErrInvalidComparison, value)
	}
}

// IsValid returns whether the RunMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m RunMode) IsValid() (bool, []error) {
	switch m {
	case RunModeDefault, RunModeSequential, RunModeParallel:
		return true, nil
	default:
		return false, []error{&InvalidEnumValueError{Sentinel: ErrInvalidRunMode, Value: int(m)}}
	}
}

// String returns the configuration spelling of the run mode.
func (m RunMode) String() string {
	switch m {
	case RunModeDefault:
		return "default"
	case RunModeSequential:
		return "sequential"
	case RunModeParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Resolve returns m, or fallback when m is RunModeDefault. A fallback that is
// itself RunModeDefault resolves to RunModeSequential.
func (m RunMode) Resolve(fallback RunMode) RunMode {
	if m != RunModeDefault {
		return m
	}
	if fallback == RunModeDefault {
		return RunModeSequential
	}
	return fallback
}

// ParseRunMode parses the configuration spelling of a run mode.
func ParseRunMode(value string) (RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "default":
		return RunModeDefault, nil
	case "sequential":
		return RunModeSequential, nil
	case "parallel":
		return RunModeParallel, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: sequential, parallel)", ErrInvalidRunMode, value)
	}
}

// IsValid returns whether the SeparatorRequirement is one of the defined policies,
// and a list of validation errors if it is not.
func (r SeparatorRequirement) IsValid() (bool, []error) {
	switch r {
	case SeparatorMandatory, SeparatorOptional, SeparatorNone:
		return true, nil
	default:
		return false, []error{&InvalidEnumValueError{Sentinel: ErrInvalidSeparatorRequirement, Value: int(r)}}
	}
}

// String returns the configuration spelling of the separator requirement.
func (r SeparatorRequirement) String() string {
	switch r {
	case SeparatorMandatory:
		return "mandatory"
	case SeparatorOptional:
		return "optional"
	case SeparatorNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseSeparatorRequirement parses the configuration spelling of a separator requirement.
func ParseSeparatorRequirement(value string) (SeparatorRequirement, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "mandatory":
		return SeparatorMandatory, nil
	case "optional":
		return SeparatorOptional, nil
	case "none":
		return SeparatorNone, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: mandatory, optional, none)", ErrInvalidSeparatorRequirement, value)
	}
}

// IsValid returns whether the TypeTag is a usable identifier,
// and a list of validation errors if it is not.
func (t TypeTag) IsValid() (bool, []error) {
	if t == "" || strings.ContainsFunc(string(t), isSpace) {
		return false, []error{&InvalidTypeTagError{Value: t}}
	}
	return true, nil
}

// IsNumeric reports whether the tag is one of the built-in integer or float types.
func (t TypeTag) IsNumeric() bool {
	switch t {
	case TypeInt, TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint, TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeFloat32, TypeFloat64:
		return true
	default:
		return false
	}
}

// String returns the tag itself.
func (t TypeTag) String() string {
	return string(t)
}
