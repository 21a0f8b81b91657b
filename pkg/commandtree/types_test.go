// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"errors"
	"testing"
)

func TestParseComparison(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Comparison
		wantErr bool
	}{
		{"", ComparisonIgnoreCase, false},
		{"ignore_case", ComparisonIgnoreCase, false},
		{"CASE_SENSITIVE", ComparisonCaseSensitive, false},
		{"  case_sensitive ", ComparisonCaseSensitive, false},
		{"ordinal", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseComparison(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidComparison) {
					t.Fatalf("ParseComparison(%q) error = %v, want ErrInvalidComparison", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseComparison(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseComparison(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if round, _ := ParseComparison(got.String()); round != got {
				t.Errorf("String() round trip = %v, want %v", round, got)
			}
		})
	}
}

func TestEnumIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		isValid  func() (bool, []error)
		want     bool
		sentinel error
	}{
		{"comparison ok", ComparisonCaseSensitive.IsValid, true, nil},
		{"comparison bad", Comparison(9).IsValid, false, ErrInvalidComparison},
		{"run mode ok", RunModeParallel.IsValid, true, nil},
		{"run mode bad", RunMode(-1).IsValid, false, ErrInvalidRunMode},
		{"separator ok", SeparatorNone.IsValid, true, nil},
		{"separator bad", SeparatorRequirement(7).IsValid, false, ErrInvalidSeparatorRequirement},
		{"type tag ok", TypeTag("color").IsValid, true, nil},
		{"type tag empty", TypeTag("").IsValid, false, ErrInvalidTypeTag},
		{"type tag space", TypeTag("my type").IsValid, false, ErrInvalidTypeTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.isValid()
			if ok != tt.want {
				t.Fatalf("IsValid() = %v, want %v", ok, tt.want)
			}
			if tt.want {
				if len(errs) != 0 {
					t.Errorf("IsValid() returned errors for valid value: %v", errs)
				}
				return
			}
			if len(errs) != 1 || !errors.Is(errs[0], tt.sentinel) {
				t.Errorf("IsValid() errors = %v, want one wrapping %v", errs, tt.sentinel)
			}
		})
	}
}

func TestRunMode_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode     RunMode
		fallback RunMode
		want     RunMode
	}{
		{RunModeDefault, RunModeDefault, RunModeSequential},
		{RunModeDefault, RunModeParallel, RunModeParallel},
		{RunModeSequential, RunModeParallel, RunModeSequential},
		{RunModeParallel, RunModeSequential, RunModeParallel},
	}

	for _, tt := range tests {
		if got := tt.mode.Resolve(tt.fallback); got != tt.want {
			t.Errorf("%v.Resolve(%v) = %v, want %v", tt.mode, tt.fallback, got, tt.want)
		}
	}
}

func TestTypeTag_IsNumeric(t *testing.T) {
	t.Parallel()

	for _, tag := range []TypeTag{TypeInt, TypeUint8, TypeFloat64} {
		if !tag.IsNumeric() {
			t.Errorf("%s.IsNumeric() = false, want true", tag)
		}
	}
	for _, tag := range []TypeTag{TypeString, TypeBool, TypeRune, TypeDuration, "color"} {
		if tag.IsNumeric() {
			t.Errorf("%s.IsNumeric() = true, want false", tag)
		}
	}
}
