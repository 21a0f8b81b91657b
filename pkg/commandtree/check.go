// SPDX-License-Identifier: MPL-2.0

package commandtree

import "context"

type (
	// CheckResult is the outcome of a single guard evaluation.
	// The zero value is a passing result.
	CheckResult struct {
		reason string
		failed bool
	}

	// CheckFunc guards a module or command. It must not retain ec after returning.
	CheckFunc func(ctx context.Context, ec *ExecutionContext) CheckResult

	// ParameterCheckFunc guards one bound argument value.
	ParameterCheckFunc func(ctx context.Context, argument any, ec *ExecutionContext) CheckResult

	// Check is a module- or command-scoped guard.
	//
	// Checks sharing a non-empty Group are OR-combined: the group passes when any
	// member passes. A check with an empty Group forms its own group. All groups
	// must pass for the scope to pass.
	Check struct {
		// Name identifies the check in failure reports.
		Name string
		// Group is the optional OR-group key.
		Group string
		// Run evaluates the guard.
		Run CheckFunc
	}

	// ParameterCheck is a guard bound to one argument value. Grouping follows
	// the same rules as Check.
	ParameterCheck struct {
		Name  string
		Group string
		Run   ParameterCheckFunc
		// Accepts optionally restricts the parameter types the check may be
		// attached to. Build rejects a parameter whose type is not accepted.
		Accepts func(TypeTag) bool
	}
)

// Passed returns a successful CheckResult.
func Passed() CheckResult {
	return CheckResult{}
}

// Failed returns an unsuccessful CheckResult carrying reason.
func Failed(reason string) CheckResult {
	return CheckResult{reason: reason, failed: true}
}

// IsSuccessful reports whether the check passed.
func (r CheckResult) IsSuccessful() bool {
	return !r.failed
}

// Reason returns the failure reason, or "" for a passing result.
func (r CheckResult) Reason() string {
	return r.reason
}

// DisplayName returns Name, or "check" when the check is anonymous.
func (c Check) DisplayName() string {
	if c.Name == "" {
		return "check"
	}
	return c.Name
}

// DisplayName returns Name, or "check" when the check is anonymous.
func (c ParameterCheck) DisplayName() string {
	if c.Name == "" {
		return "check"
	}
	return c.Name
}
