// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/invowk/cmdengine/internal/check"
	"github.com/invowk/cmdengine/internal/cooldown"
	"github.com/invowk/cmdengine/pkg/argparse"
	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Result kinds, one per concrete result type.
const (
	KindSuccess Kind = iota
	KindCommandNotFound
	KindCommandDisabled
	KindChecksFailed
	KindParameterChecksFailed
	KindArgumentParseFailed
	KindTypeParseFailed
	KindCommandOnCooldown
	KindOverloadsFailed
	KindExecutionFailed
)

// Pipeline steps reported by ExecutionFailedResult.
const (
	StepChecks Step = iota
	StepArgumentParsing
	StepTypeParsing
	StepParameterChecks
	StepCooldowns
	StepBeforeHooks
	StepHandler
	StepAfterHooks
)

type (
	// Kind classifies a Result.
	Kind int

	// Step identifies where in the pipeline an ExecutionFailedResult occurred.
	Step int

	// CheckFailure is one failed guard and its reason.
	CheckFailure = check.Failure

	// CooldownExceeded is one cooldown that blocked a call.
	CooldownExceeded = cooldown.Exceeded

	// Result is the terminal outcome of one invocation.
	Result interface {
		Kind() Kind
		IsSuccessful() bool
		// Reason is a human-readable explanation; empty for successes.
		Reason() string
	}

	// SuccessResult is returned when a command ran (or was started) successfully.
	SuccessResult struct {
		Command *commandtree.Command
		// Value is the handler's return value when HasValue is true.
		Value    any
		HasValue bool
		// Deferred is true when the handler was started in the background.
		Deferred bool
	}

	// CommandNotFoundResult is returned when no alias path matched.
	CommandNotFoundResult struct {
		Input string
	}

	// CommandDisabledResult is returned when the matched command is disabled.
	CommandDisabledResult struct {
		Command *commandtree.Command
	}

	// ChecksFailedResult is returned when module or command checks failed.
	// Exactly one of Module and Command is set.
	ChecksFailedResult struct {
		Module   *commandtree.Module
		Command  *commandtree.Command
		Failures []CheckFailure
	}

	// ParameterChecksFailedResult is returned when checks on one bound argument failed.
	ParameterChecksFailedResult struct {
		Parameter *commandtree.Parameter
		Argument  any
		Failures  []CheckFailure
	}

	// ArgumentParseFailedResult is returned when tokenizing failed.
	ArgumentParseFailedResult struct {
		Command      *commandtree.Command
		RawArguments string
		Parse        argparse.Result
	}

	// TypeParseFailedResult is returned when a raw slice could not be converted.
	TypeParseFailedResult struct {
		Parameter *commandtree.Parameter
		Value     string
		reason    string
	}

	// CommandOnCooldownResult is returned when one or more cooldowns blocked the call.
	CommandOnCooldownResult struct {
		Command  *commandtree.Command
		Exceeded []CooldownExceeded
	}

	// Attempt pairs an overload with the result of trying it.
	Attempt struct {
		Command *commandtree.Command
		Result  Result
	}

	// OverloadsFailedResult is returned when several candidates matched and none succeeded.
	OverloadsFailedResult struct {
		Attempts []Attempt
	}

	// ExecutionFailedResult is returned when user code returned an error or
	// panicked, or the context was cancelled before invocation.
	ExecutionFailedResult struct {
		Command *commandtree.Command
		Step    Step
		Err     error
	}
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindCommandNotFound:
		return "command_not_found"
	case KindCommandDisabled:
		return "command_disabled"
	case KindChecksFailed:
		return "checks_failed"
	case KindParameterChecksFailed:
		return "parameter_checks_failed"
	case KindArgumentParseFailed:
		return "argument_parse_failed"
	case KindTypeParseFailed:
		return "type_parse_failed"
	case KindCommandOnCooldown:
		return "command_on_cooldown"
	case KindOverloadsFailed:
		return "overloads_failed"
	case KindExecutionFailed:
		return "execution_failed"
	default:
		return "unknown"
	}
}

func (s Step) String() string {
	switch s {
	case StepChecks:
		return "checks"
	case StepArgumentParsing:
		return "argument parsing"
	case StepTypeParsing:
		return "type parsing"
	case StepParameterChecks:
		return "parameter checks"
	case StepCooldowns:
		return "cooldowns"
	case StepBeforeHooks:
		return "before hooks"
	case StepHandler:
		return "handler"
	case StepAfterHooks:
		return "after hooks"
	default:
		return "unknown"
	}
}

func (*SuccessResult) Kind() Kind        { return KindSuccess }
func (*SuccessResult) IsSuccessful() bool { return true }
func (*SuccessResult) Reason() string     { return "" }

func (*CommandNotFoundResult) Kind() Kind        { return KindCommandNotFound }
func (*CommandNotFoundResult) IsSuccessful() bool { return false }
func (*CommandNotFoundResult) Reason() string     { return "No command found matching the input." }

func (*CommandDisabledResult) Kind() Kind        { return KindCommandDisabled }
func (*CommandDisabledResult) IsSuccessful() bool { return false }
func (r *CommandDisabledResult) Reason() string {
	return "Command " + r.Command.FullName() + " is disabled."
}

func (*ChecksFailedResult) Kind() Kind        { return KindChecksFailed }
func (*ChecksFailedResult) IsSuccessful() bool { return false }
func (r *ChecksFailedResult) Reason() string {
	target := "command " + r.Command.FullName()
	if r.Module != nil {
		target = "module " + r.Module.Name()
	}
	if len(r.Failures) == 1 {
		return "One check failed for the " + target + "."
	}
	return "Multiple checks failed for the " + target + "."
}

func (*ParameterChecksFailedResult) Kind() Kind        { return KindParameterChecksFailed }
func (*ParameterChecksFailedResult) IsSuccessful() bool { return false }
func (r *ParameterChecksFailedResult) Reason() string {
	if len(r.Failures) == 1 {
		return "One check failed for the parameter " + r.Parameter.Name() + "."
	}
	return "Multiple checks failed for the parameter " + r.Parameter.Name() + "."
}

func (*ArgumentParseFailedResult) Kind() Kind        { return KindArgumentParseFailed }
func (*ArgumentParseFailedResult) IsSuccessful() bool { return false }
func (r *ArgumentParseFailedResult) Reason() string  { return r.Parse.Reason() }

func (*TypeParseFailedResult) Kind() Kind        { return KindTypeParseFailed }
func (*TypeParseFailedResult) IsSuccessful() bool { return false }
func (r *TypeParseFailedResult) Reason() string  { return r.reason }

func (*CommandOnCooldownResult) Kind() Kind        { return KindCommandOnCooldown }
func (*CommandOnCooldownResult) IsSuccessful() bool { return false }
func (r *CommandOnCooldownResult) Reason() string {
	name := r.Command.FullName()
	if len(r.Exceeded) == 1 {
		return fmt.Sprintf("Command %s is on a '%s' cooldown. Retry after %s.",
			name, r.Exceeded[0].Cooldown.BucketType, r.Exceeded[0].RetryAfter)
	}
	parts := make([]string, 0, len(r.Exceeded))
	for _, x := range r.Exceeded {
		parts = append(parts, fmt.Sprintf("'%s' - retry after %s", x.Cooldown.BucketType, x.RetryAfter))
	}
	return fmt.Sprintf("Command %s is on multiple cooldowns: %s.", name, strings.Join(parts, ", "))
}

// RetryAfter returns the longest wait among the exceeded cooldowns.
func (r *CommandOnCooldownResult) RetryAfter() time.Duration {
	var longest time.Duration
	for _, x := range r.Exceeded {
		longest = max(longest, x.RetryAfter)
	}
	return longest
}

func (*OverloadsFailedResult) Kind() Kind        { return KindOverloadsFailed }
func (*OverloadsFailedResult) IsSuccessful() bool { return false }
func (*OverloadsFailedResult) Reason() string     { return "Failed to find a matching overload." }

func (*ExecutionFailedResult) Kind() Kind        { return KindExecutionFailed }
func (*ExecutionFailedResult) IsSuccessful() bool { return false }
func (r *ExecutionFailedResult) Reason() string {
	return fmt.Sprintf("Command %s failed during %s: %v", r.Command.FullName(), r.Step, r.Err)
}

// Unwrap exposes the underlying error.
func (r *ExecutionFailedResult) Unwrap() error { return r.Err }

// Details returns every failure line carried by r, one per entry, for
// rendering. It returns nil for results that only carry a reason.
func Details(r Result) []string {
	switch r := r.(type) {
	case *ChecksFailedResult:
		return checkLines(r.Failures)
	case *ParameterChecksFailedResult:
		return checkLines(r.Failures)
	case *OverloadsFailedResult:
		lines := make([]string, 0, len(r.Attempts))
		for _, a := range r.Attempts {
			line := a.Command.FullName() + " " + a.Command.Signature() + ": " + a.Result.Reason()
			for _, sub := range Details(a.Result) {
				line += "\n    " + sub
			}
			lines = append(lines, line)
		}
		return lines
	default:
		return nil
	}
}

func checkLines(failures []CheckFailure) []string {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		line := f.Name + ": " + f.Reason
		if f.Group != "" {
			line = f.Name + " (group " + f.Group + "): " + f.Reason
		}
		lines = append(lines, line)
	}
	return lines
}
