// SPDX-License-Identifier: MPL-2.0

// Package check evaluates grouped guard predicates.
//
// Checks sharing a non-empty group are OR-combined; a check without a group is
// a group of its own; every group must pass. When evaluation fails, every
// failed check is reported, including failures inside groups that passed.
package check

import (
	"context"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Failure is one failed check and its result.
type Failure struct {
	Name   string
	Group  string
	Reason string
}

type outcome struct {
	group  string
	failed *Failure
}

// Evaluate runs module- or command-scoped checks. It returns nil when the
// checks pass as a whole.
func Evaluate(ctx context.Context, checks []commandtree.Check, ec *commandtree.ExecutionContext) []Failure {
	outcomes := make([]outcome, 0, len(checks))
	for _, c := range checks {
		outcomes = append(outcomes, record(c.DisplayName(), c.Group, c.Run(ctx, ec)))
	}
	return resolve(outcomes)
}

// EvaluateParameter runs parameter checks against one bound value.
func EvaluateParameter(ctx context.Context, checks []commandtree.ParameterCheck, value any, ec *commandtree.ExecutionContext) []Failure {
	outcomes := make([]outcome, 0, len(checks))
	for _, c := range checks {
		outcomes = append(outcomes, record(c.DisplayName(), c.Group, c.Run(ctx, value, ec)))
	}
	return resolve(outcomes)
}

func record(name, group string, result commandtree.CheckResult) outcome {
	o := outcome{group: group}
	if !result.IsSuccessful() {
		o.failed = &Failure{Name: name, Group: group, Reason: result.Reason()}
	}
	return o
}

func resolve(outcomes []outcome) []Failure {
	satisfied := make(map[string]bool)
	for _, o := range outcomes {
		if o.group != "" && o.failed == nil {
			satisfied[o.group] = true
		}
	}

	passed := true
	var failures []Failure
	for _, o := range outcomes {
		if o.failed == nil {
			continue
		}
		failures = append(failures, *o.failed)
		if o.group == "" || !satisfied[o.group] {
			passed = false
		}
	}
	if passed {
		return nil
	}
	return failures
}
