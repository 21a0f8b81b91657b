// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/invowk/cmdengine/internal/check"
	"github.com/invowk/cmdengine/internal/matcher"
	"github.com/invowk/cmdengine/pkg/argparse"
	"github.com/invowk/cmdengine/pkg/commandtree"
)

type (
	// PanicError wraps a value recovered from user code.
	PanicError struct {
		Value any
		Stack []byte
	}

	// binder produces the argument values for a candidate, or a failure result.
	binder func(ctx context.Context) ([]any, Result)
)

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Execute matches input against the tree and runs the first candidate that
// passes every gate. ec is updated as the pipeline advances and must not be
// shared with a concurrent invocation.
func (e *Engine) Execute(ctx context.Context, input string, ec *commandtree.ExecutionContext) Result {
	ctx, span := e.tracer.Start(ctx, "cmdengine.Execute", trace.WithAttributes(
		attribute.String("cmdengine.invocation", ec.ID().String()),
		attribute.Int("cmdengine.input.length", len(input)),
	))
	defer span.End()
	logger := e.logger.With("invocation", ec.ID())

	matches := matcher.Find(e.tree.Root(), input, e.matchOptions())
	logger.Debug("matched input", "matches", len(matches))
	if len(matches) == 0 {
		return e.finish(ctx, span, logger, ec, &CommandNotFoundResult{Input: input})
	}

	attempts := make([]Attempt, 0, len(matches))
	for _, m := range matches {
		ec.SetMatch(m.Command, m.Alias, m.Path, m.Arguments)
		result, invoked := e.attempt(ctx, logger, m.Command, ec, e.parseArguments(ec))
		if invoked || len(matches) == 1 {
			return e.finish(ctx, span, logger, ec, result)
		}
		attempts = append(attempts, Attempt{Command: m.Command, Result: result})
	}
	return e.finish(ctx, span, logger, ec, &OverloadsFailedResult{Attempts: attempts})
}

// ExecuteCommand runs cmd with already-typed arguments, skipping matching,
// tokenizing and binding. Checks, parameter checks and cooldowns still apply.
// Missing trailing optional arguments take their default values.
func (e *Engine) ExecuteCommand(ctx context.Context, cmd *commandtree.Command, args []any, ec *commandtree.ExecutionContext) Result {
	ctx, span := e.tracer.Start(ctx, "cmdengine.ExecuteCommand", trace.WithAttributes(
		attribute.String("cmdengine.invocation", ec.ID().String()),
		attribute.String("cmdengine.command", cmd.FullName()),
	))
	defer span.End()
	logger := e.logger.With("invocation", ec.ID())

	if !e.owns(cmd) {
		return e.finish(ctx, span, logger, ec, &CommandNotFoundResult{Input: cmd.FullName()})
	}
	ec.SetCommand(cmd)
	result, _ := e.attempt(ctx, logger, cmd, ec, preparsed(cmd, args))
	return e.finish(ctx, span, logger, ec, result)
}

// attempt runs every gate for one candidate and invokes it when all pass.
// invoked reports whether the handler was started.
func (e *Engine) attempt(ctx context.Context, logger *log.Logger, cmd *commandtree.Command, ec *commandtree.ExecutionContext, bind binder) (result Result, invoked bool) {
	ctx, span := e.tracer.Start(ctx, "cmdengine.attempt", trace.WithAttributes(
		attribute.String("cmdengine.command", cmd.FullName()),
		attribute.String("cmdengine.signature", cmd.Signature()),
	))
	defer span.End()
	logger = logger.With("command", cmd.FullName())
	ctx = log.WithContext(ctx, logger)

	step := StepChecks
	defer func() {
		if rec := recover(); rec != nil {
			result = &ExecutionFailedResult{Command: cmd, Step: step, Err: &PanicError{Value: rec, Stack: debug.Stack()}}
			invoked = false
		}
		if !result.IsSuccessful() {
			span.SetStatus(codes.Error, result.Reason())
			logger.Debug("candidate rejected", "kind", result.Kind(), "reason", result.Reason())
		}
	}()

	if e.IsDisabled(cmd) {
		return &CommandDisabledResult{Command: cmd}, false
	}
	if r := e.runChecks(ctx, cmd, ec); r != nil {
		return r, false
	}

	step = StepArgumentParsing
	args, failure := bind(ctx)
	if failure != nil {
		return failure, false
	}
	ec.SetArguments(args)

	step = StepParameterChecks
	if r := e.runParameterChecks(ctx, cmd, args, ec); r != nil {
		return r, false
	}

	step = StepCooldowns
	if err := ctx.Err(); err != nil {
		return &ExecutionFailedResult{Command: cmd, Step: step, Err: err}, false
	}
	if exceeded := e.cooldowns.Acquire(cmd, ec); exceeded != nil {
		for _, x := range exceeded {
			logger.Debug("cooldown exceeded", "bucket", x.Cooldown.BucketType, "retry_after", x.RetryAfter)
		}
		return &CommandOnCooldownResult{Command: cmd, Exceeded: exceeded}, false
	}

	if cmd.RunMode().Resolve(e.opts.DefaultRunMode) == commandtree.RunModeParallel {
		bg := context.WithoutCancel(ctx)
		e.background.Go(func() error {
			r := e.invoke(bg, cmd, ec)
			e.report(bg, logger, ec, r)
			return nil
		})
		return &SuccessResult{Command: cmd, Deferred: true}, true
	}
	return e.invoke(ctx, cmd, ec), true
}

func (e *Engine) runChecks(ctx context.Context, cmd *commandtree.Command, ec *commandtree.ExecutionContext) Result {
	for _, mod := range cmd.Module().Lineage() {
		if failures := check.Evaluate(ctx, mod.Checks(), ec); failures != nil {
			return &ChecksFailedResult{Module: mod, Failures: failures}
		}
	}
	if failures := check.Evaluate(ctx, cmd.Checks(), ec); failures != nil {
		return &ChecksFailedResult{Command: cmd, Failures: failures}
	}
	return nil
}

// runParameterChecks skips absent values and checks each element of a
// multiple parameter on its own.
func (e *Engine) runParameterChecks(ctx context.Context, cmd *commandtree.Command, args []any, ec *commandtree.ExecutionContext) Result {
	for i, p := range cmd.Parameters() {
		checks := p.Checks()
		if len(checks) == 0 || i >= len(args) || args[i] == nil {
			continue
		}
		values := []any{args[i]}
		if list, ok := args[i].([]any); ok && p.IsMultiple() {
			values = list
		}
		for _, v := range values {
			if v == nil {
				continue
			}
			if failures := check.EvaluateParameter(ctx, checks, v, ec); failures != nil {
				return &ParameterChecksFailedResult{Parameter: p, Argument: v, Failures: failures}
			}
		}
	}
	return nil
}

func (e *Engine) parseArguments(ec *commandtree.ExecutionContext) binder {
	return func(ctx context.Context) ([]any, Result) {
		cmd := ec.Command()
		raw, _ := ec.RawArguments()
		parsed := e.opts.ArgumentParser.Parse(ctx, ec, e.opts.argparseConfig())
		if !parsed.IsSuccessful() {
			return nil, &ArgumentParseFailedResult{Command: cmd, RawArguments: raw, Parse: parsed}
		}
		args, failure := e.resolver.Bind(ctx, cmd, parsed.Arguments, ec)
		if failure != nil {
			return nil, &TypeParseFailedResult{
				Parameter: failure.Parameter,
				Value:     failure.Raw,
				reason:    failure.Result.Reason(),
			}
		}
		return args, nil
	}
}

func preparsed(cmd *commandtree.Command, args []any) binder {
	return func(context.Context) ([]any, Result) {
		params := cmd.Parameters()
		if len(args) > len(params) {
			return nil, &ArgumentParseFailedResult{
				Command: cmd,
				Parse:   argparse.Failed(cmd, argparse.FailureTooManyArguments, nil, -1),
			}
		}
		out := make([]any, len(params))
		copy(out, args)
		var missing []*commandtree.Parameter
		for i := len(args); i < len(params); i++ {
			if params[i].IsOptional() {
				out[i] = params[i].DefaultValue()
				continue
			}
			missing = append(missing, params[i])
		}
		if len(missing) > 0 {
			return nil, &ArgumentParseFailedResult{Command: cmd, Parse: argparse.TooFew(cmd, missing, -1)}
		}
		return out, nil
	}
}

// invoke runs the before hooks root to leaf, the handler, then the after
// hooks leaf to root.
func (e *Engine) invoke(ctx context.Context, cmd *commandtree.Command, ec *commandtree.ExecutionContext) (result Result) {
	ctx, span := e.tracer.Start(ctx, "cmdengine.invoke", trace.WithAttributes(
		attribute.String("cmdengine.command", cmd.FullName()),
	))
	defer span.End()

	step := StepBeforeHooks
	defer func() {
		if rec := recover(); rec != nil {
			result = &ExecutionFailedResult{Command: cmd, Step: step, Err: &PanicError{Value: rec, Stack: debug.Stack()}}
		}
		if !result.IsSuccessful() {
			span.SetStatus(codes.Error, result.Reason())
		}
	}()

	lineage := cmd.Module().Lineage()
	for _, mod := range lineage {
		if hook := mod.Before(); hook != nil {
			if err := hook(ctx, ec); err != nil {
				return &ExecutionFailedResult{Command: cmd, Step: step, Err: err}
			}
		}
	}

	step = StepHandler
	value, err := cmd.Handler()(ctx, ec)
	if err != nil {
		return &ExecutionFailedResult{Command: cmd, Step: step, Err: err}
	}

	step = StepAfterHooks
	for i := len(lineage) - 1; i >= 0; i-- {
		if hook := lineage[i].After(); hook != nil {
			if err := hook(ctx, ec); err != nil {
				return &ExecutionFailedResult{Command: cmd, Step: step, Err: err}
			}
		}
	}
	return &SuccessResult{Command: cmd, Value: value, HasValue: value != nil}
}

func (e *Engine) finish(ctx context.Context, span trace.Span, logger *log.Logger, ec *commandtree.ExecutionContext, result Result) Result {
	span.SetAttributes(attribute.String("cmdengine.result", result.Kind().String()))
	if !result.IsSuccessful() {
		span.SetStatus(codes.Error, result.Reason())
	}
	e.report(ctx, logger, ec, result)
	return result
}

// report logs a final result and fires the matching event. Deferred successes
// are reported again once the background handler returns.
func (e *Engine) report(ctx context.Context, logger *log.Logger, ec *commandtree.ExecutionContext, result Result) {
	if cmd := ec.Command(); cmd != nil {
		logger = logger.With("command", cmd.FullName())
		if alias, ok := ec.Alias(); ok {
			logger = logger.With("alias", alias, "path", strings.Join(ec.Path(), e.opts.Separator))
		}
	}

	if s, ok := result.(*SuccessResult); ok {
		if s.Deferred {
			logger.Debug("command started in background")
			return
		}
		logger.Info("command executed", "has_value", s.HasValue)
		if e.opts.OnExecuted != nil {
			e.opts.OnExecuted(ctx, ec, result)
		}
		return
	}

	logger.Warn("command failed", "kind", result.Kind(), "reason", result.Reason())
	if e.opts.OnFailed != nil {
		e.opts.OnFailed(ctx, ec, result)
	}
}
