// SPDX-License-Identifier: MPL-2.0

// Package engine matches raw input against a command tree and executes the
// selected command.
//
// Execute runs the full pipeline: alias matching, then for each candidate
// overload (deepest path first, then highest priority, then declaration order)
// the disabled flag, module and command checks, argument tokenizing, type
// binding, parameter checks and cooldowns. The first candidate to pass every
// gate is invoked. Every outcome is returned as a Result value; nothing in the
// pipeline returns a Go error or panics into the caller.
//
// Commands with RunModeParallel are started in the background once all gates
// pass; Execute then returns a deferred success and the handler's own result is
// delivered to Options.OnExecuted or Options.OnFailed. Wait blocks until every
// background handler has returned.
package engine
