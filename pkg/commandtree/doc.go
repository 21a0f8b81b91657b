// SPDX-License-Identifier: MPL-2.0

// Package commandtree defines the immutable command tree consumed by the engine.
//
// A tree is a graph of Module → Command → Parameter built once through the fluent
// builders in this package (NewModule, NewCommand, NewParameter). Build validates
// every structural invariant (alias shape and uniqueness, parameter ordering,
// remainder placement, cooldown shape, check/type compatibility) and collects all
// problems into a single *BuildError instead of stopping at the first one.
//
// After Build returns, nothing in the tree is mutated; accessors hand out copies of
// internal slices. The per-invocation ExecutionContext, check results and type
// parser results also live here so that user-supplied checks, handlers and custom
// type parsers can be written against this package alone.
package commandtree
