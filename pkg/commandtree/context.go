// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"slices"

	"github.com/google/uuid"
)

type (
	// Services is the service-lookup handle carried by an execution context.
	// Dependency injection is outside the engine; hosts plug any lookup in here.
	Services interface {
		Lookup(key string) (any, bool)
	}

	// ServiceMap is a map-backed Services implementation.
	ServiceMap map[string]any

	// ExecutionContext carries one invocation through the pipeline.
	//
	// Hosts create it with NewExecutionContext and hand it to the engine; the
	// engine fills in the resolved command, matched alias/path, raw argument
	// text and bound arguments as the pipeline advances. A context must not be
	// shared between concurrent invocations.
	ExecutionContext struct {
		id       uuid.UUID
		services Services

		command  *Command
		alias    string
		path     []string
		searched bool
		raw      string
		hasRaw   bool
		args     []any
	}
)

// Lookup implements Services.
func (m ServiceMap) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// NewExecutionContext creates a context with a fresh invocation ID.
// A nil services handle is replaced by an empty ServiceMap.
func NewExecutionContext(services Services) *ExecutionContext {
	if services == nil {
		services = ServiceMap{}
	}
	return &ExecutionContext{
		id:       uuid.New(),
		services: services,
	}
}

// Service looks up key in the context's services and asserts it to T.
func Service[T any](ec *ExecutionContext, key string) (T, bool) {
	var zero T
	v, ok := ec.services.Lookup(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// ID returns the invocation ID, used to correlate log lines and spans.
func (c *ExecutionContext) ID() uuid.UUID {
	return c.id
}

// Services returns the service-lookup handle.
func (c *ExecutionContext) Services() Services {
	return c.services
}

// Command returns the resolved command, or nil before resolution.
func (c *ExecutionContext) Command() *Command {
	return c.command
}

// Alias returns the alias that matched the command. ok is false when the
// command was invoked directly without searching.
func (c *ExecutionContext) Alias() (alias string, ok bool) {
	return c.alias, c.searched
}

// Path returns the alias segments consumed while matching, or nil when the
// command was invoked directly without searching.
func (c *ExecutionContext) Path() []string {
	if !c.searched {
		return nil
	}
	return slices.Clone(c.path)
}

// RawArguments returns the raw argument text. ok is false when the arguments
// were supplied already parsed.
func (c *ExecutionContext) RawArguments() (raw string, ok bool) {
	return c.raw, c.hasRaw
}

// Arguments returns the bound argument values in parameter order. Absent
// optional parameters hold their default value.
func (c *ExecutionContext) Arguments() []any {
	return slices.Clone(c.args)
}

// Argument returns the bound value of the parameter at index i.
func (c *ExecutionContext) Argument(i int) (any, bool) {
	if i < 0 || i >= len(c.args) {
		return nil, false
	}
	return c.args[i], true
}

// SetMatch records a search result on the context.
func (c *ExecutionContext) SetMatch(cmd *Command, alias string, path []string, raw string) {
	c.command = cmd
	c.alias = alias
	c.path = slices.Clone(path)
	c.searched = true
	c.raw = raw
	c.hasRaw = true
	c.args = nil
}

// SetCommand records a directly invoked command, clearing any search result.
func (c *ExecutionContext) SetCommand(cmd *Command) {
	c.command = cmd
	c.alias = ""
	c.path = nil
	c.searched = false
	c.raw = ""
	c.hasRaw = false
	c.args = nil
}

// SetArguments records the bound argument values.
func (c *ExecutionContext) SetArguments(args []any) {
	c.args = slices.Clone(args)
}
