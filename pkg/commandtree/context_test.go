// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"testing"

	"github.com/google/uuid"
)

func TestExecutionContext_Lifecycle(t *testing.T) {
	t.Parallel()

	ec := NewExecutionContext(ServiceMap{"invoker": "alice", "count": 3})
	if ec.ID() == uuid.Nil {
		t.Fatal("ID() should not be nil")
	}
	if _, ok := ec.Alias(); ok {
		t.Error("Alias() should be absent before matching")
	}
	if _, ok := ec.RawArguments(); ok {
		t.Error("RawArguments() should be absent before matching")
	}

	who, ok := Service[string](ec, "invoker")
	if !ok || who != "alice" {
		t.Errorf("Service[string](invoker) = %q, %v", who, ok)
	}
	if _, ok := Service[string](ec, "count"); ok {
		t.Error("Service[string](count) should fail the type assertion")
	}
	if _, ok := Service[int](ec, "missing"); ok {
		t.Error("Service[int](missing) should not be found")
	}

	cmd := &Command{name: "ban"}
	ec.SetMatch(cmd, "ban", []string{"admin", "ban"}, "bob spam")
	alias, ok := ec.Alias()
	if !ok || alias != "ban" {
		t.Errorf("Alias() = %q, %v", alias, ok)
	}
	if raw, ok := ec.RawArguments(); !ok || raw != "bob spam" {
		t.Errorf("RawArguments() = %q, %v", raw, ok)
	}
	path := ec.Path()
	path[0] = "mutated"
	if ec.Path()[0] != "admin" {
		t.Error("Path() must return a copy")
	}

	ec.SetArguments([]any{"bob", "spam"})
	if v, ok := ec.Argument(1); !ok || v != "spam" {
		t.Errorf("Argument(1) = %v, %v", v, ok)
	}
	if _, ok := ec.Argument(2); ok {
		t.Error("Argument(2) should be out of range")
	}

	ec.SetCommand(cmd)
	if ec.Path() != nil {
		t.Error("Path() should be nil after SetCommand")
	}
	if _, ok := ec.RawArguments(); ok {
		t.Error("RawArguments() should be absent after SetCommand")
	}
	if len(ec.Arguments()) != 0 {
		t.Error("Arguments() should be cleared after SetCommand")
	}
}

func TestNewExecutionContext_NilServices(t *testing.T) {
	t.Parallel()

	ec := NewExecutionContext(nil)
	if ec.Services() == nil {
		t.Fatal("Services() should default to an empty map")
	}
	if _, ok := ec.Services().Lookup("x"); ok {
		t.Error("empty services should not resolve keys")
	}
}
