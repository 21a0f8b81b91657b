// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func noop(context.Context, *ExecutionContext) (any, error) { return nil, nil }

func TestBuild_ValidTree(t *testing.T) {
	t.Parallel()

	root := NewModule("root").
		AddCommand(NewCommand("ping", noop).WithAliases("ping", "p")).
		AddModule(
			NewModule("admin").WithAliases("admin", "a").
				AddCommand(
					NewCommand("ban", noop).WithAliases("ban").
						WithParameters(
							NewParameter("user", TypeString),
							NewParameter("reason", TypeString).Optional("").Remainder(),
						),
					NewCommand("status", noop),
				),
			NewModule("misc").
				AddCommand(NewCommand("roll", noop).WithAliases("roll")),
		)

	tree, err := Build(root, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	cmds := tree.Commands()
	var names []string
	for _, c := range cmds {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "ping,ban,status,roll" {
		t.Errorf("declaration order = %s, want ping,ban,status,roll", got)
	}
	for i, c := range cmds {
		if c.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", c.Name(), c.Index(), i)
		}
	}

	ban := cmds[1]
	if got := ban.FullName(); got != "admin ban" {
		t.Errorf("FullName() = %q, want %q", got, "admin ban")
	}
	if got := strings.Join(ban.FullAliases(" "), "|"); got != "admin ban|a ban" {
		t.Errorf("FullAliases() = %q, want %q", got, "admin ban|a ban")
	}
	if got := ban.Signature(); got != "(string, string remainder)" {
		t.Errorf("Signature() = %q", got)
	}
	params := ban.Parameters()
	if params[1].Command() != ban || params[1].Index() != 1 {
		t.Error("parameter back-reference or index not set")
	}
	if got := cmds[2].FullName(); got != "admin" {
		t.Errorf("alias-less command FullName() = %q, want %q", got, "admin")
	}
	if got := cmds[3].Module().FullPath(); len(got) != 0 {
		t.Errorf("transparent module FullPath() = %v, want empty", got)
	}
}

func TestBuild_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	rejectAll := ParameterCheck{
		Name:    "never",
		Run:     func(context.Context, any, *ExecutionContext) CheckResult { return Passed() },
		Accepts: func(TypeTag) bool { return false },
	}

	tests := []struct {
		name string
		root *ModuleBuilder
		want []error
	}{
		{
			name: "root alias",
			root: NewModule("root").WithAliases("r").AddCommand(NewCommand("x", noop).WithAliases("x")),
			want: []error{ErrInvalidAlias},
		},
		{
			name: "alias with separator and whitespace",
			root: NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("a b", "")),
			want: []error{ErrInvalidAlias},
		},
		{
			name: "repeated alias ignoring case",
			root: NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("go", "GO")),
			want: []error{ErrDuplicateAlias},
		},
		{
			name: "sibling modules share alias",
			root: NewModule("root").AddModule(
				NewModule("one").WithAliases("m").AddCommand(NewCommand("x", noop)),
				NewModule("two").WithAliases("M").AddCommand(NewCommand("y", noop)),
			),
			want: []error{ErrDuplicateAlias},
		},
		{
			name: "missing alias at root",
			root: NewModule("root").AddCommand(NewCommand("x", noop)),
			want: []error{ErrMissingAlias},
		},
		{
			name: "missing handler",
			root: NewModule("root").AddCommand(NewCommand("x", nil).WithAliases("x")),
			want: []error{ErrMissingHandler},
		},
		{
			name: "parameter order and placement",
			root: NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("x").WithParameters(
				NewParameter("a", TypeString).Optional(nil),
				NewParameter("b", TypeInt),
				NewParameter("c", TypeString).Remainder().Multiple(),
				NewParameter("d", TypeString).Optional(nil),
			)),
			want: []error{ErrParameterOrder, ErrRemainderMultiple, ErrRemainderNotLast, ErrMultipleNotLast},
		},
		{
			name: "bad cooldown and check",
			root: NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("x").
				WithCooldown(0, time.Second, "user", nil).
				WithChecks(Check{Name: "empty"}).
				WithParameters(NewParameter("n", TypeInt).WithChecks(rejectAll))),
			want: []error{ErrInvalidCooldown, ErrInvalidCheck, ErrCheckTypeMismatch},
		},
		{
			name: "duplicate signature",
			root: NewModule("root").AddCommand(
				NewCommand("x", noop).WithAliases("x").WithParameters(NewParameter("n", TypeInt)),
				NewCommand("y", noop).WithAliases("y", "x").WithParameters(NewParameter("m", TypeInt)),
			),
			want: []error{ErrDuplicateSignature},
		},
		{
			name: "default on required parameter and bad type",
			root: NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("x").WithParameters(
				&ParameterBuilder{name: "n", typ: TypeInt, defaultValue: 3},
				NewParameter("t", "bad type"),
			)),
			want: []error{ErrInvalidParameter, ErrInvalidTypeTag},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := Build(tt.root, BuildOptions{})
			if err == nil {
				t.Fatal("Build() returned nil error")
			}
			if tree != nil {
				t.Error("Build() returned a tree alongside an error")
			}
			var buildErr *BuildError
			if !errors.As(err, &buildErr) {
				t.Fatalf("error is %T, want *BuildError", err)
			}
			for _, sentinel := range tt.want {
				if !errors.Is(err, sentinel) {
					t.Errorf("error %q does not wrap %v", err, sentinel)
				}
			}
		})
	}
}

func TestTree_ValidateWithSeparator(t *testing.T) {
	t.Parallel()

	tree, err := Build(NewModule("root").AddCommand(NewCommand("x", noop).WithAliases("set-name")), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	err = tree.Validate(BuildOptions{Separator: "-"})
	if !errors.Is(err, ErrInvalidAlias) {
		t.Fatalf("Validate() with separator '-' error = %v, want ErrInvalidAlias", err)
	}
	if !strings.Contains(err.Error(), "command 'x'") {
		t.Errorf("error %q should locate the command", err)
	}
}

func TestBuildError_Format(t *testing.T) {
	t.Parallel()

	single := &BuildError{Errors: []*NodeError{{Path: "command 'x'", Err: ErrMissingHandler}}}
	if got := single.Error(); got != "command tree: command 'x': missing handler" {
		t.Errorf("single Error() = %q", got)
	}

	multi := &BuildError{Errors: []*NodeError{
		{Path: "command 'x'", Err: ErrMissingHandler},
		{Path: "command 'y'", Err: ErrInvalidAlias, Detail: "alias is empty"},
	}}
	want := "command tree has 2 errors:\n  - command 'x': missing handler\n  - command 'y': invalid alias (alias is empty)"
	if got := multi.Error(); got != want {
		t.Errorf("multi Error() = %q, want %q", got, want)
	}
}
