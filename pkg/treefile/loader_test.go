// SPDX-License-Identifier: MPL-2.0

package treefile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/cmdengine/internal/cueutil"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/typeparser"
)

const sampleTree = `
name: "bot"
description: "Sample bot"
before: "audit"
commands: [{
	name: "ping"
	handler: "reply"
	aliases: ["ping", "p"]
}]
modules: [{
	name: "dice"
	aliases: ["dice", "d"]
	checks: [{name: "in-guild"}, {name: "staff", group: "role"}]
	commands: [{
		name: "roll"
		handler: "reply"
		aliases: ["roll"]
		priority: 2
		run_mode: "parallel"
		cooldowns: [{amount: 3, per: "10s", bucket: "user", key: "by-user"}]
		parameters: [{
			name: "sides"
			type: "int"
			default: "6"
			checks: [{name: "minimum", value: 2}, {name: "maximum", value: 100}]
		}, {
			name: "color"
			type: "color"
			optional: true
			default: "red"
		}, {
			name: "note"
			optional: true
			remainder: true
			checks: [{name: "starts_with", text: "#", case_sensitive: true}]
		}]
	}]
}]
`

func reply(context.Context, *commandtree.ExecutionContext) (any, error) { return "ok", nil }

func sampleBindings() Bindings {
	return Bindings{
		Handlers: map[string]commandtree.Handler{"reply": reply},
		Hooks: map[string]commandtree.Hook{
			"audit": func(context.Context, *commandtree.ExecutionContext) error { return nil },
		},
		Checks: map[string]commandtree.Check{
			"in-guild": {Run: func(context.Context, *commandtree.ExecutionContext) commandtree.CheckResult { return commandtree.Passed() }},
			"staff":    {Name: "staff-role", Run: func(context.Context, *commandtree.ExecutionContext) commandtree.CheckResult { return commandtree.Passed() }},
		},
		Keys: map[string]commandtree.KeyFunc{
			"by-user": func(string, *commandtree.ExecutionContext) (string, bool) { return "u", true },
		},
	}
}

func colors(t *testing.T) *typeparser.Registry {
	t.Helper()

	reg := typeparser.NewRegistry()
	if err := reg.RegisterEnum("color", typeparser.EnumMember{Name: "red", Value: 1}, typeparser.EnumMember{Name: "green", Value: 2}); err != nil {
		t.Fatalf("RegisterEnum() error: %v", err)
	}
	return reg
}

func TestLoader_Parse(t *testing.T) {
	t.Parallel()

	loader := Loader{Bindings: sampleBindings(), Types: colors(t)}
	root, err := loader.Parse([]byte(sampleTree), "bot.cue")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	tree, err := commandtree.Build(root, commandtree.BuildOptions{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	if tree.Root().Name() != "bot" || tree.Root().Before() == nil {
		t.Errorf("root = %q, before hook set = %v", tree.Root().Name(), tree.Root().Before() != nil)
	}

	cmds := tree.Commands()
	if len(cmds) != 2 {
		t.Fatalf("Commands() = %d, want 2", len(cmds))
	}
	roll := cmds[1]
	if roll.FullName() != "dice roll" || roll.Priority() != 2 || roll.RunMode() != commandtree.RunModeParallel {
		t.Errorf("roll = %s priority %d mode %v", roll.FullName(), roll.Priority(), roll.RunMode())
	}
	if got := roll.Signature(); got != "(int, color, string remainder)" {
		t.Errorf("Signature() = %q", got)
	}

	cds := roll.Cooldowns()
	if len(cds) != 1 || cds[0].Amount != 3 || cds[0].Per != 10*time.Second || cds[0].BucketType != "user" || cds[0].Key == nil {
		t.Errorf("cooldowns = %+v", cds)
	}

	params := roll.Parameters()
	defaults := []any{params[0].DefaultValue(), params[1].DefaultValue(), params[2].DefaultValue()}
	want := []any{6, typeparser.EnumValue{Type: "color", Name: "red", Value: 1}, nil}
	if diff := cmp.Diff(want, defaults); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if n := len(params[0].Checks()); n != 2 {
		t.Errorf("sides checks = %d, want 2", n)
	}

	var checks []string
	for _, c := range roll.Module().Checks() {
		checks = append(checks, c.Name+"/"+c.Group)
	}
	if diff := cmp.Diff([]string{"in-guild/", "staff-role/role"}, checks); diff != "" {
		t.Errorf("module checks mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_ParseReportsEveryProblem(t *testing.T) {
	t.Parallel()

	doc := `
before: "missing-hook"
commands: [{
	name: "x"
	handler: "nope"
	aliases: ["x"]
	cooldowns: [{amount: 1, per: "5 minutes"}]
	parameters: [{
		name: "n"
		type: "int"
		default: "many"
		checks: [{name: "minimum"}, {name: "unbound"}]
	}]
}]
`
	loader := Loader{Bindings: sampleBindings()}
	_, err := loader.Parse([]byte(doc), "bad.cue")

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Parse() error = %v, want *LoadError", err)
	}
	var paths []string
	for _, fe := range le.Errors {
		paths = append(paths, fe.Path)
	}
	want := []string{
		"before",
		"commands[0].handler",
		"commands[0].cooldowns[0].per",
		"commands[0].parameters[0].default",
		"commands[0].parameters[0].checks[0].value",
		"commands[0].parameters[0].checks[1].name",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("error paths mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, ErrUnknownBinding) || !errors.Is(err, ErrInvalidValue) {
		t.Errorf("error should wrap both sentinels: %v", err)
	}
}

func TestLoader_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", `commands: [{name: "x", handler: "reply", colour: "red"}]`},
		{"bad run mode", `commands: [{name: "x", handler: "reply", run_mode: "eventually"}]`},
		{"non-positive cooldown", `commands: [{name: "x", handler: "reply", cooldowns: [{amount: 0, per: "1s"}]}]`},
		{"alias with whitespace", `modules: [{name: "m", aliases: ["two words"]}]`},
		{"root aliases", `aliases: ["root"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader := Loader{Bindings: sampleBindings()}
			if _, err := loader.Parse([]byte(tt.doc), "t.cue"); !errors.Is(err, cueutil.ErrInvalidDocument) {
				t.Errorf("Parse() error = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.cue")
	if err := os.WriteFile(path, []byte(`commands: [{name: "ping", handler: "reply", aliases: ["ping"]}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	loader := Loader{Bindings: sampleBindings()}
	root, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if _, err := commandtree.Build(root, commandtree.BuildOptions{}); err != nil {
		t.Errorf("Build() unexpected error: %v", err)
	}

	if _, err := loader.Load(filepath.Join(t.TempDir(), "missing.cue")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestBindings_Merge(t *testing.T) {
	t.Parallel()

	base := sampleBindings()
	extra := Bindings{Handlers: map[string]commandtree.Handler{"other": reply}}
	got := base.Merge(extra)
	if len(got.Handlers) != 2 || got.Hooks["audit"] == nil {
		t.Errorf("Merge() = %+v", got)
	}
	if len(base.Handlers) != 1 {
		t.Error("Merge() modified the receiver")
	}
}
