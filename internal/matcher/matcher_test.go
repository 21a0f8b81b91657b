// SPDX-License-Identifier: MPL-2.0

package matcher

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

func noop(context.Context, *commandtree.ExecutionContext) (any, error) { return nil, nil }

type flatMatch struct {
	Command   string
	Alias     string
	Path      string
	Arguments string
}

func flatten(matches []Match) []flatMatch {
	out := make([]flatMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, flatMatch{
			Command:   m.Command.Name(),
			Alias:     m.Alias,
			Path:      strings.Join(m.Path, "/"),
			Arguments: m.Arguments,
		})
	}
	return out
}

func testTree(t *testing.T, separator string) *commandtree.Tree {
	t.Helper()
	tree, err := commandtree.Build(
		commandtree.NewModule("root").
			AddCommand(
				commandtree.NewCommand("ping", noop).WithAliases("ping", "p"),
				commandtree.NewCommand("echo-low", noop).WithAliases("echo").WithPriority(1).
					WithParameters(commandtree.NewParameter("text", commandtree.TypeString)),
				commandtree.NewCommand("echo-high", noop).WithAliases("echo").WithPriority(5).
					WithParameters(commandtree.NewParameter("n", commandtree.TypeInt)),
			).
			AddModule(
				commandtree.NewModule("admin").WithAliases("admin").
					AddCommand(
						commandtree.NewCommand("status", noop),
						commandtree.NewCommand("ban", noop).WithAliases("ban"),
					).
					AddModule(commandtree.NewModule("inner").
						AddCommand(commandtree.NewCommand("kick", noop).WithAliases("kick"))),
				commandtree.NewModule("tools").
					AddCommand(commandtree.NewCommand("roll", noop).WithAliases("roll")),
			),
		commandtree.BuildOptions{Separator: separator},
	)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return tree
}

func TestFind(t *testing.T) {
	t.Parallel()

	tree := testTree(t, " ")
	tests := []struct {
		name  string
		input string
		opts  Options
		want  []flatMatch
	}{
		{
			name:  "simple with leftover",
			input: "ping  hello world",
			want:  []flatMatch{{"ping", "ping", "ping", "hello world"}},
		},
		{
			name:  "secondary alias ignoring case",
			input: "P",
			want:  []flatMatch{{"ping", "p", "p", ""}},
		},
		{
			name:  "case sensitive miss",
			input: "PING",
			opts:  Options{Comparison: commandtree.ComparisonCaseSensitive},
			want:  []flatMatch{},
		},
		{
			name:  "overloads ordered by priority",
			input: "echo 5",
			want: []flatMatch{
				{"echo-high", "echo", "echo", "5"},
				{"echo-low", "echo", "echo", "5"},
			},
		},
		{
			name:  "nested deepest first",
			input: "admin ban bob",
			want: []flatMatch{
				{"ban", "ban", "admin/ban", "bob"},
				{"status", "admin", "admin", "ban bob"},
			},
		},
		{
			name:  "transparent module",
			input: "admin kick bob",
			want: []flatMatch{
				{"kick", "kick", "admin/kick", "bob"},
				{"status", "admin", "admin", "kick bob"},
			},
		},
		{
			name:  "transparent top-level module",
			input: "roll 2d6",
			want:  []flatMatch{{"roll", "roll", "roll", "2d6"}},
		},
		{
			name:  "mandatory separator rejects glued text",
			input: "pingx",
			want:  []flatMatch{},
		},
		{
			name:  "optional separator accepts glued text",
			input: "pingx",
			opts:  Options{Requirement: commandtree.SeparatorOptional},
			want:  []flatMatch{{"ping", "ping", "ping", "x"}},
		},
		{
			name:  "no separator keeps leading space",
			input: "ping x",
			opts:  Options{Requirement: commandtree.SeparatorNone},
			want:  []flatMatch{{"ping", "ping", "ping", " x"}},
		},
		{
			name:  "not found",
			input: "unknown thing",
			want:  []flatMatch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := flatten(Find(tree.Root(), tt.input, tt.opts))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Find(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestFind_CustomSeparator(t *testing.T) {
	t.Parallel()

	tree := testTree(t, ".")
	got := flatten(Find(tree.Root(), "admin..ban.bob", Options{Separator: "."}))
	want := []flatMatch{
		{"ban", "ban", "admin/ban", "bob"},
		{"status", "admin", "admin", "ban.bob"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}
