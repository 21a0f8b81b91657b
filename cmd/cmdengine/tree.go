// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/cmdengine/internal/demo"
	"github.com/invowk/cmdengine/pkg/commandtree"
	"github.com/invowk/cmdengine/pkg/engine"
)

func newTreeCommand(app *App, flags *rootFlags) *cobra.Command {
	var source bool
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "List the commands of the loaded tree",
		Long: `List every module and command of the loaded tree with the aliases
that reach them and their parameter signatures.

With --source, print the tree file itself instead.`,
		Example: `  cmdengine tree
  cmdengine tree --demo --source > tree.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			if source {
				return printSource(app.stdout, s.treeName)
			}
			renderTree(app.stdout, s.engine)
			return nil
		},
	}
	treeCmd.Flags().BoolVar(&flags.demo, "demo", false, "use the bundled demo tree")
	treeCmd.Flags().BoolVar(&source, "source", false, "print the tree file instead of the command listing")
	return treeCmd
}

func printSource(w io.Writer, treeName string) error {
	data := demo.TreeSource()
	if treeName != demoTreeName {
		var err error
		if data, err = os.ReadFile(treeName); err != nil {
			return fmt.Errorf("read tree file: %w", err)
		}
	}
	_, err := w.Write(data)
	return err
}

func renderTree(w io.Writer, e *engine.Engine) {
	root := e.Tree().Root()
	fmt.Fprintln(w, TitleStyle.Render(root.Name())+describe(root.Description()))
	renderModule(w, e, root, 1)
}

func renderModule(w io.Writer, e *engine.Engine, m *commandtree.Module, depth int) {
	sep := e.Options().Separator
	indent := strings.Repeat("  ", depth)
	for _, c := range m.Commands() {
		aliases := c.FullAliases(sep)
		if len(aliases) == 0 {
			aliases = []string{c.Name()}
		}
		line := CmdStyle.Render(strings.Join(aliases, " | ")) + " " + SubtitleStyle.Render(c.Signature())
		if e.IsDisabled(c) {
			line = treeDisabledStyle.Render(strings.Join(aliases, " | ")+" "+c.Signature()) + " " + WarningStyle.Render("disabled")
		}
		fmt.Fprintln(w, indent+line+describe(c.Description()))
	}
	for _, child := range m.Modules() {
		label := "(transparent)"
		if !child.IsTransparent() {
			label = "(" + strings.Join(child.Aliases(), ", ") + ")"
		}
		fmt.Fprintln(w, indent+treeModuleStyle.Render(child.Name())+" "+SubtitleStyle.Render(label)+describe(child.Description()))
		renderModule(w, e, child, depth+1)
	}
}

func describe(description string) string {
	if description == "" {
		return ""
	}
	return VerboseStyle.Render(" - " + description)
}
