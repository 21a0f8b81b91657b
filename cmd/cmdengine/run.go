// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRunCommand(app *App, flags *rootFlags) *cobra.Command {
	var waitCooldown int
	runCmd := &cobra.Command{
		Use:   "run <input...>",
		Short: "Execute one input line",
		Long: `Execute one input line against the command tree.

The arguments are joined with single spaces to form the input. Quote the
input to keep its spacing. Background (parallel) commands are awaited before
exiting. The exit status is non-zero when the command fails.`,
		Example: `  cmdengine run echo hello
  cmdengine run "math sum 1 2 3"
  cmdengine run --wait-cooldown 2 fun roll 20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			result := s.execute(cmd.Context(), input, waitCooldown)
			s.printer.result(input, result)
			if err := s.engine.Wait(); err != nil {
				return err
			}

			if !result.IsSuccessful() {
				return resultError(input, result)
			}
			if s.failed.Load() > 0 {
				return &ExitError{Code: exitFailure}
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&waitCooldown, "wait-cooldown", 0, "retry up to N times after a cooldown, waiting it out")
	return runCmd
}
