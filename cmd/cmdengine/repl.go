// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newReplCommand(app *App, flags *rootFlags) *cobra.Command {
	var waitCooldown int
	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Execute input lines read from stdin",
		Long: `Read input lines from stdin and execute each one.

Sequential commands finish before the next line is read. Parallel commands
run in the background and print their result when they finish. Blank lines
are skipped. The session ends at end of input, after every background
command has returned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.openSession(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			s.logger.Debug("reading input", "tree", s.treeName)

			ctx := cmd.Context()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				input := strings.TrimRight(scanner.Text(), "\r")
				if strings.TrimSpace(input) == "" {
					continue
				}
				s.printer.result(input, s.execute(ctx, input, waitCooldown))
				if ctx.Err() != nil {
					break
				}
			}
			if err := s.engine.Wait(); err != nil {
				return err
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		},
	}
	replCmd.Flags().IntVar(&waitCooldown, "wait-cooldown", 0, "retry up to N times after a cooldown, waiting it out")
	return replCmd
}
