package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phisweep/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, rule table, scan tools and store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			results := preflight.RunAll(runCtx, cfg)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("Preflight", colorize)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			printLines(out, lines)

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d check(s) failed", len(failed), len(results))
			}
			return nil
		},
	}
}
