package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phisweep/internal/discovery"
	"phisweep/internal/preflight"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Register new files in the metadata store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			if err := preflight.RequireBinaries(cfg); err != nil {
				return err
			}
			st, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer st.Close()

			added, err := discovery.Ingest(runCtx, discovery.ForConfig(cfg, days, logger), st, logger)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %d file(s)\n", added)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "phisweep scan - done")
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", -1, "Only register files modified within this many days (default scan.job_delta_days)")
	return cmd
}
