package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"phisweep/internal/discovery"
	"phisweep/internal/logging"
	"phisweep/internal/preflight"
	"phisweep/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipScan bool
	var days int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover new files, then classify VCF and DICOM batches",
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
			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer lock.Release() //nolint:errcheck

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			st, err := ctx.openStore(runCtx)
			if err != nil {
				logging.ErrorWithContext(logger, "metadata store unavailable", "store_unavailable", logging.Error(err))
				return err
			}
			defer st.Close()

			classifiers, err := workflow.BuildClassifiers(cfg)
			if err != nil {
				return err
			}
			opts := []workflow.ManagerOption{workflow.WithClassifiers(classifiers.Ordered()...)}
			if !skipScan {
				if err := preflight.RequireBinaries(cfg); err != nil {
					return err
				}
				opts = append(opts, workflow.WithScanner(discovery.ForConfig(cfg, days, logger)))
			}
			logger.Info("run started", logging.Args(logging.String(logging.FieldEventType, "run_start"))...)
			report, runErr := workflow.NewManager(cfg, st, logger, opts...).Run(runCtx)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if !skipScan {
				printLines(out, renderSectionHeader("Discovery", colorize))
				printLines(out, []string{renderStatusLine("Files registered", statusInfo, fmt.Sprintf("%d", report.Discovered), colorize)})
			}
			for _, summary := range report.Batches {
				printLines(out, summaryLines(summary, colorize))
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(out, "phisweep run - done in %s\n", report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipScan, "skip-scan", false, "Classify already registered files without discovery")
	cmd.Flags().IntVar(&days, "days", -1, "Only discover files modified within this many days (default scan.job_delta_days)")
	return cmd
}
