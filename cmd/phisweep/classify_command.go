package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phisweep/internal/workflow"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "classify <dicom|vcf>",
		Short:     "Run one classification batch",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"dicom", "vcf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
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
				return err
			}
			defer st.Close()

			classifiers, err := workflow.BuildClassifiers(cfg)
			if err != nil {
				return err
			}
			classifier, _ := classifiers.For(kind)
			summary, runErr := workflow.NewManager(cfg, st, logger).RunBatch(runCtx, classifier)

			out := cmd.OutOrStdout()
			printLines(out, summaryLines(summary, shouldColorize(out)))
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(out, "phisweep classify %s - done\n", kind)
			return nil
		},
	}
}
