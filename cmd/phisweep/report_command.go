package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phisweep/internal/config"
	"phisweep/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var history bool
	var output string
	var showTable bool

	cmd := &cobra.Command{
		Use:       "report <dicom|vcf>",
		Short:     "Export classification results as CSV",
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
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			st, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := report.Generate(runCtx, st, kind, history)
			if err != nil {
				return fmt.Errorf("read entries: %w", err)
			}

			out := cmd.OutOrStdout()
			if showTable {
				fmt.Fprintln(out, report.RenderTable(kind, rows))
				if strings.TrimSpace(output) == "" {
					return nil
				}
			}
			target := strings.TrimSpace(output)
			switch target {
			case "-":
				return report.WriteCSV(out, kind, rows)
			case "":
				target = cfg.ReportPath(string(kind))
			default:
				if target, err = config.ExpandPath(target); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}
			if err := report.WriteFile(target, kind, rows); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %d row(s) to %s\n", len(rows), target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Include every entry, not only the latest per file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV destination (default <report_dir>/phisweep_report_<kind>.csv, - for stdout)")
	cmd.Flags().BoolVar(&showTable, "table", false, "Print the rows as a table instead of writing the default CSV")
	return cmd
}
