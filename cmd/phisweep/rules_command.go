package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phisweep/internal/rules"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	var tag string
	var phiOnly bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the DICOM tag rule table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := rules.Open(cfg.DICOM.RulesFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if strings.TrimSpace(tag) != "" {
				rule, ok := table.Lookup(tag)
				if !ok {
					return fmt.Errorf("tag %s is not in %s", tag, table.Source())
				}
				fmt.Fprintln(out, renderTable(rulesTable(table.Source(), []rules.TagRule{rule})))
				return nil
			}

			var rows []rules.TagRule
			for _, rule := range table.Rules() {
				if phiOnly && !rule.IsPHI {
					continue
				}
				rows = append(rows, rule)
			}
			spec := rulesTable(table.Source(), rows)
			spec.footer = fmt.Sprintf("%d rule(s), %d shadowed", len(rows), table.Shadowed())
			fmt.Fprintln(out, renderTable(spec))
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "Show a single tag (gggg,eeee or ggggeeee)")
	cmd.Flags().BoolVar(&phiOnly, "phi", false, "Only list tags marked as PHI")
	return cmd
}

func rulesTable(source string, rows []rules.TagRule) tableSpec {
	spec := tableSpec{
		title:   source,
		headers: []string{"Tag", "Name", "VR", "VM", "PHI", "Anon"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	}
	for _, rule := range rows {
		phi := "no"
		if rule.IsPHI {
			phi = "yes"
		}
		spec.rows = append(spec.rows, []string{rule.Tag, rule.Name, rule.VR, rule.VM, phi, rule.Anon.String()})
	}
	return spec
}
