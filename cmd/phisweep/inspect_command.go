package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phisweep/internal/privacy"
	"phisweep/internal/services"
	"phisweep/internal/workflow"
)

type inspectOutput struct {
	File          string   `json:"file"`
	Kind          string   `json:"kind"`
	Status        string   `json:"status"`
	PHITags       []string `json:"phi_tags,omitempty"`
	UndefinedTags []string `json:"undefined_tags,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Error         string   `json:"error,omitempty"`
	ErrorKind     string   `json:"error_kind,omitempty"`
	TagsTotal     int      `json:"tags_total,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Classify one file without touching the metadata store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			kind, err := inspectKind(path, kindFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			classifiers, err := workflow.BuildClassifiers(cfg)
			if err != nil {
				return err
			}
			classifier, _ := classifiers.For(kind)

			runCtx, cancel := signalContext(cmd)
			defer cancel()
			result, classErr := classifier.ClassifyFile(runCtx, path)
			if result.Status == privacy.StatusUnprocessed {
				result.Status = services.StatusFor(classErr)
			}

			view := inspectOutput{
				File:          path,
				Kind:          string(kind),
				Status:        result.Status.String(),
				PHITags:       result.PHITags,
				UndefinedTags: result.UndefinedTags,
				Reason:        result.Reason,
				TagsTotal:     result.Counts.Total,
			}
			if classErr != nil {
				view.Error = classErr.Error()
				view.ErrorKind = services.Kind(classErr)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			printInspect(cmd, view, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "File kind (dicom or vcf); guessed from the extension when omitted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func inspectKind(path, flag string) (privacy.FileKind, error) {
	if strings.TrimSpace(flag) != "" {
		return parseKindArg(flag)
	}
	kind, ok := privacy.KindForPath(path)
	if !ok {
		return "", fmt.Errorf("cannot tell the kind of %s; pass --kind dicom or --kind vcf", path)
	}
	return kind, nil
}

func printInspect(cmd *cobra.Command, view inspectOutput, result privacy.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	lines := renderSectionHeader(view.File, colorize)
	lines = append(lines, renderStatusLine("Status", verdictKind(result.Status), statusLabel(result.Status), colorize))
	if result.Kind == privacy.KindDICOM || view.Kind == string(privacy.KindDICOM) {
		c := result.Counts
		lines = append(lines, renderStatusLine("Tags", statusInfo,
			fmt.Sprintf("%d total, %d phi, %d blank, %d undefined, %d non-phi", c.Total, c.IsPHI, c.Blank, c.NoKey, c.NoPHI), colorize))
		if len(view.PHITags) > 0 {
			lines = append(lines, renderStatusLine("PHI tags", statusWarn, strings.Join(view.PHITags, " "), colorize))
		}
		if len(view.UndefinedTags) > 0 {
			lines = append(lines, renderStatusLine("Undefined tags", statusInfo, strings.Join(view.UndefinedTags, " "), colorize))
		}
	}
	if view.Reason != "" {
		lines = append(lines, renderStatusLine("Reason", statusInfo, view.Reason, colorize))
	}
	if view.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, view.Error, colorize))
	}
	printLines(out, lines)
}
