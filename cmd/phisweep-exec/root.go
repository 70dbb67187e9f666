package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phisweep/internal/config"
	"phisweep/internal/discovery"
	"phisweep/internal/logging"
	"phisweep/internal/storeaccess"
)

const configEnv = "PHISWEEP_CONFIG"

func newRootCommand() *cobra.Command {
	var configFlag string

	cmd := &cobra.Command{
		Use:           "phisweep-exec <LIST|TEST> <path>",
		Short:         "GPFS policy callback that registers listed files",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, target := strings.ToUpper(strings.TrimSpace(args[0])), args[1]
			switch op {
			case "TEST":
				return testDirectory(target)
			case "LIST":
				path := strings.TrimSpace(configFlag)
				if path == "" {
					path = strings.TrimSpace(os.Getenv(configEnv))
				}
				return ingestList(cmd, path, target)
			default:
				// mmapplypolicy may call with operations we do not handle.
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default $"+configEnv+")")
	return cmd
}

func testDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return errTestFailed
	}
	return nil
}

func ingestList(cmd *cobra.Command, configPath, listPath string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "phisweep-exec")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := storeaccess.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Open(listPath)
	if err != nil {
		return fmt.Errorf("open file list: %w", err)
	}
	defer f.Close()

	stats, err := discovery.IngestFileList(ctx, f, st, logger)
	logger.Info("file list ingested",
		logging.String(logging.FieldFileName, listPath),
		logging.Int("added", stats.Added),
		logging.Int("skipped", stats.Skipped),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d\n", stats.Added, stats.Skipped)
	return nil
}
