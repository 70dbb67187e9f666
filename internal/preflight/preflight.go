package preflight

import (
	"context"
	"strings"

	"phisweep/internal/config"
	"phisweep/internal/deps"
	"phisweep/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
		CheckRuleTable(cfg.DICOM.RulesFile),
	}

	if !cfg.Scan.UseGPFS {
		for _, dir := range cfg.Scan.Directories {
			results = append(results, CheckDirectoryReadable("Scan directory", dir))
		}
	} else {
		for _, status := range CheckSystemDeps(cfg) {
			r := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
			if !status.Available {
				r.Detail = status.Detail
			}
			results = append(results, r)
		}
		results = append(results, CheckDirectoryAccess("GPFS work directory", cfg.GPFS.LocalWorkDir))
	}

	results = append(results, CheckStore(ctx, cfg))
	return results
}

// CheckSystemDeps lists the external binaries the configured scan mode needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if !cfg.Scan.UseGPFS {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "mmapplypolicy",
			Command:     cfg.GPFS.Binary,
			Description: "Runs the GPFS policy scan",
		},
		{
			Name:        "mmgetstate",
			Command:     cfg.GPFS.StateBinary,
			Description: "Reports GPFS client state",
		},
		{
			Name:        "phisweep-exec",
			Command:     firstField(cfg.GPFS.ExecCommand),
			Description: "Ingests policy file lists",
		},
	})
}

// RequireBinaries fails when a required scan binary is missing, naming each
// one. Walk mode needs none.
func RequireBinaries(cfg *config.Config) error {
	missing := deps.Missing(CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, s := range missing {
		names = append(names, s.Name+" ("+s.Detail+")")
	}
	return services.Wrap(services.ErrExternalTool, "preflight", "binaries",
		"missing "+strings.Join(names, ", "), nil)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
