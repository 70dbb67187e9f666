package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phisweep/internal/services"
	"phisweep/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryReadable("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRuleTable(t *testing.T) {
	if r := CheckRuleTable(""); !r.Passed || !strings.Contains(r.Detail, "embedded") {
		t.Fatalf("embedded table should load: %+v", r)
	}
	if r := CheckRuleTable(filepath.Join(t.TempDir(), "missing.csv")); r.Passed {
		t.Fatal("expected failure for missing rule file")
	}
}

func TestRunAllWalkMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithScanDirectories("data"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, failed: %+v", failed)
	}
	if len(CheckSystemDeps(cfg)) != 0 {
		t.Fatal("walk mode needs no external binaries")
	}
}

func TestRunAllGPFSModeReportsBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("mmapplypolicy", "mmgetstate", "phisweep-exec"))
	cfg.Scan.UseGPFS = true
	cfg.GPFS.LocalWorkDir = t.TempDir()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected three binaries, got %+v", statuses)
	}
	for _, s := range statuses {
		if !s.Available {
			t.Fatalf("stubbed binary %s not found: %s", s.Name, s.Detail)
		}
	}

	cfg.GPFS.StateBinary = filepath.Join(t.TempDir(), "absent")
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "mmgetstate" {
		t.Fatalf("expected only mmgetstate to fail, got %+v", failed)
	}
}

func TestRequireBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("mmapplypolicy", "mmgetstate", "phisweep-exec"))
	if err := RequireBinaries(cfg); err != nil {
		t.Fatalf("walk mode needs no binaries, got %v", err)
	}

	cfg.Scan.UseGPFS = true
	if err := RequireBinaries(cfg); err != nil {
		t.Fatalf("stubbed binaries should satisfy gpfs mode: %v", err)
	}

	cfg.GPFS.StateBinary = filepath.Join(t.TempDir(), "absent")
	err := RequireBinaries(cfg)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "mmgetstate") || strings.Contains(err.Error(), "mmapplypolicy") {
		t.Fatalf("error should name only mmgetstate: %v", err)
	}
}
