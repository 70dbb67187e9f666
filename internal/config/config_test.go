package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"phisweep/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PHISWEEP_REDIS_URL", "")
	t.Setenv("PHISWEEP_POSTGRES_DSN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "phisweep", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantLogs, "phisweep.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Store.SQLitePath)
	}
	if got := cfg.SearchPatterns("vcf"); len(got) != 2 || got[1] != "*.vcf.gz" {
		t.Fatalf("unexpected vcf patterns: %v", got)
	}
	if cfg.VCF.StatusField != "SS" || cfg.VCF.GermlineSomaticCode != 1 || cfg.VCF.PIIThresholdPct != 50 {
		t.Fatalf("unexpected vcf defaults: %+v", cfg.VCF)
	}
	if cfg.DICOM.UndefinedTagsArePHI {
		t.Fatal("expected undefined tags to be non-PHI by default")
	}
	if cfg.DICOM.EmptyRuleTrigger != "value_present" {
		t.Fatalf("unexpected empty rule trigger %q", cfg.DICOM.EmptyRuleTrigger)
	}
	if !cfg.Workflow.ExclusiveLock {
		t.Fatal("expected exclusive lock by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.ReportDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if cfg.ReportPath("dicom") != filepath.Join(cfg.Paths.ReportDir, "phisweep_report_dicom.csv") {
		t.Fatalf("unexpected report path %q", cfg.ReportPath("dicom"))
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "phisweep.toml")

	type payload struct {
		Paths struct {
			LogDir string `toml:"log_dir"`
		} `toml:"paths"`
		Store struct {
			Backend  string `toml:"backend"`
			RedisURL string `toml:"redis_url"`
		} `toml:"store"`
		VCF struct {
			StatusField     string  `toml:"status_field"`
			PIIThresholdPct float64 `toml:"pii_threshold_pct"`
		} `toml:"vcf"`
		Scan struct {
			Directories []string `toml:"directories"`
		} `toml:"scan"`
	}
	custom := payload{}
	custom.Paths.LogDir = filepath.Join(tempDir, "logs")
	custom.Store.Backend = "Redis"
	custom.Store.RedisURL = "redis://cache:6379/2"
	custom.VCF.StatusField = "ORIGIN"
	custom.VCF.PIIThresholdPct = 75
	custom.Scan.Directories = []string{tempDir, tempDir, " "}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Store.Backend != config.BackendRedis || cfg.Store.RedisURL != "redis://cache:6379/2" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.VCF.StatusField != "ORIGIN" || cfg.VCF.PIIThresholdPct != 75 {
		t.Fatalf("unexpected vcf config %+v", cfg.VCF)
	}
	if len(cfg.Scan.Directories) != 1 {
		t.Fatalf("expected directories to be de-duplicated, got %v", cfg.Scan.Directories)
	}
}

func TestPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PHISWEEP_POSTGRES_DSN", "postgres://u@h/db")
	path := filepath.Join(t.TempDir(), "phisweep.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"postgres\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.PostgresDSN != "postgres://u@h/db" {
		t.Fatalf("expected DSN from env, got %q", cfg.Store.PostgresDSN)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Store.Backend = "mongo" }, "store.backend"},
		{"postgres without dsn", func(c *config.Config) { c.Store.Backend = config.BackendPostgres; c.Store.PostgresDSN = "" }, "store.postgres_dsn"},
		{"threshold", func(c *config.Config) { c.VCF.PIIThresholdPct = 150 }, "vcf.pii_threshold_pct"},
		{"trigger", func(c *config.Config) { c.DICOM.EmptyRuleTrigger = "sometimes" }, "dicom.empty_rule_trigger"},
		{"pattern", func(c *config.Config) { c.DICOM.SearchPatterns = []string{"[a-"} }, "dicom.search_patterns"},
		{"gpfs search", func(c *config.Config) { c.Scan.UseGPFS = true }, "gpfs.search"},
		{"gpfs fileset", func(c *config.Config) {
			c.Scan.UseGPFS = true
			c.GPFS.Search = []config.GPFSSearch{{FSName: "gpfs01", Select: "TRUE"}}
		}, "gpfs.search[0].fileset"},
		{"log level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.SQLitePath = "/tmp/phisweep.db"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.GPFS.Binary != "/usr/lpp/mmfs/bin/mmapplypolicy" || cfg.GPFS.MaxFiles != 1000 {
		t.Fatalf("unexpected gpfs config %+v", cfg.GPFS)
	}
	if !strings.Contains(config.SampleConfig(), "[dicom]") {
		t.Fatal("sample config should document the dicom section")
	}
}
