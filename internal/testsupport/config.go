package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"phisweep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")
	cfgVal.Store.SQLitePath = filepath.Join(base, "logs", "phisweep.db")
	cfgVal.Store.ConnectRetries = 0
	cfgVal.Store.ConnectBackoffMS = 1
	cfgVal.GPFS.GlobalWorkDir = filepath.Join(base, "gpfs")
	cfgVal.GPFS.LocalWorkDir = filepath.Join(base, "gpfs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithScanDirectories creates and registers directories for the walk scanner.
// Relative names are created under the test base directory.
func WithScanDirectories(names ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, name := range names {
			dir := name
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(b.baseDir, name)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir scan dir: %v", err)
			}
			b.cfg.Scan.Directories = append(b.cfg.Scan.Directories, dir)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the GPFS policy binaries are
// stubbed. Each stub runs script when given, otherwise it exits 0.
func WithStubbedBinaries(names ...string) ConfigOption {
	return WithStubScript("#!/bin/sh\nexit 0\n", names...)
}

// WithStubScript is WithStubbedBinaries with a custom shell body. Stubs land
// in <base>/bin and the GPFS binary settings point at them.
func WithStubScript(script string, names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mmapplypolicy", "mmgetstate"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "mmapplypolicy":
				b.cfg.GPFS.Binary = target
			case "mmgetstate":
				b.cfg.GPFS.StateBinary = target
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
