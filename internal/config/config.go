package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	ReportDir string `toml:"report_dir"`
}

// Store selects and configures the metadata store backend.
type Store struct {
	Backend          string `toml:"backend"`
	SQLitePath       string `toml:"sqlite_path"`
	RedisURL         string `toml:"redis_url"`
	RedisPrefix      string `toml:"redis_prefix"`
	PostgresDSN      string `toml:"postgres_dsn"`
	ConnectRetries   int    `toml:"connect_retries"`
	ConnectBackoffMS int    `toml:"connect_backoff_ms"`
	Debug            bool   `toml:"debug"`
}

// Scan contains discovery settings.
type Scan struct {
	UseGPFS      bool     `toml:"use_gpfs"`
	Directories  []string `toml:"directories"`
	JobDeltaDays int      `toml:"job_delta_days"`
}

// GPFSSearch is one mmapplypolicy query: a file system, a fileset within it
// and a policy SQL predicate.
type GPFSSearch struct {
	FSName  string `toml:"fsname"`
	Fileset string `toml:"fileset"`
	Select  string `toml:"select"`
}

// GPFS contains policy-engine settings used when scan.use_gpfs is set.
type GPFS struct {
	Binary        string       `toml:"binary"`
	StateBinary   string       `toml:"state_binary"`
	ExecCommand   string       `toml:"exec_command"`
	GlobalWorkDir string       `toml:"global_work_dir"`
	LocalWorkDir  string       `toml:"local_work_dir"`
	MaxFiles      int          `toml:"max_files"`
	ThreadLevel   int          `toml:"thread_level"`
	NodeList      string       `toml:"node_list"`
	DebugLevel    int          `toml:"debug_level"`
	Search        []GPFSSearch `toml:"search"`
}

// DICOM contains imaging classifier settings.
type DICOM struct {
	SearchPatterns      []string `toml:"search_patterns"`
	RulesFile           string   `toml:"rules_file"`
	UndefinedTagsArePHI bool     `toml:"undefined_tags_are_phi"`
	EmptyRuleTrigger    string   `toml:"empty_rule_trigger"`
}

// VCF contains variant classifier settings.
type VCF struct {
	SearchPatterns      []string `toml:"search_patterns"`
	StatusField         string   `toml:"status_field"`
	GermlineSomaticCode int      `toml:"germline_somatic_code"`
	PIIThresholdPct     float64  `toml:"pii_threshold_pct"`
}

// Workflow contains batch settings.
type Workflow struct {
	ExclusiveLock bool `toml:"exclusive_lock"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for phisweep.
//
// Configuration sections by subsystem:
//   - Paths: log and report directories
//   - Store: metadata store backend and connection retry
//   - Scan: discovery mode, directories and age filter
//   - GPFS: policy engine binaries, limits and search list
//   - DICOM: imaging patterns, rule table and fail-safe policies
//   - VCF: variant patterns, status field and PII threshold
//   - Workflow: host run lock
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Store    Store    `toml:"store"`
	Scan     Scan     `toml:"scan"`
	GPFS     GPFS     `toml:"gpfs"`
	DICOM    DICOM    `toml:"dicom"`
	VCF      VCF      `toml:"vcf"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("phisweep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and report directories, plus the parent
// of the SQLite database when that backend is selected.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.ReportDir}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath != "" {
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogFilePath returns the log file written next to the store.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "phisweep.log")
}

// LockPath returns the host run-lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "phisweep.lock")
}

// ReportPath returns the default CSV report path for a file kind.
func (c *Config) ReportPath(kind string) string {
	return filepath.Join(c.Paths.ReportDir, fmt.Sprintf("phisweep_report_%s.csv", kind))
}

// SearchPatterns returns the configured glob patterns for a file kind.
func (c *Config) SearchPatterns(kind string) []string {
	switch kind {
	case "dicom":
		return c.DICOM.SearchPatterns
	case "vcf":
		return c.VCF.SearchPatterns
	default:
		return nil
	}
}

// AllSearchPatterns returns the patterns of every kind, DICOM first.
func (c *Config) AllSearchPatterns() []string {
	out := make([]string, 0, len(c.DICOM.SearchPatterns)+len(c.VCF.SearchPatterns))
	out = append(out, c.DICOM.SearchPatterns...)
	return append(out, c.VCF.SearchPatterns...)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
