package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeGPFS()
	if err := c.normalizeDICOM(); err != nil {
		return err
	}
	c.normalizeVCF()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "", "sqlite3":
		c.Store.Backend = BackendSQLite
	case "postgresql", "pg":
		c.Store.Backend = BackendPostgres
	}

	var err error
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.LogDir, defaultSQLiteName)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}

	c.Store.RedisURL = strings.TrimSpace(c.Store.RedisURL)
	if c.Store.RedisURL == "" {
		if value, ok := os.LookupEnv("PHISWEEP_REDIS_URL"); ok {
			c.Store.RedisURL = strings.TrimSpace(value)
		}
	}
	if c.Store.RedisURL == "" && c.Store.Backend == BackendRedis {
		c.Store.RedisURL = defaultRedisURL
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = defaultRedisPrefix
	}

	c.Store.PostgresDSN = strings.TrimSpace(c.Store.PostgresDSN)
	if c.Store.PostgresDSN == "" {
		if value, ok := os.LookupEnv("PHISWEEP_POSTGRES_DSN"); ok {
			c.Store.PostgresDSN = strings.TrimSpace(value)
		}
	}
	if c.Store.ConnectRetries < 0 {
		c.Store.ConnectRetries = 0
	}
	if c.Store.ConnectBackoffMS <= 0 {
		c.Store.ConnectBackoffMS = defaultConnectBackoffMS
	}
	return nil
}

func (c *Config) normalizeScan() error {
	dirs := make([]string, 0, len(c.Scan.Directories))
	seen := make(map[string]struct{}, len(c.Scan.Directories))
	for _, dir := range c.Scan.Directories {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(dir))
		if err != nil {
			return fmt.Errorf("scan.directories: %w", err)
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		dirs = append(dirs, expanded)
	}
	c.Scan.Directories = dirs
	if c.Scan.JobDeltaDays < 0 {
		c.Scan.JobDeltaDays = 0
	}
	return nil
}

func (c *Config) normalizeGPFS() {
	g := &c.GPFS
	g.Binary = defaultString(g.Binary, defaultGPFSBinary)
	g.StateBinary = defaultString(g.StateBinary, defaultGPFSStateBinary)
	g.ExecCommand = defaultString(g.ExecCommand, defaultGPFSExecCommand)
	g.GlobalWorkDir = defaultString(g.GlobalWorkDir, defaultGPFSWorkDir)
	g.LocalWorkDir = defaultString(g.LocalWorkDir, defaultGPFSWorkDir)
	g.NodeList = defaultString(g.NodeList, defaultGPFSNodeList)
	if g.MaxFiles <= 0 {
		g.MaxFiles = defaultGPFSMaxFiles
	}
	if g.ThreadLevel <= 0 {
		g.ThreadLevel = defaultGPFSThreadLevel
	}
	if g.DebugLevel < 0 {
		g.DebugLevel = 0
	}
	for i := range g.Search {
		g.Search[i].FSName = strings.TrimSpace(g.Search[i].FSName)
		g.Search[i].Fileset = strings.TrimSpace(g.Search[i].Fileset)
		g.Search[i].Select = strings.TrimSpace(g.Search[i].Select)
	}
}

func (c *Config) normalizeDICOM() error {
	c.DICOM.SearchPatterns = cleanPatterns(c.DICOM.SearchPatterns)
	if len(c.DICOM.SearchPatterns) == 0 {
		c.DICOM.SearchPatterns = []string{"*.dcm"}
	}
	if strings.TrimSpace(c.DICOM.RulesFile) != "" {
		var err error
		if c.DICOM.RulesFile, err = expandPath(strings.TrimSpace(c.DICOM.RulesFile)); err != nil {
			return fmt.Errorf("dicom.rules_file: %w", err)
		}
	}
	c.DICOM.EmptyRuleTrigger = strings.ToLower(strings.TrimSpace(c.DICOM.EmptyRuleTrigger))
	if c.DICOM.EmptyRuleTrigger == "" {
		c.DICOM.EmptyRuleTrigger = defaultEmptyRuleTrigger
	}
	return nil
}

func (c *Config) normalizeVCF() {
	c.VCF.SearchPatterns = cleanPatterns(c.VCF.SearchPatterns)
	if len(c.VCF.SearchPatterns) == 0 {
		c.VCF.SearchPatterns = []string{"*.vcf", "*.vcf.gz"}
	}
	c.VCF.StatusField = defaultString(c.VCF.StatusField, defaultStatusField)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
