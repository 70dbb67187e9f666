package config

import (
	"errors"
	"fmt"
	"strings"

	"phisweep/internal/fileutil"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDICOM(); err != nil {
		return err
	}
	if err := c.validateVCF(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("store.sqlite_path must be set for the sqlite backend")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url must be set for the redis backend (or set PHISWEEP_REDIS_URL)")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn must be set for the postgres backend (or set PHISWEEP_POSTGRES_DSN)")
		}
	default:
		return fmt.Errorf("store.backend %q is not one of sqlite, redis, postgres", c.Store.Backend)
	}
	if c.Store.ConnectRetries > 100 {
		return errors.New("store.connect_retries must be <= 100")
	}
	return nil
}

func (c *Config) validateScan() error {
	if !c.Scan.UseGPFS {
		return nil
	}
	if len(c.GPFS.Search) == 0 {
		return errors.New("gpfs.search must contain at least one entry when scan.use_gpfs is true")
	}
	for i, search := range c.GPFS.Search {
		if search.FSName == "" {
			return fmt.Errorf("gpfs.search[%d].fsname must be set", i)
		}
		if search.Fileset == "" {
			return fmt.Errorf("gpfs.search[%d].fileset must be set", i)
		}
		if search.Select == "" {
			return fmt.Errorf("gpfs.search[%d].select must be set", i)
		}
	}
	return nil
}

func (c *Config) validateDICOM() error {
	if err := fileutil.ValidatePatterns(c.DICOM.SearchPatterns); err != nil {
		return fmt.Errorf("dicom.search_patterns: %w", err)
	}
	switch c.DICOM.EmptyRuleTrigger {
	case "value_present", "value_absent":
	default:
		return fmt.Errorf("dicom.empty_rule_trigger %q must be value_present or value_absent", c.DICOM.EmptyRuleTrigger)
	}
	return nil
}

func (c *Config) validateVCF() error {
	if err := fileutil.ValidatePatterns(c.VCF.SearchPatterns); err != nil {
		return fmt.Errorf("vcf.search_patterns: %w", err)
	}
	if c.VCF.PIIThresholdPct < 0 || c.VCF.PIIThresholdPct > 100 {
		return errors.New("vcf.pii_threshold_pct must be between 0 and 100")
	}
	if c.VCF.GermlineSomaticCode < 0 {
		return errors.New("vcf.germline_somatic_code must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
