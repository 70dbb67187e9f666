package config

const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const (
	defaultConfigPath          = "~/.config/phisweep/config.toml"
	defaultLogDir              = "~/.local/share/phisweep/logs"
	defaultReportDir           = "~/.local/share/phisweep/reports"
	defaultSQLiteName          = "phisweep.db"
	defaultRedisURL            = "redis://localhost:6379/0"
	defaultRedisPrefix         = "phisweep:"
	defaultConnectRetries      = 5
	defaultConnectBackoffMS    = 200
	defaultGPFSBinary          = "/usr/lpp/mmfs/bin/mmapplypolicy"
	defaultGPFSStateBinary     = "/usr/lpp/mmfs/bin/mmgetstate"
	defaultGPFSExecCommand     = "phisweep-exec"
	defaultGPFSWorkDir         = "/tmp"
	defaultGPFSMaxFiles        = 1000
	defaultGPFSThreadLevel     = 8
	defaultGPFSNodeList        = "all"
	defaultGPFSDebugLevel      = 1
	defaultEmptyRuleTrigger    = "value_present"
	defaultStatusField         = "SS"
	defaultGermlineSomaticCode = 1
	defaultPIIThresholdPct     = 50
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
		},
		Store: Store{
			Backend:          BackendSQLite,
			RedisPrefix:      defaultRedisPrefix,
			ConnectRetries:   defaultConnectRetries,
			ConnectBackoffMS: defaultConnectBackoffMS,
		},
		GPFS: GPFS{
			Binary:        defaultGPFSBinary,
			StateBinary:   defaultGPFSStateBinary,
			ExecCommand:   defaultGPFSExecCommand,
			GlobalWorkDir: defaultGPFSWorkDir,
			LocalWorkDir:  defaultGPFSWorkDir,
			MaxFiles:      defaultGPFSMaxFiles,
			ThreadLevel:   defaultGPFSThreadLevel,
			NodeList:      defaultGPFSNodeList,
			DebugLevel:    defaultGPFSDebugLevel,
		},
		DICOM: DICOM{
			SearchPatterns:   []string{"*.dcm"},
			EmptyRuleTrigger: defaultEmptyRuleTrigger,
		},
		VCF: VCF{
			SearchPatterns:      []string{"*.vcf", "*.vcf.gz"},
			StatusField:         defaultStatusField,
			GermlineSomaticCode: defaultGermlineSomaticCode,
			PIIThresholdPct:     defaultPIIThresholdPct,
		},
		Workflow: Workflow{
			ExclusiveLock: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
