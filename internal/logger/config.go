package logger

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	DefaultLevel string            `yaml:"default_level" mapstructure:"default_level"` // trace, debug, info, warn, error
	Format       string            `yaml:"format" mapstructure:"format"`               // text or json
	Timezone     string            `yaml:"timezone" mapstructure:"timezone"`           // "Local", "UTC" or an IANA name
	FilePath     string            `yaml:"file_path" mapstructure:"file_path"`         // optional JSON log file next to console output
	ModuleLevels map[string]string `yaml:"module_levels" mapstructure:"module_levels"` // per-module level overrides
}

// Default values for logging configuration. Kept in sync with conf/defaults.go.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	FormatJSON       = "json"
)

func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}
	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	if cfg.ModuleLevels == nil {
		cfg.ModuleLevels = make(map[string]string)
	}
}
