// Package conf loads quorum settings from config.yaml, QUORUM_* environment
// variables and command line flags, in increasing order of precedence.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/labelquorum/quorum/internal/logger"
)

// EnvPrefix is prepended to every environment override, e.g. QUORUM_DATABASE_TYPE.
const EnvPrefix = "QUORUM"

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// Settings is the root of the configuration tree.
type Settings struct {
	Debug     bool                 `yaml:"debug" mapstructure:"debug"`
	Logging   logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Database  DatabaseSettings     `yaml:"database" mapstructure:"database"`
	Voting    VotingSettings       `yaml:"voting" mapstructure:"voting"`
	Cache     CacheSettings        `yaml:"cache" mapstructure:"cache"`
	Telemetry TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
	Metrics   MetricsSettings      `yaml:"metrics" mapstructure:"metrics"`
}

// DatabaseSettings selects and configures the durable store.
type DatabaseSettings struct {
	Type               string         `yaml:"type" mapstructure:"type"` // sqlite or mysql
	SQLite             SQLiteSettings `yaml:"sqlite" mapstructure:"sqlite"`
	MySQL              MySQLSettings  `yaml:"mysql" mapstructure:"mysql"`
	SlowQueryThreshold time.Duration  `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
}

// SQLiteSettings holds the sqlite database file location.
type SQLiteSettings struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MySQLSettings holds MySQL connection parameters.
type MySQLSettings struct {
	Host        string `yaml:"host" mapstructure:"host"`
	Port        string `yaml:"port" mapstructure:"port"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	Database    string `yaml:"database" mapstructure:"database"`
	TablePrefix string `yaml:"table_prefix" mapstructure:"table_prefix"`
}

// VotingSettings tunes the transaction retry loop around ballot submission,
// sweeps and round creation.
type VotingSettings struct {
	TxMaxRetries     int           `yaml:"tx_max_retries" mapstructure:"tx_max_retries"`
	TxInitialBackoff time.Duration `yaml:"tx_initial_backoff" mapstructure:"tx_initial_backoff"`
	TxMaxBackoff     time.Duration `yaml:"tx_max_backoff" mapstructure:"tx_max_backoff"`
}

// CacheSettings controls the in-process project policy cache.
type CacheSettings struct {
	PolicyTTL time.Duration `yaml:"policy_ttl" mapstructure:"policy_ttl"`
}

// TelemetrySettings configures Sentry error reporting.
type TelemetrySettings struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	SentryDSN   string `yaml:"sentry_dsn" mapstructure:"sentry_dsn"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// MetricsSettings toggles Prometheus collection.
type MetricsSettings struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// NewViper returns a viper instance with defaults and environment
// overrides registered. Flags may be bound to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultConfig(v)
	return v
}

// Load reads configFile, or searches the default config paths when it is
// empty, and returns validated settings. A missing config file in the
// search paths is not an error; defaults apply.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		for _, path := range DefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if settings.Debug && settings.Logging.DefaultLevel == logger.DefaultLogLevel {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// DefaultConfigPaths lists the directories searched for config.yaml.
func DefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "quorum"))
	}
	return append(paths, "/etc/quorum")
}
