// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.module_levels", map[string]string{})

	v.SetDefault("database.type", DatabaseSQLite)
	v.SetDefault("database.sqlite.path", "quorum.db")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", "3306")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "quorum")
	v.SetDefault("database.mysql.table_prefix", "")
	v.SetDefault("database.slow_query_threshold", 200*time.Millisecond)

	v.SetDefault("voting.tx_max_retries", 5)
	v.SetDefault("voting.tx_initial_backoff", 20*time.Millisecond)
	v.SetDefault("voting.tx_max_backoff", time.Second)

	v.SetDefault("cache.policy_ttl", 5*time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sentry_dsn", "")
	v.SetDefault("telemetry.environment", "production")

	v.SetDefault("metrics.enabled", true)
}

// Defaults returns the settings produced by the registered defaults alone.
func Defaults() *Settings {
	v := viper.New()
	setDefaultConfig(v)
	settings := &Settings{}
	// Defaults are plain values; decoding them cannot fail.
	_ = v.Unmarshal(settings)
	return settings
}
