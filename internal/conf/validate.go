// conf/validate.go

package conf

import (
	"fmt"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateDatabaseSettings(&settings.Database)...)
	ve.Errors = append(ve.Errors, validateVotingSettings(&settings.Voting)...)
	ve.Errors = append(ve.Errors, validateLoggingLevels(settings)...)

	if settings.Cache.PolicyTTL < 0 {
		ve.Errors = append(ve.Errors, "cache.policy_ttl must not be negative")
	}
	if settings.Telemetry.Enabled && settings.Telemetry.SentryDSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.sentry_dsn is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(db *DatabaseSettings) []string {
	var errs []string
	switch db.Type {
	case DatabaseSQLite:
		if strings.TrimSpace(db.SQLite.Path) == "" {
			errs = append(errs, "database.sqlite.path must be set")
		}
	case DatabaseMySQL:
		if db.MySQL.Host == "" {
			errs = append(errs, "database.mysql.host must be set")
		}
		if db.MySQL.Database == "" {
			errs = append(errs, "database.mysql.database must be set")
		}
		if db.MySQL.Username == "" {
			errs = append(errs, "database.mysql.username must be set")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type %q is not supported, use %q or %q", db.Type, DatabaseSQLite, DatabaseMySQL))
	}
	return errs
}

func validateVotingSettings(v *VotingSettings) []string {
	var errs []string
	if v.TxMaxRetries < 0 {
		errs = append(errs, "voting.tx_max_retries must not be negative")
	}
	if v.TxInitialBackoff <= 0 {
		errs = append(errs, "voting.tx_initial_backoff must be positive")
	}
	if v.TxMaxBackoff < v.TxInitialBackoff {
		errs = append(errs, "voting.tx_max_backoff must be at least voting.tx_initial_backoff")
	}
	return errs
}

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

func validateLoggingLevels(settings *Settings) []string {
	var errs []string
	if !validLevels[settings.Logging.DefaultLevel] {
		errs = append(errs, fmt.Sprintf("logging.default_level %q is not a valid level", settings.Logging.DefaultLevel))
	}
	for module, level := range settings.Logging.ModuleLevels {
		if !validLevels[level] {
			errs = append(errs, fmt.Sprintf("logging.module_levels.%s %q is not a valid level", module, level))
		}
	}
	switch settings.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", settings.Logging.Format))
	}
	return errs
}
