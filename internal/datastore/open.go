package datastore

import (
	"fmt"

	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
)

// Open creates the manager selected by settings and migrates the schema.
func Open(settings *conf.DatabaseSettings, log logger.Logger) (Manager, error) {
	var (
		m   Manager
		err error
	)

	switch settings.Type {
	case conf.DatabaseSQLite, "":
		m, err = NewSQLiteManager(settings.SQLite.Path, log, settings.SlowQueryThreshold)
	case conf.DatabaseMySQL:
		m, err = NewMySQLManager(&MySQLConfig{
			Host:               settings.MySQL.Host,
			Port:               settings.MySQL.Port,
			Username:           settings.MySQL.Username,
			Password:           settings.MySQL.Password,
			Database:           settings.MySQL.Database,
			TablePrefix:        settings.MySQL.TablePrefix,
			SlowQueryThreshold: settings.SlowQueryThreshold,
		}, log)
	default:
		err = fmt.Errorf("unsupported database type %q", settings.Type)
	}
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("database_type", settings.Type).
			Build()
	}

	if err := m.Initialize(); err != nil {
		_ = m.Close()
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "migrate").
			Context("path", m.Path()).
			Build()
	}

	if log != nil {
		log.Info("database ready",
			logger.String("type", settings.Type),
			logger.String("path", m.Path()))
	}
	return m, nil
}
