package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"medialib/db"
)

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }

// GooseDialect maps a driver name to the goose dialect name.
func GooseDialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	case DriverMySQL:
		return "mysql", nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}

// Setup points goose at the embedded migrations for driver.
func Setup(driver string, log *zap.Logger) error {
	dialect, err := GooseDialect(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(db.Migrations)
	goose.SetLogger(gooseLogger{log: log.Sugar()})
	return goose.SetDialect(dialect)
}

// Migrate applies every pending embedded migration for driver.
func Migrate(ctx context.Context, sqlDB *sql.DB, driver string, log *zap.Logger) error {
	if err := Setup(driver, log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, db.MigrationsDir(driver)); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}
