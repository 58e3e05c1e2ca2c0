// Package store opens the Catalog Store for the configured database driver.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"medialib/internal/catalog"
	"medialib/internal/config"
	"medialib/internal/platform/database"
)

// Store is a catalog repository plus the database handle behind it.
type Store struct {
	Repo catalog.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() {
	s.close()
}

// Open connects to cfg's database, applies pending migrations when AutoMigrate is set
// and returns the matching repository: pgx for Postgres, database/sql otherwise.
func Open(ctx context.Context, cfg config.DB, log *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.OpenPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			sqlDB := stdlib.OpenDBFromPool(pool)
			err := database.Migrate(ctx, sqlDB, cfg.Driver, log)
			_ = sqlDB.Close()
			if err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info("database connection OK", zap.String("driver", cfg.Driver), zap.String("dsn", database.RedactDSN(cfg.DSN)))
		return &Store{
			Repo:  catalog.NewPostgresRepo(pool, cfg.Timeout),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	case config.DriverSQLite, config.DriverMySQL:
		db, err := database.OpenSQL(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db, cfg.Driver, log); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		dialect := catalog.SQLite
		if cfg.Driver == config.DriverMySQL {
			dialect = catalog.MySQL
		}
		log.Info("database connection OK", zap.String("driver", cfg.Driver), zap.String("dsn", database.RedactDSN(cfg.DSN)))
		return &Store{
			Repo:  catalog.NewSQLRepo(db, dialect, cfg.Timeout),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}
