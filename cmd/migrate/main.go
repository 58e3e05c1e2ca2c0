package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medialib/db"
	"medialib/internal/config"
	"medialib/internal/platform/database"
	"medialib/internal/platform/logging"
)

type options struct {
	driver string
	dsn    string
	log    *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the catalog database migrations",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.driver == "" {
				opts.driver = cfg.DB.Driver
			}
			if opts.dsn == "" {
				opts.dsn = cfg.DB.DSN
				if opts.driver != cfg.DB.Driver && os.Getenv("DB_DSN") == "" {
					return fmt.Errorf("--dsn is required when --driver differs from DB_DRIVER")
				}
			}
			if _, err := database.GooseDialect(opts.driver); err != nil {
				return err
			}
			opts.log, err = logging.New(cfg.Log.Level, "console")
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver: postgres, sqlite or mysql (default DB_DRIVER)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN (default DB_DSN)")

	root.AddCommand(
		withDB(opts, "up", "Apply all pending migrations", func(ctx context.Context, sqlDB *sql.DB) error {
			if err := goose.UpContext(ctx, sqlDB, db.MigrationsDir(opts.driver)); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Println("Migrations applied successfully")
			return nil
		}),
		withDB(opts, "down", "Roll back the latest migration", func(ctx context.Context, sqlDB *sql.DB) error {
			if err := goose.DownContext(ctx, sqlDB, db.MigrationsDir(opts.driver)); err != nil {
				return fmt.Errorf("failed to rollback migrations: %w", err)
			}
			fmt.Println("Migrations rolled back successfully")
			return nil
		}),
		withDB(opts, "status", "Show the state of every migration", func(ctx context.Context, sqlDB *sql.DB) error {
			return goose.StatusContext(ctx, sqlDB, db.MigrationsDir(opts.driver))
		}),
		newCreateCmd(opts),
	)
	return root
}

// withDB builds a subcommand that runs fn against the configured database with goose
// pointed at the embedded migrations.
func withDB(opts *options, use, short string, fn func(ctx context.Context, sqlDB *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sqlDB, closeDB, err := openDB(ctx, opts.driver, opts.dsn)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.Setup(opts.driver, opts.log); err != nil {
				return err
			}
			return fn(ctx, sqlDB)
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new SQL migration for the selected driver",
		Args:  cobra.ExactArgs(1),
		// no database needed
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsDir(opts.driver)
			goose.SetBaseFS(nil)
			goose.SetSequential(true)
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Printf("Migration created in %s: %s\n", dir, args[0])
			return nil
		},
	}
}

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, func(), error) {
	if driver == database.DriverPostgres {
		pool, err := database.OpenPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		return sqlDB, func() {
			_ = sqlDB.Close()
			pool.Close()
		}, nil
	}

	sqlDB, err := database.OpenSQL(ctx, driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, func() { _ = sqlDB.Close() }, nil
}
