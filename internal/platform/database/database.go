// Package database opens the catalog's database handles and applies migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

const pingTimeout = 2 * time.Second

// OpenPool creates a pgx pool and verifies the connection.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return pool, nil
}

// OpenSQL opens a database/sql handle for SQLite or MySQL and verifies the connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = SQLiteDSN(dsn)
	case DriverMySQL:
		dsn = MySQLDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer at a time; this also keeps a :memory: database alive
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return db, nil
}

// dsnParam is appended to a DSN unless probe already occurs in it.
type dsnParam struct {
	probe string
	param string
}

// SQLiteDSN makes every transaction take the write lock when it begins and waits
// for a busy database instead of failing immediately.
func SQLiteDSN(path string) string {
	return appendParams(path, []dsnParam{
		{probe: "_txlock=", param: "_txlock=immediate"},
		{probe: "busy_timeout", param: "_pragma=busy_timeout(5000)"},
		{probe: "foreign_keys", param: "_pragma=foreign_keys(1)"},
	})
}

// MySQLDSN defaults the connection to utf8mb4 with parseTime enabled.
func MySQLDSN(dsn string) string {
	return appendParams(dsn, []dsnParam{
		{probe: "parseTime=", param: "parseTime=true"},
		{probe: "charset=", param: "charset=utf8mb4"},
	})
}

func appendParams(dsn string, params []dsnParam) string {
	var keep []string
	for _, p := range params {
		if !strings.Contains(dsn, p.probe) {
			keep = append(keep, p.param)
		}
	}
	if len(keep) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(keep, "&")
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		// user:pass@tcp(host)/db
		if at := strings.Index(dsn, "@"); at >= 0 {
			return "***" + dsn[at:]
		}
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
