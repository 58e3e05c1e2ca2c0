// Package db embeds the SQL migrations, one directory per dialect.
package db

import "embed"

//go:embed migrations/*/*.sql
var Migrations embed.FS

// MigrationsDir returns the directory inside Migrations holding the driver's files.
func MigrationsDir(driver string) string {
	return "migrations/" + driver
}
