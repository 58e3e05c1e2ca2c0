package main

import (
	"os"
	"path/filepath"
)

// migrationsDir is the on-disk directory new migrations for driver are written to.
func migrationsDir(driver string) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("db", "migrations", driver)
}
