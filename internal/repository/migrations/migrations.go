// Package migrations runs the versioned SQL schema migrations shared
// by the Postgres and SQLite TaskRepository drivers, via
// pressly/goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// RunPostgres applies every pending migration under postgres/ to db.
func RunPostgres(db *sql.DB) error {
	return run(db, "postgres", postgresFS)
}

// RunSQLite applies every pending migration under sqlite/ to db.
func RunSQLite(db *sql.DB) error {
	return run(db, "sqlite3", sqliteFS)
}

func run(db *sql.DB, dialect string, fsys embed.FS) error {
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrations: set dialect %s: %w", dialect, err)
	}
	dir := "postgres"
	if dialect == "sqlite3" {
		dir = "sqlite"
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migrations: up (%s): %w", dialect, err)
	}
	return nil
}
