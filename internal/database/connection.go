// Package database owns the single SQLite connection the scanner uses for
// its catalog, the migration runner that brings a fresh or older catalog
// file up to the current schema, and (in the dal subpackage) the
// per-table data-access objects built on top of it.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// Connection wraps the single *sql.DB the scanner ever opens against its
// catalog file. Spec §4.9 requires one writer thread and an unshared
// connection, so Open pins the pool to exactly one physical connection:
// that's also what makes the WAL/busy-timeout/foreign-key pragmas below
// stick, since SQLite pragmas are per-connection, not per-database.
type Connection struct {
	DB   *sql.DB
	Path string
}

// Open opens (or creates) the catalog file at path and applies the
// pragmas spec §4.9 requires on every connect: write-ahead logging, a
// 5-second busy timeout, and foreign key enforcement.
func Open(path string) (*Connection, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to catalog %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q to %s: %w", pragma, path, err)
		}
	}

	return &Connection{DB: db, Path: path}, nil
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.DB.Close()
}
