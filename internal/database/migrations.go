package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/gphotos321sync/mediascanner/internal/database/schema"
)

// schemaVersionTable is created directly (not via a migration script)
// since every migration run needs somewhere to record progress before
// the first numbered script even exists.
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// ApplyMigrations reads the catalog's current schema version, applies any
// pending numbered migration scripts from schema.Migrations (each inside
// its own transaction), and advances the recorded version. A missing or
// empty schema directory is not a fault — it just means there's nothing
// to apply yet, which lets a brand-new, empty catalog file bootstrap via
// ApplyMigrations alone.
func (c *Connection) ApplyMigrations() error {
	if _, err := c.DB.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	current, err := c.currentVersion()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(current)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}

	for _, m := range pending {
		sqlBytes, err := fs.ReadFile(schema.Migrations, "migrations/"+m.filename)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", m.filename, err)
		}

		tx, err := c.DB.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %s: %w", m.filename, err)
		}
		if err := execScript(tx, string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", m.filename, err)
		}
		if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
			tx.Rollback()
			return fmt.Errorf("clearing schema_version for migration %s: %w", m.filename, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording schema_version for migration %s: %w", m.filename, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", m.filename, err)
		}
	}

	return nil
}

func (c *Connection) currentVersion() (int, error) {
	var version int
	err := c.DB.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// No row yet: a brand-new catalog starts at version 0.
		return 0, nil
	}
	return version, nil
}

type migrationFile struct {
	version  int
	filename string
}

func pendingMigrations(current int) ([]migrationFile, error) {
	entries, err := fs.ReadDir(schema.Migrations, "migrations")
	if err != nil {
		return nil, nil
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		numPart := strings.SplitN(e.Name(), "_", 2)[0]
		version, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		if version > current {
			files = append(files, migrationFile{version: version, filename: e.Name()})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// execScript runs a semicolon-separated batch of statements inside tx.
// The catalog's migration scripts contain no string literals with
// embedded semicolons, so a naive split is safe here.
func execScript(tx *sql.Tx, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}
