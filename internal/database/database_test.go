package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndApplyMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.ApplyMigrations())

	var name string
	err = conn.DB.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='media_items'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "media_items", name)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.ApplyMigrations())
	require.NoError(t, conn.ApplyMigrations())

	version, err := conn.currentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestPragmasApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var mode string
	require.NoError(t, conn.DB.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, conn.DB.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
