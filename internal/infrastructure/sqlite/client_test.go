package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.db")
	db, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestRunMigrations_CreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(path, nil))
	require.NoError(t, RunMigrations(path, nil))

	db, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "posts"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
