package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/directory/domain"
	"github.com/fastygo/directory/internal/config"
	"github.com/fastygo/directory/repository"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database:   config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "data", "dir.db")},
		Migrations: config.MigrationsConfig{Enabled: true},
	}
	ctx := context.Background()

	backend, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	assert.Equal(t, config.DriverSQLite, backend.Driver)
	require.NoError(t, backend.Ping(ctx))

	err = backend.Transactor.WithinTx(ctx, func(s repository.Store) error {
		_, err := s.Users().Create(ctx, domain.NewUser("a@example.com", "alice", nil))
		return err
	})
	require.NoError(t, err)
}

func TestOpen_SQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir.db")
	cfg := &config.Config{
		Database:   config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: path},
		Migrations: config.MigrationsConfig{Enabled: true},
	}

	first, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	first.Close()

	second, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	second.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}, nil)
	assert.Error(t, err)
}
