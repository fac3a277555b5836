// Package storage opens the relational store selected by DB_DRIVER.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/directory/internal/config"
	pgInfra "github.com/fastygo/directory/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/directory/internal/infrastructure/sqlite"
	"github.com/fastygo/directory/repository"
	pgRepo "github.com/fastygo/directory/repository/postgres"
	sqliteRepo "github.com/fastygo/directory/repository/sqlite"
)

// Backend bundles the transactor with the hooks the process needs around it.
type Backend struct {
	Driver     string
	Transactor repository.Transactor
	Ping       func(ctx context.Context) error
	Close      func()
}

// Open migrates (when enabled) and connects to the configured database.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:     config.DriverPostgres,
			Transactor: pgRepo.NewTransactor(pool),
			Ping:       func(ctx context.Context) error { return pgInfra.Ping(ctx, pool) },
			Close:      func() { pgInfra.Close(pool, logger) },
		}, nil

	case config.DriverSQLite:
		path := cfg.Database.SQLitePath
		if cfg.Migrations.Enabled {
			if err := sqliteInfra.RunMigrations(path, logger); err != nil {
				return nil, fmt.Errorf("sqlite migrations: %w", err)
			}
		}
		db, err := sqliteInfra.Open(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:     config.DriverSQLite,
			Transactor: sqliteRepo.NewTransactor(db),
			Ping:       func(ctx context.Context) error { return sqliteInfra.Ping(ctx, db) },
			Close: func() {
				if err := db.Close(); err != nil {
					logger.Warn("sqlite close failed", zap.Error(err))
					return
				}
				logger.Info("sqlite database closed")
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
