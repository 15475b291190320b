package main

import (
	"context"
	"fmt"

	"github.com/FranksOps/leadscan/internal/config"
	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/FranksOps/leadscan/internal/storage/csvbackend"
	"github.com/FranksOps/leadscan/internal/storage/jsonbackend"
	"github.com/FranksOps/leadscan/internal/storage/postgres"
	"github.com/FranksOps/leadscan/internal/storage/sqlite"
)

func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	var (
		b   storage.Backend
		err error
	)
	switch cfg.Backend {
	case config.BackendCSV:
		b, err = csvbackend.New(cfg.Output)
	case config.BackendJSON:
		b, err = jsonbackend.New(cfg.Output)
	case config.BackendSQLite:
		b, err = sqlite.New(cfg.DSN)
	case config.BackendPostgres:
		b, err = postgres.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return b, nil
}
