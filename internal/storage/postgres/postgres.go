package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS enrichment_results (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	run_at TIMESTAMPTZ NOT NULL,
	position INTEGER NOT NULL,
	domain TEXT NOT NULL,
	status TEXT NOT NULL,
	emails TEXT NOT NULL,
	phones TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	protection TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS enrichment_results_run ON enrichment_results (run_at DESC, run_id, position);
`

const insert = `
INSERT INTO enrichment_results (
	id, run_id, run_at, position, domain, status, emails, phones, url, status_code, protection, duration_ms, fetched_at
) VALUES ($1, $2, now(), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

// SaveBatch queues every insert on one pgx.Batch inside a transaction. now()
// is fixed for the transaction, so the whole batch shares one run_at.
func (b *postgresBackend) SaveBatch(ctx context.Context, records []*storage.Record) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insert,
			r.ID,
			r.RunID,
			r.Position,
			r.Domain,
			r.Status,
			r.Emails,
			r.Phones,
			r.URL,
			r.StatusCode,
			r.Protection,
			r.DurationMS,
			r.FetchedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, r := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("postgres: insert %s: %w", r.Domain, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, position, domain, status, emails, phones, url, status_code, protection, duration_ms, fetched_at FROM enrichment_results WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.RunID != "" {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		args = append(args, filter.RunID)
		paramCount++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND domain = $%d`, paramCount)
		args = append(args, filter.Domain)
		paramCount++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, paramCount)
		args = append(args, filter.Status)
		paramCount++
	}
	if filter.OKOnly {
		query += ` AND status = ''`
	}

	query += ` ORDER BY run_at DESC, run_id, position ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*storage.Record, error) {
		var r storage.Record
		err := row.Scan(
			&r.ID, &r.RunID, &r.Position, &r.Domain, &r.Status, &r.Emails, &r.Phones,
			&r.URL, &r.StatusCode, &r.Protection, &r.DurationMS, &r.FetchedAt,
		)
		return &r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan: %w", err)
	}
	if results == nil {
		results = []*storage.Record{}
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
