package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FranksOps/leadscan/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db  *sql.DB
	now func() time.Time
}

// run_at is unix nanoseconds of the batch save; it orders runs.
const schema = `
CREATE TABLE IF NOT EXISTS enrichment_results (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	run_at INTEGER NOT NULL,
	position INTEGER NOT NULL,
	domain TEXT NOT NULL,
	status TEXT NOT NULL,
	emails TEXT NOT NULL,
	phones TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	protection TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	fetched_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS enrichment_results_run ON enrichment_results (run_at DESC, run_id, position);
`

const insert = `
INSERT INTO enrichment_results (
	id, run_id, run_at, position, domain, status, emails, phones, url, status_code, protection, duration_ms, fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &sqliteBackend{db: db, now: time.Now}, nil
}

// SaveBatch inserts the batch in one transaction.
func (b *sqliteBackend) SaveBatch(ctx context.Context, records []*storage.Record) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	runAt := b.now().UnixNano()
	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.RunID,
			runAt,
			r.Position,
			r.Domain,
			r.Status,
			r.Emails,
			r.Phones,
			r.URL,
			r.StatusCode,
			r.Protection,
			r.DurationMS,
			r.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", r.Domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, position, domain, status, emails, phones, url, status_code, protection, duration_ms, fetched_at FROM enrichment_results WHERE 1=1`
	args := []any{}

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.OKOnly {
		query += ` AND status = ''`
	}

	query += ` ORDER BY run_at DESC, run_id, position ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	results := []*storage.Record{}
	for rows.Next() {
		var r storage.Record
		err := rows.Scan(
			&r.ID, &r.RunID, &r.Position, &r.Domain, &r.Status, &r.Emails, &r.Phones,
			&r.URL, &r.StatusCode, &r.Protection, &r.DurationMS, &r.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
