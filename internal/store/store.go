// Package store persists canonical hackathon records and scrape job audit
// rows. Postgres is the production backend; SQLite serves local runs.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackseek/scraper/internal/model"
)

// Store is the persistence gateway the engine writes through. Upserts are
// atomic per identity key; the unique index on (source_platform, source_id)
// is the authoritative dedup mechanism.
type Store interface {
	// UpsertHackathon inserts or updates a record keyed by
	// (source_platform, source_id). Records without a source id are
	// inserted unconditionally.
	UpsertHackathon(ctx context.Context, h model.Hackathon) (model.UpsertOutcome, error)

	// RecordJobRun appends one scrape job audit row. Jobs are never
	// updated after creation.
	RecordJobRun(ctx context.Context, job model.ScrapeJob) error

	// ListJobs returns the most recent scrape jobs, newest first.
	ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error)

	// Migrate creates the schema.
	Migrate(ctx context.Context) error

	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres store uses. Satisfied by
// pgxmock.PgxPoolIface in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}
