package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/hackseek/scraper/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const upsertHackathonSQL = `
INSERT INTO hackathons (
	id, title, description, website_url, registration_url,
	start_date, end_date, registration_deadline, location, is_online,
	prize_money, categories, technologies, organizer,
	source_platform, source_id, source_url, scraped_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (source_platform, source_id) WHERE source_id <> ''
DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	website_url = EXCLUDED.website_url,
	registration_url = EXCLUDED.registration_url,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	registration_deadline = EXCLUDED.registration_deadline,
	location = EXCLUDED.location,
	is_online = EXCLUDED.is_online,
	prize_money = EXCLUDED.prize_money,
	categories = EXCLUDED.categories,
	technologies = EXCLUDED.technologies,
	organizer = EXCLUDED.organizer,
	source_url = EXCLUDED.source_url,
	scraped_at = EXCLUDED.scraped_at,
	updated_at = now()
RETURNING (xmax = 0)`

const insertHackathonSQL = `
INSERT INTO hackathons (
	id, title, description, website_url, registration_url,
	start_date, end_date, registration_deadline, location, is_online,
	prize_money, categories, technologies, organizer,
	source_platform, source_id, source_url, scraped_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

const insertJobSQL = `
INSERT INTO scrape_jobs (
	id, platform, status, items_found, items_saved, errors_count,
	error_detail, started_at, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const listJobsSQL = `
SELECT id, platform, status, items_found, items_saved, errors_count,
       error_detail, started_at, completed_at
FROM scrape_jobs ORDER BY created_at DESC LIMIT $1`

// preparedStatements lists queries to prepare on each new connection for
// the hot path.
var preparedStatements = map[string]string{
	"upsert_hackathon": upsertHackathonSQL,
	"insert_job":       insertJobSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS hackathons (
	id                    TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	description           TEXT,
	website_url           TEXT,
	registration_url      TEXT,
	start_date            TIMESTAMPTZ,
	end_date              TIMESTAMPTZ,
	registration_deadline TIMESTAMPTZ,
	location              TEXT,
	is_online             BOOLEAN NOT NULL DEFAULT FALSE,
	prize_money           DOUBLE PRECISION,
	categories            TEXT[],
	technologies          TEXT[],
	organizer             TEXT,
	source_platform       TEXT NOT NULL,
	source_id             TEXT NOT NULL DEFAULT '',
	source_url            TEXT,
	scraped_at            TIMESTAMPTZ NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_hackathons_identity
	ON hackathons (source_platform, source_id) WHERE source_id <> '';
CREATE INDEX IF NOT EXISTS idx_hackathons_start_date ON hackathons (start_date);
CREATE INDEX IF NOT EXISTS idx_hackathons_platform ON hackathons (source_platform);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id           TEXT PRIMARY KEY,
	platform     TEXT NOT NULL,
	status       TEXT NOT NULL,
	items_found  INTEGER NOT NULL DEFAULT 0,
	items_saved  INTEGER NOT NULL DEFAULT 0,
	errors_count INTEGER NOT NULL DEFAULT 0,
	error_detail JSONB,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scrape_jobs_platform ON scrape_jobs (platform);
CREATE INDEX IF NOT EXISTS idx_scrape_jobs_created_at ON scrape_jobs (created_at);
`

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// UpsertHackathon inserts or updates a record by its identity key. Records
// without a source id cannot be matched to prior rows and insert
// unconditionally.
func (s *PostgresStore) UpsertHackathon(ctx context.Context, h model.Hackathon) (model.UpsertOutcome, error) {
	args := hackathonArgs(h)

	if !h.HasIdentity() {
		if _, err := s.pool.Exec(ctx, insertHackathonSQL, args...); err != nil {
			return "", eris.Wrapf(err, "postgres: insert hackathon %q", h.Title)
		}
		return model.OutcomeCreated, nil
	}

	var inserted bool
	if err := s.pool.QueryRow(ctx, upsertHackathonSQL, args...).Scan(&inserted); err != nil {
		return "", eris.Wrapf(err, "postgres: upsert hackathon %s/%s", h.SourcePlatform, h.SourceID)
	}
	if inserted {
		return model.OutcomeCreated, nil
	}
	return model.OutcomeUpdated, nil
}

// RecordJobRun appends one scrape job audit row.
func (s *PostgresStore) RecordJobRun(ctx context.Context, job model.ScrapeJob) error {
	id := job.ID
	if id == "" {
		id = uuid.NewString()
	}
	var detail any
	if len(job.ErrorDetail) > 0 {
		detail = job.ErrorDetail
	}
	_, err := s.pool.Exec(ctx, insertJobSQL,
		id, job.Platform, string(job.Status),
		job.ItemsFound, job.ItemsSaved, job.ErrorsCount,
		detail, job.StartedAt, job.CompletedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: record job run for %s", job.Platform)
	}
	return nil
}

// ListJobs returns the most recent scrape jobs, newest first.
func (s *PostgresStore) ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, listJobsSQL, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.ScrapeJob
	for rows.Next() {
		var (
			job    model.ScrapeJob
			status string
			detail []byte
		)
		if err := rows.Scan(
			&job.ID, &job.Platform, &status,
			&job.ItemsFound, &job.ItemsSaved, &job.ErrorsCount,
			&detail, &job.StartedAt, &job.CompletedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		job.Status = model.JobStatus(status)
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &job.ErrorDetail); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode error detail for job %s", job.ID)
			}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate jobs")
	}
	return jobs, nil
}

// hackathonArgs builds the positional args shared by the insert and upsert
// statements.
func hackathonArgs(h model.Hackathon) []any {
	return []any{
		uuid.NewString(), h.Title, h.Description, h.WebsiteURL, h.RegistrationURL,
		h.StartDate, h.EndDate, h.RegistrationDeadline, h.Location, h.IsOnline,
		h.PrizeMoney, h.Categories, h.Technologies, h.Organizer,
		h.SourcePlatform, h.SourceID, h.SourceURL, h.ScrapedAt,
	}
}
