package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hackseek/scraper/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Times are stored
// as RFC 3339 strings and array/detail columns as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hackathons (
	id                    TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	description           TEXT,
	website_url           TEXT,
	registration_url      TEXT,
	start_date            TEXT,
	end_date              TEXT,
	registration_deadline TEXT,
	location              TEXT,
	is_online             INTEGER NOT NULL DEFAULT 0,
	prize_money           REAL,
	categories            TEXT,
	technologies          TEXT,
	organizer             TEXT,
	source_platform       TEXT NOT NULL,
	source_id             TEXT NOT NULL DEFAULT '',
	source_url            TEXT,
	scraped_at            TEXT NOT NULL,
	created_at            TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_hackathons_identity
	ON hackathons (source_platform, source_id) WHERE source_id <> '';
CREATE INDEX IF NOT EXISTS idx_hackathons_platform ON hackathons (source_platform);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id           TEXT PRIMARY KEY,
	platform     TEXT NOT NULL,
	status       TEXT NOT NULL,
	items_found  INTEGER NOT NULL DEFAULT 0,
	items_saved  INTEGER NOT NULL DEFAULT 0,
	errors_count INTEGER NOT NULL DEFAULT 0,
	error_detail TEXT,
	started_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scrape_jobs_platform ON scrape_jobs (platform);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertHackathon inserts or updates a record by its identity key.
func (s *SQLiteStore) UpsertHackathon(ctx context.Context, h model.Hackathon) (model.UpsertOutcome, error) {
	exists := false
	if h.HasIdentity() {
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM hackathons WHERE source_platform = ? AND source_id = ? AND source_id <> ''`,
			h.SourcePlatform, h.SourceID,
		).Scan(new(int))
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return "", eris.Wrapf(err, "sqlite: check hackathon %s/%s", h.SourcePlatform, h.SourceID)
		default:
			exists = true
		}
	}

	if exists {
		_, err := s.db.ExecContext(ctx, `
			UPDATE hackathons SET
				title = ?, description = ?, website_url = ?, registration_url = ?,
				start_date = ?, end_date = ?, registration_deadline = ?,
				location = ?, is_online = ?, prize_money = ?,
				categories = ?, technologies = ?, organizer = ?,
				source_url = ?, scraped_at = ?, updated_at = datetime('now')
			WHERE source_platform = ? AND source_id = ?`,
			h.Title, h.Description, h.WebsiteURL, h.RegistrationURL,
			sqliteTime(h.StartDate), sqliteTime(h.EndDate), sqliteTime(h.RegistrationDeadline),
			h.Location, boolToInt(h.IsOnline), nullableFloat(h.PrizeMoney),
			jsonList(h.Categories), jsonList(h.Technologies), h.Organizer,
			h.SourceURL, h.ScrapedAt.UTC().Format(time.RFC3339Nano),
			h.SourcePlatform, h.SourceID,
		)
		if err != nil {
			return "", eris.Wrapf(err, "sqlite: update hackathon %s/%s", h.SourcePlatform, h.SourceID)
		}
		return model.OutcomeUpdated, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hackathons (
			id, title, description, website_url, registration_url,
			start_date, end_date, registration_deadline, location, is_online,
			prize_money, categories, technologies, organizer,
			source_platform, source_id, source_url, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), h.Title, h.Description, h.WebsiteURL, h.RegistrationURL,
		sqliteTime(h.StartDate), sqliteTime(h.EndDate), sqliteTime(h.RegistrationDeadline),
		h.Location, boolToInt(h.IsOnline), nullableFloat(h.PrizeMoney),
		jsonList(h.Categories), jsonList(h.Technologies), h.Organizer,
		h.SourcePlatform, h.SourceID, h.SourceURL,
		h.ScrapedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert hackathon %q", h.Title)
	}
	return model.OutcomeCreated, nil
}

// RecordJobRun appends one scrape job audit row.
func (s *SQLiteStore) RecordJobRun(ctx context.Context, job model.ScrapeJob) error {
	id := job.ID
	if id == "" {
		id = uuid.NewString()
	}
	var detail any
	if len(job.ErrorDetail) > 0 {
		encoded, err := json.Marshal(job.ErrorDetail)
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode error detail for %s", job.Platform)
		}
		detail = string(encoded)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_jobs (
			id, platform, status, items_found, items_saved, errors_count,
			error_detail, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, job.Platform, string(job.Status),
		job.ItemsFound, job.ItemsSaved, job.ErrorsCount,
		detail,
		job.StartedAt.UTC().Format(time.RFC3339Nano),
		job.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: record job run for %s", job.Platform)
	}
	return nil
}

// ListJobs returns the most recent scrape jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]model.ScrapeJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, status, items_found, items_saved, errors_count,
		       error_detail, started_at, completed_at
		FROM scrape_jobs ORDER BY created_at DESC, started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.ScrapeJob
	for rows.Next() {
		var (
			job         model.ScrapeJob
			status      string
			detail      sql.NullString
			startedAt   string
			completedAt string
		)
		if err := rows.Scan(
			&job.ID, &job.Platform, &status,
			&job.ItemsFound, &job.ItemsSaved, &job.ErrorsCount,
			&detail, &startedAt, &completedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		job.Status = model.JobStatus(status)
		if detail.Valid && detail.String != "" {
			if err := json.Unmarshal([]byte(detail.String), &job.ErrorDetail); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode error detail for job %s", job.ID)
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			job.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
			job.CompletedAt = t
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate jobs")
	}
	return jobs, nil
}

func sqliteTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func jsonList(items []string) any {
	if len(items) == 0 {
		return nil
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return string(encoded)
}
