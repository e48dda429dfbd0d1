package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackseek/scraper/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_UpsertHackathon_CreateThenUpdate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	h := sampleHackathon()

	outcome, err := st.UpsertHackathon(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, outcome)

	h.Title = "DevHack 2025 (extended)"
	outcome, err = st.UpsertHackathon(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeUpdated, outcome)
}

func TestSQLite_UpsertHackathon_NoIdentityAlwaysCreates(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	h := sampleHackathon()
	h.SourceID = ""

	for i := 0; i < 2; i++ {
		outcome, err := st.UpsertHackathon(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeCreated, outcome)
	}
}

func TestSQLite_UpsertHackathon_DistinctIdentitiesBothCreated(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := sampleHackathon()
	b := sampleHackathon()
	b.SourceID = "other-hack"

	outcome, err := st.UpsertHackathon(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, outcome)

	outcome, err = st.UpsertHackathon(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, outcome)
}

func TestSQLite_RecordJobRunAndListJobs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	completed := started.Add(90 * time.Second)

	first := model.ScrapeJob{
		Platform:    "devpost",
		Status:      model.JobCompleted,
		ItemsFound:  5,
		ItemsSaved:  4,
		ErrorsCount: 1,
		StartedAt:   started,
		CompletedAt: completed,
	}
	second := model.ScrapeJob{
		Platform:    "mlh",
		Status:      model.JobFailed,
		ErrorDetail: map[string]any{"error": "listing unreachable"},
		StartedAt:   started.Add(time.Minute),
		CompletedAt: completed.Add(time.Minute),
	}

	require.NoError(t, st.RecordJobRun(ctx, first))
	require.NoError(t, st.RecordJobRun(ctx, second))

	jobs, err := st.ListJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	byPlatform := map[string]model.ScrapeJob{}
	for _, job := range jobs {
		assert.NotEmpty(t, job.ID)
		byPlatform[job.Platform] = job
	}

	got := byPlatform["devpost"]
	assert.Equal(t, model.JobCompleted, got.Status)
	assert.Equal(t, 5, got.ItemsFound)
	assert.Equal(t, 4, got.ItemsSaved)
	assert.Equal(t, 1, got.ErrorsCount)
	assert.Nil(t, got.ErrorDetail)
	assert.True(t, got.StartedAt.Equal(started))

	failed := byPlatform["mlh"]
	assert.Equal(t, model.JobFailed, failed.Status)
	assert.Equal(t, map[string]any{"error": "listing unreachable"}, failed.ErrorDetail)
}

func TestSQLite_ListJobs_LimitAndEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	jobs, err := st.ListJobs(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	for i := 0; i < 4; i++ {
		require.NoError(t, st.RecordJobRun(ctx, model.ScrapeJob{
			Platform:    "devpost",
			Status:      model.JobCompleted,
			StartedAt:   time.Now().UTC(),
			CompletedAt: time.Now().UTC(),
		}))
	}

	jobs, err = st.ListJobs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
