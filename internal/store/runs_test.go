package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRun(id, job, status string) *Run {
	return &Run{
		RunID:           id,
		StartedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ProjectPath:     "/work/proj",
		JobPath:         job,
		SrcCount:        2,
		TbCount:         1,
		IncludeCount:    2,
		IncludeDirCount: 2,
		TotalFiles:      3,
		Status:          status,
	}
}

func TestInsertRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	in := sampleRun("run-1", "/work/job1", StatusOK)
	id, err := db.InsertRun(in)
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := db.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, in.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, 3, got.TotalFiles)
	assert.Equal(t, StatusOK, got.Status)
	assert.Empty(t, got.Error)
}

func TestInsertRun_DuplicateRunID(t *testing.T) {
	db := openTestDB(t)

	_, err := db.InsertRun(sampleRun("dup", "/work/job", StatusOK))
	require.NoError(t, err)
	_, err = db.InsertRun(sampleRun("dup", "/work/job", StatusOK))
	assert.Error(t, err)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := db.InsertRun(sampleRun(id, "/work/job", StatusOK))
		require.NoError(t, err)
	}

	runs, err := db.ListRuns(RunFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestListRuns_Empty(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.ListRuns(RunFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListRuns_FilterByJob(t *testing.T) {
	db := openTestDB(t)

	none, err := db.ListRuns(RunFilter{JobPath: "/work/job1"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = db.InsertRun(sampleRun("r1", "/work/job1", StatusOK))
	require.NoError(t, err)
	failed := sampleRun("r2", "/work/job1", StatusFailed)
	failed.Error = "permission denied"
	_, err = db.InsertRun(failed)
	require.NoError(t, err)
	_, err = db.InsertRun(sampleRun("r3", "/work/job2", StatusOK))
	require.NoError(t, err)

	runs, err := db.ListRuns(RunFilter{JobPath: "/work/job1"})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "permission denied", runs[0].Error)
	assert.Equal(t, "r1", runs[1].RunID)

	latest, err := db.ListRuns(RunFilter{JobPath: "/work/job1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "r2", latest[0].RunID)
}

func TestOpen_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.InsertRun(sampleRun("persisted", "/work/job", StatusOK))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].RunID)

	var version int
	require.NoError(t, db.Conn().QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}
