package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribed/internal/types"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStore(filepath.Join(t.TempDir(), "logs", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		outcome := types.JobOutcome{
			JobID:    fmt.Sprintf("job-%08x", i),
			Status:   types.StatusCompleted,
			Duration: time.Duration(i+1) * time.Second,
		}
		require.NoError(t, s.Record(fmt.Sprintf("meeting-%d.txt", i), outcome))
	}

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, "job-00000002", entries[0].JobID)
	assert.Equal(t, "meeting-2.txt", entries[0].Identity)
}

func TestHistoryStore_RecentLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record("m.txt", types.JobOutcome{
			JobID:  fmt.Sprintf("job-%08x", i),
			Status: types.StatusCompleted,
		}))
	}

	entries, err := s.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHistoryStore_Counts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Record("a.txt", types.JobOutcome{
		JobID: "job-00000001", Status: types.StatusCompleted,
	}))
	require.NoError(t, s.Record("b.txt", types.JobOutcome{
		JobID: "job-00000002", Status: types.StatusFailed, Error: "boom",
	}))
	require.NoError(t, s.Record("c.txt", types.JobOutcome{
		JobID: "job-00000003", Status: types.StatusFailed, Error: "boom again",
	}))

	completed, failed, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, failed)
}

func TestHistoryStore_ReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	s, err := NewHistoryStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record("a.txt", types.JobOutcome{
		JobID: "job-00000001", Status: types.StatusCompleted,
	}))
	require.NoError(t, s.Close())

	s2, err := NewHistoryStore(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
