package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

func TestWriter_New(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.sqlite")

	w, err := New(dbPath, RunMeta{MaxChannel: 254, Workers: 1})
	require.NoError(t, err)
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('runs', 'findings')").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Positive(t, w.RunID())
}

func TestWriter_BatchFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.sqlite")

	w, err := New(dbPath, RunMeta{})
	require.NoError(t, err)
	defer w.Close()
	w.batchSize = 2

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(scan.Evaluate(colour.RGB{R: uint8(i)})))
	}

	var count int
	require.NoError(t, w.db.QueryRow("SELECT COUNT(*) FROM findings").Scan(&count))
	assert.Equal(t, 2, count, "first batch should be flushed automatically")
	assert.Len(t, w.batch, 1)

	require.NoError(t, w.Flush())
	require.NoError(t, w.db.QueryRow("SELECT COUNT(*) FROM findings").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestWriter_CloseReportsPendingFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.sqlite")

	w, err := New(dbPath, RunMeta{})
	require.NoError(t, err)
	require.NoError(t, w.Write(scan.Evaluate(colour.RGB{R: 100, G: 100, B: 100})))
	require.NoError(t, w.db.Close())

	err = w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), dbPath)
}

func TestRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.sqlite")
	started := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	w, err := New(dbPath, RunMeta{StartedAt: started, MinChannel: 95, MaxChannel: 105, Workers: 2})
	require.NoError(t, err)

	s, err := scan.New(scan.Options{MinChannel: 95, MaxChannel: 105, Workers: 2})
	require.NoError(t, err)

	var emitted []scan.Finding
	stats, err := s.Run(context.Background(), scan.Tee(w.Write, func(f scan.Finding) error {
		emitted = append(emitted, f)
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, w.Finish(stats))
	require.NoError(t, w.Close())
	require.NotEmpty(t, emitted)

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	run, err := r.LatestRun()
	require.NoError(t, err)
	assert.True(t, run.Finished)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Equal(t, 95, run.Meta.MinChannel)
	assert.Equal(t, 105, run.Meta.MaxChannel)
	assert.Equal(t, stats.Scanned, run.Stats.Scanned)
	assert.Equal(t, stats.FailSmall, run.Stats.FailSmall)
	assert.Equal(t, stats.FailLarge, run.Stats.FailLarge)

	all, err := r.Findings(run.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, all, len(emitted))
	for i := range all {
		assert.Equal(t, emitted[i].Brand, all[i].Brand)
		assert.Equal(t, emitted[i].Secondary, all[i].Secondary)
		assert.Equal(t, emitted[i].Text, all[i].Text)
		assert.Equal(t, emitted[i].Level, all[i].Level)
		assert.InDelta(t, emitted[i].Ratio, all[i].Ratio, 1e-12)
	}

	small := wcag.LevelFailSmall
	onlySmall, err := r.Findings(run.ID, &small, 0)
	require.NoError(t, err)
	assert.Len(t, onlySmall, stats.FailSmall)
	for _, f := range onlySmall {
		assert.Equal(t, wcag.LevelFailSmall, f.Level)
	}

	limited, err := r.Findings(run.ID, nil, 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(limited), 5)
}

func TestReader_MultipleRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.sqlite")

	for i := 0; i < 2; i++ {
		w, err := New(dbPath, RunMeta{MaxChannel: i})
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[0].ID, runs[1].ID, "newest first")
	assert.False(t, runs[0].Finished)
	assert.Equal(t, 1, runs[0].Meta.MaxChannel)
}

func TestOpenReader_MissingSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.sqlite")
	require.NoError(t, os.WriteFile(dbPath, nil, 0o644))

	_, err := OpenReader(dbPath)
	assert.Error(t, err)
}
