package checkpointer

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordsWrittenFiles(t *testing.T) {
	cfg := newConfig(t)
	cfg.StepCheckpoints = true
	tracker := newTracker(t, cfg, Min)

	h, err := OpenHistory(filepath.Join(t.TempDir(), HistoryFilename))
	require.NoError(t, err)
	defer h.Close()
	tracker.UseHistory(h)

	var written []string
	for step, score := range []float64{3, 2, 4} {
		paths, err := tracker.Save(step+1, score, nil, nil, nil)
		require.NoError(t, err)
		written = append(written, paths...)
	}

	entries, err := h.Entries()
	require.NoError(t, err)
	require.Len(t, entries, len(written))
	for i, e := range entries {
		assert.Equal(t, written[i], e.Path)
	}

	// step 1: step, best, last; step 2: step, best, last; step 3: step, last
	kinds := make([]Kind, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []Kind{
		StepKind, BestKind, LastKind,
		StepKind, BestKind, LastKind,
		StepKind, LastKind,
	}, kinds)
	assert.Equal(t, 3, entries[len(entries)-1].Step)
	assert.Equal(t, 4.0, entries[len(entries)-1].Score)
}

func TestHistoryPersists(t *testing.T) {
	filename := filepath.Join(t.TempDir(), HistoryFilename)

	h, err := OpenHistory(filename)
	require.NoError(t, err)
	require.NoError(t, h.Append(Entry{Step: 1, Kind: LastKind}))
	require.NoError(t, h.Close())

	h, err = OpenHistory(filename)
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Append(Entry{Step: 2, Kind: LastKind}))

	entries, err := h.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Step)
	assert.Equal(t, 2, entries[1].Step)
}

func TestHistoryNonFiniteScores(t *testing.T) {
	cfg := newConfig(t)
	tracker := newTracker(t, cfg, Min)

	h, err := OpenHistory(filepath.Join(t.TempDir(), HistoryFilename))
	require.NoError(t, err)
	defer h.Close()
	tracker.UseHistory(h)

	paths, err := tracker.Save(1, 1.0, nil, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	// A diverged run keeps saving its last checkpoint
	paths, err = tracker.Save(2, math.NaN(), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(cfg.CheckpointDir, LastFilename)},
		paths)

	_, err = tracker.Save(3, math.Inf(1), nil, nil, nil)
	require.NoError(t, err)

	entries, err := h.Entries()
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, 3, last.Step)
	assert.True(t, math.IsInf(last.Score, 1))
	assert.True(t, math.IsNaN(entries[len(entries)-2].Score))
}
