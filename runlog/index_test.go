package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexPutAndGet(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	s := RunSummary{
		Path:      "/logs/zork1_tester_20260824_120000.json",
		Game:      "zork1",
		Agent:     "tester",
		Seed:      42,
		MaxSteps:  100,
		StartTime: "2026-08-24T12:00:00Z",
	}
	require.NoError(t, ix.Put(ctx, s))

	got, err := ix.Get(ctx, s.Path)
	require.NoError(t, err)
	assert.Equal(t, s, *got)
}

func TestIndexGetUnknownPath(t *testing.T) {
	ix := newTestIndex(t)
	_, err := ix.Get(context.Background(), "/logs/missing.json")
	assert.Error(t, err)
}

func TestIndexPutUpsertsFinalState(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	s := RunSummary{
		Path:      "/logs/run.json",
		Game:      "zork1",
		Agent:     "tester",
		StartTime: "2026-08-24T12:00:00Z",
	}
	require.NoError(t, ix.Put(ctx, s))

	// A second Put for the same path converges the row on the final state.
	s.EndTime = "2026-08-24T12:05:00Z"
	s.FinalScore = 35
	s.FinalMoves = 40
	s.GameCompleted = true
	require.NoError(t, ix.Put(ctx, s))

	got, err := ix.Get(ctx, s.Path)
	require.NoError(t, err)
	assert.Equal(t, 35, got.FinalScore)
	assert.Equal(t, 40, got.FinalMoves)
	assert.True(t, got.GameCompleted)
	assert.Equal(t, "2026-08-24T12:05:00Z", got.EndTime)
}

func TestIndexListNewestFirstWithGameFilter(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	runs := []RunSummary{
		{Path: "/logs/a.json", Game: "zork1", Agent: "t", StartTime: "2026-08-24T10:00:00Z"},
		{Path: "/logs/b.json", Game: "zork1", Agent: "t", StartTime: "2026-08-24T12:00:00Z"},
		{Path: "/logs/c.json", Game: "planetfall", Agent: "t", StartTime: "2026-08-24T11:00:00Z"},
	}
	for _, s := range runs {
		require.NoError(t, ix.Put(ctx, s))
	}

	all, err := ix.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/logs/b.json", all[0].Path)
	assert.Equal(t, "/logs/c.json", all[1].Path)
	assert.Equal(t, "/logs/a.json", all[2].Path)

	zork, err := ix.List(ctx, "zork1")
	require.NoError(t, err)
	require.Len(t, zork, 2)
	assert.Equal(t, "/logs/b.json", zork[0].Path)
}

func TestIndexListEmpty(t *testing.T) {
	ix := newTestIndex(t)
	runs, err := ix.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecorderWithIndex(t *testing.T) {
	ix := newTestIndex(t)
	rec := NewRecorder(t.TempDir(), WithIndex(ix))

	path, err := rec.Start("zork1", "tester", 7, 50)
	require.NoError(t, err)

	got, err := ix.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "zork1", got.Game)
	assert.Empty(t, got.EndTime)

	_, err = rec.Finish(15, 20, []string{"West of House"}, false, nil, nil)
	require.NoError(t, err)

	got, err = ix.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 15, got.FinalScore)
	assert.Equal(t, 20, got.FinalMoves)
	assert.NotEmpty(t, got.EndTime)
}
