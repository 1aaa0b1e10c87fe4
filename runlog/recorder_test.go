package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderStartCreatesDurableArtifact(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(dir)

	path, err := rec.Start("zork1", "tester", 42, 100)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Regexp(t, `^zork1_tester_\d{8}_\d{6}\.json$`, filepath.Base(path))

	// The artifact is complete and parseable before any step runs.
	record, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zork1", record.Game)
	assert.Equal(t, "tester", record.Agent)
	assert.Equal(t, 42, record.Seed)
	assert.Equal(t, 100, record.MaxSteps)
	assert.Empty(t, record.Steps)
	assert.Empty(t, record.EndTime)
}

func TestRecorderAppendPersistsEachStep(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	path, err := rec.Start("zork1", "tester", 1, 10)
	require.NoError(t, err)

	require.NoError(t, rec.Append(StepRecord{
		Step: 1, Tool: "play_action",
		ToolArgs: map[string]any{"action": "north"},
		Result:   "Forest", Location: "Forest", Score: 0, Moves: 1,
	}))

	// Durable after the first append, before the run ends.
	record, err := Load(path)
	require.NoError(t, err)
	require.Len(t, record.Steps, 1)
	assert.Equal(t, "north", record.Steps[0].ToolArgs["action"])
	assert.NotEmpty(t, record.Steps[0].Timestamp)
	assert.NotNil(t, record.Steps[0].Inventory)
	assert.NotNil(t, record.Steps[0].ValidActions)

	require.NoError(t, rec.Append(StepRecord{Step: 2, Tool: "memory", Result: "Score: 0"}))
	record, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, record.Steps, 2)
}

func TestRecorderFinishWritesAggregates(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	_, err := rec.Start("zork1", "tester", 1, 10)
	require.NoError(t, err)
	require.NoError(t, rec.Append(StepRecord{Step: 1}))

	mapState := map[string][]string{"West of House": {"north -> North of House"}}
	path, err := rec.Finish(35, 12, []string{"North of House", "West of House"}, true, mapState, nil)
	require.NoError(t, err)

	record, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 35, record.FinalScore)
	assert.Equal(t, 12, record.FinalMoves)
	assert.Equal(t, []string{"North of House", "West of House"}, record.LocationsVisited)
	assert.True(t, record.GameCompleted)
	assert.Equal(t, mapState, record.MapState)
	assert.Empty(t, record.Error)
	assert.NotEmpty(t, record.EndTime)
	assert.GreaterOrEqual(t, record.Duration(), time.Duration(0))
}

func TestRecorderFinishRecordsRunError(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	_, err := rec.Start("zork1", "tester", 1, 10)
	require.NoError(t, err)

	path, err := rec.Finish(0, 0, nil, false, nil, errors.New("session lost"))
	require.NoError(t, err)

	record, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "session lost", record.Error)
	assert.False(t, record.GameCompleted)
}

func TestRecorderWithoutStart(t *testing.T) {
	rec := NewRecorder(t.TempDir())
	assert.Error(t, rec.Append(StepRecord{Step: 1}))
	_, err := rec.Finish(0, 0, nil, false, nil, nil)
	assert.Error(t, err)
}

func TestRecorderCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	rec := NewRecorder(dir)

	path, err := rec.Start("zork1", "tester", 0, 5)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadRejectsCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
