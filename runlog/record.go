// Package runlog records agent runs as durable, replayable artifacts.
//
// Each run produces a single JSON file that is overwritten in full at run
// start, after every step, and at run end, so a crash loses at most the
// in-flight step. A SQLite index alongside the artifacts supports listing
// runs without scanning the log directory.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StepRecord is the per-turn entry in a run artifact.
type StepRecord struct {
	Step         int            `json:"step"`
	Thought      string         `json:"thought"`
	Tool         string         `json:"tool"`
	ToolArgs     map[string]any `json:"tool_args"`
	Result       string         `json:"result"`
	Location     string         `json:"location"`
	Score        int            `json:"score"`
	Moves        int            `json:"moves"`
	Inventory    []string       `json:"inventory"`
	ValidActions []string       `json:"valid_actions"`
	Timestamp    string         `json:"timestamp"`
}

// RunRecord is the complete artifact for one run.
type RunRecord struct {
	Game             string              `json:"game"`
	Agent            string              `json:"agent"`
	StartTime        string              `json:"start_time"`
	EndTime          string              `json:"end_time,omitempty"`
	Seed             int                 `json:"seed"`
	MaxSteps         int                 `json:"max_steps"`
	FinalScore       int                 `json:"final_score"`
	FinalMoves       int                 `json:"final_moves"`
	LocationsVisited []string            `json:"locations_visited"`
	GameCompleted    bool                `json:"game_completed"`
	Error            string              `json:"error,omitempty"`
	Steps            []StepRecord        `json:"steps"`
	MapState         map[string][]string `json:"map_state"`
}

// Load reads a run artifact back from disk.
func Load(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal run record %s: %w", path, err)
	}
	return &rec, nil
}

// Duration returns the wall-clock span of the run, or zero when the record
// is incomplete or its timestamps do not parse.
func (r *RunRecord) Duration() time.Duration {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return 0
	}
	return end.Sub(start)
}
