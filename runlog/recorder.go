package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Recorder accumulates one run's record and persists it incrementally.
// It is single-writer: one Recorder per run, driven by the orchestrator.
type Recorder struct {
	dir     string
	index   *Index
	current *RunRecord
	path    string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithIndex attaches a run index that is updated at run start and finish.
func WithIndex(ix *Index) RecorderOption {
	return func(r *Recorder) { r.index = ix }
}

// NewRecorder creates a Recorder writing artifacts under dir.
func NewRecorder(dir string, opts ...RecorderOption) *Recorder {
	r := &Recorder{dir: dir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start establishes a durable record immediately and returns the artifact
// path, which is stable for the rest of the run.
func (r *Recorder) Start(game, agent string, seed, maxSteps int) (string, error) {
	now := time.Now()
	r.current = &RunRecord{
		Game:      game,
		Agent:     agent,
		StartTime: now.Format(time.RFC3339),
		Seed:      seed,
		MaxSteps:  maxSteps,
		Steps:     []StepRecord{},
		MapState:  map[string][]string{},
	}

	filename := fmt.Sprintf("%s_%s_%s.json", game, agent, now.Format("20060102_150405"))
	r.path = filepath.Join(r.dir, filename)

	if err := r.save(); err != nil {
		return "", err
	}

	if r.index != nil {
		if err := r.index.Put(context.Background(), r.summary()); err != nil {
			return "", fmt.Errorf("index run start: %w", err)
		}
	}
	return r.path, nil
}

// Append records one completed turn and persists the artifact.
func (r *Recorder) Append(step StepRecord) error {
	if r.current == nil {
		return fmt.Errorf("no active run record; call Start first")
	}
	if step.Timestamp == "" {
		step.Timestamp = time.Now().Format(time.RFC3339)
	}
	if step.Inventory == nil {
		step.Inventory = []string{}
	}
	if step.ValidActions == nil {
		step.ValidActions = []string{}
	}
	r.current.Steps = append(r.current.Steps, step)
	return r.save()
}

// Finish writes the final aggregate fields and returns the artifact path.
func (r *Recorder) Finish(finalScore, finalMoves int, locationsVisited []string, completed bool, mapState map[string][]string, runErr error) (string, error) {
	if r.current == nil {
		return "", fmt.Errorf("no active run record; call Start first")
	}
	r.current.EndTime = time.Now().Format(time.RFC3339)
	r.current.FinalScore = finalScore
	r.current.FinalMoves = finalMoves
	r.current.LocationsVisited = locationsVisited
	r.current.GameCompleted = completed
	if mapState != nil {
		r.current.MapState = mapState
	}
	if runErr != nil {
		r.current.Error = runErr.Error()
	}

	if err := r.save(); err != nil {
		return "", err
	}

	if r.index != nil {
		if err := r.index.Put(context.Background(), r.summary()); err != nil {
			return "", fmt.Errorf("index run finish: %w", err)
		}
	}
	return r.path, nil
}

// Path returns the artifact path for the active run.
func (r *Recorder) Path() string { return r.path }

// save overwrites the whole artifact. Writes are idempotent: the file always
// holds a complete, parseable record.
func (r *Recorder) save() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	data, err := json.MarshalIndent(r.current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write run record: %w", err)
	}
	return nil
}

func (r *Recorder) summary() RunSummary {
	return RunSummary{
		Path:          r.path,
		Game:          r.current.Game,
		Agent:         r.current.Agent,
		Seed:          r.current.Seed,
		MaxSteps:      r.current.MaxSteps,
		StartTime:     r.current.StartTime,
		EndTime:       r.current.EndTime,
		FinalScore:    r.current.FinalScore,
		FinalMoves:    r.current.FinalMoves,
		GameCompleted: r.current.GameCompleted,
	}
}
