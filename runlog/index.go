package runlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// RunSummary is the indexed view of a run: enough to list and locate
// artifacts without parsing them.
type RunSummary struct {
	Path          string
	Game          string
	Agent         string
	Seed          int
	MaxSteps      int
	StartTime     string
	EndTime       string
	FinalScore    int
	FinalMoves    int
	GameCompleted bool
}

// Index is a SQLite-backed registry of run artifacts, keyed by path.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) the run index at dbPath.
func OpenIndex(ctx context.Context, dbPath string) (*Index, error) {
	// WAL keeps readers (e.g. replay tooling) from blocking the writer.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping run index: %w", err)
	}

	ix := &Index{db: db}
	if err := ix.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize run index schema: %w", err)
	}
	return ix, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		path           TEXT PRIMARY KEY,
		game           TEXT NOT NULL,
		agent          TEXT NOT NULL,
		seed           INTEGER NOT NULL,
		max_steps      INTEGER NOT NULL,
		start_time     TEXT NOT NULL,
		end_time       TEXT,
		final_score    INTEGER NOT NULL DEFAULT 0,
		final_moves    INTEGER NOT NULL DEFAULT 0,
		game_completed INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_game ON runs(game, start_time);
	`
	_, err := ix.db.ExecContext(ctx, schema)
	return err
}

// Put inserts or replaces the summary for one run. Start and Finish both
// write through here, so the row converges on the final state.
func (ix *Index) Put(ctx context.Context, s RunSummary) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO runs (path, game, agent, seed, max_steps, start_time, end_time,
			final_score, final_moves, game_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			end_time = excluded.end_time,
			final_score = excluded.final_score,
			final_moves = excluded.final_moves,
			game_completed = excluded.game_completed`,
		s.Path, s.Game, s.Agent, s.Seed, s.MaxSteps, s.StartTime, s.EndTime,
		s.FinalScore, s.FinalMoves, boolToInt(s.GameCompleted))
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", s.Path, err)
	}
	return nil
}

// Get returns the summary for a single artifact path.
func (ix *Index) Get(ctx context.Context, path string) (*RunSummary, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT path, game, agent, seed, max_steps, start_time,
			COALESCE(end_time, ''), final_score, final_moves, game_completed
		FROM runs WHERE path = ?`, path)
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not indexed", path)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", path, err)
	}
	return s, nil
}

// List returns summaries, newest first, optionally filtered by game.
func (ix *Index) List(ctx context.Context, game string) ([]RunSummary, error) {
	query := `
		SELECT path, game, agent, seed, max_steps, start_time,
			COALESCE(end_time, ''), final_score, final_moves, game_completed
		FROM runs`
	args := []any{}
	if game != "" {
		query += " WHERE game = ?"
		args = append(args, game)
	}
	query += " ORDER BY start_time DESC"

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*RunSummary, error) {
	var s RunSummary
	var completed int
	err := row.Scan(&s.Path, &s.Game, &s.Agent, &s.Seed, &s.MaxSteps,
		&s.StartTime, &s.EndTime, &s.FinalScore, &s.FinalMoves, &completed)
	if err != nil {
		return nil, err
	}
	s.GameCompleted = completed != 0
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
