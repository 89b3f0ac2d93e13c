// Package history persists finished workflow runs to a local SQLite
// database so benchmark results survive the process.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/katanabench/katana/internal/workflow"
)

// Store wraps the SQLite run-history database
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the run-history database at the specified path
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	store := &Store{conn: conn, path: dbPath}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			success INTEGER NOT NULL,
			cancelled INTEGER NOT NULL,
			benchmark_seconds REAL
		)`,
		`CREATE TABLE IF NOT EXISTS step_results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			step_index INTEGER NOT NULL,
			action TEXT NOT NULL,
			success INTEGER NOT NULL,
			executed_at DATETIME NOT NULL,
			PRIMARY KEY (run_id, step_index)
		)`,
		`CREATE TABLE IF NOT EXISTS timing_markers (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			marked_at DATETIME NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_game ON runs(game, started_at)`,
	}

	for _, stmt := range schema {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply history schema: %w", err)
		}
	}
	return nil
}

// RecordRun persists one finished run with its per-step results and timing
// markers in a single transaction
func (s *Store) RecordRun(run *workflow.RunContext) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	var benchmarkSeconds sql.NullFloat64
	if d, ok := run.BenchmarkDuration(); ok {
		benchmarkSeconds = sql.NullFloat64{Float64: d.Seconds(), Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, game, started_at, finished_at, success, cancelled, benchmark_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Game, run.StartedAt, run.FinishedAt, run.Success, run.Cancelled, benchmarkSeconds)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, result := range run.Results() {
		_, err = tx.Exec(`
			INSERT INTO step_results (run_id, step_index, action, success, executed_at)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, result.Index, result.Action, result.Success, result.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert step result: %w", err)
		}
	}

	for name, at := range run.Markers() {
		_, err = tx.Exec(`
			INSERT INTO timing_markers (run_id, name, marked_at)
			VALUES (?, ?, ?)
		`, run.ID, name, at)
		if err != nil {
			return fmt.Errorf("failed to insert timing marker: %w", err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the run-history listing
type RunSummary struct {
	ID               string
	Game             string
	StartedAt        time.Time
	FinishedAt       time.Time
	Success          bool
	Cancelled        bool
	BenchmarkSeconds *float64
}

// ListRuns returns the most recent runs, newest first. A non-empty game
// filters to that game's runs.
func (s *Store) ListRuns(game string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, game, started_at, finished_at, success, cancelled, benchmark_seconds
		FROM runs
	`
	args := []interface{}{}
	if game != "" {
		query += ` WHERE game = ?`
		args = append(args, game)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var benchmark sql.NullFloat64
		err := rows.Scan(&run.ID, &run.Game, &run.StartedAt, &run.FinishedAt,
			&run.Success, &run.Cancelled, &benchmark)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if benchmark.Valid {
			v := benchmark.Float64
			run.BenchmarkSeconds = &v
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StepRecord is one persisted per-step result
type StepRecord struct {
	Index      int
	Action     string
	Success    bool
	ExecutedAt time.Time
}

// GetSteps returns the per-step results of a run in execution order
func (s *Store) GetSteps(runID string) ([]StepRecord, error) {
	rows, err := s.conn.Query(`
		SELECT step_index, action, success, executed_at
		FROM step_results
		WHERE run_id = ?
		ORDER BY step_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get step results: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var step StepRecord
		if err := rows.Scan(&step.Index, &step.Action, &step.Success, &step.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step result: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
