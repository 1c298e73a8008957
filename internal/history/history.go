// Package history persists analysis runs to a local SQLite database.
//
// The store is a write-only audit trail: the scoring engine never reads it,
// only the history command does. Disabling it changes nothing about a run's
// outcome.
package history

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pauselab/gcbench/internal/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	finished_at     TEXT,
	config_path     TEXT NOT NULL,
	scenario_count  INTEGER NOT NULL,
	overall_winner  TEXT,
	status          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pair_summaries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	scenario   TEXT NOT NULL,
	collector  TEXT NOT NULL,
	status     TEXT NOT NULL,
	events     INTEGER NOT NULL,
	total_ms   REAL,
	max_ms     REAL,
	p95_ms     REAL,
	p99_ms     REAL,
	mean_ms    REAL,
	score      REAL
);

CREATE INDEX IF NOT EXISTS idx_pair_summaries_run ON pair_summaries(run_id);
`

// Run statuses.
const (
	StatusRunning          = "running"
	StatusCompleted        = "completed"
	StatusInsufficientData = "insufficient_data"
	StatusFailed           = "failed"
)

// Run is one recorded analysis run.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    *time.Time
	ConfigPath    string
	ScenarioCount int
	OverallWinner string
	Status        string
}

// PairSummary is one stored (scenario, collector) summary row. Numeric
// fields are nil where the pair had no data.
type PairSummary struct {
	Scenario  string
	Collector string
	Status    string
	Events    int
	TotalMs   *float64
	MaxMs     *float64
	P95Ms     *float64
	P99Ms     *float64
	MeanMs    *float64
	Score     *float64
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", path, err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records the start of an analysis run.
func (s *Store) CreateRun(id, configPath string, scenarioCount int, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, config_path, scenario_count, status)
		 VALUES (?, ?, ?, ?, ?)`,
		id, startedAt.UTC().Format(time.RFC3339), configPath, scenarioCount, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("creating run %s: %w", id, err)
	}
	return nil
}

// CompleteRun marks a run finished with the given status and winner.
func (s *Store) CompleteRun(id, status, overallWinner string, finishedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, overall_winner = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339), status, overallWinner, id,
	)
	if err != nil {
		return fmt.Errorf("completing run %s: %w", id, err)
	}
	return nil
}

// SaveResult stores one summary row per analyzed pair, atomically.
func (s *Store) SaveResult(runID string, result *analysis.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving run %s: %w", runID, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO pair_summaries
		 (run_id, scenario, collector, status, events, total_ms, max_ms, p95_ms, p99_ms, mean_ms, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", runID, err)
	}
	defer stmt.Close()

	for _, pair := range result.Pairs {
		sm := pair.Summary
		_, err := stmt.Exec(
			runID, pair.Scenario, pair.Collector, pair.Status.String(), sm.Count,
			nullable(sm.Total), nullable(sm.Max), nullable(sm.P95), nullable(sm.P99),
			nullable(sm.Mean), nullable(pair.Score),
		)
		if err != nil {
			return fmt.Errorf("saving %s/%s for run %s: %w", pair.Scenario, pair.Collector, runID, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns all recorded runs, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, config_path, scenario_count,
		        COALESCE(overall_winner, ''), status
		 FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run and its stored pair summaries.
func (s *Store) GetRun(id string) (*Run, []PairSummary, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, finished_at, config_path, scenario_count,
		        COALESCE(overall_winner, ''), status
		 FROM runs WHERE id = ?`, id,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(
		`SELECT scenario, collector, status, events, total_ms, max_ms, p95_ms, p99_ms, mean_ms, score
		 FROM pair_summaries WHERE run_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("loading summaries for run %s: %w", id, err)
	}
	defer rows.Close()

	var pairs []PairSummary
	for rows.Next() {
		var p PairSummary
		err := rows.Scan(&p.Scenario, &p.Collector, &p.Status, &p.Events,
			&p.TotalMs, &p.MaxMs, &p.P95Ms, &p.P99Ms, &p.MeanMs, &p.Score)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning summary for run %s: %w", id, err)
		}
		pairs = append(pairs, p)
	}
	return &run, pairs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started string
	var finished sql.NullString
	err := row.Scan(&run.ID, &started, &finished, &run.ConfigPath,
		&run.ScenarioCount, &run.OverallWinner, &run.Status)
	if err != nil {
		return Run{}, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339, started)
	if err != nil {
		return Run{}, fmt.Errorf("parsing started_at for run %s: %w", run.ID, err)
	}
	if finished.Valid {
		t, err := time.Parse(time.RFC3339, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parsing finished_at for run %s: %w", run.ID, err)
		}
		run.FinishedAt = &t
	}
	return run, nil
}

// nullable maps NaN and Inf to NULL; SQLite has no representation for
// either and the pair status already records why the value is absent.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
