// Package persistence provides SQLite-based storage for collected metrics.
// One database can hold many runs; batch sweeps append one run per
// (configuration, iteration).
// See design doc Section 5 (persistence.DB).
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/swarmlab/internal/metrics"
)

// DB wraps a SQLite connection for metric storage.
type DB struct {
	conn *sqlx.DB
}

// Run identifies one stored simulation run.
type Run struct {
	ID        string         `db:"id"`
	Model     string         `db:"model"`
	Seed      string         `db:"seed"`
	Params    map[string]any `db:"-"`
	CreatedAt time.Time      `db:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		seed TEXT NOT NULL,
		params_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS model_metrics (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_metrics (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_model_metrics_run ON model_metrics(run_id, step);
	CREATE INDEX IF NOT EXISTS idx_agent_metrics_run ON agent_metrics(run_id, step, agent_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun records a run's identity and parameters.
func (db *DB) SaveRun(r Run) error {
	paramsJSON, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, model, seed, params_json, created_at) VALUES (?, ?, ?, ?, ?)",
		r.ID, r.Model, r.Seed, string(paramsJSON), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveModelRows appends collected model-level rows for a run.
func (db *DB) SaveModelRows(runID string, rows []metrics.ModelRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO model_metrics (run_id, step, name, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		for name, value := range row.Values {
			if _, err := stmt.Exec(runID, row.Step, name, value); err != nil {
				return fmt.Errorf("insert model metric step %d: %w", row.Step, err)
			}
		}
	}

	return tx.Commit()
}

// SaveAgentRows appends collected agent-level rows for a run.
func (db *DB) SaveAgentRows(runID string, rows []metrics.AgentRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO agent_metrics (run_id, step, agent_id, name, value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		for name, value := range row.Values {
			if _, err := stmt.Exec(runID, row.Step, row.AgentID, name, value); err != nil {
				return fmt.Errorf("insert agent metric step %d agent %d: %w", row.Step, row.AgentID, err)
			}
		}
	}

	return tx.Commit()
}

// SaveCollected stores everything one collector gathered for a run.
func (db *DB) SaveCollected(runID string, c *metrics.Collector) error {
	slog.Info("saving collected metrics",
		"run", runID,
		"model_rows", len(c.ModelRows()),
		"agent_rows", len(c.AgentRows()),
	)

	if err := db.SaveModelRows(runID, c.ModelRows()); err != nil {
		return fmt.Errorf("save model rows: %w", err)
	}
	if err := db.SaveAgentRows(runID, c.AgentRows()); err != nil {
		return fmt.Errorf("save agent rows: %w", err)
	}
	return nil
}

// ModelSeries reads back one reporter's per-step series for a run.
func (db *DB) ModelSeries(runID, name string) ([]float64, error) {
	var values []float64
	err := db.conn.Select(&values,
		"SELECT value FROM model_metrics WHERE run_id = ? AND name = ? ORDER BY step",
		runID, name,
	)
	return values, err
}

// RecentRuns returns the most recent N runs.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, model, seed, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	return runs, err
}
