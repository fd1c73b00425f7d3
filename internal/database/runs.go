package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is one recorded generation.
type Run struct {
	ID           int64
	Strategy     string // wfc, perlin or simplex
	Rules        string
	Distribution string
	Width        int
	Height       int
	Seed         int64
	Success      bool
	Attempts     int
	Iterations   int
	Collapses    int
	Backtracks   int
	MaxDepth     int
	Duration     time.Duration
	Fingerprint  string
	Error        string
	CreatedAt    time.Time
}

const runColumns = `id, strategy, rules, distribution, width, height, seed, success,
	attempts, iterations, collapses, backtracks, max_depth, duration_ms,
	fingerprint, error_message, created_at`

// RecordRun inserts a run and returns its id.
func (d *Database) RecordRun(run *Run) (int64, error) {
	success := 0
	if run.Success {
		success = 1
	}

	query := d.qb.BuildWithReturning(
		`INSERT INTO runs (strategy, rules, distribution, width, height, seed, success,
			attempts, iterations, collapses, backtracks, max_depth, duration_ms, fingerprint, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, "id")
	args := []any{
		run.Strategy, run.Rules, run.Distribution, run.Width, run.Height, run.Seed, success,
		run.Attempts, run.Iterations, run.Collapses, run.Backtracks, run.MaxDepth,
		run.Duration.Milliseconds(), run.Fingerprint, run.Error,
	}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get run ID: %w", err)
		}
	} else {
		if err := d.db.QueryRow(query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
	}

	run.ID = id
	return id, nil
}

// RecentRuns returns up to limit runs, newest first.
func (d *Database) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		d.qb.Build(`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RunsBySeed returns every run made with seed, oldest first.
func (d *Database) RunsBySeed(seed int64) ([]Run, error) {
	rows, err := d.db.Query(
		d.qb.Build(`SELECT `+runColumns+` FROM runs WHERE seed = ? ORDER BY id`),
		seed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs by seed: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// CountRuns returns the number of recorded runs.
func (d *Database) CountRuns() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// RunsAfter returns up to limit runs with an id above afterID, in id order.
// It pages through the whole table for exports.
func (d *Database) RunsAfter(afterID int64, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := d.db.Query(
		d.qb.Build(`SELECT `+runColumns+` FROM runs WHERE id > ? ORDER BY id LIMIT ?`),
		afterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ImportRun inserts a run keeping its id and creation time. It reports false
// without error when a run with that id already exists.
func (d *Database) ImportRun(run *Run) (bool, error) {
	var existing int64
	err := d.db.QueryRow(d.qb.Build(`SELECT id FROM runs WHERE id = ?`), run.ID).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check run %d: %w", run.ID, err)
	}

	success := 0
	if run.Success {
		success = 1
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = d.db.Exec(d.qb.Build(
		`INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.Strategy, run.Rules, run.Distribution, run.Width, run.Height, run.Seed, success,
		run.Attempts, run.Iterations, run.Collapses, run.Backtracks, run.MaxDepth,
		run.Duration.Milliseconds(), run.Fingerprint, run.Error, createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to import run %d: %w", run.ID, err)
	}
	return true, nil
}

// SyncRunSequence moves the id sequence past the highest imported id so
// RecordRun does not collide with imported rows. SQLite tracks this itself.
func (d *Database) SyncRunSequence() error {
	if d.dialect.DriverName() != "postgres" {
		return nil
	}
	_, err := d.db.Exec(`SELECT setval('runs_id_seq', COALESCE((SELECT MAX(id) FROM runs), 0) + 1, false)`)
	if err != nil {
		return fmt.Errorf("failed to reset run sequence: %w", err)
	}
	return nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run        Run
			success    int
			durationMS int64
			createdAt  sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Strategy, &run.Rules, &run.Distribution,
			&run.Width, &run.Height, &run.Seed, &success,
			&run.Attempts, &run.Iterations, &run.Collapses, &run.Backtracks, &run.MaxDepth,
			&durationMS, &run.Fingerprint, &run.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Success = success != 0
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if createdAt.Valid {
			run.CreatedAt = createdAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
