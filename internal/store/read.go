package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, name, seed, workers, threads, contention, total_ops, creating, mutating, spare, digest, schedule, output, created_seq`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r            Run
		scheduleJSON string
	)
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Seed,
		&r.Workers,
		&r.Threads,
		&r.Contention,
		&r.TotalOps,
		&r.Creating,
		&r.Mutating,
		&r.Spare,
		&r.Digest,
		&scheduleJSON,
		&r.Output,
		&r.CreatedSeq,
	)
	if err != nil {
		return Run{}, err
	}
	r.Schedule, err = unmarshalSchedule(scheduleJSON)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// GetRun returns the run with the given id, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs in insertion order. A non-empty name filters by
// config name.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListRuns(ctx context.Context, name string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY created_seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindByDigest returns runs whose workload digest matches, oldest first.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE digest = ?
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query runs by digest: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadIntervals returns the interval breakdown of a run, by interval index.
func (s *Store) ReadIntervals(ctx context.Context, runID string) ([]Interval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT interval, rate, per_cell, remainder
		FROM run_intervals
		WHERE run_id = ?
		ORDER BY interval ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer rows.Close()

	intervals := []Interval{}
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.Interval, &iv.Rate, &iv.PerCell, &iv.Remainder); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}
	return intervals, nil
}
