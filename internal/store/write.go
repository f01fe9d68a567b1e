package store

import (
	"context"
	"fmt"
)

// WriteRun inserts run and its intervals in one transaction and returns the
// stored record with its ID and CreatedSeq filled in. A run that already
// carries an ID keeps it.
func (s *Store) WriteRun(ctx context.Context, run Run, intervals []Interval) (Run, error) {
	scheduleJSON, err := marshalSchedule(run.Schedule)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs`).Scan(&run.CreatedSeq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, seed, workers, threads, contention, total_ops, creating, mutating, spare, digest, schedule, output, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Name,
		run.Seed,
		run.Workers,
		run.Threads,
		run.Contention,
		run.TotalOps,
		run.Creating,
		run.Mutating,
		run.Spare,
		run.Digest,
		scheduleJSON,
		run.Output,
		run.CreatedSeq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_intervals (run_id, interval, rate, per_cell, remainder)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run intervals: %w", err)
	}
	defer stmt.Close()

	for _, iv := range intervals {
		if _, err := stmt.ExecContext(ctx, run.ID, iv.Interval, iv.Rate, iv.PerCell, iv.Remainder); err != nil {
			return Run{}, fmt.Errorf("write run interval %d: %w", iv.Interval, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}
