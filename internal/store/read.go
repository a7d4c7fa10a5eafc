package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/jobtree/internal/trace"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run row for id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root_type, reason, cycles, elapsed_ns, slept_ns, finished
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run in creation order.
//
// Returns an empty slice (not nil) when there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root_type, reason, cycles, elapsed_ns, slept_ns, finished
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRecords returns the trace of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no records.
func (s *Store) ReadRecords(ctx context.Context, runID string) ([]trace.Record, error) {
	return s.queryRecords(ctx, `
		SELECT seq, kind, job_id, job_type, parent_id, duration_ns, event, sender_id
		FROM records
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// ReadJobRecords returns the records of one job within a run, ordered by seq.
func (s *Store) ReadJobRecords(ctx context.Context, runID string, jobID uint64) ([]trace.Record, error) {
	return s.queryRecords(ctx, `
		SELECT seq, kind, job_id, job_type, parent_id, duration_ns, event, sender_id
		FROM records
		WHERE run_id = ? AND job_id = ?
		ORDER BY seq ASC
	`, runID, int64(jobID))
}

// CountKinds returns how many records of each kind a run has.
func (s *Store) CountKinds(ctx context.Context, runID string) (map[trace.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM records
		WHERE run_id = ?
		GROUP BY kind
		ORDER BY kind COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("count kinds: %w", err)
	}
	defer rows.Close()

	counts := make(map[trace.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts[trace.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []trace.Record{}
	for rows.Next() {
		var (
			r                     trace.Record
			kind                  string
			jobID, parent, sender int64
			duration              int64
		)
		if err := rows.Scan(&r.Seq, &kind, &jobID, &r.Type, &parent, &duration, &r.Event, &sender); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Kind = trace.Kind(kind)
		r.Job = uint64(jobID)
		r.Parent = uint64(parent)
		r.Sender = uint64(sender)
		r.Duration = time.Duration(duration)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run            Run
		elapsed, slept int64
		finished       int
	)
	if err := row.Scan(&run.ID, &run.RootType, &run.Reason, &run.Cycles, &elapsed, &slept, &finished); err != nil {
		return Run{}, err
	}
	run.Elapsed = time.Duration(elapsed)
	run.Slept = time.Duration(slept)
	run.Finished = finished != 0
	return run, nil
}
