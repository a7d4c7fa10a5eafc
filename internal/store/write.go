package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/jobtree/internal/trace"
)

// Run describes one engine run.
type Run struct {
	ID       string
	RootType string
	Reason   string
	Cycles   int64
	Elapsed  time.Duration
	Slept    time.Duration
	Finished bool
}

// CreateRun inserts a run row. Creating an existing run is a no-op.
func (s *Store) CreateRun(ctx context.Context, id, rootType string) error {
	if id == "" {
		return fmt.Errorf("create run: empty run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, root_type)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, rootType)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun records how a run ended.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET reason = ?, cycles = ?, elapsed_ns = ?, slept_ns = ?, finished = 1
		WHERE id = ?
	`, run.Reason, run.Cycles, int64(run.Elapsed), int64(run.Slept), run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

// AppendRecords writes records for a run in one transaction. Records whose
// (run, seq) already exist are skipped.
func (s *Store) AppendRecords(ctx context.Context, runID string, records []trace.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append records: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(run_id, seq, kind, job_id, job_type, parent_id, duration_ns, event, sender_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append records: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID,
			r.Seq,
			string(r.Kind),
			int64(r.Job),
			r.Type,
			int64(r.Parent),
			int64(r.Duration),
			r.Event,
			int64(r.Sender),
		)
		if err != nil {
			return fmt.Errorf("append record seq=%d: %w", r.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append records: commit: %w", err)
	}
	return nil
}
