package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/jobtree/internal/builtin"
	"github.com/roach88/jobtree/internal/engine"
	"github.com/roach88/jobtree/internal/job"
	"github.com/roach88/jobtree/internal/registry"
	"github.com/roach88/jobtree/internal/store"
	"github.com/roach88/jobtree/internal/testutil"
	"github.com/roach88/jobtree/internal/trace"
)

// epoch is where every scenario's manual clock starts.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness runs scenarios.
type Harness struct {
	reg    *registry.Registry
	store  *store.Store
	ids    engine.RunIDGenerator
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithRegistry sets the job types scenarios may name.
//
// Default: builtin.NewRegistry().
func WithRegistry(reg *registry.Registry) Option {
	return func(h *Harness) {
		h.reg = reg
	}
}

// WithStore writes traces to st instead of a fresh in-memory database. The
// caller owns st.
func WithStore(st *store.Store) Option {
	return func(h *Harness) {
		h.store = st
	}
}

// WithRunIDGenerator overrides the scenario's run ID. Use it when several
// runs of one scenario share a store.
func WithRunIDGenerator(g engine.RunIDGenerator) Option {
	return func(h *Harness) {
		h.ids = g
	}
}

// WithLogger sets the logger handed to the tree and engine.
//
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.reg == nil {
		h.reg = builtin.NewRegistry()
	}
	return h
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Build the tree from the scenario's root node
//  2. Drive it on a manual clock with the scenario's fixed step
//  3. Write the recorded trace to the store and read it back
//  4. Evaluate assertions against the summary and stored trace
//
// An error means the scenario could not run; failed assertions are reported
// in the result instead.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st := h.store
	if st == nil {
		mem, err := store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer mem.Close()
		st = mem
	}

	ids := h.ids
	if ids == nil {
		ids = testutil.NewFixedRunIDGenerator(scenario.runID())
	}
	runID := ids.Generate()

	rec := trace.NewRecorder()
	tree := job.NewTree(h.reg, job.WithObserver(rec), job.WithLogger(h.logger))
	b := &builder{reg: h.reg, tree: tree}
	root, err := b.build(nil, scenario.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	defer tree.Dispose(root)

	eng := engine.New(tree,
		engine.WithClock(testutil.NewManualClock(epoch)),
		engine.WithFixedStep(scenario.step()),
		engine.WithMaxCycles(scenario.maxCycles()),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(runID)),
		engine.WithLogger(h.logger),
	)

	if err := st.CreateRun(ctx, runID, scenario.Root.Type); err != nil {
		return nil, err
	}
	sum, err := eng.Run(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %s: %w", scenario.Name, err)
	}

	if err := st.AppendRecords(ctx, runID, rec.Records()); err != nil {
		return nil, err
	}
	err = st.FinishRun(ctx, store.Run{
		ID:      runID,
		Reason:  string(sum.Reason),
		Cycles:  int64(sum.Cycles),
		Elapsed: sum.Elapsed,
		Slept:   sum.Slept,
	})
	if err != nil {
		return nil, err
	}

	records, err := st.ReadRecords(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.RunID = runID
	result.Reason = sum.Reason
	result.Cycles = sum.Cycles
	result.Live = sum.Stats.Live()
	result.Trace = records

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
