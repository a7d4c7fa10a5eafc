package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/jobtree/internal/builtin"
	"github.com/roach88/jobtree/internal/job"
)

// StopReason says why Run returned.
type StopReason string

const (
	StopRootKilled StopReason = "root_killed"
	StopMaxCycles  StopReason = "max_cycles"
	StopCanceled   StopReason = "canceled"
)

// Summary describes a finished run.
type Summary struct {
	RunID string
	// Cycles is the number of times the root was cycled.
	Cycles uint64
	// Elapsed is the sum of the durations handed to the root.
	Elapsed time.Duration
	// Slept is the total hard sleep spent waiting for the root's minimum
	// tick duration.
	Slept  time.Duration
	Reason StopReason
	Stats  job.Stats
}

// Engine cycles a root job until it dies.
//
// Engine is not safe for concurrent use; see the package documentation.
type Engine struct {
	tree     *job.Tree
	clock    Clock
	logger   *slog.Logger
	ids      RunIDGenerator
	observer job.Observer

	fixedStep time.Duration
	maxCycles uint64
	minHz     float64
	maxHz     float64
	rates     bool
	maxTicks  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for measuring and sleeping.
//
// Default: WallClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger for run progress. RunJob hands it to the tree
// as well.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunIDGenerator sets where run IDs come from.
//
// Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithObserver attaches o to the tree RunJob builds. It has no effect on
// Run, whose tree already exists.
func WithObserver(o job.Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithFixedStep cycles the root with d every time instead of the measured
// wall-clock delta. A step below the root's minimum tick duration is raised
// to it.
//
// Default: 0 (measure).
func WithFixedStep(d time.Duration) Option {
	return func(e *Engine) {
		e.fixedStep = d
	}
}

// WithMaxCycles stops the run after n root cycles. Zero means no limit.
func WithMaxCycles(n uint64) Option {
	return func(e *Engine) {
		e.maxCycles = n
	}
}

// WithRateLimits applies tick-rate limits to the root before the first
// cycle. maxHz sets the shortest tick, which is also what the engine sleeps
// towards; minHz sets the longest. Zero means unbounded.
func WithRateLimits(minHz, maxHz float64) Option {
	return func(e *Engine) {
		e.minHz, e.maxHz, e.rates = minHz, maxHz, true
	}
}

// WithMaxTicksPerCycle sets the root's catch-up tick cap.
func WithMaxTicksPerCycle(n int) Option {
	return func(e *Engine) {
		e.maxTicks = n
	}
}

// WithConfig applies every setting in cfg.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		for _, opt := range cfg.Options() {
			opt(e)
		}
	}
}

// New creates an Engine for tree.
func New(tree *job.Tree, opts ...Option) *Engine {
	e := &Engine{
		tree:   tree,
		clock:  WallClock{},
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) validate() error {
	switch {
	case e.fixedStep < 0:
		return NewInvalidConfigError("fixed step %s is negative", e.fixedStep)
	case e.minHz < 0 || e.maxHz < 0:
		return NewInvalidConfigError("tick rates must not be negative (min=%g, max=%g)", e.minHz, e.maxHz)
	case e.minHz > 0 && e.maxHz > 0 && e.minHz > e.maxHz:
		return NewInvalidConfigError("min rate %gHz exceeds max rate %gHz", e.minHz, e.maxHz)
	case e.maxTicks < 0:
		return NewInvalidConfigError("max ticks per cycle %d is negative", e.maxTicks)
	}
	return nil
}

// configure applies root-level limits. It runs before any child is added
// by RunJob so children inherit them.
func (e *Engine) configure(root *job.Job) {
	if e.rates {
		root.SetTickRateLimits(e.minHz, e.maxHz)
	}
	if e.maxTicks > 0 {
		root.SetMaxTicksPerCycle(e.maxTicks)
	}
}

// Run cycles root until it is killed, ctx is done, or the cycle quota is
// spent.
//
// Each cycle that finishes faster than the root's minimum tick duration is
// followed by a blocking sleep for the difference. Cancellation is checked
// between cycles and during that sleep; a canceled run returns ctx.Err()
// alongside the summary so far.
func (e *Engine) Run(ctx context.Context, root *job.Job) (Summary, error) {
	sum := Summary{RunID: e.ids.Generate()}
	if err := e.validate(); err != nil {
		return sum, err
	}
	if root == nil {
		return sum, NewRootKilledError(0)
	}
	if root.IsKilled() {
		return sum, NewRootKilledError(root.ID())
	}
	e.configure(root)

	logger := e.logger.With("run", sum.RunID)
	logger.Info("run starting",
		"root", root.ID(),
		"type", root.TypeName(),
		"fixed_step", e.fixedStep,
		"max_cycles", e.maxCycles,
	)

	quota := NewCycleQuota(e.maxCycles)
	d := e.fixedStep
	for {
		if root.IsKilled() {
			sum.Reason = StopRootKilled
			break
		}
		if err := ctx.Err(); err != nil {
			sum.Reason = StopCanceled
			e.finish(logger, &sum)
			return sum, err
		}
		if quota.Exhausted() {
			sum.Reason = StopMaxCycles
			break
		}

		min, _ := root.DurationLimits()
		if d < min {
			d = min
		}

		start := e.clock.Now()
		root.Cycle(d)
		quota.Spend()
		sum.Cycles++
		sum.Elapsed += d

		delta := e.clock.Now().Sub(start)
		if delta < min {
			short := min - delta
			if err := e.clock.Sleep(ctx, short); err != nil {
				sum.Reason = StopCanceled
				e.finish(logger, &sum)
				return sum, err
			}
			sum.Slept += short
			delta = e.clock.Now().Sub(start)
			if delta < min {
				delta = min
			}
		}

		if e.fixedStep > 0 {
			d = e.fixedStep
		} else {
			d = delta
		}
	}

	e.finish(logger, &sum)
	return sum, nil
}

func (e *Engine) finish(logger *slog.Logger, sum *Summary) {
	if e.tree != nil {
		sum.Stats = e.tree.Stats()
	}
	logger.Info("run finished",
		"reason", sum.Reason,
		"cycles", sum.Cycles,
		"elapsed", sum.Elapsed,
		"slept", sum.Slept,
		"live", sum.Stats.Live(),
	)
}

// RunJob builds a tree from factory, creates a Supervisor root, adds one job
// of typeName under it and runs until the supervisor dies, which happens
// once no enabled job is left below it. The tree is disposed before RunJob
// returns.
func RunJob(ctx context.Context, factory job.Factory, typeName string, opts ...Option) (Summary, error) {
	e := New(nil, opts...)
	if err := e.validate(); err != nil {
		return Summary{}, err
	}

	treeOpts := []job.TreeOption{job.WithLogger(e.logger)}
	if e.observer != nil {
		treeOpts = append(treeOpts, job.WithObserver(e.observer))
	}
	e.tree = job.NewTree(factory, treeOpts...)

	root := e.tree.NewRootWith(builtin.TypeSupervisor, builtin.Supervisor{})
	defer e.tree.Dispose(root)
	e.configure(root)

	if _, err := root.AddChild(typeName); err != nil {
		return Summary{}, NewUnknownTypeError(typeName, err)
	}
	return e.Run(ctx, root)
}
