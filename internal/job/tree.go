package job

import (
	"fmt"
	"log/slog"

	"github.com/roach88/jobtree/internal/assoc"
)

// DefaultMaxTicksPerCycle is the tick cap given to new roots. Children
// inherit their parent's cap.
const DefaultMaxTicksPerCycle = 1

// Stats counts allocations made by a Tree.
//
// LivenessAllocated and LivenessReleased let tests check that every liveness
// block is released exactly once: after all jobs are destroyed and all refs
// released the two are equal.
type Stats struct {
	Created           uint64
	Destroyed         uint64
	LivenessAllocated uint64
	LivenessReleased  uint64
}

// Live returns the number of jobs created but not yet destroyed.
func (s Stats) Live() uint64 {
	return s.Created - s.Destroyed
}

// Tree owns a family of jobs: their identifiers, the factory that builds
// them and the hooks that observe them.
//
// Jobs are linked directly to each other; the tree keeps a directory of live
// jobs by ID so a stale identity can be resolved without holding a pointer.
type Tree struct {
	factory  Factory
	logger   *slog.Logger
	observer Observer
	nextID   ID
	live     *assoc.Store[ID, *Job]
	stats    Stats
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithLogger sets the logger used for lifecycle debug output.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) TreeOption {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithObserver attaches an observer to every job in the tree.
func WithObserver(o Observer) TreeOption {
	return func(t *Tree) {
		if o != nil {
			t.observer = o
		}
	}
}

// NewTree creates an empty tree that builds jobs through f.
//
// f may be nil, in which case AddChild always fails with ErrUnknownType and
// jobs can only be attached with Adopt.
func NewTree(f Factory, opts ...TreeOption) *Tree {
	t := &Tree{
		factory:  f,
		logger:   slog.Default(),
		observer: NopObserver{},
		live:     assoc.NewUint64[ID, *Job](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewRoot constructs typeName through the factory and returns it as a
// detached root. OnBirth fires before NewRoot returns.
func (t *Tree) NewRoot(typeName string) (*Job, error) {
	b, err := t.construct(typeName)
	if err != nil {
		return nil, err
	}
	return t.NewRootWith(typeName, b), nil
}

// NewRootWith attaches an already constructed behaviour as a root.
func (t *Tree) NewRootWith(typeName string, b Behavior) *Job {
	return t.NewRootFunc(typeName, b, nil)
}

// NewRootFunc is NewRootWith with a setup hook that runs before OnBirth. See
// AdoptFunc.
func (t *Tree) NewRootFunc(typeName string, b Behavior, setup func(*Job)) *Job {
	j := t.newJob(typeName, b)
	j.maxTicksPerCycle = DefaultMaxTicksPerCycle
	if setup != nil {
		setup(j)
	}
	t.birth(j)
	return j
}

// Lookup resolves a live job by ID.
func (t *Tree) Lookup(id ID) (*Job, bool) {
	return t.live.Get(id)
}

// Stats returns a snapshot of the tree's allocation counters.
func (t *Tree) Stats() Stats {
	return t.stats
}

// Dispose kills a root and destroys it and everything below it.
// Disposing a job that still has a parent only kills it; its parent reaps it.
func (t *Tree) Dispose(root *Job) {
	if root == nil || root.tree != t {
		return
	}
	root.Kill()
	if root.parent == nil && !root.life.deleted {
		t.destroy(root)
	}
}

func (t *Tree) construct(typeName string) (Behavior, error) {
	if t.factory == nil {
		return nil, fmt.Errorf("construct %q: %w", typeName, ErrUnknownType)
	}
	b, err := t.factory.Construct(typeName)
	if err != nil {
		return nil, fmt.Errorf("construct %q: %w", typeName, err)
	}
	return b, nil
}

func (t *Tree) newJob(typeName string, b Behavior) *Job {
	t.nextID++
	j := &Job{
		tree:      t,
		id:        t.nextID,
		typeName:  typeName,
		behavior:  b,
		timeScale: scaleOne,
		enabled:   true,
		life:      &liveness{tree: t},
	}
	t.live.Add(j.id, j)
	t.stats.Created++
	t.stats.LivenessAllocated++
	return j
}

func (t *Tree) birth(j *Job) {
	if h, ok := j.behavior.(Birther); ok {
		h.OnBirth(j)
	}
	t.observer.Born(j)
	t.logger.Debug("job born", "id", j.id, "type", j.typeName)
}

// destroy releases j and its whole subtree. j must already be unlinked from
// its parent.
func (t *Tree) destroy(j *Job) {
	for c := j.child; c != nil; {
		next := c.sibling
		t.destroy(c)
		c = next
	}
	j.child = nil
	j.parent = nil
	j.sibling = nil
	j.enabled = false
	j.killed = true
	j.events = nil
	j.scoped = nil

	t.live.Remove(j.id)
	t.stats.Destroyed++
	j.life.markDeleted()
}
