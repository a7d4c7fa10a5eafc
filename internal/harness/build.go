package harness

import (
	"fmt"
	"time"

	"github.com/roach88/jobtree/internal/builtin"
	"github.com/roach88/jobtree/internal/job"
	"github.com/roach88/jobtree/internal/registry"
)

// builder turns scenario nodes into jobs.
type builder struct {
	reg  *registry.Registry
	tree *job.Tree
}

// build creates the job for n under parent, or as a root when parent is
// nil, then builds n's children beneath it.
func (b *builder) build(parent *job.Job, n Node) (*job.Job, error) {
	behavior, err := b.reg.Construct(n.Type)
	if err != nil {
		return nil, err
	}
	if err := applyParams(behavior, n.Params); err != nil {
		return nil, fmt.Errorf("%s: %w", n.Type, err)
	}

	setup := func(j *job.Job) { configure(j, n) }
	var j *job.Job
	if parent == nil {
		j = b.tree.NewRootFunc(n.Type, behavior, setup)
	} else if j, err = parent.AdoptFunc(n.Type, behavior, setup); err != nil {
		return nil, fmt.Errorf("adopt %s: %w", n.Type, err)
	}

	for i, c := range n.Children {
		if _, err := b.build(j, c); err != nil {
			return nil, fmt.Errorf("%s.children[%d]: %w", n.Type, i, err)
		}
	}
	return j, nil
}

// applyParams sets the params a behaviour understands. Params run before the
// job is born, so a spawner's child type and count are in place for its
// OnBirth.
func applyParams(b job.Behavior, p Params) error {
	used := make(map[string]bool)
	switch v := b.(type) {
	case *builtin.Counter:
		if p.Limit != nil {
			v.Limit = *p.Limit
			used["limit"] = true
		}
	case *builtin.Sleeper:
		if p.Interval != "" {
			v.Interval = parseDuration(p.Interval)
			used["interval"] = true
		}
	case *builtin.Spawner:
		if p.Child != "" {
			v.Child = p.Child
			used["child"] = true
		}
		if p.Count != nil {
			v.Count = *p.Count
			used["count"] = true
		}
	case *builtin.Pinger:
		if p.Event != "" {
			v.Event = p.Event
			used["event"] = true
		}
	case *builtin.Listener:
		if p.Event != "" {
			v.Event = p.Event
			used["event"] = true
		}
	}

	for _, name := range p.set() {
		if !used[name] {
			return fmt.Errorf("param %q does not apply to %T", name, b)
		}
	}
	return nil
}

// configure applies per-job timing and state. It runs before the job is
// born, so children its OnBirth spawns inherit the node's limits just like
// the children listed under it.
func configure(j *job.Job, n Node) {
	if n.MinHz > 0 || n.MaxHz > 0 {
		j.SetTickRateLimits(n.MinHz, n.MaxHz)
	}
	if n.MaxTicksPerCycle > 0 {
		j.SetMaxTicksPerCycle(n.MaxTicksPerCycle)
	}
	if n.TimeScale != nil {
		j.SetTimeScale(*n.TimeScale)
	}
	if n.Sleep != "" {
		j.Sleep(parseDuration(n.Sleep))
	}
	if n.Disabled {
		j.Disable()
	}
}

// parseDuration parses a duration validateScenario has already accepted.
func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
