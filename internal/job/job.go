package job

import (
	"time"

	"github.com/roach88/jobtree/internal/assoc"
)

// ID identifies a job within its Tree. IDs are assigned in creation order
// starting at 1 and are never reused.
type ID uint64

// Job is a node in the scheduling tree.
//
// Children form a singly linked list reachable from the first-child link.
// The order of that list is unspecified; the only ordering guarantee is that
// children are cycled after the parent's OnTick and before its OnTock.
type Job struct {
	tree     *Tree
	id       ID
	typeName string
	behavior Behavior

	parent  *Job
	child   *Job
	sibling *Job

	life *liveness

	bornAt       time.Duration
	existedFor   time.Duration
	activeFor    time.Duration
	existedTicks uint64
	activeTicks  uint64

	timeScale uint64 // 16.16 fixed point
	sleep     time.Duration

	minDuration      time.Duration
	maxDuration      time.Duration // 0 means unbounded
	accumulated      time.Duration
	maxTicksPerCycle int

	enabled bool
	killed  bool
	dying   bool
	locked  bool
	waiting bool

	events *assoc.Store[string, Handler]
	scoped *assoc.Store[scopedKey, Handler]
}

// ID returns the job's identifier.
func (j *Job) ID() ID { return j.id }

// TypeName returns the name the job was constructed from.
func (j *Job) TypeName() string { return j.typeName }

// Behavior returns the application value attached to the job.
func (j *Job) Behavior() Behavior { return j.behavior }

// Tree returns the tree that owns the job.
func (j *Job) Tree() *Tree { return j.tree }

// Parent returns the parent job, or nil for a root.
func (j *Job) Parent() *Job { return j.parent }

// FirstChild returns the head of the child list.
func (j *Job) FirstChild() *Job { return j.child }

// NextSibling returns the next job in the parent's child list.
func (j *Job) NextSibling() *Job { return j.sibling }

// Root returns the topmost ancestor.
func (j *Job) Root() *Job {
	r := j
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Ref returns a new reference to the job. The caller owns it and should
// Release it when done.
func (j *Job) Ref() *Ref { return NewRef(j) }

// BornAt returns the parent's existed-time when the job was added.
func (j *Job) BornAt() time.Duration { return j.bornAt }

// ExistedFor returns the total tick time the job has received.
func (j *Job) ExistedFor() time.Duration { return j.existedFor }

// ActiveFor returns the tick time received while active.
func (j *Job) ActiveFor() time.Duration { return j.activeFor }

// ExistedTickCount returns the number of ticks the job has run.
func (j *Job) ExistedTickCount() uint64 { return j.existedTicks }

// ActiveTickCount returns the number of ticks run while active.
func (j *Job) ActiveTickCount() uint64 { return j.activeTicks }

// IsKilled reports whether Kill has run. It never becomes false again.
func (j *Job) IsKilled() bool { return j.killed }
func (j *Job) IsAlive() bool { return !j.killed }

// IsEnabled reports whether the job is alive and has not been disabled.
func (j *Job) IsEnabled() bool { return !j.killed && j.enabled }
func (j *Job) IsDisabled() bool { return !j.IsEnabled() }

// IsSleeping reports whether a sleep countdown is pending.
func (j *Job) IsSleeping() bool { return j.sleep > 0 }
func (j *Job) IsAwake() bool { return j.sleep <= 0 }

// IsActive reports whether the job is alive, enabled and awake.
func (j *Job) IsActive() bool { return j.IsEnabled() && j.IsAwake() }
func (j *Job) IsInactive() bool { return !j.IsActive() }

// IsWaiting reports whether the last Cycle could not afford a tick.
func (j *Job) IsWaiting() bool { return j.waiting }

// Enable lets a disabled job tick again. Killed jobs stay disabled.
func (j *Job) Enable() { j.enabled = true }

// Disable stops OnTick/OnTock and event delivery without killing the job.
// Children keep cycling.
func (j *Job) Disable() { j.enabled = false }

// Sleep suspends the job for d of its own time. A pending countdown is only
// extended, never shortened.
func (j *Job) Sleep(d time.Duration) {
	if d > j.sleep {
		j.sleep = d
	}
}

// Wake cancels any pending sleep.
func (j *Job) Wake() { j.sleep = 0 }

// SleepRemaining returns what is left of the sleep countdown.
func (j *Job) SleepRemaining() time.Duration { return j.sleep }

// ChildCount returns the number of jobs in the child list, including killed
// children that have not been reaped yet.
func (j *Job) ChildCount() int {
	n := 0
	for c := j.child; c != nil; c = c.sibling {
		n++
	}
	return n
}

// HasChildren reports whether the child list is non-empty.
func (j *Job) HasChildren() bool { return j.child != nil }

// HasEnabledChildren reports whether any child is alive and enabled.
func (j *Job) HasEnabledChildren() bool {
	for c := j.child; c != nil; c = c.sibling {
		if c.IsEnabled() {
			return true
		}
	}
	return false
}

// HasActiveChildren reports whether any child is active.
func (j *Job) HasActiveChildren() bool {
	for c := j.child; c != nil; c = c.sibling {
		if c.IsActive() {
			return true
		}
	}
	return false
}
