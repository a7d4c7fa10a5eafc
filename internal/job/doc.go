// Package job implements a hierarchical, cooperatively scheduled job tree.
//
// Every Job updates itself and then its children once per tick. A driver
// calls Cycle on the root with an elapsed duration; the root ticks its own
// behaviour, cycles each child, reaps children that were killed, and runs
// its post-tick behaviour. Nothing here blocks and nothing runs on another
// goroutine.
//
// ARCHITECTURE:
//
// Tree
// A Tree owns ID assignment, the injected Factory that turns type names into
// behaviours, the logger and an optional Observer. Jobs never outlive the
// tree that created them.
//
// Lifecycle
// Alive→Killed is one-way. Enabled↔Disabled and Awake↔Asleep are orthogonal
// toggles; a job is Active only when it is alive, enabled and awake. Kill
// fires OnDeath synchronously, but the job stays linked in its parent's child
// list until the parent's next tick reaps it, so sibling iteration is never
// disturbed by a sibling dying.
//
// Scheduling
// Cycle scales the incoming duration by the product of the time scales on the
// path from the root, adds it to an accumulator and runs up to
// MaxTicksPerCycle ticks, each bounded by the job's min/max tick duration. A
// job that cannot afford a minimum-length tick is Waiting; the shortfall is
// carried to the next Cycle.
//
// References
// A Ref watches a job through a shared liveness block. Get returns nil once
// the job has been destroyed. Anything that keeps a job identity across a
// tick (event channels, query results, application handles) holds a Ref.
//
// Events and queries
// Listen/Notify deliver named events synchronously to active jobs. Children
// and Search snapshot a job's children into Results, which can be filtered
// and combined with JoinAnd, JoinOr, JoinSub and JoinXor.
//
// CRITICAL: a Tree and all of its jobs belong to a single goroutine. There is
// no locking; the per-job lock flag only blocks re-entrant Cycle calls.
package job
