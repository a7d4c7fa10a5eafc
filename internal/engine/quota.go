package engine

// CycleQuota counts root cycles against an upper bound.
//
// A zero limit never runs out. Unlike a killed root, which is the normal way
// for a run to end, an exhausted quota stops a tree that would otherwise run
// forever: demos, scenario files and tests use it to bound a run.
type CycleQuota struct {
	limit   uint64
	current uint64
}

// NewCycleQuota creates a quota of limit cycles. Zero means unlimited.
func NewCycleQuota(limit uint64) *CycleQuota {
	return &CycleQuota{limit: limit}
}

// Exhausted reports whether no cycles are left.
func (q *CycleQuota) Exhausted() bool {
	return q.limit > 0 && q.current >= q.limit
}

// Spend records one cycle.
func (q *CycleQuota) Spend() {
	q.current++
}

// Current returns the number of cycles spent.
func (q *CycleQuota) Current() uint64 {
	return q.current
}

// Limit returns the quota's bound, zero for unlimited.
func (q *CycleQuota) Limit() uint64 {
	return q.limit
}
