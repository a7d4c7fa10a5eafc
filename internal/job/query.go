package job

// Predicate selects jobs in queries and filters.
type Predicate func(*Job) bool

// Result is one entry of a Results list.
type Result struct {
	ref  *Ref
	next *Result
}

// Job returns the job the entry refers to, or nil if it has been destroyed.
func (r *Result) Job() *Job { return r.ref.Get() }

// ID returns the identity the entry was created for.
func (r *Result) ID() ID { return r.ref.ID() }

// Next returns the following entry.
func (r *Result) Next() *Result { return r.next }

// Results is a singly linked list of weak job references.
//
// Entries keep watching their jobs until Release is called. A job destroyed
// after the snapshot was taken shows up as a nil Job and is skipped by
// Filter, Each, Jobs and the joins.
type Results struct {
	first *Result
	last  *Result
	n     int
}

// NewResults returns a list holding a reference to each of jobs.
func NewResults(jobs ...*Job) *Results {
	rs := &Results{}
	for _, j := range jobs {
		rs.Append(j)
	}
	return rs
}

// Append adds a reference to j at the end of the list.
func (rs *Results) Append(j *Job) {
	rs.appendRef(NewRef(j))
}

func (rs *Results) appendRef(ref *Ref) {
	r := &Result{ref: ref}
	if rs.last == nil {
		rs.first = r
	} else {
		rs.last.next = r
	}
	rs.last = r
	rs.n++
}

// First returns the head of the list, or nil.
func (rs *Results) First() *Result {
	if rs == nil {
		return nil
	}
	return rs.first
}

// Len returns the number of entries, stale ones included.
func (rs *Results) Len() int {
	if rs == nil {
		return 0
	}
	return rs.n
}

// Each calls fn for every entry whose job still exists, in list order, until
// fn returns false.
func (rs *Results) Each(fn func(*Job) bool) {
	for r := rs.First(); r != nil; r = r.next {
		j := r.ref.Get()
		if j == nil {
			continue
		}
		if !fn(j) {
			return
		}
	}
}

// Jobs returns the jobs that still exist, in list order.
func (rs *Results) Jobs() []*Job {
	var out []*Job
	rs.Each(func(j *Job) bool {
		out = append(out, j)
		return true
	})
	return out
}

// IDs returns the identity of every entry, stale ones included.
func (rs *Results) IDs() []ID {
	var out []ID
	for r := rs.First(); r != nil; r = r.next {
		out = append(out, r.ref.ID())
	}
	return out
}

// Filter returns a new list with the live entries that satisfy p.
func (rs *Results) Filter(p Predicate) *Results {
	out := &Results{}
	rs.Each(func(j *Job) bool {
		if p == nil || p(j) {
			out.Append(j)
		}
		return true
	})
	return out
}

// Release drops every reference held by the list and empties it.
func (rs *Results) Release() {
	if rs == nil {
		return
	}
	for r := rs.first; r != nil; r = r.next {
		r.ref.Release()
	}
	rs.first, rs.last, rs.n = nil, nil, 0
}

// Children returns a snapshot of j's current children.
func (j *Job) Children() *Results {
	rs := &Results{}
	for c := j.child; c != nil; c = c.sibling {
		rs.Append(c)
	}
	return rs
}

// FilterChildren returns the children of j that satisfy p.
func (j *Job) FilterChildren(p Predicate) *Results {
	rs := &Results{}
	for c := j.child; c != nil; c = c.sibling {
		if p == nil || p(c) {
			rs.Append(c)
		}
	}
	return rs
}

// Query selects children of a subject job. Conditions added with Where must
// all hold; combine predicates with Or for alternatives.
type Query struct {
	subject *Ref
	where   []Predicate
}

// Search starts a query over j's children.
func (j *Job) Search() *Query {
	return &Query{subject: NewRef(j)}
}

// Where adds a condition to the query.
func (q *Query) Where(p Predicate) *Query {
	if p != nil {
		q.where = append(q.where, p)
	}
	return q
}

// Execute runs the query. A subject destroyed since Search yields an empty
// list.
func (q *Query) Execute() *Results {
	subject := q.subject.Get()
	if subject == nil {
		return &Results{}
	}
	return subject.FilterChildren(And(q.where...))
}

// Close releases the query's reference to its subject.
func (q *Query) Close() {
	q.subject.Release()
}

// And holds when every predicate holds. And() always holds.
func And(ps ...Predicate) Predicate {
	return func(j *Job) bool {
		for _, p := range ps {
			if !p(j) {
				return false
			}
		}
		return true
	}
}

// Or holds when any predicate holds. Or() never holds.
func Or(ps ...Predicate) Predicate {
	return func(j *Job) bool {
		for _, p := range ps {
			if p(j) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(j *Job) bool { return !p(j) }
}

// OfType holds for jobs constructed from typeName.
func OfType(typeName string) Predicate {
	return func(j *Job) bool { return j.typeName == typeName }
}

// Active holds for active jobs.
func Active(j *Job) bool { return j.IsActive() }

// Enabled holds for alive, enabled jobs.
func Enabled(j *Job) bool { return j.IsEnabled() }

// Alive holds for jobs that have not been killed.
func Alive(j *Job) bool { return j.IsAlive() }

// Sleeping holds for jobs with a pending sleep countdown.
func Sleeping(j *Job) bool { return j.IsSleeping() }
