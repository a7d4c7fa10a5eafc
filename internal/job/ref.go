package job

// liveness is the block a Ref watches to learn whether its job still exists.
//
// The tree decides when a job is destroyed; the block only outlives the job
// long enough for outstanding refs to observe the deletion. It is released
// exactly once: at destruction if nobody is watching, otherwise when the
// last watcher lets go.
type liveness struct {
	tree     *Tree
	watchers int
	deleted  bool
	released bool
}

func (l *liveness) watch() {
	l.watchers++
}

func (l *liveness) unwatch() {
	l.watchers--
	if l.watchers == 0 && l.deleted {
		l.release()
	}
}

func (l *liveness) markDeleted() {
	l.deleted = true
	if l.watchers == 0 {
		l.release()
	}
}

func (l *liveness) release() {
	if l.released {
		return
	}
	l.released = true
	l.tree.stats.LivenessReleased++
}

// Ref is a weak handle to a job.
//
// A Ref never keeps its job alive. Get returns the job while it exists and
// nil once the tree has destroyed it, no matter how many other refs are
// outstanding or in which order they are released.
//
// Refs are pointers so that copying one does not silently duplicate a
// watcher. Use Clone to take a second watch and Release to drop one.
// A nil *Ref behaves like an empty reference.
type Ref struct {
	job  *Job
	life *liveness
	id   ID
}

// NewRef returns a reference watching j. A nil j yields an empty reference.
func NewRef(j *Job) *Ref {
	r := &Ref{}
	r.Set(j)
	return r
}

// Get returns the referenced job, or nil if it has been destroyed or the
// reference is empty.
func (r *Ref) Get() *Job {
	if r == nil || r.life == nil || r.life.deleted {
		return nil
	}
	return r.job
}

// Valid reports whether Get would return a job.
func (r *Ref) Valid() bool {
	return r.Get() != nil
}

// ID returns the identifier of the job the reference was attached to. It
// stays readable after the job is gone.
func (r *Ref) ID() ID {
	if r == nil {
		return 0
	}
	return r.id
}

// Clone returns a second reference to the same job.
func (r *Ref) Clone() *Ref {
	c := &Ref{}
	if r == nil || r.life == nil {
		return c
	}
	c.job, c.life, c.id = r.job, r.life, r.id
	c.life.watch()
	return c
}

// Move transfers the attachment to a new reference and leaves r empty.
// Watcher counts are untouched.
func (r *Ref) Move() *Ref {
	m := &Ref{}
	if r == nil {
		return m
	}
	m.job, m.life, m.id = r.job, r.life, r.id
	r.job, r.life, r.id = nil, nil, 0
	return m
}

// Set re-seats the reference on j, releasing any previous attachment first.
// Setting the job it already watches does nothing.
func (r *Ref) Set(j *Job) {
	if j != nil && r.job == j && r.life == j.life {
		return
	}
	r.Release()
	if j == nil {
		return
	}
	r.job, r.life, r.id = j, j.life, j.id
	r.life.watch()
}

// Release drops the attachment. Releasing an empty reference is a no-op.
func (r *Ref) Release() {
	if r == nil || r.life == nil {
		return
	}
	r.life.unwatch()
	r.job, r.life, r.id = nil, nil, 0
}
