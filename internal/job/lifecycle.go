package job

// AddChild constructs typeName through the tree's factory and attaches it as
// a child.
//
// Returns ErrKilled if j has been killed, or an error wrapping
// ErrUnknownType if the factory cannot build the type. The child inherits
// j's tick duration limits and tick cap, and its OnBirth runs before
// AddChild returns.
func (j *Job) AddChild(typeName string) (*Job, error) {
	if j.killed || j.dying {
		return nil, ErrKilled
	}
	b, err := j.tree.construct(typeName)
	if err != nil {
		j.tree.logger.Debug("add child failed", "parent", j.id, "type", typeName, "error", err)
		return nil, err
	}
	// OnBirth of a sibling or the factory itself may have killed j.
	if j.killed || j.dying {
		return nil, ErrKilled
	}
	return j.attach(typeName, b, nil), nil
}

// Adopt attaches an already constructed behaviour as a child, bypassing the
// factory. typeName is recorded for queries and tracing.
func (j *Job) Adopt(typeName string, b Behavior) (*Job, error) {
	return j.AdoptFunc(typeName, b, nil)
}

// AdoptFunc is Adopt with a setup hook. setup runs once the child has
// inherited j's limits and before its OnBirth, so timing set there already
// applies to any children OnBirth adds. setup must not add children itself.
func (j *Job) AdoptFunc(typeName string, b Behavior, setup func(*Job)) (*Job, error) {
	if j.killed || j.dying {
		return nil, ErrKilled
	}
	return j.attach(typeName, b, setup), nil
}

func (j *Job) attach(typeName string, b Behavior, setup func(*Job)) *Job {
	c := j.tree.newJob(typeName, b)
	c.minDuration = j.minDuration
	c.maxDuration = j.maxDuration
	c.maxTicksPerCycle = j.maxTicksPerCycle
	c.bornAt = j.existedFor

	// Head insertion; sibling order is not part of the contract.
	c.parent = j
	c.sibling = j.child
	j.child = c

	if setup != nil {
		setup(c)
	}
	j.tree.birth(c)
	return c
}

// Kill terminates the job and its subtree.
//
// Children are killed first, depth first, and their memory is released at
// once. Then OnDeath fires and the job is marked disabled and killed. The job
// itself stays in its parent's child list until the parent reaps it on its
// next tick. Killing a job twice does nothing.
func (j *Job) Kill() {
	if j.killed || j.dying {
		return
	}
	j.dying = true

	j.KillChildren()
	for c := j.child; c != nil; {
		next := c.sibling
		c.parent = nil
		j.tree.destroy(c)
		c = next
	}
	j.child = nil

	if h, ok := j.behavior.(Dier); ok {
		h.OnDeath(j)
	}
	j.tree.observer.Died(j)
	j.tree.logger.Debug("job killed", "id", j.id, "type", j.typeName)

	j.enabled = false
	j.killed = true
	j.dying = false
}

// KillChildren kills every child. The children stay linked until the next
// reap.
func (j *Job) KillChildren() {
	if j.killed {
		return
	}
	for c := j.child; c != nil; {
		next := c.sibling
		c.Kill()
		c = next
	}
}

// deleteKilledChildren unlinks and destroys every killed child.
func (j *Job) deleteKilledChildren() {
	link := &j.child
	for *link != nil {
		c := *link
		if !c.killed {
			link = &c.sibling
			continue
		}
		*link = c.sibling
		c.sibling = nil
		c.parent = nil
		j.tree.destroy(c)
	}
}
