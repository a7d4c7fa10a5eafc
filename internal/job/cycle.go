package job

import "time"

// Cycle advances the job by d of its parent's time.
//
// d is scaled by the product of the time scales from the root down to j and
// added to the job's accumulator. Then up to MaxTicksPerCycle ticks run,
// each consuming min(accumulated, max duration). Whenever the next tick would
// be shorter than the min duration the job is marked Waiting and the loop
// stops; the accumulated time carries over to the next call. What
// remains afterwards is folded modulo the max duration so a starved job
// cannot build an unbounded backlog.
//
// Each tick runs, in order: OnTick (if active), Cycle on every child with
// the unscaled equivalent of the tick, reaping of killed children, OnTock
// (if still active).
//
// Cycle on a killed job, or on a job whose Cycle is already on the stack,
// does nothing.
func (j *Job) Cycle(d time.Duration) {
	if j.locked || j.killed {
		return
	}
	j.locked = true
	defer func() { j.locked = false }()

	scale := j.globalScale()
	carried := j.accumulated
	scaled := scaleDuration(d, scale)
	j.accumulated += scaled

	for i := 0; i < j.maxTicksPerCycle && !j.killed; i++ {
		t := j.accumulated
		if j.maxDuration > 0 && t > j.maxDuration {
			t = j.maxDuration
		}
		if i > 0 && t == 0 {
			break
		}
		if t < j.minDuration {
			j.waiting = true
			j.tree.observer.Waited(j)
			break
		}
		j.accumulated -= t
		j.waiting = false

		// A tick spanning exactly this call's input hands d on untouched;
		// scaling back and forth would truncate it.
		handoff := d
		if i > 0 || carried != 0 || t != scaled {
			handoff = unscaleDuration(t, scale)
		}
		j.tick(t, handoff)
	}

	if j.maxDuration > 0 {
		j.accumulated %= j.maxDuration
	}
}

// tick runs one scheduling step of length d in the job's own time. handoff is
// the same span in the parent's time, which is what children are cycled with.
func (j *Job) tick(d, handoff time.Duration) {
	j.existedFor += d
	j.existedTicks++

	if j.sleep > 0 {
		if j.sleep <= d {
			d -= j.sleep
			j.sleep = 0
		} else {
			j.sleep -= d
			d = 0
		}
	}

	active := j.IsActive()
	j.tree.observer.Ticked(j, d, active)
	if active {
		j.activeFor += d
		j.activeTicks++
		if h, ok := j.behavior.(Ticker); ok {
			h.OnTick(j, d)
		}
	}

	j.cycleChildren(handoff)
	j.deleteKilledChildren()

	if j.IsActive() {
		if h, ok := j.behavior.(Tocker); ok {
			h.OnTock(j, d)
		}
	}
}

// cycleChildren cycles every child, including disabled and sleeping ones, so
// each can keep its own time. The next sibling is read after the child
// returns because the child may have been destroyed meanwhile, which clears
// its sibling link and ends the walk.
func (j *Job) cycleChildren(d time.Duration) {
	for c := j.child; c != nil && !j.killed; {
		c.Cycle(d)
		c = c.sibling
	}
}
