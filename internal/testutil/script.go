package testutil

import (
	"time"

	"github.com/roach88/jobtree/internal/job"
)

// Script is a behaviour whose hooks are plain functions, for tests that
// need a job to do something specific at a specific moment. Nil hooks are
// skipped. Every call is counted.
type Script struct {
	Birth func(j *job.Job)
	Tick  func(j *job.Job, d time.Duration)
	Tock  func(j *job.Job, d time.Duration)
	Death func(j *job.Job)

	Births int
	Ticks  []time.Duration
	Tocks  int
	Deaths int
}

// OnBirth implements job.Birther.
func (s *Script) OnBirth(j *job.Job) {
	s.Births++
	if s.Birth != nil {
		s.Birth(j)
	}
}

// OnTick implements job.Ticker.
func (s *Script) OnTick(j *job.Job, d time.Duration) {
	s.Ticks = append(s.Ticks, d)
	if s.Tick != nil {
		s.Tick(j, d)
	}
}

// OnTock implements job.Tocker.
func (s *Script) OnTock(j *job.Job, d time.Duration) {
	s.Tocks++
	if s.Tock != nil {
		s.Tock(j, d)
	}
}

// OnDeath implements job.Dier.
func (s *Script) OnDeath(j *job.Job) {
	s.Deaths++
	if s.Death != nil {
		s.Death(j)
	}
}

// KillAfter returns a script that kills its job on the nth active tick.
func KillAfter(n int) *Script {
	s := &Script{}
	s.Tick = func(j *job.Job, _ time.Duration) {
		if len(s.Ticks) >= n {
			j.Kill()
		}
	}
	return s
}

// Busy returns a script that advances clock by work on every tick,
// simulating a job that takes real time to run.
func Busy(clock *ManualClock, work time.Duration) *Script {
	return &Script{Tick: func(*job.Job, time.Duration) {
		clock.Advance(work)
	}}
}
