package builtin

import (
	"time"

	"github.com/roach88/jobtree/internal/job"
)

// PingEvent is the event Pinger sends and Listener counts by default.
const PingEvent = "ping"

// Counter counts its active ticks and kills itself after Limit of them.
// A zero Limit counts forever.
type Counter struct {
	Limit int
	Ticks int
}

// OnTick implements job.Ticker.
func (c *Counter) OnTick(j *job.Job, _ time.Duration) {
	c.Ticks++
	if c.Limit > 0 && c.Ticks >= c.Limit {
		j.Kill()
	}
}

// Pinger notifies its parent with Event on every active tick.
type Pinger struct {
	Event string
	Sent  int
}

// OnTick implements job.Ticker.
func (p *Pinger) OnTick(j *job.Job, _ time.Duration) {
	event := p.Event
	if event == "" {
		event = PingEvent
	}
	p.Sent++
	j.NotifyParent(event)
}

// Listener counts deliveries of Event. Events it has no handler for are
// counted separately in Other.
type Listener struct {
	Event    string
	Received int
	Other    int
	Last     job.ID
}

// OnBirth implements job.Birther.
func (l *Listener) OnBirth(j *job.Job) {
	event := l.Event
	if event == "" {
		event = PingEvent
	}
	j.Listen(event, func(_, sender *job.Job) {
		l.Received++
		if sender != nil {
			l.Last = sender.ID()
		}
	})
}

// OnMessage implements job.MessageHandler.
func (l *Listener) OnMessage(_ *job.Job, _ string, _ *job.Job) {
	l.Other++
}

// Sleeper naps for Interval after every active tick, so it runs at most once
// per Interval of its own time.
type Sleeper struct {
	Interval time.Duration
	Wakes    int
}

// OnTick implements job.Ticker.
func (s *Sleeper) OnTick(_ *job.Job, _ time.Duration) {
	s.Wakes++
}

// OnTock implements job.Tocker.
func (s *Sleeper) OnTock(j *job.Job, _ time.Duration) {
	if s.Interval > 0 {
		j.Sleep(s.Interval)
	}
}

// Spawner adds Count children of type Child when it is born and kills
// itself once all of them are gone.
type Spawner struct {
	Child string
	Count int
	Err   error
}

// OnBirth implements job.Birther.
func (s *Spawner) OnBirth(j *job.Job) {
	for i := 0; i < s.Count; i++ {
		if _, err := j.AddChild(s.Child); err != nil {
			s.Err = err
			return
		}
	}
}

// OnTock implements job.Tocker.
func (s *Spawner) OnTock(j *job.Job, _ time.Duration) {
	if !j.HasChildren() {
		j.Kill()
	}
}
