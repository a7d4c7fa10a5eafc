package job

import "time"

// Behavior is the application value attached to a job.
//
// The scheduler inspects it for the optional hook interfaces below and calls
// whichever ones it implements. A behaviour with no hooks is valid: the job
// still keeps time, holds children and receives events through Listen.
type Behavior any

// Birther is called once, synchronously, when the job is attached to a tree.
type Birther interface {
	OnBirth(j *Job)
}

// Ticker is called on every active tick before the children are cycled.
type Ticker interface {
	OnTick(j *Job, d time.Duration)
}

// Tocker is called on every active tick after the children were cycled and
// killed children were reaped.
type Tocker interface {
	OnTock(j *Job, d time.Duration)
}

// Dier is called once when the job is killed, after all of its children died.
type Dier interface {
	OnDeath(j *Job)
}

// MessageHandler receives events for which the job has no registered Handler.
type MessageHandler interface {
	OnMessage(j *Job, event string, sender *Job)
}

// Handler is an event callback registered with Listen. self is the job the
// handler was registered on; sender is the job that sent the event.
type Handler func(self, sender *Job)

// Factory constructs behaviours by type name.
//
// Construct must return an error wrapping ErrUnknownType for names it does
// not know. It is the only way AddChild creates jobs.
type Factory interface {
	Construct(typeName string) (Behavior, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(typeName string) (Behavior, error)

// Construct calls f(typeName).
func (f FactoryFunc) Construct(typeName string) (Behavior, error) {
	return f(typeName)
}

// Observer receives lifecycle notifications from a Tree.
//
// Observers run inline on the scheduling goroutine and must not mutate the
// tree.
type Observer interface {
	// Born is called after OnBirth.
	Born(j *Job)
	// Ticked is called for every tick, before OnTick. d is the tick duration
	// after sleep was deducted; active reports whether OnTick will run.
	Ticked(j *Job, d time.Duration, active bool)
	// Waited is called when a cycle could not afford a single tick.
	Waited(j *Job)
	// Died is called after OnDeath.
	Died(j *Job)
	// Delivered is called after an event reached a handler.
	Delivered(event string, target, sender *Job)
}

// NopObserver ignores every notification. Embed it to implement only the
// callbacks you need.
type NopObserver struct{}

func (NopObserver) Born(*Job) {}
func (NopObserver) Ticked(*Job, time.Duration, bool) {}
func (NopObserver) Waited(*Job) {}
func (NopObserver) Died(*Job) {}
func (NopObserver) Delivered(string, *Job, *Job) {}
