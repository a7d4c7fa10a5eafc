package builtin

import (
	"time"

	"github.com/roach88/jobtree/internal/job"
	"github.com/roach88/jobtree/internal/registry"
)

// Type names under which Register installs the built-in behaviours.
const (
	TypeSupervisor = "supervisor"
	TypeCounter    = "counter"
	TypePinger     = "pinger"
	TypeListener   = "listener"
	TypeSleeper    = "sleeper"
	TypeSpawner    = "spawner"
)

// Defaults used by the registered constructors.
const (
	DefaultCounterLimit  = 10
	DefaultSleepInterval = 100 * time.Millisecond
	DefaultSpawnCount    = 3
)

// Register installs every built-in behaviour in reg with default settings.
func Register(reg *registry.Registry) error {
	ctors := []struct {
		name string
		ctor registry.Constructor
	}{
		{TypeSupervisor, func() job.Behavior { return Supervisor{} }},
		{TypeCounter, func() job.Behavior { return &Counter{Limit: DefaultCounterLimit} }},
		{TypePinger, func() job.Behavior { return &Pinger{} }},
		{TypeListener, func() job.Behavior { return &Listener{} }},
		{TypeSleeper, func() job.Behavior { return &Sleeper{Interval: DefaultSleepInterval} }},
		{TypeSpawner, func() job.Behavior { return &Spawner{Child: TypeCounter, Count: DefaultSpawnCount} }},
	}
	for _, c := range ctors {
		if err := reg.Register(c.name, c.ctor); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the built-in behaviours.
func NewRegistry() *registry.Registry {
	reg := registry.New()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
