package job

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// hookLog records every hook the scheduler calls and optionally runs custom
// code inside them.
type hookLog struct {
	name     string
	log      *[]string
	births   int
	deaths   int
	ticks    []time.Duration
	tocks    []time.Duration
	messages []string

	onBirth func(j *Job)
	onTick  func(j *Job, d time.Duration)
	onTock  func(j *Job, d time.Duration)
	onDeath func(j *Job)
}

func (p *hookLog) record(s string) {
	if p.log != nil {
		*p.log = append(*p.log, s)
	}
}

func (p *hookLog) OnBirth(j *Job) {
	p.births++
	p.record(p.name + ":birth")
	if p.onBirth != nil {
		p.onBirth(j)
	}
}

func (p *hookLog) OnTick(j *Job, d time.Duration) {
	p.ticks = append(p.ticks, d)
	p.record(p.name + ":tick")
	if p.onTick != nil {
		p.onTick(j, d)
	}
}

func (p *hookLog) OnTock(j *Job, d time.Duration) {
	p.tocks = append(p.tocks, d)
	p.record(p.name + ":tock")
	if p.onTock != nil {
		p.onTock(j, d)
	}
}

func (p *hookLog) OnDeath(j *Job) {
	p.deaths++
	p.record(p.name + ":death")
	if p.onDeath != nil {
		p.onDeath(j)
	}
}

func (p *hookLog) OnMessage(j *Job, event string, sender *Job) {
	p.messages = append(p.messages, event)
}

// plain has no hooks at all.
type plain struct{}

func testFactory() Factory {
	return FactoryFunc(func(name string) (Behavior, error) {
		switch name {
		case "hookLog":
			return &hookLog{name: name}, nil
		case "plain":
			return plain{}, nil
		default:
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownType)
		}
	})
}

func newTestTree(t *testing.T, opts ...TreeOption) *Tree {
	t.Helper()
	return NewTree(testFactory(), opts...)
}

// newHookRoot creates a root backed by a named hookLog that appends to log.
func newHookRoot(t *testing.T, tree *Tree, name string, log *[]string) (*Job, *hookLog) {
	t.Helper()
	p := &hookLog{name: name, log: log}
	return tree.NewRootWith(name, p), p
}

// adoptHook attaches a named hookLog child to parent.
func adoptHook(t *testing.T, parent *Job, name string, log *[]string) (*Job, *hookLog) {
	t.Helper()
	p := &hookLog{name: name, log: log}
	c, err := parent.Adopt(name, p)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c, p
}
