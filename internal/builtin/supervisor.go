// Package builtin provides ready-made job behaviours.
//
// The CLI runs them by name and scenario files compose trees out of them.
package builtin

import (
	"time"

	"github.com/roach88/jobtree/internal/job"
)

// Supervisor is a fork-style root. It does nothing of its own and kills
// itself on the first tick at which none of its children is enabled, which
// ends an engine run once the work below it has finished.
type Supervisor struct{}

// OnTick implements job.Ticker.
func (Supervisor) OnTick(j *job.Job, _ time.Duration) {
	if !j.HasEnabledChildren() {
		j.Kill()
	}
}
