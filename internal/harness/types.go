package harness

import (
	"github.com/roach88/jobtree/internal/engine"
	"github.com/roach88/jobtree/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	RunID  string            `json:"run_id"`
	Reason engine.StopReason `json:"reason"`
	Cycles uint64            `json:"cycles"`

	// Live is the number of jobs created but not destroyed when the run
	// stopped. A root that killed itself is still counted; only its parent
	// could have reaped it.
	Live uint64 `json:"live"`

	// Trace is every record of the run, in sequence order, as read back from
	// the store.
	Trace []trace.Record `json:"trace"`

	// Errors contains assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Record{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
