package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jobtree/internal/engine"
	"github.com/roach88/jobtree/internal/trace"
)

// Defaults for fields a scenario may leave out.
const (
	DefaultStep      = 10 * time.Millisecond
	DefaultMaxCycles = 1000
)

// Scenario describes a job tree, how long to run it and what the resulting
// trace must look like.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Step is the fixed duration, as a Go duration string, the root is cycled
	// with. Empty means DefaultStep.
	Step string `yaml:"step,omitempty"`

	// MaxCycles bounds the run. Zero means DefaultMaxCycles; a scenario never
	// runs unbounded.
	MaxCycles uint64 `yaml:"max_cycles,omitempty"`

	// RunID is recorded with the trace. Empty means the scenario name.
	RunID string `yaml:"run_id,omitempty"`

	// Root is the tree to build.
	Root Node `yaml:"root"`

	// Assertions validate the run summary and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Node is one job in a scenario tree.
type Node struct {
	// Type is the registered job type name.
	Type string `yaml:"type"`

	// Params tune built-in behaviours. A param the type does not take is an
	// error.
	Params Params `yaml:"params,omitempty"`

	TimeScale        *float64 `yaml:"time_scale,omitempty"`
	MinHz            float64  `yaml:"min_hz,omitempty"`
	MaxHz            float64  `yaml:"max_hz,omitempty"`
	MaxTicksPerCycle int      `yaml:"max_ticks_per_cycle,omitempty"`

	// Sleep puts the job to sleep for a Go duration right after it is born.
	Sleep string `yaml:"sleep,omitempty"`

	Disabled bool `yaml:"disabled,omitempty"`

	// Children are added in order once this job is configured and born, so
	// they inherit its tick limits, as do children its OnBirth spawns.
	Children []Node `yaml:"children,omitempty"`
}

// Params are the knobs of the built-in behaviours.
type Params struct {
	Limit    *int   `yaml:"limit,omitempty"`    // counter
	Interval string `yaml:"interval,omitempty"` // sleeper
	Child    string `yaml:"child,omitempty"`    // spawner
	Count    *int   `yaml:"count,omitempty"`    // spawner
	Event    string `yaml:"event,omitempty"`    // pinger, listener
}

// set lists the params that were given, in declaration order.
func (p Params) set() []string {
	var names []string
	if p.Limit != nil {
		names = append(names, "limit")
	}
	if p.Interval != "" {
		names = append(names, "interval")
	}
	if p.Child != "" {
		names = append(names, "child")
	}
	if p.Count != nil {
		names = append(names, "count")
	}
	if p.Event != "" {
		names = append(names, "event")
	}
	return names
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "stop_reason": Reason
	// - "cycles": Count
	// - "live_jobs": Count
	// - "trace_contains": Kind, JobType, Event (at least one)
	// - "trace_count": Kind, JobType, Event, Count
	// - "trace_order": Kind, Types
	Type string `yaml:"type"`

	Reason string `yaml:"reason,omitempty"`

	// Count is a pointer so an expected zero is distinguishable from a
	// missing count.
	Count *int `yaml:"count,omitempty"`

	// Record filters. Empty fields match anything.
	Kind    string `yaml:"kind,omitempty"`
	JobType string `yaml:"job_type,omitempty"`
	Event   string `yaml:"event,omitempty"`

	// Types is the expected order of job types (used by trace_order).
	Types []string `yaml:"types,omitempty"`
}

// Assertion type constants.
const (
	AssertStopReason    = "stop_reason"
	AssertCycles        = "cycles"
	AssertLiveJobs      = "live_jobs"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertTraceOrder    = "trace_order"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario validates data against the scenario schema, decodes it
// strictly and checks what the schema cannot: durations, rate ordering and
// per-type assertion fields.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// step returns the parsed step. validateScenario has already rejected
// anything unparsable.
func (s *Scenario) step() time.Duration {
	if s.Step == "" {
		return DefaultStep
	}
	return parseDuration(s.Step)
}

func (s *Scenario) maxCycles() uint64 {
	if s.MaxCycles == 0 {
		return DefaultMaxCycles
	}
	return s.MaxCycles
}

func (s *Scenario) runID() string {
	if s.RunID != "" {
		return s.RunID
	}
	return s.Name
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Step != "" {
		d, err := time.ParseDuration(s.Step)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("step must be positive, got %s", d)
		}
	}
	if err := validateNode("root", &s.Root); err != nil {
		return err
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(path string, n *Node) error {
	if n.Type == "" {
		return fmt.Errorf("%s: type is required", path)
	}
	if n.MinHz < 0 || n.MaxHz < 0 {
		return fmt.Errorf("%s: tick rates must not be negative", path)
	}
	if n.MinHz > 0 && n.MaxHz > 0 && n.MinHz > n.MaxHz {
		return fmt.Errorf("%s: min_hz %g exceeds max_hz %g", path, n.MinHz, n.MaxHz)
	}
	if n.TimeScale != nil && *n.TimeScale < 0 {
		return fmt.Errorf("%s: time_scale must not be negative", path)
	}
	durations := []struct{ field, value string }{
		{"sleep", n.Sleep},
		{"params.interval", n.Params.Interval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s.%s: %w", path, d.field, err)
		}
	}
	for i := range n.Children {
		if err := validateNode(fmt.Sprintf("%s.children[%d]", path, i), &n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Kind != "" && !trace.Kind(a.Kind).Valid() {
		return fmt.Errorf("assertions[%d]: unknown record kind %q", index, a.Kind)
	}

	switch a.Type {
	case AssertStopReason:
		switch engine.StopReason(a.Reason) {
		case engine.StopRootKilled, engine.StopMaxCycles, engine.StopCanceled:
		default:
			return fmt.Errorf("assertions[%d]: unknown stop reason %q", index, a.Reason)
		}
	case AssertCycles, AssertLiveJobs, AssertTraceCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTraceContains:
		if a.Kind == "" && a.JobType == "" && a.Event == "" {
			return fmt.Errorf("assertions[%d]: trace_contains needs kind, job_type or event", index)
		}
	case AssertTraceOrder:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_order", index)
		}
		if len(a.Types) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order needs at least two types", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
