package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/jobtree/internal/trace"
)

// traceTail is how many trailing records an assertion failure shows.
const traceTail = 10

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []trace.Record // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) == 0 {
		return buf.String()
	}
	tail := e.Trace
	if len(tail) > traceTail {
		fmt.Fprintf(&buf, "\nLast %d of %d records:\n", traceTail, len(tail))
		tail = tail[len(tail)-traceTail:]
	} else {
		fmt.Fprintf(&buf, "\nFull trace:\n")
	}
	for _, r := range tail {
		fmt.Fprintf(&buf, "  %s\n", r)
	}
	return buf.String()
}

// matches reports whether r passes the assertion's record filters.
func (a Assertion) matches(r trace.Record) bool {
	if a.Kind != "" && string(r.Kind) != a.Kind {
		return false
	}
	if a.JobType != "" && r.Type != a.JobType {
		return false
	}
	if a.Event != "" && r.Event != a.Event {
		return false
	}
	return true
}

// filter describes the assertion's record filters for messages.
func (a Assertion) filter() string {
	var parts []string
	if a.Kind != "" {
		parts = append(parts, "kind="+a.Kind)
	}
	if a.JobType != "" {
		parts = append(parts, "job_type="+a.JobType)
	}
	if a.Event != "" {
		parts = append(parts, "event="+a.Event)
	}
	if len(parts) == 0 {
		return "any record"
	}
	return strings.Join(parts, " ")
}

func assertStopReason(result *Result, a Assertion) error {
	if string(result.Reason) == a.Reason {
		return nil
	}
	return &AssertionError{
		Type:     AssertStopReason,
		Expected: a.Reason,
		Actual:   string(result.Reason),
		Trace:    result.Trace,
	}
}

func assertCycles(result *Result, a Assertion) error {
	if result.Cycles == uint64(*a.Count) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCycles,
		Expected: fmt.Sprintf("%d cycles", *a.Count),
		Actual:   fmt.Sprintf("%d cycles", result.Cycles),
		Trace:    result.Trace,
	}
}

func assertLiveJobs(result *Result, a Assertion) error {
	if result.Live == uint64(*a.Count) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLiveJobs,
		Expected: fmt.Sprintf("%d live jobs", *a.Count),
		Actual:   fmt.Sprintf("%d live jobs", result.Live),
		Trace:    result.Trace,
	}
}

// assertTraceContains checks that at least one record matches.
func assertTraceContains(records []trace.Record, a Assertion) error {
	for _, r := range records {
		if a.matches(r) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.filter(),
		Actual:   "not found in trace",
		Trace:    records,
	}
}

// assertTraceCount checks that exactly Count records match.
func assertTraceCount(records []trace.Record, a Assertion) error {
	count := 0
	for _, r := range records {
		if a.matches(r) {
			count++
		}
	}
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d records with %s", *a.Count, a.filter()),
		Actual:   fmt.Sprintf("%d found", count),
		Trace:    records,
	}
}

// assertTraceOrder checks that, among records of the assertion's kind, the
// first one for each listed job type appears in the listed order. Other
// records may come in between.
func assertTraceOrder(records []trace.Record, a Assertion) error {
	positions := make(map[string]int)
	for i, r := range records {
		if string(r.Kind) != a.Kind {
			continue
		}
		if _, seen := positions[r.Type]; !seen {
			positions[r.Type] = i + 1 // 1-indexed for readability
		}
	}

	for _, typ := range a.Types {
		if positions[typ] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("%s records for all of %v", a.Kind, a.Types),
				Actual:   fmt.Sprintf("no %s record for %s", a.Kind, typ),
				Trace:    records,
			}
		}
	}

	for i := 1; i < len(a.Types); i++ {
		prev, curr := a.Types[i-1], a.Types[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("%s in order: %v", a.Kind, a.Types),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: records,
			}
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages. Assertions must already be validated.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertStopReason:
			err = assertStopReason(result, a)
		case AssertCycles:
			err = assertCycles(result, a)
		case AssertLiveJobs:
			err = assertLiveJobs(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
