// Package harness runs job-tree scenarios described in YAML and checks
// their traces.
//
// # Scenario Format
//
//	name: counters_under_supervisor
//	description: "Two counters finish, then the supervisor ends the run"
//	step: 10ms
//	max_cycles: 100
//	root:
//	  type: supervisor
//	  children:
//	    - type: counter
//	      params: { limit: 3 }
//	    - type: counter
//	      params: { limit: 5 }
//	      time_scale: 2
//	assertions:
//	  - type: stop_reason
//	    reason: root_killed
//	  - type: trace_count
//	    kind: died
//	    job_type: counter
//	    count: 2
//
// A node names a registered job type and may set params for the built-in
// behaviours (limit, interval, child, count, event), per-job timing
// (time_scale, min_hz, max_hz, max_ticks_per_cycle, sleep) and an initial
// disabled state. Children are added after the parent is born, in order.
//
// Every document is checked against an embedded JSON Schema before it is
// decoded, then decoded strictly so a misspelt key is an error.
//
// # Assertion Types
//
//   - stop_reason: the engine stopped for the given reason
//   - cycles: the root was cycled exactly count times
//   - live_jobs: count jobs were still undestroyed when the run ended
//   - trace_contains: some record matches kind, job_type and event
//   - trace_count: exactly count records match
//   - trace_order: the first matching record for each type in types appears
//     in that order
//
// # Deterministic Testing
//
// Scenarios run on a manual clock with a fixed step and a fixed run ID, and
// the trace is written to an in-memory store and read back before the
// assertions see it. The same scenario always yields the same trace, which
// is what the golden files under testdata/golden rely on.
package harness
