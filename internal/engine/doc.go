// Package engine drives a job tree in real time.
//
// The tree itself never reads a clock: Job.Cycle takes a duration and
// everything below it is arithmetic. The engine is the one place wall-clock
// time enters. It repeatedly cycles a root job, either with a fixed step or
// with the measured delta since the previous cycle.
//
// ARCHITECTURE:
//
// Driver Loop:
// Each iteration of Run:
// 1. Stop if the root is killed, the context is done, or the cycle quota is spent
// 2. Cycle the root with the current duration
// 3. Measure how long the cycle took on the Clock
// 4. If that undershoots the root's minimum tick duration, sleep for the
// shortfall (the only blocking sleep anywhere in the system)
// 5. The next duration is the fixed step, or the measured delta clamped up
// to the minimum
//
// Jobs that cannot run a full tick inside a cycle are marked waiting by the
// tree and carry the time over. That is a soft, non-blocking skip and has
// nothing to do with the hard sleep above.
//
// Single goroutine:
// Run must be called from one goroutine and the tree must not be touched
// from any other while it runs. Cancellation is checked between cycles.
package engine
