// Package trace records what happens inside a job tree.
//
// A Recorder is a job.Observer. Attach it with job.WithObserver and it
// appends one Record per birth, tick, wait, death and delivered event, each
// stamped with a sequence number from a logical Sequence. Wall-clock time
// never enters a record, so running the same tree with the same durations
// produces the same trace byte for byte. That property is what golden
// scenario files and the SQLite trace log rely on.
package trace
