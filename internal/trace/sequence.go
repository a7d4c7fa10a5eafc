package trace

import "sync/atomic"

// Sequence is a monotonic logical clock for ordering records.
//
// The first call to Next returns 1. Safe for concurrent use, although a tree
// only ever records from the goroutine that cycles it.
type Sequence struct {
	seq atomic.Int64
}

// NewSequenceAt returns a sequence whose next value is start+1. Used when
// appending to a run that already has records.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.seq.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last number handed out without advancing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
