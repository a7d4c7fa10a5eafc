package trace

import (
	"time"

	"github.com/roach88/jobtree/internal/job"
)

// Recorder collects trace records from a tree. It implements job.Observer.
type Recorder struct {
	seq     *Sequence
	records []Record
	ticks   bool
	counts  map[Kind]int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSequence numbers records from seq instead of a fresh sequence.
func WithSequence(seq *Sequence) Option {
	return func(r *Recorder) {
		r.seq = seq
	}
}

// WithoutTicks drops tick, idle and wait records while still counting them.
// Long runs produce one tick record per job per cycle, which is usually more
// than anyone wants to store.
func WithoutTicks() Option {
	return func(r *Recorder) {
		r.ticks = false
	}
}

// NewRecorder returns an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		seq:    &Sequence{},
		ticks:  true,
		counts: make(map[Kind]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Count returns how many events of kind k were observed, including any that
// were not kept.
func (r *Recorder) Count(k Kind) int {
	return r.counts[k]
}

// Len returns the number of kept records.
func (r *Recorder) Len() int {
	return len(r.records)
}

// Reset drops all records and counts. The sequence keeps running.
func (r *Recorder) Reset() {
	r.records = nil
	r.counts = make(map[Kind]int)
}

func (r *Recorder) add(k Kind, j *job.Job, rec Record) {
	r.counts[k]++
	if !r.ticks && (k == KindTick || k == KindIdle || k == KindWait) {
		return
	}
	rec.Seq = r.seq.Next()
	rec.Kind = k
	rec.Job = uint64(j.ID())
	rec.Type = j.TypeName()
	if p := j.Parent(); p != nil {
		rec.Parent = uint64(p.ID())
	}
	r.records = append(r.records, rec)
}

// Born implements job.Observer.
func (r *Recorder) Born(j *job.Job) {
	r.add(KindBorn, j, Record{})
}

// Ticked implements job.Observer.
func (r *Recorder) Ticked(j *job.Job, d time.Duration, active bool) {
	k := KindTick
	if !active {
		k = KindIdle
	}
	r.add(k, j, Record{Duration: d})
}

// Waited implements job.Observer.
func (r *Recorder) Waited(j *job.Job) {
	r.add(KindWait, j, Record{})
}

// Died implements job.Observer.
func (r *Recorder) Died(j *job.Job) {
	r.add(KindDied, j, Record{})
}

// Delivered implements job.Observer.
func (r *Recorder) Delivered(event string, target, sender *job.Job) {
	rec := Record{Event: event}
	if sender != nil {
		rec.Sender = uint64(sender.ID())
	}
	r.add(KindEvent, target, rec)
}

var _ job.Observer = (*Recorder)(nil)
