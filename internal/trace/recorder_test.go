package trace

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtree/internal/job"
)

type pinger struct{}

func (pinger) OnTick(j *job.Job, _ time.Duration) { j.NotifyParent("ping") }

type sink struct{ got int }

func (s *sink) OnMessage(_ *job.Job, _ string, _ *job.Job) { s.got++ }

func newTracedTree(t *testing.T, opts ...Option) (*job.Tree, *Recorder) {
	t.Helper()
	rec := NewRecorder(opts...)
	return job.NewTree(nil, job.WithObserver(rec)), rec
}

func TestRecorder_Lifecycle(t *testing.T) {
	tree, rec := newTracedTree(t)
	root := tree.NewRootWith("sink", &sink{})
	child, err := root.Adopt("pinger", pinger{})
	require.NoError(t, err)

	root.Cycle(5 * time.Millisecond)
	root.Kill()

	want := []Record{
		{Seq: 1, Kind: KindBorn, Job: 1, Type: "sink"},
		{Seq: 2, Kind: KindBorn, Job: 2, Type: "pinger", Parent: 1},
		{Seq: 3, Kind: KindTick, Job: 1, Type: "sink", Duration: 5 * time.Millisecond},
		{Seq: 4, Kind: KindTick, Job: 2, Type: "pinger", Parent: 1, Duration: 5 * time.Millisecond},
		{Seq: 5, Kind: KindEvent, Job: 1, Type: "sink", Event: "ping", Sender: uint64(child.ID())},
		{Seq: 6, Kind: KindDied, Job: 2, Type: "pinger", Parent: 1},
		{Seq: 7, Kind: KindDied, Job: 1, Type: "sink"},
	}
	assert.Equal(t, want, rec.Records())
}

func TestRecorder_IdleAndWait(t *testing.T) {
	tree, rec := newTracedTree(t)
	root := tree.NewRootWith("root", &sink{})
	root.SetDurationLimits(10*time.Millisecond, 0)

	root.Cycle(4 * time.Millisecond)
	root.Disable()
	root.Cycle(6 * time.Millisecond)

	assert.Equal(t, 1, rec.Count(KindWait))
	assert.Equal(t, 1, rec.Count(KindIdle))
	assert.Equal(t, 0, rec.Count(KindTick))

	records := rec.Records()
	require.Len(t, records, 3)
	assert.Equal(t, KindIdle, records[2].Kind)
	assert.Equal(t, 10*time.Millisecond, records[2].Duration)
}

func TestRecorder_WithoutTicks(t *testing.T) {
	tree, rec := newTracedTree(t, WithoutTicks())
	root := tree.NewRootWith("root", &sink{})
	for i := 0; i < 5; i++ {
		root.Cycle(time.Millisecond)
	}

	assert.Equal(t, 5, rec.Count(KindTick))
	assert.Equal(t, 1, rec.Len(), "only the birth is kept")
}

func TestRecorder_SharedSequence(t *testing.T) {
	seq := NewSequenceAt(41)
	tree, rec := newTracedTree(t, WithSequence(seq))
	tree.NewRootWith("root", &sink{})

	assert.Equal(t, int64(42), rec.Records()[0].Seq)
	assert.Equal(t, int64(42), seq.Current())
}

func TestRecorder_Reset(t *testing.T) {
	tree, rec := newTracedTree(t)
	root := tree.NewRootWith("root", &sink{})
	rec.Reset()
	root.Cycle(time.Millisecond)

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].Seq)
	assert.Equal(t, 0, rec.Count(KindBorn))
}

func TestRecord_String(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"born root", Record{Seq: 1, Kind: KindBorn, Job: 1, Type: "supervisor"}, "000001 born  job=1 type=supervisor"},
		{"tick", Record{Seq: 12, Kind: KindTick, Job: 3, Type: "counter", Parent: 1, Duration: 10 * time.Millisecond}, "000012 tick  job=3 type=counter parent=1 d=10ms"},
		{"event", Record{Seq: 7, Kind: KindEvent, Job: 1, Type: "listener", Event: "ping", Sender: 2}, "000007 event job=1 type=listener event=ping sender=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.String())
		})
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))

	out, err = FormatJSON([]Record{{Seq: 1, Kind: KindTick, Job: 2, Type: "x", Duration: time.Second}})
	require.NoError(t, err)

	var back []map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	require.Len(t, back, 1)
	assert.Equal(t, float64(time.Second), back[0]["duration_ns"])
	assert.NotContains(t, back[0], "event")
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("bogus").Valid())
}
