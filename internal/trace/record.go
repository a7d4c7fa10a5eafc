package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind names the event a record describes.
type Kind string

const (
	KindBorn  Kind = "born"
	KindTick  Kind = "tick"
	KindIdle  Kind = "idle" // ticked while inactive
	KindWait  Kind = "wait"
	KindDied  Kind = "died"
	KindEvent Kind = "event"
)

// Kinds lists every kind in the order they are reported.
var Kinds = []Kind{KindBorn, KindTick, KindIdle, KindWait, KindDied, KindEvent}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record is one line of a trace.
//
// Job, Parent and Sender are job IDs; zero means "none". Duration is the
// tick length in the job's own time, after sleep deduction. Event and Sender
// are set only for KindEvent, where Job is the receiving job.
type Record struct {
	Seq      int64         `json:"seq"`
	Kind     Kind          `json:"kind"`
	Job      uint64        `json:"job"`
	Type     string        `json:"type"`
	Parent   uint64        `json:"parent,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Event    string        `json:"event,omitempty"`
	Sender   uint64        `json:"sender,omitempty"`
}

// String renders the record as one canonical text line.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%06d %-5s job=%d type=%s", r.Seq, r.Kind, r.Job, r.Type)
	if r.Parent != 0 {
		fmt.Fprintf(&b, " parent=%d", r.Parent)
	}
	switch r.Kind {
	case KindTick, KindIdle:
		fmt.Fprintf(&b, " d=%s", r.Duration)
	case KindEvent:
		fmt.Fprintf(&b, " event=%s sender=%d", r.Event, r.Sender)
	}
	return b.String()
}

// FormatText renders records one per line, newline terminated.
func FormatText(records []Record) []byte {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// FormatJSON renders records as an indented JSON array.
func FormatJSON(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return append(out, '\n'), nil
}
