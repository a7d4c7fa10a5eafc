package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "Smallest valid scenario"
root:
  type: counter
assertions:
  - type: stop_reason
    reason: root_killed
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "counter", s.Root.Type)
	assert.Equal(t, DefaultStep, s.step())
	assert.Equal(t, uint64(DefaultMaxCycles), s.maxCycles())
	assert.Equal(t, "minimal", s.runID())
}

func TestParseScenario_FullNode(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: full
description: "Every node field"
step: 2ms
max_cycles: 7
run_id: fixed-run
root:
  type: supervisor
  min_hz: 10
  max_hz: 100
  max_ticks_per_cycle: 3
  children:
    - type: spawner
      params: { child: counter, count: 4 }
      time_scale: 1.5
      sleep: 1s
      disabled: true
assertions:
  - type: trace_order
    kind: born
    types: [supervisor, spawner]
`))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), s.maxCycles())
	assert.Equal(t, "fixed-run", s.runID())
	assert.Equal(t, 3, s.Root.MaxTicksPerCycle)
	require.Len(t, s.Root.Children, 1)

	c := s.Root.Children[0]
	require.NotNil(t, c.TimeScale)
	assert.Equal(t, 1.5, *c.TimeScale)
	assert.Equal(t, "counter", c.Params.Child)
	require.NotNil(t, c.Params.Count)
	assert.Equal(t, 4, *c.Params.Count)
	assert.Equal(t, []string{"child", "count"}, c.Params.set())
	assert.True(t, c.Disabled)
}

func TestParseScenario_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty document", ``},
		{"not a mapping", `- just a list`},
		{"missing name", `
description: "x"
root: { type: counter }
assertions: [{ type: cycles, count: 1 }]
`},
		{"unknown top-level key", minimalScenario + "assertion: []\n"},
		{"max_cycles not an integer", minimalScenario + "max_cycles: lots\n"},
		{"unknown assertion type", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: trace_has }]
`},
		{"negative count", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: cycles, count: -1 }]
`},
		{"unknown kind", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: trace_contains, kind: spawn }]
`},
		{"unknown param", `
name: x
description: "x"
root: { type: counter, params: { speed: 3 } }
assertions: [{ type: cycles, count: 1 }]
`},
		{"zero tick cap", `
name: x
description: "x"
root: { type: counter, max_ticks_per_cycle: 0 }
assertions: [{ type: cycles, count: 1 }]
`},
		{"no assertions", `
name: x
description: "x"
root: { type: counter }
assertions: []
`},
		{"name with spaces", `
name: two words
description: "x"
root: { type: counter }
assertions: [{ type: cycles, count: 1 }]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateDocument([]byte(tt.src)))
			_, err := ParseScenario([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestParseScenario_SemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad step", `
name: x
description: "x"
step: soon
root: { type: counter }
assertions: [{ type: cycles, count: 1 }]
`, "step"},
		{"zero step", `
name: x
description: "x"
step: 0s
root: { type: counter }
assertions: [{ type: cycles, count: 1 }]
`, "step must be positive"},
		{"inverted rates", `
name: x
description: "x"
root: { type: counter, min_hz: 60, max_hz: 30 }
assertions: [{ type: cycles, count: 1 }]
`, "exceeds max_hz"},
		{"bad sleep in child", `
name: x
description: "x"
root:
  type: supervisor
  children: [{ type: counter, sleep: later }]
assertions: [{ type: cycles, count: 1 }]
`, "root.children[0].sleep"},
		{"bad interval", `
name: x
description: "x"
root: { type: sleeper, params: { interval: often } }
assertions: [{ type: cycles, count: 1 }]
`, "params.interval"},
		{"count missing", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: cycles }]
`, "count is required"},
		{"stop reason missing", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: stop_reason }]
`, "unknown stop reason"},
		{"empty trace_contains", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: trace_contains }]
`, "needs kind, job_type or event"},
		{"short trace_order", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: trace_order, kind: born, types: [counter] }]
`, "at least two types"},
		{"trace_order without kind", `
name: x
description: "x"
root: { type: counter }
assertions: [{ type: trace_order, types: [a, b] }]
`, "kind is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, ValidateDocument([]byte(tt.src)), "schema should accept it")
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: [unclosed"), 0o644))
	_, err = LoadScenario(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}
