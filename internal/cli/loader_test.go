package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "engine.cue", "max_hz: 30\nmax_cycles: 9\n")

	res, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileConfig, res.Kind)
	assert.Equal(t, 30.0, res.Config.MaxHz)
	assert.Equal(t, uint64(9), res.Config.MaxCycles)
	assert.Nil(t, res.Scenario)
}

func TestLoadFileScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "counter.yml", passingScenario)

	res, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileScenario, res.Kind)
	require.NotNil(t, res.Scenario)
	assert.Equal(t, "counter_ok", res.Scenario.Name)
}

func TestLoadFileConfigError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", "max_hz: 30\nmin_hz: -1\n")

	_, err := LoadFile(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeInvalidConfig, loadErr.Code)
	assert.Contains(t, loadErr.Message, "min_hz")
	assert.True(t, loadErr.Pos.IsValid())
}

func TestLoadErrorWithoutPosition(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "cannot read x"}
	assert.Equal(t, "E001: cannot read x", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		kind FileKind
		ok   bool
	}{
		{"engine.cue", FileConfig, true},
		{"a/b/scenario.yaml", FileScenario, true},
		{"SCENARIO.YML", FileScenario, true},
		{filepath.Join("x", "readme.md"), "", false},
	}
	for _, tt := range tests {
		kind, ok := kindOf(tt.path)
		assert.Equal(t, tt.kind, kind, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
	}
}
