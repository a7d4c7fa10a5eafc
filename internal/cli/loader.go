package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/jobtree/internal/engine"
	"github.com/roach88/jobtree/internal/harness"
)

// FileKind says what a loaded file holds.
type FileKind string

const (
	FileConfig   FileKind = "config"
	FileScenario FileKind = "scenario"
)

// LoadResult contains a successfully loaded file.
type LoadResult struct {
	Path     string
	Kind     FileKind
	Config   engine.Config     // set for FileConfig
	Scenario *harness.Scenario // set for FileScenario
}

// LoadError represents an error that occurred while loading a file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// kindOf picks the loader from the file extension.
func kindOf(path string) (FileKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FileConfig, true
	case ".yaml", ".yml":
		return FileScenario, true
	}
	return "", false
}

// LoadFile loads an engine config (.cue) or a scenario (.yaml, .yml).
// Failures are returned as *LoadError.
func LoadFile(path string) (*LoadResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cannot read %s: %v", path, err)}
	}

	kind, ok := kindOf(path)
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("%s: expected a .cue config or .yaml scenario", path)}
	}

	res := &LoadResult{Path: path, Kind: kind}
	switch kind {
	case FileConfig:
		cfg, err := engine.LoadConfig(path)
		if err != nil {
			le := &LoadError{Code: ErrCodeInvalidConfig, Message: err.Error()}
			if pos := cueerrors.Positions(err); len(pos) > 0 {
				le.Pos = pos[0]
			}
			return nil, le
		}
		res.Config = cfg
	case FileScenario:
		s, err := harness.LoadScenario(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidScenario, Message: err.Error()}
		}
		res.Scenario = s
	}
	return res, nil
}
