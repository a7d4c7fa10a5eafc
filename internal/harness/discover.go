package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScenarioNotFoundError is returned when a path names neither a scenario
// file nor a directory holding one.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("no scenario files found at %s", e.Path)
}

// FindScenarios expands paths into scenario files. A file is taken as is; a
// directory contributes every *.yaml and *.yml file directly inside it, in
// name order as os.ReadDir returns them.
func FindScenarios(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{Path: p}
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml":
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		if len(found) == 0 {
			return nil, &ScenarioNotFoundError{Path: p}
		}
		files = append(files, found...)
	}
	return files, nil
}
