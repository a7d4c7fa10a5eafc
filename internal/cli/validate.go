package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// FileValidation is the outcome of validating one file.
type FileValidation struct {
	Path    string `json:"path"`
	Kind    string `json:"kind,omitempty"`
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate engine configs and scenarios without running them",
		Long: `Validate CUE engine configs (.cue) and YAML scenarios (.yaml, .yml).

Configs are unified with the engine schema and range-checked. Scenarios are
checked against the scenario JSON Schema, decoded strictly and checked for
consistent durations, rates and assertions.

Examples:
  jobtree validate ./engine.cue
  jobtree validate ./scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fv := validateFile(path)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if err := formatter.Emit("", result, func(w io.Writer) { writeValidationText(w, result) }); err != nil {
		return err
	}
	if !result.Valid {
		invalid := 0
		for _, f := range result.Files {
			if !f.Valid {
				invalid++
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) invalid", invalid))
	}
	return nil
}

func validateFile(path string) FileValidation {
	fv := FileValidation{Path: path}
	res, err := LoadFile(path)
	if err == nil {
		fv.Kind = string(res.Kind)
		fv.Valid = true
		return fv
	}

	if kind, ok := kindOf(path); ok {
		fv.Kind = string(kind)
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		fv.Code = loadErr.Code
		fv.Message = loadErr.Message
		if loadErr.Pos.IsValid() {
			fv.Line = loadErr.Pos.Line()
		}
		return fv
	}
	fv.Code = ErrCodeGeneric
	fv.Message = err.Error()
	return fv
}

func writeValidationText(w io.Writer, result ValidationResult) {
	for _, f := range result.Files {
		if f.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", f.Path, f.Kind)
			continue
		}
		loc := f.Path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		fmt.Fprintf(w, "✗ %s [%s]: %s\n", loc, f.Code, f.Message)
	}
	if result.Valid {
		fmt.Fprintln(w, "✓ All files valid")
	}
}
