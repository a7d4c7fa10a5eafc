package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/jobtree/internal/job"
)

// RuntimeError represents an error detected while setting up or driving a
// run.
//
// Runtime errors include:
//   - Root killed: Run was handed a root that is already dead
//   - Unknown type: the registry cannot construct the requested job
//   - Invalid config: rate limits, steps or quotas are out of range
//
// The tree itself never returns errors from scheduling; these all come from
// the boundary around it.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// JobID identifies the affected job, when there is one.
	JobID job.ID

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeRootKilled indicates Run was called on a killed root.
	ErrCodeRootKilled RuntimeErrorCode = "ROOT_KILLED"

	// ErrCodeUnknownType indicates a job type is not registered.
	ErrCodeUnknownType RuntimeErrorCode = "UNKNOWN_TYPE"

	// ErrCodeInvalidConfig indicates the engine configuration is unusable.
	ErrCodeInvalidConfig RuntimeErrorCode = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.JobID != 0 {
		msg = fmt.Sprintf("%s (job=%d)", msg, e.JobID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsRootKilledError returns true if the error is a ROOT_KILLED error.
// Uses errors.As to handle wrapped errors.
func IsRootKilledError(err error) bool {
	return hasCode(err, ErrCodeRootKilled)
}

// IsUnknownTypeError returns true if the error is an UNKNOWN_TYPE error.
func IsUnknownTypeError(err error) bool {
	return hasCode(err, ErrCodeUnknownType)
}

// IsInvalidConfigError returns true if the error is an INVALID_CONFIG error.
func IsInvalidConfigError(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

// NewRootKilledError creates a RuntimeError for a dead root.
func NewRootKilledError(id job.ID) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeRootKilled,
		Message: "root job is already killed",
		JobID:   id,
	}
}

// NewUnknownTypeError creates a RuntimeError for an unregistered type.
func NewUnknownTypeError(typeName string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownType,
		Message: fmt.Sprintf("cannot construct job type %q", typeName),
		Err:     cause,
	}
}

// NewInvalidConfigError creates a RuntimeError for a bad configuration.
func NewInvalidConfigError(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}
