package job

import "errors"

var (
	// ErrKilled is returned when adding a child to a job that has been killed.
	ErrKilled = errors.New("job: parent has been killed")

	// ErrUnknownType is returned when the factory cannot construct a type name.
	// Factories should wrap it so callers can test with errors.Is.
	ErrUnknownType = errors.New("job: unknown job type")
)
