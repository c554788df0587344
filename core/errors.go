package core

import "errors"

var (
	// ErrInvalidRecord indicates a raw record failed boundary validation.
	ErrInvalidRecord = errors.New("invalid conversation record")

	// ErrMissingField indicates a required field was absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidTimestamp indicates the timestamp field did not parse as RFC 3339.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
