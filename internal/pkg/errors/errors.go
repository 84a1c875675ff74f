package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a unique-constraint conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSchemaDisabled signals a V2-only operation on a backend or
	// schema mode that does not support the event log.
	ErrSchemaDisabled = errors.New("event schema disabled")
)
