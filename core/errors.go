package core

import "errors"

var (
	// ErrValidationFailed is returned when a value does not satisfy its column's type rule.
	ErrValidationFailed = errors.New("validation failed")
	// ErrInvalidArgument covers empty names, missing or malformed interval bounds and oversized rows.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange is returned for table, column or row indices that do not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrTypeMismatch is returned when an operator is not defined for a column type.
	// Evaluate never returns it; a mismatch there evaluates to false.
	ErrTypeMismatch = errors.New("type mismatch")
)
