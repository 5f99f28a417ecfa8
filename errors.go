package filekeep

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a record with the same file path already exists
	ErrConflict = errors.New("conflict")
	// ErrStorage is returned when the object storage provider rejects a request
	ErrStorage = errors.New("storage error")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
)
