package db

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a create collides with an existing record.
	ErrConflict = errors.New("record already exists")
)
