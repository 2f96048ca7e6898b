package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup predicate.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)
