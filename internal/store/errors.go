package store

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation would violate a
	// uniqueness or ownership rule: duplicate name, deleting a
	// category with children, deleting an account with transactions.
	ErrConflict = errors.New("conflict")
)
