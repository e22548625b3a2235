package repository

import "errors"

var (
	// ErrNotFound is returned by lookups when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by inserts when the id is already taken.
	ErrDuplicate = errors.New("duplicate id")
)
