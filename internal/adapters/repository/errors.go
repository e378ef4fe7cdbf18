package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound = errors.New("item not found")
	ErrConflict = errors.New("item with this id already exists")
)
