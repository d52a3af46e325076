package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a requested run does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a run whose ID exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for nil or incomplete records.
	ErrInvalidInput = errors.New("invalid input")
)
