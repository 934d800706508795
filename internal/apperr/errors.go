// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")

	// ErrStore marks a failed append/delete against the store of record.
	// The catalog is left unchanged and the operation is not retried.
	ErrStore = errors.New("store error")

	// ErrSourceUnavailable marks a failed load; callers fall back to fixture data.
	ErrSourceUnavailable = errors.New("source unavailable")
)
