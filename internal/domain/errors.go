package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrColumnMissing marks a query that referenced a column the store does not have.
	ErrColumnMissing     = errors.New("column does not exist")
	ErrHotelsQueryFailed = errors.New("hotels query failed")
	ErrMissingEnv        = errors.New("missing required environment")
)
