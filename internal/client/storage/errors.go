package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrCacheEmpty indicates that the local mirror has never been filled
	ErrCacheEmpty = errors.New("local cache is empty")
)
