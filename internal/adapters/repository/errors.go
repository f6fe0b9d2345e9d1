package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound is returned for unknown users.
	ErrNotFound = errors.New("user not found")
	// ErrStoreUnavailable wraps every failure to read from or write to the
	// backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidFixture is returned when a seed fixture cannot be loaded.
	ErrInvalidFixture = errors.New("invalid fixture")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown store driver")
)
