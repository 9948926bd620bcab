package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Run Errors.
	// Every one of these aborts the whole run; nothing in the core retries.

	// ErrConfiguration indicates the run cannot start because configuration
	// is missing or inconsistent (e.g. a connection string without a database name).
	ErrConfiguration = errors.New("configuration error")

	// ErrFetch indicates a day's logs could not be retrieved from the source.
	ErrFetch = errors.New("fetch failed")

	// ErrStorage indicates the storage backend rejected a write or read.
	ErrStorage = errors.New("storage failed")

	// ErrInterrupted indicates the run was stopped by an external signal.
	// The in-flight day is not recorded and will be retried on the next run.
	ErrInterrupted = errors.New("interrupted")
)
