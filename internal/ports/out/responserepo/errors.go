package responserepo

import "errors"

var (
	// ErrNotFound indicates no row exists for the requested key.
	ErrNotFound = errors.New("response not found")

	// ErrUnavailable indicates the backing store could not be reached.
	// Adapters wrap I/O failures with it so callers can tell a storage outage
	// from an application error.
	ErrUnavailable = errors.New("response storage unavailable")
)
