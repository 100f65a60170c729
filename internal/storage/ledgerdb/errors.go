package ledgerdb

import "errors"

var (
	// ErrDBClosed is returned when operating on a closed database.
	ErrDBClosed = errors.New("ledgerdb is closed")

	// ErrKeyNotFound is returned when a key doesn't exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnknownBackend is returned by the manager for an unrecognized
	// backend name.
	ErrUnknownBackend = errors.New("unknown ledgerdb backend")
)
