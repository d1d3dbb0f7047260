package repository

import "errors"

var (
	// ErrInvalidArgument indicates the caller supplied an empty identifier or a negative TTL.
	ErrInvalidArgument = errors.New("repository: invalid argument")
	// ErrBackendUnreachable indicates the backing store could not be reached.
	ErrBackendUnreachable = errors.New("repository: backend unreachable")
)
