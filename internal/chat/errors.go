package chat

import "errors"

var (
	// ErrNotARoom marks an operation referencing a room name outside the
	// startup directory. Callers ignore it; the action has no effect.
	ErrNotARoom = errors.New("not a room")

	// ErrNotFound marks an operation referencing an unknown or evicted
	// message id. Callers ignore it.
	ErrNotFound = errors.New("message not found")

	// ErrDuplicateConnection is an invariant violation: the transport
	// guarantees unique connection ids for the life of the process.
	ErrDuplicateConnection = errors.New("duplicate connection")
)
