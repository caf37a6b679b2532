package tube

import "errors"

// Tube errors.
var (
	// ErrEmptyDelimiter is returned by RecvUntil for a zero-length delimiter.
	ErrEmptyDelimiter = errors.New("empty delimiter")

	// ErrNotDuplicable is returned by Bridge when the transport cannot be duplicated.
	ErrNotDuplicable = errors.New("transport does not support duplication")

	// ErrInvalidCount is returned by RecvExactly for a negative byte count.
	ErrInvalidCount = errors.New("invalid byte count")
)
