package packing

import "errors"

// Packing errors.
var (
	ErrUnknownArch   = errors.New("unknown architecture")
	ErrShortInput    = errors.New("input too short")
	ErrOverflow      = errors.New("value does not fit word size")
	ErrUnsupported   = errors.New("unsupported word size")
	ErrOverlap       = errors.New("values in flat overlap")
	ErrUnflattenable = errors.New("value cannot be flattened")
)
