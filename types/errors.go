package types

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds is returned when coordinates lie outside the volume.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrCorruptData is returned when persisted volume is malformed or inconsistent.
	ErrCorruptData = errors.New("corrupt data")

	// ErrAllocationFailure is returned when arena can't grow.
	ErrAllocationFailure = errors.New("allocation failed")

	// ErrFileNotFound is returned when volume file does not exist.
	ErrFileNotFound = errors.New("file not found")
)
