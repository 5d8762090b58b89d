package voxel

import "github.com/outofforest/voxel/types"

// Errors returned by the volume.
var (
	ErrOutOfBounds       = types.ErrOutOfBounds
	ErrCorruptData       = types.ErrCorruptData
	ErrAllocationFailure = types.ErrAllocationFailure
	ErrFileNotFound      = types.ErrFileNotFound
)
