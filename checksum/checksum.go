package checksum

import (
	"github.com/zeebo/blake3"

	"github.com/outofforest/voxel/types"
)

// Sum computes checksum of the data.
func Sum(data []byte) [types.ChecksumLength]byte {
	return blake3.Sum256(data)
}

// Verify returns true if checksum matches the data.
func Verify(data []byte, sum []byte) bool {
	if len(sum) != types.ChecksumLength {
		return false
	}
	return [types.ChecksumLength]byte(sum) == Sum(data)
}
