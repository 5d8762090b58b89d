package voxel

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/outofforest/voxel/persistent"
	"github.com/outofforest/voxel/types"
)

const (
	// DefaultEdgeLength is the edge length of volume created with default config.
	DefaultEdgeLength = 4096

	// MaxEdgeLength is the largest supported edge length.
	MaxEdgeLength = 1 << types.MaxUnitDepth
)

// Config stores volume configuration.
type Config struct {
	// EdgeLength is the edge of the cubical region. It must be a power of two.
	// When volume is loaded, the value is taken from the file.
	EdgeLength uint32

	// Origin is the lower corner of the region. When volume is loaded, the value is taken from the file.
	Origin types.Vector

	// MaxNodes limits the number of nodes the volume may store. Zero means no limit.
	MaxNodes uint64

	// Seed is mixed into subtree fingerprints.
	Seed uint64

	// Codec is used to encode node table on save.
	Codec persistent.Codec
}

// DefaultConfig returns default volume configuration.
func DefaultConfig() Config {
	return Config{
		EdgeLength: DefaultEdgeLength,
		Codec:      persistent.CodecZstd,
	}
}

func (c Config) validate() error {
	if c.EdgeLength == 0 || bits.OnesCount32(c.EdgeLength) != 1 {
		return errors.Errorf("edge length %d is not a power of two", c.EdgeLength)
	}
	if c.EdgeLength > MaxEdgeLength {
		return errors.Errorf("edge length %d exceeds maximum %d", c.EdgeLength, MaxEdgeLength)
	}
	for _, coordinate := range []int32{c.Origin.X, c.Origin.Y, c.Origin.Z} {
		if int64(coordinate)+int64(c.EdgeLength)-1 > math.MaxInt32 {
			return errors.Errorf("region of edge length %d at %v doesn't fit coordinate space", c.EdgeLength, c.Origin)
		}
	}
	if c.MaxNodes > math.MaxUint32 {
		return errors.Errorf("max nodes %d exceeds maximum %d", c.MaxNodes, uint64(math.MaxUint32))
	}
	if !c.Codec.Valid() {
		return errors.Errorf("unknown codec %d", c.Codec)
	}
	return nil
}

// UnitDepth returns depth of unit voxels in the tree.
func (c Config) UnitDepth() uint8 {
	return uint8(bits.TrailingZeros32(c.EdgeLength))
}
