package octree

import "github.com/outofforest/voxel/types"

// EdgeLength returns edge length of the node region at the level.
func EdgeLength(level uint8) uint32 {
	return 1 << level
}

// NodeBox returns region covered by the node at the level with its lower corner at origin.
func NodeBox(origin types.Vector, level uint8) types.Box {
	return types.Cube(origin, EdgeLength(level))
}

// Octant returns the child octant of the node region containing the point.
// Level must be greater than 0 and the point must lie inside the box.
func Octant(box types.Box, level uint8, p types.Vector) uint8 {
	half := int64(1) << (level - 1)
	var octant uint8
	if int64(p.X)-int64(box.Lower.X) >= half {
		octant |= 0x01
	}
	if int64(p.Y)-int64(box.Lower.Y) >= half {
		octant |= 0x02
	}
	if int64(p.Z)-int64(box.Lower.Z) >= half {
		octant |= 0x04
	}
	return octant
}

// ChildBox returns region of the child octant of the node at the level.
func ChildBox(box types.Box, level uint8, octant uint8) types.Box {
	half := int64(1) << (level - 1)
	lower := box.Lower
	if octant&0x01 != 0 {
		lower.X = int32(int64(lower.X) + half)
	}
	if octant&0x02 != 0 {
		lower.Y = int32(int64(lower.Y) + half)
	}
	if octant&0x04 != 0 {
		lower.Z = int32(int64(lower.Z) + half)
	}
	return NodeBox(lower, level-1)
}
