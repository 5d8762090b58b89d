package octree

import (
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/types"
)

// Lookup returns material of the voxel at point p, which must lie inside the box covered by root.
func Lookup(arena *alloc.Arena, root types.NodeIndex, box types.Box, level uint8, p types.Vector) types.MaterialID {
	index := root
	for {
		node := arena.Node(index)
		if !node.IsBranch() || level == 0 {
			return node.Material
		}

		octant := Octant(box, level, p)
		box = ChildBox(box, level, octant)
		level--
		index = node.Children[octant]
	}
}
