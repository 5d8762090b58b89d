package octree

import (
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/types"
)

// Equal compares two subtrees structurally. Physical layout is ignored, so shared and duplicated subtrees
// are equal as long as they describe the same content with the same shape.
func Equal(arena *alloc.Arena, a, b types.NodeIndex) bool {
	stack := [][2]types.NodeIndex{{a, b}}
	for len(stack) > 0 {
		pair := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if pair[0] == pair[1] {
			continue
		}

		nodeA := arena.Node(pair[0])
		nodeB := arena.Node(pair[1])
		if nodeA.State != nodeB.State {
			return false
		}
		if nodeA.IsLeaf() {
			if nodeA.Material != nodeB.Material {
				return false
			}
			continue
		}
		for i := range types.ChildCount {
			stack = append(stack, [2]types.NodeIndex{nodeA.Children[i], nodeB.Children[i]})
		}
	}
	return true
}

// Collapsible returns material if all the children of the branch are leaves of the same material.
func Collapsible(arena *alloc.Arena, node *types.Node) (types.MaterialID, bool) {
	first := arena.Node(node.Children[0])
	if !first.IsLeaf() {
		return 0, false
	}
	for _, child := range node.Children[1:] {
		c := arena.Node(child)
		if !c.IsLeaf() || c.Material != first.Material {
			return 0, false
		}
	}
	return first.Material, true
}
