package octree

import (
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/types"
)

// Visit describes the node currently visited by the walk.
type Visit struct {
	Index types.NodeIndex
	Node  types.Node
	Box   types.Box
	Level uint8

	// Parent and Octant identify the slot referencing the node. They are meaningless if Root is true.
	Parent types.NodeIndex
	Octant uint8
	Root   bool
}

// Visitor receives nodes during the walk.
type Visitor struct {
	// Enter is called before children are visited. Returning false prunes the subtree and Leave is not called
	// for the node. Nil Enter descends everywhere.
	Enter func(v Visit) bool

	// Leave is called after all the children have been visited.
	Leave func(v Visit)
}

type frame struct {
	visit   Visit
	entered bool
}

// Walk traverses the tree depth-first starting at root covering the box at the level. Children are visited in
// octant order. Shared nodes are visited once per referencing slot.
func Walk(arena *alloc.Arena, root types.NodeIndex, box types.Box, level uint8, visitor Visitor) {
	stack := make([]frame, 0, 8*int(level)+1)
	stack = append(stack, frame{
		visit: Visit{
			Index: root,
			Box:   box,
			Level: level,
			Root:  true,
		},
	})

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.entered {
			if visitor.Leave != nil {
				visitor.Leave(f.visit)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		f.entered = true
		f.visit.Node = *arena.Node(f.visit.Index)
		if visitor.Enter != nil && !visitor.Enter(f.visit) {
			stack = stack[:len(stack)-1]
			continue
		}

		if !f.visit.Node.IsBranch() || f.visit.Level == 0 {
			continue
		}

		parent := f.visit
		for octant := types.ChildCount - 1; octant >= 0; octant-- {
			stack = append(stack, frame{
				visit: Visit{
					Index:  parent.Node.Children[octant],
					Box:    ChildBox(parent.Box, parent.Level, uint8(octant)),
					Level:  parent.Level - 1,
					Parent: parent.Index,
					Octant: uint8(octant),
				},
			})
		}
	}
}
