package voxel

import (
	"github.com/outofforest/voxel/octree"
	"github.com/outofforest/voxel/types"
)

// slot identifies the reference to the node, either the root or the child of a branch.
// Pointers into the arena are invalidated by allocation, so slots are addressed by indices.
type slot struct {
	parent types.NodeIndex
	octant uint8
	root   bool
}

func (v *Volume) get(s slot) types.NodeIndex {
	if s.root {
		return v.root
	}
	return v.arena.Node(s.parent).Children[s.octant]
}

func (v *Volume) put(s slot, index types.NodeIndex) {
	if s.root {
		v.root = index
		return
	}
	v.arena.Node(s.parent).Children[s.octant] = index
}

// fill sets material of the voxels inside the target box. Nodes required by the edit are counted first, so the
// volume is left untouched if arena can't provide them.
func (v *Volume) fill(target types.Box, material types.MaterialID) error {
	if err := v.arena.Reserve(v.fillCost(*v.arena.Node(v.root), v.region, v.depth, target, material)); err != nil {
		return err
	}
	v.fillNode(slot{root: true}, v.region, v.depth, target, material)
	return nil
}

// fillCost returns the number of nodes fillNode allocates.
func (v *Volume) fillCost(
	node types.Node,
	box types.Box,
	level uint8,
	target types.Box,
	material types.MaterialID,
) uint64 {
	if node.IsLeaf() && node.Material == material {
		return 0
	}
	if target.ContainsBox(box) {
		if node.Canonical {
			return 1
		}
		return 0
	}

	var cost uint64
	if node.Canonical {
		cost++
	}

	if node.IsLeaf() {
		cost += types.ChildCount
		child := types.Leaf(node.Material)
		for octant := range uint8(types.ChildCount) {
			if childBox := octree.ChildBox(box, level, octant); childBox.Intersects(target) {
				cost += v.fillCost(child, childBox, level-1, target, material)
			}
		}
		return cost
	}

	for octant, child := range node.Children {
		if childBox := octree.ChildBox(box, level, uint8(octant)); childBox.Intersects(target) {
			cost += v.fillCost(*v.arena.Node(child), childBox, level-1, target, material)
		}
	}
	return cost
}

// fillNode applies the fill to the node referenced by the slot. Capacity must be reserved by the caller.
func (v *Volume) fillNode(s slot, box types.Box, level uint8, target types.Box, material types.MaterialID) {
	index := v.get(s)
	node := v.arena.Node(index)
	if node.IsLeaf() && node.Material == material {
		return
	}

	if target.ContainsBox(box) {
		v.replace(s, types.Leaf(material))
		return
	}

	index = v.mutable(s)
	if node = v.arena.Node(index); node.IsLeaf() {
		v.subdivide(index)
	}

	for octant := range uint8(types.ChildCount) {
		if childBox := octree.ChildBox(box, level, octant); childBox.Intersects(target) {
			v.fillNode(slot{parent: index, octant: octant}, childBox, level-1, target, material)
		}
	}

	node = v.arena.Node(index)
	if m, ok := octree.Collapsible(v.arena, node); ok {
		v.releaseChildren(index)
		*v.arena.Node(index) = types.Leaf(m)
	}
}

// mutable returns index of the node referenced by the slot which may be modified in place.
// Canonical node is shared, so its copy is stored in the slot. The shared one is reclaimed by the next merge if
// it becomes unreachable.
func (v *Volume) mutable(s slot) types.NodeIndex {
	index := v.get(s)
	node := *v.arena.Node(index)
	if !node.Canonical {
		return index
	}

	node.Canonical = false
	node.Fingerprint = 0
	index = v.allocate(node)
	v.put(s, index)
	return index
}

// replace stores new node in the slot, reclaiming the exclusively owned part of the previous subtree.
func (v *Volume) replace(s slot, node types.Node) {
	index := v.get(s)
	if v.arena.Node(index).Canonical {
		v.put(s, v.allocate(node))
		return
	}

	v.releaseChildren(index)
	*v.arena.Node(index) = node
}

// subdivide converts exclusively owned leaf into branch of leaves with the same material.
func (v *Volume) subdivide(index types.NodeIndex) {
	leaf := types.Leaf(v.arena.Node(index).Material)
	var children [types.ChildCount]types.NodeIndex
	for i := range children {
		children[i] = v.allocate(leaf)
	}
	*v.arena.Node(index) = types.Branch(children)
}

// releaseChildren reclaims exclusively owned descendants of the node.
// Canonical ones might be shared, they are left for the merge.
func (v *Volume) releaseChildren(index types.NodeIndex) {
	node := v.arena.Node(index)
	if !node.IsBranch() {
		return
	}

	stack := make([]types.NodeIndex, 0, types.ChildCount)
	for _, child := range node.Children {
		if !v.arena.Node(child).Canonical {
			stack = append(stack, child)
		}
	}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node := v.arena.Node(index); node.IsBranch() {
			for _, child := range node.Children {
				if !v.arena.Node(child).Canonical {
					stack = append(stack, child)
				}
			}
		}
		v.arena.Deallocate(index)
	}
}

func (v *Volume) allocate(node types.Node) types.NodeIndex {
	index, err := v.arena.Allocate(node)
	if err != nil {
		// Capacity is reserved before any modification starts.
		panic(err)
	}
	return index
}
