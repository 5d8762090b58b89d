package types

const (
	// ChecksumLength is the number of bytes taken by image checksum.
	ChecksumLength = 32

	// ChildCount is the number of children of a branch node.
	ChildCount = 8

	// MaterialBits is the width of material identifier. Changing it breaks the file format.
	MaterialBits = 16

	// MaxUnitDepth is the deepest tree supported. Edge length of the volume is 1 << depth.
	MaxUnitDepth = 31
)

// MaterialID identifies the content class of a voxel.
type MaterialID uint16

// Empty is the background material.
const Empty MaterialID = 0

// State enumerates possible node states.
type State byte

const (
	// StateFree means slot is free.
	StateFree State = iota

	// StateLeaf means node represents uniform region.
	StateLeaf

	// StateBranch means node is subdivided into 8 children.
	StateBranch
)

type (
	// NodeIndex is the index of a node inside the arena.
	NodeIndex uint32

	// Fingerprint is the hash summarizing content of a subtree.
	Fingerprint uint64
)

// Node is a tagged octree node. Leaf carries Material, branch carries Children.
// Octants are numbered so bit 0 selects upper x half, bit 1 upper y half and bit 2 upper z half.
type Node struct {
	Children    [ChildCount]NodeIndex
	Fingerprint Fingerprint
	Material    MaterialID
	State       State

	// Canonical is set on nodes processed by merge. Such nodes might be shared and must not be modified.
	Canonical bool
}

// Leaf returns uniform node of the material.
func Leaf(material MaterialID) Node {
	return Node{
		State:    StateLeaf,
		Material: material,
	}
}

// Branch returns branch node pointing to children.
func Branch(children [ChildCount]NodeIndex) Node {
	return Node{
		State:    StateBranch,
		Children: children,
	}
}

// IsLeaf returns true if node is uniform.
func (n *Node) IsLeaf() bool {
	return n.State == StateLeaf
}

// IsBranch returns true if node is subdivided.
func (n *Node) IsBranch() bool {
	return n.State == StateBranch
}
