package alloc

import (
	"math"

	"github.com/pkg/errors"

	"github.com/outofforest/voxel/types"
)

// DefaultMaxNodes is the capacity used when config does not set one.
const DefaultMaxNodes = math.MaxUint32

// Config stores configuration of arena.
type Config struct {
	// MaxNodes is the maximum number of slots the arena may grow to.
	MaxNodes uint64
}

// NewArena creates node arena.
func NewArena(config Config) *Arena {
	if config.MaxNodes == 0 || config.MaxNodes > DefaultMaxNodes {
		config.MaxNodes = DefaultMaxNodes
	}
	return &Arena{
		config: config,
		index:  NewIndex(),
	}
}

// Arena owns all the nodes of one volume. Nodes are addressed by indices only.
// Arena is not safe for concurrent modification.
type Arena struct {
	config Config
	nodes  []types.Node
	free   Pool
	index  *Index
}

// Node returns node stored under index. Returned pointer is valid until next allocation.
func (a *Arena) Node(index types.NodeIndex) *types.Node {
	return &a.nodes[index]
}

// Valid returns true if index points to allocated node.
func (a *Arena) Valid(index types.NodeIndex) bool {
	return uint64(index) < uint64(len(a.nodes)) && a.nodes[index].State != types.StateFree
}

// Allocate stores node and returns its index. Reclaimed slots are reused before the store grows.
func (a *Arena) Allocate(node types.Node) (types.NodeIndex, error) {
	if node.State == types.StateFree {
		return 0, errors.New("free node can't be allocated")
	}

	if index, ok := a.free.Allocate(); ok {
		a.nodes[index] = node
		return index, nil
	}

	if uint64(len(a.nodes)) >= a.config.MaxNodes {
		return 0, errors.Wrapf(types.ErrAllocationFailure, "arena is full, %d nodes allocated", len(a.nodes))
	}

	a.nodes = append(a.nodes, node)
	return types.NodeIndex(len(a.nodes) - 1), nil
}

// Deallocate marks slot as free. Caller guarantees that nothing references the index anymore.
func (a *Arena) Deallocate(index types.NodeIndex) {
	a.nodes[index] = types.Node{}
	a.free.Deallocate(index)
}

// Available returns number of nodes which might be allocated before arena is full.
func (a *Arena) Available() uint64 {
	return a.free.Len() + a.config.MaxNodes - uint64(len(a.nodes))
}

// Reserve verifies that n nodes might be allocated.
func (a *Arena) Reserve(n uint64) error {
	if available := a.Available(); available < n {
		return errors.Wrapf(types.ErrAllocationFailure, "%d nodes requested, %d available", n, available)
	}
	return nil
}

// Len returns number of slots, both live and free.
func (a *Arena) Len() uint64 {
	return uint64(len(a.nodes))
}

// Live returns number of allocated nodes.
func (a *Arena) Live() uint64 {
	return uint64(len(a.nodes)) - a.free.Len()
}

// Free returns number of reclaimed slots waiting for reuse.
func (a *Arena) Free() uint64 {
	return a.free.Len()
}

// Nodes returns the backing store. Slots of free nodes have StateFree.
func (a *Arena) Nodes() []types.Node {
	return a.nodes
}

// Index returns fingerprint index used to deduplicate subtrees.
func (a *Arena) Index() *Index {
	return a.index
}

// Compact rebuilds the store so it contains only nodes listed in order, placed densely in that order.
// Child references are rewritten. Returned slice maps old index to the new one, nodes not present in order are
// dropped and map to math.MaxUint32. All previously obtained indices are invalidated.
func (a *Arena) Compact(order []types.NodeIndex) []types.NodeIndex {
	remap := make([]types.NodeIndex, len(a.nodes))
	for i := range remap {
		remap[i] = math.MaxUint32
	}
	for newIndex, oldIndex := range order {
		remap[oldIndex] = types.NodeIndex(newIndex)
	}

	nodes := make([]types.Node, 0, len(order))
	for _, oldIndex := range order {
		node := a.nodes[oldIndex]
		if node.State == types.StateBranch {
			for i, child := range node.Children {
				node.Children[i] = remap[child]
			}
		}
		nodes = append(nodes, node)
	}

	a.nodes = nodes
	a.free.Reset()
	return remap
}

// Reset deallocates all the nodes.
func (a *Arena) Reset() {
	a.nodes = a.nodes[:0]
	a.free.Reset()
	a.index.Reset()
}
