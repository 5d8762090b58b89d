package alloc

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/voxel/types"
)

func TestAllocateGrows(t *testing.T) {
	requireT := require.New(t)

	a := NewArena(Config{})
	for i := range 10 {
		index, err := a.Allocate(types.Leaf(types.MaterialID(i)))
		requireT.NoError(err)
		requireT.Equal(types.NodeIndex(i), index)
	}

	requireT.EqualValues(10, a.Len())
	requireT.EqualValues(10, a.Live())
	requireT.EqualValues(0, a.Free())
	for i := range 10 {
		requireT.Equal(types.MaterialID(i), a.Node(types.NodeIndex(i)).Material)
	}
}

func TestDeallocatedSlotsAreReused(t *testing.T) {
	requireT := require.New(t)

	a := NewArena(Config{})
	for range 5 {
		_, err := a.Allocate(types.Leaf(1))
		requireT.NoError(err)
	}

	a.Deallocate(1)
	a.Deallocate(3)
	requireT.False(a.Valid(1))
	requireT.False(a.Valid(3))
	requireT.True(a.Valid(2))
	requireT.EqualValues(3, a.Live())
	requireT.EqualValues(2, a.Free())

	index, err := a.Allocate(types.Leaf(7))
	requireT.NoError(err)
	requireT.Equal(types.NodeIndex(3), index)

	index, err = a.Allocate(types.Leaf(8))
	requireT.NoError(err)
	requireT.Equal(types.NodeIndex(1), index)

	index, err = a.Allocate(types.Leaf(9))
	requireT.NoError(err)
	requireT.Equal(types.NodeIndex(5), index)

	requireT.EqualValues(6, a.Len())
	requireT.Equal(types.MaterialID(7), a.Node(3).Material)
}

func TestAllocationFailure(t *testing.T) {
	requireT := require.New(t)

	a := NewArena(Config{MaxNodes: 3})
	for range 3 {
		_, err := a.Allocate(types.Leaf(1))
		requireT.NoError(err)
	}
	requireT.EqualValues(0, a.Available())
	requireT.True(errors.Is(a.Reserve(1), types.ErrAllocationFailure))

	_, err := a.Allocate(types.Leaf(1))
	requireT.True(errors.Is(err, types.ErrAllocationFailure))

	a.Deallocate(0)
	requireT.NoError(a.Reserve(1))
	_, err = a.Allocate(types.Leaf(1))
	requireT.NoError(err)
}

func TestFreeNodeCantBeAllocated(t *testing.T) {
	requireT := require.New(t)

	a := NewArena(Config{})
	_, err := a.Allocate(types.Node{})
	requireT.Error(err)
}

func TestCompact(t *testing.T) {
	requireT := require.New(t)

	a := NewArena(Config{})
	leaf1, err := a.Allocate(types.Leaf(1))
	requireT.NoError(err)
	garbage, err := a.Allocate(types.Leaf(9))
	requireT.NoError(err)
	leaf2, err := a.Allocate(types.Leaf(2))
	requireT.NoError(err)
	root, err := a.Allocate(types.Branch([types.ChildCount]types.NodeIndex{
		leaf1, leaf2, leaf1, leaf2, leaf1, leaf2, leaf1, leaf2,
	}))
	requireT.NoError(err)
	a.Deallocate(garbage)

	remap := a.Compact([]types.NodeIndex{leaf2, leaf1, root})
	requireT.Equal([]types.NodeIndex{1, math.MaxUint32, 0, 2}, remap)
	requireT.EqualValues(3, a.Len())
	requireT.EqualValues(0, a.Free())

	n := a.Node(2)
	requireT.True(n.IsBranch())
	requireT.Equal([types.ChildCount]types.NodeIndex{1, 0, 1, 0, 1, 0, 1, 0}, n.Children)
	requireT.Equal(types.MaterialID(2), a.Node(0).Material)
	requireT.Equal(types.MaterialID(1), a.Node(1).Material)
}

func TestIndex(t *testing.T) {
	requireT := require.New(t)

	i := NewIndex()
	never := func(types.NodeIndex) bool { return false }
	always := func(types.NodeIndex) bool { return true }

	_, found, collided := i.Find(10, 0, always)
	requireT.False(found)
	requireT.False(collided)

	i.Insert(10, 0, 5)
	node, found, collided := i.Find(10, 0, always)
	requireT.True(found)
	requireT.False(collided)
	requireT.Equal(types.NodeIndex(5), node)

	_, found, collided = i.Find(10, 0, never)
	requireT.False(found)
	requireT.True(collided)

	_, found, collided = i.Find(10, 1, always)
	requireT.False(found)
	requireT.True(collided)

	i.Insert(10, 0, 6)
	node, found, _ = i.Find(10, 0, func(candidate types.NodeIndex) bool { return candidate == 5 })
	requireT.True(found)
	requireT.Equal(types.NodeIndex(5), node)
	requireT.EqualValues(2, i.Len())

	i.Reset()
	requireT.EqualValues(0, i.Len())
	_, found, collided = i.Find(10, 0, always)
	requireT.False(found)
	requireT.False(collided)
}
