package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/logger"
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/octree"
	"github.com/outofforest/voxel/types"
)

// VoxelFunc returns material of the voxel.
type VoxelFunc func(x, y, z int32) (types.MaterialID, error)

// Context returns context carrying logger, cancelled when test finishes.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig)))
	t.Cleanup(cancel)
	return ctx
}

// Checkerboard alternates between materials a and b.
func Checkerboard(a, b types.MaterialID) func(x, y, z int32) types.MaterialID {
	return func(x, y, z int32) types.MaterialID {
		if (x+y+z)%2 == 0 {
			return a
		}
		return b
	}
}

// Pattern returns pseudo-random but deterministic material for each voxel, drawn from the given number of materials.
func Pattern(materials uint16) func(x, y, z int32) types.MaterialID {
	return func(x, y, z int32) types.MaterialID {
		h := uint32(x)*73856093 ^ uint32(y)*19349663 ^ uint32(z)*83492791
		return types.MaterialID(h % uint32(materials))
	}
}

// RequireEquivalent verifies that both sources return the same material for every voxel of the box.
func RequireEquivalent(t require.TestingT, box types.Box, expected, actual VoxelFunc) {
	for z := box.Lower.Z; z <= box.Upper.Z; z++ {
		for y := box.Lower.Y; y <= box.Upper.Y; y++ {
			for x := box.Lower.X; x <= box.Upper.X; x++ {
				e, err := expected(x, y, z)
				require.NoError(t, err)
				a, err := actual(x, y, z)
				require.NoError(t, err)
				if e != a {
					require.Failf(t, "voxels differ", "voxel (%d, %d, %d): expected %d, got %d", x, y, z, e, a)
				}
			}
		}
	}
}

// RequireCollapsed verifies that no branch in the tree has all the children being leaves of the same material.
func RequireCollapsed(t require.TestingT, arena *alloc.Arena, root types.NodeIndex, level uint8) {
	octree.Walk(arena, root, octree.NodeBox(types.Vector{}, level), level, octree.Visitor{
		Enter: func(v octree.Visit) bool {
			if v.Node.IsBranch() {
				_, collapsible := octree.Collapsible(arena, &v.Node)
				require.False(t, collapsible, "node %d at level %d is not collapsed", v.Index, v.Level)
			}
			return true
		},
	})
}

// RequireCanonical verifies that every distinct subtree is stored once.
func RequireCanonical(t require.TestingT, arena *alloc.Arena, root types.NodeIndex, level uint8) {
	type key struct {
		Level    uint8
		State    types.State
		Material types.MaterialID
		Children [types.ChildCount]types.NodeIndex
	}
	type item struct {
		Index types.NodeIndex
		Level uint8
	}

	seen := map[key]types.NodeIndex{}
	visited := map[types.NodeIndex]bool{}
	stack := []item{{Index: root, Level: level}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[it.Index] {
			continue
		}
		visited[it.Index] = true

		node := arena.Node(it.Index)
		require.True(t, node.Canonical, "node %d is not canonical", it.Index)

		k := key{Level: it.Level, State: node.State}
		if node.IsLeaf() {
			k.Material = node.Material
		} else {
			k.Children = node.Children
			for _, child := range node.Children {
				stack = append(stack, item{Index: child, Level: it.Level - 1})
			}
		}
		if existing, exists := seen[k]; exists {
			require.Failf(t, "duplicated subtree", "nodes %d and %d have the same content", existing, it.Index)
		}
		seen[k] = it.Index
	}
}

// CountReachable returns number of distinct nodes reachable from root.
func CountReachable(arena *alloc.Arena, root types.NodeIndex) uint64 {
	visited := map[types.NodeIndex]bool{}
	stack := []types.NodeIndex{root}
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[index] {
			continue
		}
		visited[index] = true
		if node := arena.Node(index); node.IsBranch() {
			stack = append(stack, node.Children[:]...)
		}
	}
	return uint64(len(visited))
}
