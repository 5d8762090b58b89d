package hash

import (
	"testing"

	"github.com/cespare/xxhash"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/voxel/types"
)

func TestSum64ZeroSeedIsPlainXXHash(t *testing.T) {
	requireT := require.New(t)

	data := []byte("octree")
	requireT.Equal(xxhash.Sum64(data), Sum64(data, 0))
}

func TestSum64Deterministic(t *testing.T) {
	requireT := require.New(t)

	data := []byte{0x01, 0x02, 0x03, 0x04}
	requireT.Equal(Sum64(data, 7), Sum64(data, 7))
	requireT.NotEqual(Sum64(data, 7), Sum64(data, 8))
	requireT.NotEqual(Sum64(data, 7), Sum64(data, 0))
}

func TestKey(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(Key[uint64](10, 3), Key[uint64](10, 3))
	requireT.NotEqual(Key[uint64](10, 3), Key[uint64](11, 3))
}

func TestLeafFingerprintDependsOnLevel(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(Leaf(5, 2, 0), Leaf(5, 2, 0))
	requireT.NotEqual(Leaf(5, 2, 0), Leaf(5, 3, 0))
	requireT.NotEqual(Leaf(5, 2, 0), Leaf(6, 2, 0))
	requireT.NotEqual(Leaf(5, 2, 0), Leaf(5, 2, 1))
}

func TestBranchFingerprint(t *testing.T) {
	requireT := require.New(t)

	var children [types.ChildCount]types.Fingerprint
	for i := range children {
		children[i] = Leaf(types.MaterialID(i%2+1), 0, 0)
	}

	fp := Branch(children, 1, 0)
	requireT.Equal(fp, Branch(children, 1, 0))
	requireT.NotEqual(fp, Branch(children, 2, 0))

	children[0], children[1] = children[1], children[0]
	requireT.NotEqual(fp, Branch(children, 1, 0))
}

func TestLeafAndBranchDiffer(t *testing.T) {
	requireT := require.New(t)

	var children [types.ChildCount]types.Fingerprint
	requireT.NotEqual(Leaf(0, 1, 0), Branch(children, 1, 0))
}
