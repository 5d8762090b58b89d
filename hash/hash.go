package hash

import (
	"github.com/cespare/xxhash"

	"github.com/outofforest/photon"
	"github.com/outofforest/voxel/types"
)

// Sum64 computes seeded hash of the data.
// Seed is hashed as a prefix of the data, so zero seed gives the plain xxhash of the data.
func Sum64(data []byte, seed uint64) uint64 {
	if seed == 0 {
		return xxhash.Sum64(data)
	}

	d := xxhash.New()
	_, _ = d.Write(photon.NewFromValue(&seed).B)
	_, _ = d.Write(data)
	return d.Sum64()
}

// Key computes seeded hash of a fixed-size value. It must be used only with types not containing pointers.
func Key[T comparable](value T, seed uint64) uint64 {
	return Sum64(photon.NewFromValue[T](&value).B, seed)
}

type leafInput struct {
	Level    uint8
	State    types.State
	Material types.MaterialID
	_        [4]byte
}

type branchInput struct {
	Level    uint8
	State    types.State
	_        [6]byte
	Children [types.ChildCount]types.Fingerprint
}

// Leaf computes fingerprint of uniform node at the level.
func Leaf(material types.MaterialID, level uint8, seed uint64) types.Fingerprint {
	return types.Fingerprint(Key(leafInput{
		Level:    level,
		State:    types.StateLeaf,
		Material: material,
	}, seed))
}

// Branch computes fingerprint of branch node at the level from fingerprints of its children.
func Branch(children [types.ChildCount]types.Fingerprint, level uint8, seed uint64) types.Fingerprint {
	return types.Fingerprint(Key(branchInput{
		Level:    level,
		State:    types.StateBranch,
		Children: children,
	}, seed))
}
