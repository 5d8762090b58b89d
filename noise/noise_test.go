package noise

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/voxel/types"
)

func TestValueIsDeterministic(t *testing.T) {
	requireT := require.New(t)

	f1 := New(Config{Octaves: 5, Seed: 1})
	f2 := New(Config{Octaves: 5, Seed: 1})
	f3 := New(Config{Octaves: 5, Seed: 2})

	var differs bool
	for z := int32(-20); z < 20; z += 3 {
		for y := int32(-20); y < 20; y += 3 {
			for x := int32(-20); x < 20; x += 3 {
				v := f1.Value(x, y, z)
				requireT.GreaterOrEqual(v, 0.0)
				requireT.Less(v, 1.0)
				requireT.Equal(v, f2.Value(x, y, z))
				if v != f3.Value(x, y, z) {
					differs = true
				}
			}
		}
	}
	requireT.True(differs)
}

func TestValueIsContinuous(t *testing.T) {
	requireT := require.New(t)

	// With single octave and long period neighbouring voxels have similar values.
	f := New(Config{Octaves: 1, Period: 64})
	for x := range int32(256) {
		requireT.InDelta(f.Value(x, 7, 3), f.Value(x+1, 7, 3), 0.05)
	}

	// Lattice points carry the random values directly.
	requireT.Equal(f.random(1, 0, 0, 0), f.Value(64, 0, 0))
}

func TestMaterial(t *testing.T) {
	requireT := require.New(t)

	f := New(Config{Octaves: 4, Seed: 7, Threshold: 0.5, Materials: 3})
	counts := map[types.MaterialID]int{}
	for z := range int32(32) {
		for y := range int32(32) {
			for x := range int32(32) {
				m := f.Material(x, y, z)
				requireT.LessOrEqual(m, types.MaterialID(3))
				if m == types.Empty {
					requireT.Less(f.Value(x, y, z), 0.5)
				} else {
					requireT.GreaterOrEqual(f.Value(x, y, z), 0.5)
				}
				counts[m]++
			}
		}
	}
	requireT.Positive(counts[types.Empty])
	requireT.Positive(counts[1])

	solid := New(Config{Threshold: -1})
	requireT.NotEqual(types.Empty, solid.Material(5, 5, 5))

	empty := New(Config{Threshold: 1})
	requireT.Equal(types.Empty, empty.Material(5, 5, 5))
}
