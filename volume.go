package voxel

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/merge"
	"github.com/outofforest/voxel/octree"
	"github.com/outofforest/voxel/persistent"
	"github.com/outofforest/voxel/types"
)

// Stats describes storage state of the volume.
type Stats struct {
	LiveNodes           uint64
	FreeNodes           uint64
	IndexEntries        uint64
	CollisionMismatches uint64
	Merges              uint64
}

// New creates empty volume. All the voxels are set to Empty material.
func New(config Config) (*Volume, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	v := newVolume(config)
	root, err := v.arena.Allocate(types.Leaf(types.Empty))
	if err != nil {
		return nil, err
	}
	v.root = root
	return v, nil
}

// Open loads volume from file.
func Open(ctx context.Context, path string, config Config) (*Volume, error) {
	return Load(ctx, persistent.NewFileStore(path), config)
}

// Load loads volume from store. Edge length and origin are taken from the stored image.
func Load(ctx context.Context, store persistent.Store, config Config) (*Volume, error) {
	image, release, err := store.Read()
	if err != nil {
		return nil, err
	}
	defer release()

	header, nodes, err := persistent.Decode(image)
	if err != nil {
		return nil, err
	}

	config.EdgeLength = header.EdgeLength
	config.Origin = header.Origin
	if err := config.validate(); err != nil {
		return nil, errors.Wrap(types.ErrCorruptData, err.Error())
	}

	v := newVolume(config)
	root, stats, err := v.engine.Load(ctx, nodes, header.Root, header.UnitDepth)
	if err != nil {
		return nil, err
	}
	v.root = root
	v.stats.CollisionMismatches = stats.CollisionMismatches

	logger.Get(ctx).Info("Volume loaded",
		zap.Uint32("edgeLength", config.EdgeLength),
		zap.Int32s("origin", []int32{config.Origin.X, config.Origin.Y, config.Origin.Z}),
		zap.Uint64("storedNodes", header.NodeCount),
		zap.Uint64("liveNodes", stats.LiveNodes))

	return v, nil
}

func newVolume(config Config) *Volume {
	arena := alloc.NewArena(alloc.Config{MaxNodes: config.MaxNodes})
	return &Volume{
		config: config,
		arena:  arena,
		engine: merge.New(merge.Config{
			Arena: arena,
			Seed:  config.Seed,
		}),
		region: types.Cube(config.Origin, config.EdgeLength),
		depth:  config.UnitDepth(),
	}
}

// Volume is a cubical grid of voxels stored as octree whose identical subtrees are shared.
// Volume is not safe for concurrent use, except for read-only queries executed concurrently with each other.
type Volume struct {
	config Config
	arena  *alloc.Arena
	engine *merge.Engine
	root   types.NodeIndex
	region types.Box
	depth  uint8
	stats  Stats
}

// Region returns the region covered by the volume.
func (v *Volume) Region() types.Box {
	return v.region
}

// EdgeLength returns edge length of the region.
func (v *Volume) EdgeLength() uint32 {
	return v.config.EdgeLength
}

// UnitDepth returns depth of unit voxels in the tree.
func (v *Volume) UnitDepth() uint8 {
	return v.depth
}

// GetVoxel returns material of the voxel.
func (v *Volume) GetVoxel(x, y, z int32) (types.MaterialID, error) {
	p := types.Vector{X: x, Y: y, Z: z}
	if !v.region.Contains(p) {
		return 0, errors.Wrapf(types.ErrOutOfBounds, "voxel (%d, %d, %d) is outside %v", x, y, z, v.region)
	}
	return octree.Lookup(v.arena, v.root, v.region, v.depth, p), nil
}

// SetVoxel sets material of the voxel. Setting the material the voxel already has is a no-op.
func (v *Volume) SetVoxel(x, y, z int32, material types.MaterialID) error {
	p := types.Vector{X: x, Y: y, Z: z}
	if !v.region.Contains(p) {
		return errors.Wrapf(types.ErrOutOfBounds, "voxel (%d, %d, %d) is outside %v", x, y, z, v.region)
	}
	if octree.Lookup(v.arena, v.root, v.region, v.depth, p) == material {
		return nil
	}
	return v.fill(types.Point(p), material)
}

// Fill sets material of all the voxels inside the box. Box must lie inside the region.
func (v *Volume) Fill(box types.Box, material types.MaterialID) error {
	if box.Empty() {
		return errors.Errorf("box %v is empty", box)
	}
	if !v.region.ContainsBox(box) {
		return errors.Wrapf(types.ErrOutOfBounds, "box %v is outside %v", box, v.region)
	}
	return v.fill(box, material)
}

// Generate sets every voxel of the box to the material returned by fn. The box is processed in slices along z axis
// and merge is executed after every mergeEvery slices. Zero mergeEvery disables intermediate merges.
func (v *Volume) Generate(
	ctx context.Context,
	box types.Box,
	fn func(x, y, z int32) types.MaterialID,
	mergeEvery uint32,
) error {
	if box.Empty() {
		return errors.Errorf("box %v is empty", box)
	}
	if !v.region.ContainsBox(box) {
		return errors.Wrapf(types.ErrOutOfBounds, "box %v is outside %v", box, v.region)
	}

	log := logger.Get(ctx)
	var slices uint32
	for z := int64(box.Lower.Z); z <= int64(box.Upper.Z); z++ {
		for y := int64(box.Lower.Y); y <= int64(box.Upper.Y); y++ {
			for x := int64(box.Lower.X); x <= int64(box.Upper.X); x++ {
				if err := v.SetVoxel(int32(x), int32(y), int32(z), fn(int32(x), int32(y), int32(z))); err != nil {
					return err
				}
			}
		}

		slices++
		if mergeEvery > 0 && slices%mergeEvery == 0 {
			stats := v.Merge(ctx)
			log.Debug("Slices generated",
				zap.Int64("z", z),
				zap.Uint32("slices", slices),
				zap.Uint64("liveNodes", stats.LiveNodes))
		}
	}
	return nil
}

// ComputeBounds returns the smallest box containing all the voxels whose material satisfies the predicate.
// False is returned if there are no such voxels.
func (v *Volume) ComputeBounds(predicate func(material types.MaterialID) bool) (types.Box, bool) {
	var bounds types.Box
	var found bool

	octree.Walk(v.arena, v.root, v.region, v.depth, octree.Visitor{
		Enter: func(visit octree.Visit) bool {
			if found && bounds.ContainsBox(visit.Box) {
				return false
			}
			if visit.Node.IsBranch() {
				return true
			}
			if predicate(visit.Node.Material) {
				if found {
					bounds = bounds.Extend(visit.Box)
				} else {
					bounds = visit.Box
					found = true
				}
			}
			return false
		},
	})

	return bounds, found
}

// Traverse walks the octree depth-first. Enter may prune any subtree by returning false.
// Visitor must not modify the volume.
func (v *Volume) Traverse(visitor octree.Visitor) {
	octree.Walk(v.arena, v.root, v.region, v.depth, visitor)
}

// Merge deduplicates identical subtrees and reclaims unused nodes.
func (v *Volume) Merge(ctx context.Context) merge.Stats {
	root, stats := v.engine.Merge(ctx, v.root, v.depth)
	v.root = root
	v.stats.Merges++
	v.stats.CollisionMismatches += stats.CollisionMismatches
	return stats
}

// Save merges the volume and stores it in the file.
func (v *Volume) Save(ctx context.Context, path string) error {
	return v.SaveTo(ctx, persistent.NewFileStore(path))
}

// SaveTo merges the volume and writes it to the store.
func (v *Volume) SaveTo(ctx context.Context, store persistent.Store) error {
	v.Merge(ctx)

	// After merge nodes are stored densely, children before parents.
	image, err := persistent.Encode(persistent.Header{
		UnitDepth:  v.depth,
		EdgeLength: v.config.EdgeLength,
		Codec:      v.config.Codec,
		Origin:     v.config.Origin,
		Root:       v.root,
	}, v.arena.Nodes())
	if err != nil {
		return err
	}
	if err := store.Write(image); err != nil {
		return err
	}

	logger.Get(ctx).Info("Volume saved",
		zap.Uint64("nodes", v.arena.Live()),
		zap.Int("size", len(image)),
		zap.Stringer("codec", v.config.Codec))
	return nil
}

// Stats returns storage statistics.
func (v *Volume) Stats() Stats {
	stats := v.stats
	stats.LiveNodes = v.arena.Live()
	stats.FreeNodes = v.arena.Free()
	stats.IndexEntries = v.arena.Index().Len()
	return stats
}
