package merge

import (
	"context"

	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/voxel/alloc"
	"github.com/outofforest/voxel/hash"
	"github.com/outofforest/voxel/octree"
	"github.com/outofforest/voxel/types"
)

// LeafFingerprintFunc computes fingerprint of uniform node.
type LeafFingerprintFunc func(material types.MaterialID, level uint8, seed uint64) types.Fingerprint

// BranchFingerprintFunc computes fingerprint of branch node from fingerprints of its children.
type BranchFingerprintFunc func(children [types.ChildCount]types.Fingerprint, level uint8, seed uint64) types.Fingerprint

// Config stores configuration of merge engine.
type Config struct {
	Arena *alloc.Arena
	Seed  uint64

	// LeafFingerprint and BranchFingerprint default to functions from hash package.
	LeafFingerprint   LeafFingerprintFunc
	BranchFingerprint BranchFingerprintFunc
}

// Stats summarizes merge pass.
type Stats struct {
	// Canonicalized is the number of nodes processed by the pass.
	Canonicalized uint64

	// Deduplicated is the number of nodes replaced by existing canonical nodes.
	Deduplicated uint64

	// CollisionMismatches is the number of fingerprint hits rejected by structural comparison.
	CollisionMismatches uint64

	// Reclaimed is the number of nodes released by the pass, including unreachable ones.
	Reclaimed uint64

	// LiveNodes is the number of nodes left in the arena.
	LiveNodes uint64
}

// New creates merge engine.
func New(config Config) *Engine {
	if config.LeafFingerprint == nil {
		config.LeafFingerprint = hash.Leaf
	}
	if config.BranchFingerprint == nil {
		config.BranchFingerprint = hash.Branch
	}
	return &Engine{
		config: config,
	}
}

// Engine deduplicates structurally identical subtrees stored in the arena.
type Engine struct {
	config Config
}

// Merge canonicalizes the tree rooted at root, whose root node covers region at the level.
// Nodes created since previous merge are deduplicated against canonical ones, unreachable nodes are reclaimed and
// the arena is compacted. All the indices obtained before are invalidated, new index of the root is returned.
func (e *Engine) Merge(ctx context.Context, root types.NodeIndex, level uint8) (types.NodeIndex, Stats) {
	var stats Stats
	liveBefore := e.config.Arena.Live()

	root = e.canonicalize(ctx, root, level, &stats)
	root = e.compact(root, level)

	stats.LiveNodes = e.config.Arena.Live()
	stats.Reclaimed = liveBefore - stats.LiveNodes

	logger.Get(ctx).Debug("Octree merged",
		zap.Uint64("canonicalized", stats.Canonicalized),
		zap.Uint64("deduplicated", stats.Deduplicated),
		zap.Uint64("reclaimed", stats.Reclaimed),
		zap.Uint64("liveNodes", stats.LiveNodes),
		zap.Uint64("collisionMismatches", stats.CollisionMismatches))

	return root, stats
}

func (e *Engine) canonicalize(ctx context.Context, root types.NodeIndex, level uint8, stats *Stats) types.NodeIndex {
	arena := e.config.Arena

	// Canonical nodes are already registered in the index, together with their subtrees.
	// Non-canonical nodes are referenced only by their single parent, so the part being processed is a tree.
	octree.Walk(arena, root, octree.NodeBox(types.Vector{}, level), level, octree.Visitor{
		Enter: func(v octree.Visit) bool {
			return !v.Node.Canonical
		},
		Leave: func(v octree.Visit) {
			stats.Canonicalized++

			canonical, deduplicated := e.register(ctx, v.Index, v.Level, stats)
			if !deduplicated {
				return
			}

			if v.Root {
				root = canonical
			} else {
				arena.Node(v.Parent).Children[v.Octant] = canonical
			}
			arena.Deallocate(v.Index)
			stats.Deduplicated++
		},
	})

	return root
}

// register computes fingerprint of the node, whose children must be canonical already, and either finds canonical
// node of the same content or makes this node the canonical one.
func (e *Engine) register(
	ctx context.Context,
	index types.NodeIndex,
	level uint8,
	stats *Stats,
) (types.NodeIndex, bool) {
	arena := e.config.Arena
	node := arena.Node(index)
	fingerprint := e.fingerprint(node, level)

	canonical, found, collided := arena.Index().Find(fingerprint, level, func(candidate types.NodeIndex) bool {
		return sameContent(arena.Node(candidate), node)
	})
	if collided {
		stats.CollisionMismatches++
		logger.Get(ctx).Debug("Fingerprint collision",
			zap.Uint64("fingerprint", uint64(fingerprint)),
			zap.Uint8("level", level),
			zap.Uint32("node", uint32(index)))
	}
	if found {
		return canonical, true
	}

	node.Fingerprint = fingerprint
	node.Canonical = true
	arena.Index().Insert(fingerprint, level, index)
	return index, false
}

func (e *Engine) fingerprint(node *types.Node, level uint8) types.Fingerprint {
	if node.IsLeaf() {
		return e.config.LeafFingerprint(node.Material, level, e.config.Seed)
	}

	var children [types.ChildCount]types.Fingerprint
	for i, child := range node.Children {
		children[i] = e.config.Arena.Node(child).Fingerprint
	}
	return e.config.BranchFingerprint(children, level, e.config.Seed)
}

// sameContent compares nodes whose children are canonical. Canonical nodes are unique per content, so comparing
// child indices is equivalent to comparing the entire subtrees.
func sameContent(a, b *types.Node) bool {
	if a.State != b.State {
		return false
	}
	if a.IsLeaf() {
		return a.Material == b.Material
	}
	return a.Children == b.Children
}

type gcFrame struct {
	index    types.NodeIndex
	level    uint8
	expanded bool
}

// compact keeps only nodes reachable from root, renumbering them in post-order so children precede parents.
func (e *Engine) compact(root types.NodeIndex, level uint8) types.NodeIndex {
	arena := e.config.Arena

	emitted := make([]bool, arena.Len())
	order := make([]types.NodeIndex, 0, arena.Live())
	levels := make([]uint8, 0, arena.Live())

	stack := []gcFrame{{index: root, level: level}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if emitted[f.index] {
			stack = stack[:len(stack)-1]
			continue
		}

		node := arena.Node(f.index)
		if f.expanded || !node.IsBranch() {
			emitted[f.index] = true
			order = append(order, f.index)
			levels = append(levels, f.level)
			stack = stack[:len(stack)-1]
			continue
		}

		f.expanded = true
		childLevel := f.level - 1
		for i := types.ChildCount - 1; i >= 0; i-- {
			if child := node.Children[i]; !emitted[child] {
				stack = append(stack, gcFrame{index: child, level: childLevel})
			}
		}
	}

	remap := arena.Compact(order)

	index := arena.Index()
	index.Reset()
	for i, n := range arena.Nodes() {
		index.Insert(n.Fingerprint, levels[i], types.NodeIndex(i))
	}

	return remap[root]
}
