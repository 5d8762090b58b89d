package merge

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/voxel/octree"
	"github.com/outofforest/voxel/types"
)

// Load imports node table into the empty arena, producing canonical nodes only.
// Children must precede their parents in the table. Nodes unreachable from root are skipped and duplicated
// subtrees are stored once. Index of the root inside the arena is returned.
func (e *Engine) Load(
	ctx context.Context,
	nodes []types.Node,
	root types.NodeIndex,
	level uint8,
) (types.NodeIndex, Stats, error) {
	var stats Stats
	arena := e.config.Arena
	if arena.Len() != 0 {
		return 0, stats, errors.New("nodes can be loaded into empty arena only")
	}
	if uint64(root) >= uint64(len(nodes)) {
		return 0, stats, errors.Wrapf(types.ErrCorruptData, "root index %d out of range", root)
	}

	levels, err := assignLevels(nodes, root, level)
	if err != nil {
		return 0, stats, err
	}

	canonical := make([]types.NodeIndex, len(nodes))
	for i, node := range nodes {
		if levels[i] < 0 {
			continue
		}

		node.Canonical = false
		if node.IsBranch() {
			for j, child := range node.Children {
				node.Children[j] = canonical[child]
			}
			if material, ok := octree.Collapsible(arena, &node); ok {
				return 0, stats, errors.Wrapf(types.ErrCorruptData,
					"node %d is subdivided but all its children are leaves of material %d", i, material)
			}
		}

		index, err := arena.Allocate(node)
		if err != nil {
			return 0, stats, err
		}

		stats.Canonicalized++
		existing, deduplicated := e.register(ctx, index, uint8(levels[i]), &stats)
		if deduplicated {
			arena.Deallocate(index)
			stats.Deduplicated++
			index = existing
		}
		canonical[i] = index
	}

	root = canonical[root]
	if stats.Deduplicated > 0 {
		// Deduplicated slots are free now, compaction makes the arena dense again.
		root = e.compact(root, level)
	}
	stats.LiveNodes = arena.Live()
	stats.Reclaimed = uint64(len(nodes)) - stats.LiveNodes

	logger.Get(ctx).Debug("Node table loaded",
		zap.Int("tableNodes", len(nodes)),
		zap.Uint64("liveNodes", stats.LiveNodes),
		zap.Uint64("deduplicated", stats.Deduplicated),
		zap.Uint64("collisionMismatches", stats.CollisionMismatches))

	return root, stats, nil
}

// assignLevels computes level of each node reachable from root. Unreachable nodes get -1.
func assignLevels(nodes []types.Node, root types.NodeIndex, level uint8) ([]int16, error) {
	levels := make([]int16, len(nodes))
	for i := range levels {
		levels[i] = -1
	}
	levels[root] = int16(level)

	// Parents have higher indices than their children, so each node is reached before it is processed.
	for i := int(root); i >= 0; i-- {
		if levels[i] < 0 {
			continue
		}

		node := &nodes[i]
		switch node.State {
		case types.StateLeaf:
			continue
		case types.StateBranch:
		default:
			return nil, errors.Wrapf(types.ErrCorruptData, "node %d has invalid state %d", i, node.State)
		}

		if levels[i] == 0 {
			return nil, errors.Wrapf(types.ErrCorruptData, "node %d is subdivided at unit level", i)
		}

		childLevel := levels[i] - 1
		for _, child := range node.Children {
			if int(child) >= i {
				return nil, errors.Wrapf(types.ErrCorruptData, "node %d references node %d placed after it", i, child)
			}
			switch levels[child] {
			case -1:
				levels[child] = childLevel
			case childLevel:
			default:
				return nil, errors.Wrapf(types.ErrCorruptData, "node %d is referenced at levels %d and %d", child,
					levels[child], childLevel)
			}
		}
	}

	return levels, nil
}
