package alloc

import (
	"github.com/outofforest/mass"
	"github.com/outofforest/voxel/types"
)

const entriesPerSlab = 1024

// NewIndex creates fingerprint index.
func NewIndex() *Index {
	return &Index{
		buckets: map[types.Fingerprint]*indexEntry{},
		entries: mass.New[indexEntry](entriesPerSlab),
	}
}

// Index maps subtree fingerprints to canonical nodes. It is a cache derived from the arena content.
// Entries sharing the fingerprint are chained, so colliding subtrees with different content coexist.
type Index struct {
	buckets map[types.Fingerprint]*indexEntry
	entries *mass.Mass[indexEntry]
	count   uint64
}

type indexEntry struct {
	Node  types.NodeIndex
	Level uint8
	Next  *indexEntry
}

// Find returns canonical node registered under the fingerprint at the level for which equal returns true.
// If fingerprint is known but none of its nodes is equal, collided is true.
func (i *Index) Find(
	fingerprint types.Fingerprint,
	level uint8,
	equal func(candidate types.NodeIndex) bool,
) (node types.NodeIndex, found, collided bool) {
	entry := i.buckets[fingerprint]
	if entry == nil {
		return 0, false, false
	}
	for ; entry != nil; entry = entry.Next {
		if entry.Level == level && equal(entry.Node) {
			return entry.Node, true, false
		}
	}
	return 0, false, true
}

// Insert registers node as the canonical one for its content.
func (i *Index) Insert(fingerprint types.Fingerprint, level uint8, node types.NodeIndex) {
	entry := i.entries.New()
	entry.Node = node
	entry.Level = level
	entry.Next = i.buckets[fingerprint]
	i.buckets[fingerprint] = entry
	i.count++
}

// Len returns number of registered nodes.
func (i *Index) Len() uint64 {
	return i.count
}

// Reset removes all the entries.
func (i *Index) Reset() {
	clear(i.buckets)
	i.entries = mass.New[indexEntry](entriesPerSlab)
	i.count = 0
}
