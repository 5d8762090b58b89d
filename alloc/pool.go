package alloc

import "github.com/outofforest/voxel/types"

// Pool keeps indices of reclaimed slots ready to be reused.
// Most recently released slot is reused first.
type Pool struct {
	release []types.NodeIndex
}

// Len returns number of slots in the pool.
func (p *Pool) Len() uint64 {
	return uint64(len(p.release))
}

// Allocate takes a slot from the pool.
func (p *Pool) Allocate() (types.NodeIndex, bool) {
	if len(p.release) == 0 {
		return 0, false
	}

	index := p.release[len(p.release)-1]
	p.release = p.release[:len(p.release)-1]
	return index, true
}

// Deallocate returns slot to the pool.
func (p *Pool) Deallocate(index types.NodeIndex) {
	p.release = append(p.release, index)
}

// Reset empties the pool.
func (p *Pool) Reset() {
	p.release = p.release[:0]
}
