package store

import (
	"github.com/meshforge/scenecore/types"
)

// entityPool hands out generational entity ids. Indices of destroyed
// entities are recycled, but each recycle bumps the slot's generation so
// stale ids held by callers can never alias a newer entity.
type entityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func newEntityPool() *entityPool {
	p := &entityPool{}
	// Slot 0 is burned at construction so the zero EntityID is never handed
	// out and can serve as the "no entity" value.
	p.generations = append(p.generations, 0)
	p.nextIndex = 1
	return p
}

func (p *entityPool) Allocate() types.EntityID {
	var idx uint32
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		idx = p.nextIndex
		p.nextIndex++
		p.generations = append(p.generations, 0)
	}
	p.live++
	return types.NewEntityID(idx, p.generations[idx])
}

// Alive reports whether id names a currently allocated entity. Ids from
// released slots fail the generation comparison.
func (p *entityPool) Alive(id types.EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Release returns id's slot to the free list and invalidates every copy of
// id by bumping the slot generation. Releasing a stale or unknown id is a
// no-op.
func (p *entityPool) Release(id types.EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

func (p *entityPool) Count() int {
	return p.live
}

// Clear releases every slot at once. Generation history is kept so ids
// issued before the clear stay dead even after their slots are reissued;
// a reloaded scene must not answer to the old scene's ids.
func (p *entityPool) Clear() {
	p.freeList = p.freeList[:0]
	for idx := p.nextIndex - 1; idx >= 1; idx-- {
		p.generations[idx]++
		p.freeList = append(p.freeList, idx)
	}
	p.live = 0
}
