// Package index holds the derived lookup structures that keep scene queries
// O(1)/O(k): the live entity set, the component-type membership sets, and the
// hierarchy adjacency. Indices never own data; they hold entity-id
// back-references and are maintained incrementally as mutations happen, so
// the hot path never rebuilds them from ground truth.
package index

import "github.com/meshforge/scenecore/types"

// EntityIndex is the set of live entity ids.
type EntityIndex struct {
	ids map[types.EntityID]struct{}
}

func NewEntityIndex() *EntityIndex {
	return &EntityIndex{ids: make(map[types.EntityID]struct{})}
}

func (idx *EntityIndex) Add(id types.EntityID) {
	idx.ids[id] = struct{}{}
}

func (idx *EntityIndex) Remove(id types.EntityID) {
	delete(idx.ids, id)
}

func (idx *EntityIndex) Has(id types.EntityID) bool {
	_, ok := idx.ids[id]
	return ok
}

func (idx *EntityIndex) Size() int {
	return len(idx.ids)
}

// List returns every live entity id in unspecified order.
func (idx *EntityIndex) List() []types.EntityID {
	out := make([]types.EntityID, 0, len(idx.ids))
	for id := range idx.ids {
		out = append(out, id)
	}
	return out
}

// Each calls fn for every live entity id until fn returns false.
func (idx *EntityIndex) Each(fn func(types.EntityID) bool) {
	for id := range idx.ids {
		if !fn(id) {
			return
		}
	}
}

func (idx *EntityIndex) Clear() {
	idx.ids = make(map[types.EntityID]struct{})
}
