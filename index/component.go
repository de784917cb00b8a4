package index

import (
	"sort"

	"github.com/meshforge/scenecore/types"
)

// ComponentIndex maps every component type to the set of entities holding an
// instance of it. The bucket for a type is pruned once its last member is
// removed, so iterating the index only touches types that are actually in
// use.
type ComponentIndex struct {
	byComponent map[types.ComponentID]map[types.EntityID]struct{}
}

func NewComponentIndex() *ComponentIndex {
	return &ComponentIndex{byComponent: make(map[types.ComponentID]map[types.EntityID]struct{})}
}

func (idx *ComponentIndex) Add(comp types.ComponentID, entity types.EntityID) {
	bucket, ok := idx.byComponent[comp]
	if !ok {
		bucket = make(map[types.EntityID]struct{})
		idx.byComponent[comp] = bucket
	}
	bucket[entity] = struct{}{}
}

func (idx *ComponentIndex) Remove(comp types.ComponentID, entity types.EntityID) {
	bucket, ok := idx.byComponent[comp]
	if !ok {
		return
	}
	delete(bucket, entity)
	if len(bucket) == 0 {
		delete(idx.byComponent, comp)
	}
}

func (idx *ComponentIndex) Has(comp types.ComponentID, entity types.EntityID) bool {
	_, ok := idx.byComponent[comp][entity]
	return ok
}

// Entities returns the ids holding the given component type, in unspecified
// order.
func (idx *ComponentIndex) Entities(comp types.ComponentID) []types.EntityID {
	bucket := idx.byComponent[comp]
	out := make([]types.EntityID, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	return out
}

// EntityCount returns the number of entities holding the component type.
func (idx *ComponentIndex) EntityCount(comp types.ComponentID) int {
	return len(idx.byComponent[comp])
}

// EntitiesWithAll intersects the buckets of every listed type. The smallest
// bucket is iterated and each candidate tested against the rest, so cost is
// O(smallest bucket * len(comps)). An empty comps list yields an empty
// result, not every entity.
func (idx *ComponentIndex) EntitiesWithAll(comps ...types.ComponentID) []types.EntityID {
	if len(comps) == 0 {
		return nil
	}

	smallest := -1
	for i, comp := range comps {
		bucket, ok := idx.byComponent[comp]
		if !ok {
			return nil
		}
		if smallest == -1 || len(bucket) < len(idx.byComponent[comps[smallest]]) {
			smallest = i
		}
	}

	out := make([]types.EntityID, 0, len(idx.byComponent[comps[smallest]]))
candidates:
	for id := range idx.byComponent[comps[smallest]] {
		for i, comp := range comps {
			if i == smallest {
				continue
			}
			if _, ok := idx.byComponent[comp][id]; !ok {
				continue candidates
			}
		}
		out = append(out, id)
	}
	return out
}

// EntitiesWithAny unions the buckets of every listed type, de-duplicated. An
// empty comps list yields an empty result.
func (idx *ComponentIndex) EntitiesWithAny(comps ...types.ComponentID) []types.EntityID {
	if len(comps) == 0 {
		return nil
	}

	seen := make(map[types.EntityID]struct{})
	out := make([]types.EntityID, 0)
	for _, comp := range comps {
		for id := range idx.byComponent[comp] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// ComponentsOf returns the component types currently indexed for an entity.
// O(number of indexed types); used by diagnostics, not the hot path.
func (idx *ComponentIndex) ComponentsOf(entity types.EntityID) []types.ComponentID {
	var out []types.ComponentID
	for comp, bucket := range idx.byComponent {
		if _, ok := bucket[entity]; ok {
			out = append(out, comp)
		}
	}
	return out
}

// TypeCount returns the number of component types with a non-empty bucket.
func (idx *ComponentIndex) TypeCount() int {
	return len(idx.byComponent)
}

// Types returns every component type that currently has a non-empty bucket,
// in ascending order.
func (idx *ComponentIndex) Types() []types.ComponentID {
	out := make([]types.ComponentID, 0, len(idx.byComponent))
	for comp := range idx.byComponent {
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (idx *ComponentIndex) Clear() {
	idx.byComponent = make(map[types.ComponentID]map[types.EntityID]struct{})
}
