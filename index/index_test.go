package index_test

import (
	"testing"

	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/index"
	"github.com/meshforge/scenecore/types"
)

func TestEntityIndexBasics(t *testing.T) {
	idx := index.NewEntityIndex()

	idx.Add(1)
	idx.Add(2)
	idx.Add(2) // duplicate add is a no-op

	assert.True(t, idx.Has(1))
	assert.False(t, idx.Has(3))
	assert.Equal(t, 2, idx.Size())
	assert.ElementsMatch(t, []types.EntityID{1, 2}, idx.List())

	idx.Remove(1)
	idx.Remove(1)
	assert.False(t, idx.Has(1))
	assert.Equal(t, 1, idx.Size())

	idx.Clear()
	assert.Equal(t, 0, idx.Size())
}

func TestEntityIndexEachStopsEarly(t *testing.T) {
	idx := index.NewEntityIndex()
	for i := 1; i <= 5; i++ {
		idx.Add(types.EntityID(i))
	}

	seen := 0
	idx.Each(func(types.EntityID) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestComponentIndexMembership(t *testing.T) {
	idx := index.NewComponentIndex()
	const transform, renderer = types.ComponentID(1), types.ComponentID(2)

	idx.Add(transform, 10)
	idx.Add(transform, 11)
	idx.Add(renderer, 10)

	assert.True(t, idx.Has(transform, 10))
	assert.False(t, idx.Has(renderer, 11))
	assert.Equal(t, 2, idx.EntityCount(transform))
	assert.ElementsMatch(t, []types.EntityID{10, 11}, idx.Entities(transform))
	assert.ElementsMatch(t, []types.ComponentID{transform, renderer}, idx.ComponentsOf(10))
}

func TestComponentIndexPrunesEmptyBuckets(t *testing.T) {
	idx := index.NewComponentIndex()
	const transform = types.ComponentID(1)

	idx.Add(transform, 10)
	assert.Equal(t, 1, idx.TypeCount())

	idx.Remove(transform, 10)
	assert.Equal(t, 0, idx.TypeCount())

	// Removing from a pruned bucket is a no-op.
	idx.Remove(transform, 10)
	assert.Len(t, idx.Entities(transform), 0)
}

func TestEntitiesWithAll(t *testing.T) {
	idx := index.NewComponentIndex()
	const transform, renderer, rigidbody = types.ComponentID(1), types.ComponentID(2), types.ComponentID(3)

	idx.Add(transform, 1)
	idx.Add(transform, 2)
	idx.Add(transform, 3)
	idx.Add(renderer, 2)
	idx.Add(renderer, 3)
	idx.Add(rigidbody, 3)

	assert.ElementsMatch(t, []types.EntityID{2, 3}, idx.EntitiesWithAll(transform, renderer))
	assert.ElementsMatch(t, []types.EntityID{3}, idx.EntitiesWithAll(transform, renderer, rigidbody))

	// An empty type list yields an empty result, not every entity.
	assert.Len(t, idx.EntitiesWithAll(), 0)

	// A type with no members short-circuits to empty.
	assert.Len(t, idx.EntitiesWithAll(transform, types.ComponentID(99)), 0)
}

func TestEntitiesWithAny(t *testing.T) {
	idx := index.NewComponentIndex()
	const renderer, rigidbody = types.ComponentID(2), types.ComponentID(3)

	idx.Add(renderer, 1)
	idx.Add(renderer, 2)
	idx.Add(rigidbody, 2)
	idx.Add(rigidbody, 3)

	// The union is de-duplicated: entity 2 holds both types.
	assert.ElementsMatch(t, []types.EntityID{1, 2, 3}, idx.EntitiesWithAny(renderer, rigidbody))
	assert.Len(t, idx.EntitiesWithAny(), 0)
	assert.Len(t, idx.EntitiesWithAny(types.ComponentID(99)), 0)
}

func TestHierarchySetParentMovesChild(t *testing.T) {
	idx := index.NewHierarchyIndex()
	for _, id := range []types.EntityID{1, 2, 3} {
		idx.AddEntity(id)
	}

	idx.SetParent(3, 1)
	parent, ok := idx.Parent(3)
	assert.True(t, ok)
	assert.Equal(t, types.EntityID(1), parent)
	assert.ElementsMatch(t, []types.EntityID{3}, idx.Children(1))
	assert.False(t, idx.IsRoot(3))
	assert.ElementsMatch(t, []types.EntityID{1, 2}, idx.Roots())

	// Reparenting detaches from the old parent.
	idx.SetParent(3, 2)
	assert.Len(t, idx.Children(1), 0)
	assert.ElementsMatch(t, []types.EntityID{3}, idx.Children(2))

	idx.ClearParent(3)
	_, ok = idx.Parent(3)
	assert.False(t, ok)
	assert.True(t, idx.IsRoot(3))
	assert.ElementsMatch(t, []types.EntityID{1, 2, 3}, idx.Roots())
}

func TestHierarchyRemoveEntityReRootsChildren(t *testing.T) {
	idx := index.NewHierarchyIndex()
	for _, id := range []types.EntityID{1, 2, 3, 4} {
		idx.AddEntity(id)
	}
	idx.SetParent(2, 1)
	idx.SetParent(3, 2)
	idx.SetParent(4, 2)

	idx.RemoveEntity(2)

	// 2's children are roots again; 1 lost its only child.
	assert.True(t, idx.IsRoot(3))
	assert.True(t, idx.IsRoot(4))
	assert.Len(t, idx.Children(1), 0)
	assert.Equal(t, 0, idx.ChildCount(2))
	assert.ElementsMatch(t, []types.EntityID{1, 3, 4}, idx.Roots())
}

func TestWouldCycle(t *testing.T) {
	idx := index.NewHierarchyIndex()
	for _, id := range []types.EntityID{1, 2, 3, 4} {
		idx.AddEntity(id)
	}
	idx.SetParent(2, 1)
	idx.SetParent(3, 2)

	assert.True(t, idx.WouldCycle(1, 1), "self-parenting is a cycle")
	assert.True(t, idx.WouldCycle(1, 3), "grandchild as parent is a cycle")
	assert.True(t, idx.WouldCycle(2, 3))
	assert.False(t, idx.WouldCycle(3, 4), "sibling subtree is fine")
	assert.False(t, idx.WouldCycle(4, 3))
}
