package index

import "github.com/meshforge/scenecore/types"

// HierarchyIndex maintains the parent/child adjacency of the scene: a parent
// map, a children-set map, and the set of roots (entities with no parent).
// All three are updated together on every edge change, so Children and Roots
// return precomputed sets instead of scanning.
type HierarchyIndex struct {
	parents  map[types.EntityID]types.EntityID
	children map[types.EntityID]map[types.EntityID]struct{}
	roots    map[types.EntityID]struct{}
}

func NewHierarchyIndex() *HierarchyIndex {
	return &HierarchyIndex{
		parents:  make(map[types.EntityID]types.EntityID),
		children: make(map[types.EntityID]map[types.EntityID]struct{}),
		roots:    make(map[types.EntityID]struct{}),
	}
}

// AddEntity registers a new entity as a root.
func (idx *HierarchyIndex) AddEntity(id types.EntityID) {
	idx.roots[id] = struct{}{}
}

// RemoveEntity detaches id entirely: its edge to its parent is removed, its
// children become roots, and it leaves the root set. Callers decide what
// happens to the children before calling this; the index itself never
// cascades.
func (idx *HierarchyIndex) RemoveEntity(id types.EntityID) {
	idx.ClearParent(id)
	for child := range idx.children[id] {
		delete(idx.parents, child)
		idx.roots[child] = struct{}{}
	}
	delete(idx.children, id)
	delete(idx.roots, id)
}

// SetParent installs the child->parent edge, replacing any existing edge.
// No-op when the edge is already in place.
func (idx *HierarchyIndex) SetParent(child, parent types.EntityID) {
	if current, ok := idx.parents[child]; ok && current == parent {
		return
	}
	idx.ClearParent(child)
	idx.parents[child] = parent
	bucket, ok := idx.children[parent]
	if !ok {
		bucket = make(map[types.EntityID]struct{})
		idx.children[parent] = bucket
	}
	bucket[child] = struct{}{}
	delete(idx.roots, child)
}

// ClearParent removes the child's edge to its parent, making it a root.
// No-op when the child is already a root.
func (idx *HierarchyIndex) ClearParent(child types.EntityID) {
	parent, ok := idx.parents[child]
	if !ok {
		return
	}
	delete(idx.parents, child)
	bucket := idx.children[parent]
	delete(bucket, child)
	if len(bucket) == 0 {
		delete(idx.children, parent)
	}
	idx.roots[child] = struct{}{}
}

// Parent returns the parent of child, if it has one.
func (idx *HierarchyIndex) Parent(child types.EntityID) (types.EntityID, bool) {
	parent, ok := idx.parents[child]
	return parent, ok
}

// Children returns the precomputed child set of parent, in unspecified
// order.
func (idx *HierarchyIndex) Children(parent types.EntityID) []types.EntityID {
	bucket := idx.children[parent]
	out := make([]types.EntityID, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	return out
}

// ChildCount returns the number of children of parent.
func (idx *HierarchyIndex) ChildCount(parent types.EntityID) int {
	return len(idx.children[parent])
}

// Roots returns every entity with no parent, in unspecified order.
func (idx *HierarchyIndex) Roots() []types.EntityID {
	out := make([]types.EntityID, 0, len(idx.roots))
	for id := range idx.roots {
		out = append(out, id)
	}
	return out
}

// IsRoot reports whether id has no parent.
func (idx *HierarchyIndex) IsRoot(id types.EntityID) bool {
	_, ok := idx.roots[id]
	return ok
}

// WouldCycle reports whether making newParent the parent of child would
// close a cycle, by walking newParent's ancestor chain. Cost is proportional
// to hierarchy depth, not entity count. The visited set guards the walk in
// case the index itself is corrupted into a cycle.
func (idx *HierarchyIndex) WouldCycle(child, newParent types.EntityID) bool {
	if child == newParent {
		return true
	}
	visited := map[types.EntityID]struct{}{child: {}}
	current := newParent
	for {
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}
		parent, ok := idx.parents[current]
		if !ok {
			return false
		}
		current = parent
	}
}

func (idx *HierarchyIndex) Clear() {
	idx.parents = make(map[types.EntityID]types.EntityID)
	idx.children = make(map[types.EntityID]map[types.EntityID]struct{})
	idx.roots = make(map[types.EntityID]struct{})
}
