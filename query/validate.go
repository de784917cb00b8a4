package query

import (
	"github.com/meshforge/scenecore/index"
)

// ValidateIndices recomputes what every index should contain from ground
// truth and returns each disagreement found. It never fails and never
// repairs; the caller decides whether a non-empty result is fatal. Intended
// for test harnesses and debug panels, not the per-frame path.
func (f *Facade) ValidateIndices() []index.Discrepancy {
	var out []index.Discrepancy

	// Entity index must mirror the live entity set exactly.
	for _, id := range f.store.Entities() {
		if !f.entities.Has(id) {
			out = append(out, index.Discrepancy{
				Index:    "entity",
				Detail:   "live entity missing from entity index",
				EntityID: id,
			})
		}
	}
	for _, id := range f.entities.List() {
		if !f.store.Alive(id) {
			out = append(out, index.Discrepancy{
				Index:    "entity",
				Detail:   "entity index references a destroyed entity",
				EntityID: id,
			})
		}
	}

	// Component buckets: no stale members, no missing members.
	for _, comp := range f.components.Types() {
		for _, id := range f.components.Entities(comp) {
			if !f.store.HasComponent(id, comp) {
				out = append(out, index.Discrepancy{
					Index:    "component",
					Detail:   "component index references an entity that does not hold the component",
					EntityID: id,
				})
			}
		}
	}
	for _, id := range f.store.Entities() {
		for _, comp := range f.store.ComponentIDs(id) {
			if !f.components.Has(comp, id) {
				out = append(out, index.Discrepancy{
					Index:    "component",
					Detail:   "stored component missing from component index",
					EntityID: id,
				})
			}
		}
	}

	// Hierarchy: parent edges agree with ground truth and the root set holds
	// exactly the parentless entities.
	for _, id := range f.store.Entities() {
		wantParent, wantOK := f.store.Parent(id)
		gotParent, gotOK := f.hierarchy.Parent(id)
		switch {
		case wantOK != gotOK:
			out = append(out, index.Discrepancy{
				Index:    "hierarchy",
				Detail:   "parent edge disagrees with ground truth",
				EntityID: id,
			})
		case wantOK && wantParent != gotParent:
			out = append(out, index.Discrepancy{
				Index:    "hierarchy",
				Detail:   "parent edge points at the wrong entity",
				EntityID: id,
			})
		}
		if !wantOK && !f.hierarchy.IsRoot(id) {
			out = append(out, index.Discrepancy{
				Index:    "hierarchy",
				Detail:   "parentless entity missing from root set",
				EntityID: id,
			})
		}
	}
	for _, root := range f.hierarchy.Roots() {
		if !f.store.Alive(root) {
			out = append(out, index.Discrepancy{
				Index:    "hierarchy",
				Detail:   "root set references a destroyed entity",
				EntityID: root,
			})
		}
	}

	// Tags: every tagged entity must be alive.
	for id := range f.tags.Serialize() {
		if !f.store.Alive(id) {
			out = append(out, index.Discrepancy{
				Index:    "tag",
				Detail:   "tag buckets reference a destroyed entity",
				EntityID: id,
			})
		}
	}

	return out
}
