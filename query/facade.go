// Package query is the read-only surface over a scene: entity listings,
// component membership, hierarchy reads, tag lookups, and the index
// validation pass. Renderers and UI panels read through this facade once per
// frame; nothing here mutates state.
package query

import (
	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/filter"
	"github.com/meshforge/scenecore/index"
	"github.com/meshforge/scenecore/store"
	"github.com/meshforge/scenecore/tag"
	"github.com/meshforge/scenecore/types"
)

// Facade bundles the scene's indices behind a read-only API. All membership
// queries answer from the live indices, never by scanning ground truth.
type Facade struct {
	store      *store.Store
	registry   *component.Manager
	entities   *index.EntityIndex
	components *index.ComponentIndex
	hierarchy  *index.HierarchyIndex
	tags       *tag.Manager
}

func NewFacade(
	st *store.Store,
	registry *component.Manager,
	entities *index.EntityIndex,
	components *index.ComponentIndex,
	hierarchy *index.HierarchyIndex,
	tags *tag.Manager,
) *Facade {
	return &Facade{
		store:      st,
		registry:   registry,
		entities:   entities,
		components: components,
		hierarchy:  hierarchy,
		tags:       tags,
	}
}

// EntityCount returns the number of live entities. O(1).
func (f *Facade) EntityCount() int {
	return f.entities.Size()
}

// HasEntity reports whether id names a live entity.
func (f *Facade) HasEntity(id types.EntityID) bool {
	return f.entities.Has(id)
}

// ListAllEntities returns every live entity id in unspecified order.
func (f *Facade) ListAllEntities() []types.EntityID {
	return f.entities.List()
}

// HasComponent reports whether the entity holds an instance of the named
// component type. Unknown names report false.
func (f *Facade) HasComponent(id types.EntityID, name string) bool {
	meta, err := f.registry.GetComponentByName(name)
	if err != nil {
		return false
	}
	return f.components.Has(meta.ID(), id)
}

// ListEntitiesWithComponent returns every entity holding the named component
// type. O(k) in the result size.
func (f *Facade) ListEntitiesWithComponent(name string) ([]types.EntityID, error) {
	cid, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	return f.components.Entities(cid), nil
}

// ListEntitiesWithComponents returns entities holding every one of the named
// component types. An empty name list yields an empty result.
func (f *Facade) ListEntitiesWithComponents(names ...string) ([]types.EntityID, error) {
	cids, err := f.resolveAll(names)
	if err != nil {
		return nil, err
	}
	return f.components.EntitiesWithAll(cids...), nil
}

// ListEntitiesWithAnyComponent returns entities holding at least one of the
// named component types, de-duplicated. An empty name list yields an empty
// result.
func (f *Facade) ListEntitiesWithAnyComponent(names ...string) ([]types.EntityID, error) {
	cids, err := f.resolveAll(names)
	if err != nil {
		return nil, err
	}
	return f.components.EntitiesWithAny(cids...), nil
}

// Parent returns the entity's parent, reporting false for roots.
func (f *Facade) Parent(id types.EntityID) (types.EntityID, bool) {
	return f.hierarchy.Parent(id)
}

// Children returns the entity's direct children.
func (f *Facade) Children(id types.EntityID) []types.EntityID {
	return f.hierarchy.Children(id)
}

// Roots returns every entity without a parent. Answered from the maintained
// root set, not by scanning.
func (f *Facade) Roots() []types.EntityID {
	return f.hierarchy.Roots()
}

// Tags returns the entity's tags in ascending order.
func (f *Facade) Tags(id types.EntityID) []string {
	return f.tags.Tags(id)
}

// HasTag reports whether the entity carries the tag, after normalization.
func (f *Facade) HasTag(id types.EntityID, raw string) bool {
	return f.tags.Has(id, raw)
}

// FindByTag returns every entity carrying the normalized tag.
func (f *Facade) FindByTag(raw string) []types.EntityID {
	return f.tags.FindByTag(raw)
}

// FindByAllTags returns entities carrying every listed tag.
func (f *Facade) FindByAllTags(raws []string) []types.EntityID {
	return f.tags.FindByAllTags(raws)
}

// FindByAnyTag returns entities carrying at least one listed tag.
func (f *Facade) FindByAnyTag(raws []string) []types.EntityID {
	return f.tags.FindByAnyTag(raws)
}

// AllTags returns every tag with at least one member.
func (f *Facade) AllTags() []string {
	return f.tags.AllTags()
}

// NewSearch creates a search that visits entities matching the component
// filter.
func (f *Facade) NewSearch(componentFilter filter.ComponentFilter) *Search {
	return &Search{facade: f, filter: componentFilter}
}

func (f *Facade) resolve(name string) (types.ComponentID, error) {
	meta, err := f.registry.GetComponentByName(name)
	if err != nil {
		return 0, eris.Wrap(err, "")
	}
	return meta.ID(), nil
}

func (f *Facade) resolveAll(names []string) ([]types.ComponentID, error) {
	cids := make([]types.ComponentID, 0, len(names))
	for _, name := range names {
		cid, err := f.resolve(name)
		if err != nil {
			return nil, err
		}
		cids = append(cids, cid)
	}
	return cids, nil
}
