// Package store owns the ground-truth state of a scene: which entities are
// alive, their names and persistent ids, their parent edges, and the single
// component instance each entity holds per component type.
//
// Every mutation is synchronous. The store publishes an event after each
// state change and every subscriber runs to completion before the mutating
// call returns, which is what keeps the derived indices live without a
// reconciliation pass.
package store

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/meshforge/scenecore/codec"
	"github.com/meshforge/scenecore/events"
	"github.com/meshforge/scenecore/ident"
	"github.com/meshforge/scenecore/index"
	"github.com/meshforge/scenecore/tag"
	"github.com/meshforge/scenecore/types"
)

// entityRecord is the authoritative state of one live entity. Indices hold
// back-references to the id only; the data itself lives here.
type entityRecord struct {
	name         string
	persistentID string
	parent       types.EntityID
	components   map[types.ComponentID]types.Component
}

// Store is the authoritative entity/component container for one scene.
// It drives the hierarchy index, tag manager, and persistent id service
// directly; the entity and component indices listen on the event bus.
//
// Store is not safe for concurrent use. Scene serializes access to it.
type Store struct {
	pool           *entityPool
	records        map[types.EntityID]*entityRecord
	byPersistentID map[string]types.EntityID

	hierarchy *index.HierarchyIndex
	tags      *tag.Manager
	ids       *ident.Service
	bus       *events.Bus

	// inFlight marks entities whose mutation is currently being dispatched.
	// A handler that tries to re-mutate such an entity fails with
	// ErrMutationInProgress instead of recursing.
	inFlight map[types.EntityID]struct{}

	log zerolog.Logger
}

func New(
	bus *events.Bus,
	ids *ident.Service,
	tags *tag.Manager,
	hierarchy *index.HierarchyIndex,
	logger zerolog.Logger,
) *Store {
	return &Store{
		pool:           newEntityPool(),
		records:        map[types.EntityID]*entityRecord{},
		byPersistentID: map[string]types.EntityID{},
		hierarchy:      hierarchy,
		tags:           tags,
		ids:            ids,
		bus:            bus,
		inFlight:       map[types.EntityID]struct{}{},
		log:            logger,
	}
}

// CreateEntity allocates a new entity, reserves its persistent id, registers
// it in the hierarchy, and emits entity:created. When no persistent id is
// supplied one is generated; a supplied id must be a well formed UUID v4 that
// is not already reserved.
func (s *Store) CreateEntity(name string, opts ...CreateOption) (types.EntityID, error) {
	var cfg createConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.hasParent && !s.pool.Alive(cfg.parent) {
		return 0, eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("parent %d", cfg.parent))
	}

	pid := cfg.persistentID
	if pid == "" {
		generated, err := s.ids.GenerateUnique()
		if err != nil {
			return 0, eris.Wrap(err, "")
		}
		pid = generated
	} else if err := s.ids.Reserve(pid); err != nil {
		return 0, eris.Wrap(err, "")
	}

	id := s.pool.Allocate()
	s.records[id] = &entityRecord{
		name:         name,
		persistentID: pid,
		components:   map[types.ComponentID]types.Component{},
	}
	s.byPersistentID[pid] = id
	s.hierarchy.AddEntity(id)
	if cfg.hasParent {
		s.records[id].parent = cfg.parent
		s.hierarchy.SetParent(id, cfg.parent)
	}

	s.log.Debug().
		Uint64("entity", uint64(id)).
		Str("name", name).
		Str("persistent_id", pid).
		Msg("created entity")

	// The created event is dispatched without the mutation guard so handlers
	// can immediately attach components to the newborn entity.
	s.bus.Publish(events.EntityCreated{EntityID: id})
	return id, nil
}

// DeleteEntity removes the entity and everything attached to it in one call:
// components (each emitting component:removed), hierarchy edges (children
// re-root, they are not cascaded), tags, and the persistent id reservation.
// It emits entity:destroyed last. Deleting an unknown or already destroyed id
// is a no-op.
func (s *Store) DeleteEntity(id types.EntityID) error {
	if !s.pool.Alive(id) {
		return nil
	}
	if s.mutationInProgress(id) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", id))
	}
	s.beginMutation(id)
	defer s.endMutation(id)

	rec := s.records[id]

	cids := make([]types.ComponentID, 0, len(rec.components))
	for cid := range rec.components {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	for _, cid := range cids {
		comp := rec.components[cid]
		delete(rec.components, cid)
		s.bus.Publish(events.ComponentRemoved{
			EntityID:    id,
			ComponentID: cid,
			Component:   comp.Name(),
		})
	}

	for _, child := range s.hierarchy.Children(id) {
		if childRec, ok := s.records[child]; ok {
			childRec.parent = 0
		}
	}
	s.hierarchy.RemoveEntity(id)

	s.tags.DestroyEntity(id)

	s.ids.Release(rec.persistentID)
	delete(s.byPersistentID, rec.persistentID)

	delete(s.records, id)
	s.pool.Release(id)

	s.log.Debug().Uint64("entity", uint64(id)).Msg("destroyed entity")

	s.bus.Publish(events.EntityDestroyed{EntityID: id})
	return nil
}

// SetParent moves child under parent, replacing any existing edge. Setting
// the parent the entity already has is a no-op. Fails with ErrHierarchyCycle
// when parent is child itself or one of child's descendants; the check walks
// ancestors, so its cost is bounded by hierarchy depth.
func (s *Store) SetParent(child, parent types.EntityID) error {
	if !s.pool.Alive(child) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("child %d", child))
	}
	if !s.pool.Alive(parent) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("parent %d", parent))
	}
	rec := s.records[child]
	if rec.parent == parent {
		return nil
	}
	if s.mutationInProgress(child) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", child))
	}
	if s.hierarchy.WouldCycle(child, parent) {
		return eris.Wrap(ErrHierarchyCycle, fmt.Sprintf("entity %d cannot be parented to its descendant %d", child, parent))
	}
	rec.parent = parent
	s.hierarchy.SetParent(child, parent)
	return nil
}

// ClearParent detaches child from its parent, making it a root. No-op when
// the entity is already a root.
func (s *Store) ClearParent(child types.EntityID) error {
	if !s.pool.Alive(child) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("child %d", child))
	}
	rec := s.records[child]
	if rec.parent == 0 {
		return nil
	}
	if s.mutationInProgress(child) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", child))
	}
	rec.parent = 0
	s.hierarchy.ClearParent(child)
	return nil
}

// Parent returns the entity's parent, reporting false for roots and for
// unknown entities.
func (s *Store) Parent(id types.EntityID) (types.EntityID, bool) {
	rec, ok := s.records[id]
	if !ok || rec.parent == 0 {
		return 0, false
	}
	return rec.parent, true
}

// Alive reports whether id names a currently live entity. Stale ids from
// destroyed entities report false even after their slot is recycled.
func (s *Store) Alive(id types.EntityID) bool {
	return s.pool.Alive(id)
}

// EntityCount returns the number of live entities.
func (s *Store) EntityCount() int {
	return len(s.records)
}

// Entities returns every live entity id in ascending order.
func (s *Store) Entities() []types.EntityID {
	out := make([]types.EntityID, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Name returns the entity's display name.
func (s *Store) Name(id types.EntityID) (string, error) {
	rec, ok := s.records[id]
	if !ok {
		return "", eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	return rec.name, nil
}

// Rename replaces the entity's display name.
func (s *Store) Rename(id types.EntityID, name string) error {
	rec, ok := s.records[id]
	if !ok {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	if s.mutationInProgress(id) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", id))
	}
	rec.name = name
	return nil
}

// PersistentID returns the stable UUID assigned to the entity at creation.
func (s *Store) PersistentID(id types.EntityID) (string, error) {
	rec, ok := s.records[id]
	if !ok {
		return "", eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	return rec.persistentID, nil
}

// EntityByPersistentID resolves a persistent id back to the live entity that
// holds it.
func (s *Store) EntityByPersistentID(pid string) (types.EntityID, bool) {
	id, ok := s.byPersistentID[pid]
	return id, ok
}

// SetComponent stores value as the entity's single instance of the component
// type. The first write of a type emits component:added; subsequent writes
// emit component:updated. The caller is responsible for having validated
// value against the registered schema for cid.
func (s *Store) SetComponent(id types.EntityID, cid types.ComponentID, value types.Component) error {
	if !s.pool.Alive(id) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	if s.mutationInProgress(id) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", id))
	}
	data, err := codec.Encode(value)
	if err != nil {
		return eris.Wrap(err, "")
	}

	rec := s.records[id]
	_, existed := rec.components[cid]
	rec.components[cid] = value

	s.beginMutation(id)
	defer s.endMutation(id)
	if existed {
		s.bus.Publish(events.ComponentUpdated{
			EntityID:    id,
			ComponentID: cid,
			Component:   value.Name(),
			Data:        data,
		})
	} else {
		s.bus.Publish(events.ComponentAdded{
			EntityID:    id,
			ComponentID: cid,
			Component:   value.Name(),
			Data:        data,
		})
	}
	return nil
}

// RemoveComponent detaches the component type from the entity and emits
// component:removed. Removing an absent component, or from an unknown entity,
// is a no-op: editor callers routinely issue redundant removals.
func (s *Store) RemoveComponent(id types.EntityID, cid types.ComponentID) error {
	if !s.pool.Alive(id) {
		return nil
	}
	rec := s.records[id]
	comp, ok := rec.components[cid]
	if !ok {
		return nil
	}
	if s.mutationInProgress(id) {
		return eris.Wrap(ErrMutationInProgress, fmt.Sprintf("entity %d", id))
	}
	delete(rec.components, cid)

	s.beginMutation(id)
	defer s.endMutation(id)
	s.bus.Publish(events.ComponentRemoved{
		EntityID:    id,
		ComponentID: cid,
		Component:   comp.Name(),
	})
	return nil
}

// Component returns the entity's instance of the component type, reporting
// false when the entity is unknown or holds no such component.
func (s *Store) Component(id types.EntityID, cid types.ComponentID) (types.Component, bool) {
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	comp, ok := rec.components[cid]
	return comp, ok
}

// HasComponent reports whether the entity holds an instance of the component
// type.
func (s *Store) HasComponent(id types.EntityID, cid types.ComponentID) bool {
	_, ok := s.Component(id, cid)
	return ok
}

// Components returns the entity's component values. Nil for unknown
// entities.
func (s *Store) Components(id types.EntityID) []types.Component {
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	out := make([]types.Component, 0, len(rec.components))
	cids := s.sortedComponentIDs(rec)
	for _, cid := range cids {
		out = append(out, rec.components[cid])
	}
	return out
}

// ComponentIDs returns the ids of the component types the entity holds, in
// ascending order.
func (s *Store) ComponentIDs(id types.EntityID) []types.ComponentID {
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	return s.sortedComponentIDs(rec)
}

// ComponentsForEntity returns name/payload snapshots of every component the
// entity holds, sorted by component name. This is the read the serializer
// uses to write scene documents.
func (s *Store) ComponentsForEntity(id types.EntityID) ([]types.ComponentSnapshot, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	out := make([]types.ComponentSnapshot, 0, len(rec.components))
	for _, comp := range rec.components {
		data, err := codec.Encode(comp)
		if err != nil {
			return nil, eris.Wrap(err, "")
		}
		out = append(out, types.ComponentSnapshot{Name: comp.Name(), Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Clear destroys all store state without emitting events. Used when a scene
// is disposed or reloaded wholesale.
func (s *Store) Clear() {
	s.pool.Clear()
	s.records = map[types.EntityID]*entityRecord{}
	s.byPersistentID = map[string]types.EntityID{}
	s.inFlight = map[types.EntityID]struct{}{}
	s.hierarchy.Clear()
	s.tags.Clear()
	s.ids.Clear()
}

func (s *Store) sortedComponentIDs(rec *entityRecord) []types.ComponentID {
	cids := make([]types.ComponentID, 0, len(rec.components))
	for cid := range rec.components {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	return cids
}

func (s *Store) beginMutation(id types.EntityID) {
	s.inFlight[id] = struct{}{}
}

func (s *Store) endMutation(id types.EntityID) {
	delete(s.inFlight, id)
}

func (s *Store) mutationInProgress(id types.EntityID) bool {
	_, ok := s.inFlight[id]
	return ok
}
