package scenecore

import (
	"time"

	"github.com/meshforge/scenecore/statsd"
	"github.com/meshforge/scenecore/store"
	"github.com/meshforge/scenecore/types"
)

// CreateOption configures a single CreateEntity call.
type CreateOption = store.CreateOption

// WithParent creates the entity as a child of parent instead of at the root.
func WithParent(parent types.EntityID) CreateOption {
	return store.WithParent(parent)
}

// WithPersistentID creates the entity with a caller-supplied persistent id
// instead of a generated one. Document loading uses this to keep saved ids
// stable across sessions.
func WithPersistentID(id string) CreateOption {
	return store.WithPersistentID(id)
}

// CreateEntity creates a new entity at the hierarchy root with a fresh
// generational id and a generated persistent id, and returns its id.
func (s *Scene) CreateEntity(name string, opts ...CreateOption) (types.EntityID, error) {
	start := time.Now()
	id, err := s.store.CreateEntity(name, opts...)
	if err != nil {
		return id, err
	}
	statsd.EmitOpStat(start, "create_entity")
	return id, nil
}

// DeleteEntity removes an entity: its components, its tags, its persistent
// id reservation. Children survive and are re-parented to the root.
func (s *Scene) DeleteEntity(id types.EntityID) error {
	start := time.Now()
	if err := s.store.DeleteEntity(id); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "delete_entity")
	return nil
}

// Alive reports whether id names a live entity. A stale generational id
// reports false even when its slot has been reused.
func (s *Scene) Alive(id types.EntityID) bool {
	return s.store.Alive(id)
}

// SetParent makes child a child of parent. Re-parenting that would create a
// cycle fails with ErrHierarchyCycle and changes nothing.
func (s *Scene) SetParent(child, parent types.EntityID) error {
	start := time.Now()
	if err := s.store.SetParent(child, parent); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "set_parent")
	return nil
}

// ClearParent moves child to the hierarchy root.
func (s *Scene) ClearParent(child types.EntityID) error {
	return s.store.ClearParent(child)
}

// Parent returns an entity's parent id; ok is false for roots.
func (s *Scene) Parent(id types.EntityID) (types.EntityID, bool) {
	return s.store.Parent(id)
}

// EntityName returns an entity's display name.
func (s *Scene) EntityName(id types.EntityID) (string, error) {
	return s.store.Name(id)
}

// RenameEntity changes an entity's display name. Names carry no uniqueness
// constraint.
func (s *Scene) RenameEntity(id types.EntityID, name string) error {
	return s.store.Rename(id, name)
}

// PersistentID returns the stable cross-session id of an entity.
func (s *Scene) PersistentID(id types.EntityID) (string, error) {
	return s.store.PersistentID(id)
}

// EntityByPersistentID resolves a persistent id back to the live entity
// holding it.
func (s *Scene) EntityByPersistentID(pid string) (types.EntityID, bool) {
	return s.store.EntityByPersistentID(pid)
}
