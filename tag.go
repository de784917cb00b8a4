package scenecore

import (
	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/types"
)

// AddTag tags an entity. The tag is normalized first (trimmed, lowercased,
// whitespace runs collapsed to dashes); a tag that normalizes to empty is a
// no-op. Tagging a dead entity is a caller bug and fails.
func (s *Scene) AddTag(id types.EntityID, tag string) error {
	if !s.store.Alive(id) {
		return eris.Wrap(ErrEntityDoesNotExist, "cannot tag a dead entity")
	}
	s.tags.Add(id, tag)
	return nil
}

// RemoveTag strips one tag from an entity. Removing a tag the entity does
// not carry, or from a dead entity, is a no-op.
func (s *Scene) RemoveTag(id types.EntityID, tag string) {
	s.tags.Remove(id, tag)
}

// SetTags replaces an entity's tag set wholesale.
func (s *Scene) SetTags(id types.EntityID, tags []string) error {
	if !s.store.Alive(id) {
		return eris.Wrap(ErrEntityDoesNotExist, "cannot tag a dead entity")
	}
	s.tags.Set(id, tags)
	return nil
}

// ClearTags strips every tag from an entity.
func (s *Scene) ClearTags(id types.EntityID) {
	s.tags.ClearTags(id)
}

// HasTag reports whether an entity carries a tag, compared after
// normalization.
func (s *Scene) HasTag(id types.EntityID, tag string) bool {
	return s.tags.Has(id, tag)
}

// Tags returns an entity's tags in sorted order.
func (s *Scene) Tags(id types.EntityID) []string {
	return s.tags.Tags(id)
}

// RenameTag moves every entity from one tag bucket to another. Renaming to a
// tag that already exists merges the buckets.
func (s *Scene) RenameTag(oldTag, newTag string) {
	s.tags.Rename(oldTag, newTag)
}
