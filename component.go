package scenecore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/stage"
	"github.com/meshforge/scenecore/statsd"
	"github.com/meshforge/scenecore/types"
)

// RegisterComponent registers a component type with the scene. Registration
// derives the type's JSON schema via reflection and, when storage is
// attached, pins it so a later session registering a drifted shape fails
// loudly instead of corrupting saved documents. All component types must be
// registered before the scene is started.
func RegisterComponent[T types.Component](s *Scene) error {
	if s.sceneStage.Current() != stage.Init {
		return eris.Errorf(
			"scene state is %s, expected %s to register component",
			s.sceneStage.Current(), stage.Init,
		)
	}
	compMetadata, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	return s.componentManager.RegisterComponent(compMetadata)
}

// MustRegisterComponent is a RegisterComponent that panics on error.
func MustRegisterComponent[T types.Component](s *Scene) {
	err := RegisterComponent[T](s)
	if err != nil {
		panic(err)
	}
}

// AddComponent attaches a component value to an entity, replacing any value
// of the same type already there.
func AddComponent[T types.Component](s *Scene, id types.EntityID, value T) error {
	start := time.Now()
	compMetadata, err := s.componentManager.GetComponentByName(value.Name())
	if err != nil {
		return err
	}
	if err := s.store.SetComponent(id, compMetadata.ID(), value); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "add_component")
	return nil
}

// GetComponent returns a copy of an entity's component of the given type.
// Absence is not an error: a dead entity and an entity without the component
// both report false.
func GetComponent[T types.Component](s *Scene, id types.EntityID) (*T, bool) {
	var t T
	compMetadata, err := s.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return nil, false
	}
	value, ok := s.store.Component(id, compMetadata.ID())
	if !ok {
		return nil, false
	}
	comp, ok := value.(T)
	if !ok {
		return nil, false
	}
	return &comp, true
}

// RemoveComponent detaches a component type from an entity. Removing a
// component the entity does not have is a no-op.
func RemoveComponent[T types.Component](s *Scene, id types.EntityID) error {
	start := time.Now()
	var t T
	compMetadata, err := s.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return err
	}
	if err := s.store.RemoveComponent(id, compMetadata.ID()); err != nil {
		return err
	}
	statsd.EmitOpStat(start, "remove_component")
	return nil
}

// AddComponentByName attaches a component to an entity from a raw JSON
// payload, as document loading and remote inspectors do. The payload is
// validated against the registered type before anything is stored; a payload
// with unknown fields or mismatched types is rejected with
// ErrComponentSchemaMismatch.
func (s *Scene) AddComponentByName(id types.EntityID, name string, data json.RawMessage) error {
	compMetadata, err := s.componentManager.GetComponentByName(name)
	if err != nil {
		return err
	}
	value, err := compMetadata.DecodeStrict(data)
	if err != nil {
		return eris.Wrap(
			types.ErrComponentSchemaMismatch,
			fmt.Sprintf("component %q payload rejected: %s", name, err),
		)
	}
	return s.store.SetComponent(id, compMetadata.ID(), value)
}

// RemoveComponentByName detaches a component type from an entity by its
// registered name.
func (s *Scene) RemoveComponentByName(id types.EntityID, name string) error {
	compMetadata, err := s.componentManager.GetComponentByName(name)
	if err != nil {
		return err
	}
	return s.store.RemoveComponent(id, compMetadata.ID())
}

// GetComponentData returns an entity's component encoded as JSON, keyed by
// the registered type name. Absence reports false.
func (s *Scene) GetComponentData(id types.EntityID, name string) (json.RawMessage, bool) {
	compMetadata, err := s.componentManager.GetComponentByName(name)
	if err != nil {
		return nil, false
	}
	value, ok := s.store.Component(id, compMetadata.ID())
	if !ok {
		return nil, false
	}
	data, err := compMetadata.Encode(value)
	if err != nil {
		s.log.Warn().Err(err).Str("component", name).Msg("failed to encode component")
		return nil, false
	}
	return data, true
}
