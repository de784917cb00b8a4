package events

import (
	"encoding/json"

	"github.com/meshforge/scenecore/types"
)

// Kind names one of the event variants emitted by the store. The set is
// closed: every mutation the store performs maps onto exactly one of these.
type Kind string

const (
	KindEntityCreated    Kind = "entity:created"
	KindEntityDestroyed  Kind = "entity:destroyed"
	KindComponentAdded   Kind = "component:added"
	KindComponentUpdated Kind = "component:updated"
	KindComponentRemoved Kind = "component:removed"
)

// Event is the closed set of notifications the store emits. Handlers that
// need a specific variant type-switch on the concrete types below, or use On
// to subscribe to a single variant.
type Event interface {
	Kind() Kind
}

// EntityCreated is emitted after an entity is registered in the scene.
type EntityCreated struct {
	EntityID types.EntityID `json:"entityId"`
}

func (EntityCreated) Kind() Kind { return KindEntityCreated }

// EntityDestroyed is emitted after an entity and everything attached to it
// has been removed from the scene.
type EntityDestroyed struct {
	EntityID types.EntityID `json:"entityId"`
}

func (EntityDestroyed) Kind() Kind { return KindEntityDestroyed }

// ComponentAdded is emitted when a component type is attached to an entity
// for the first time. Data holds the encoded component payload.
type ComponentAdded struct {
	EntityID    types.EntityID    `json:"entityId"`
	ComponentID types.ComponentID `json:"componentId"`
	Component   string            `json:"component"`
	Data        json.RawMessage   `json:"data"`
}

func (ComponentAdded) Kind() Kind { return KindComponentAdded }

// ComponentUpdated is emitted when an already attached component's data is
// replaced.
type ComponentUpdated struct {
	EntityID    types.EntityID    `json:"entityId"`
	ComponentID types.ComponentID `json:"componentId"`
	Component   string            `json:"component"`
	Data        json.RawMessage   `json:"data"`
}

func (ComponentUpdated) Kind() Kind { return KindComponentUpdated }

// ComponentRemoved is emitted after a component is detached from an entity.
type ComponentRemoved struct {
	EntityID    types.EntityID    `json:"entityId"`
	ComponentID types.ComponentID `json:"componentId"`
	Component   string            `json:"component"`
}

func (ComponentRemoved) Kind() Kind { return KindComponentRemoved }
