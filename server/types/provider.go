package types

import (
	"github.com/meshforge/scenecore/types"
)

// Provider is the read-only slice of a scene the inspector serves. The root
// package's Scene satisfies it; handlers never see the mutation surface.
type Provider interface {
	IsReady() bool
	EntityCount() int
	Entities() []types.EntityID
	Components(id types.EntityID) []types.Component
	GetComponentByName(name string) (types.ComponentMetadata, error)
	RegisteredComponents() []types.ComponentMetadata
	HasTag(id types.EntityID, tag string) bool
	AllTags() []string
	EntitySnapshot(id types.EntityID) (types.DebugStateElement, error)
}
