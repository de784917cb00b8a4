package scenecore

import (
	"github.com/meshforge/scenecore/filter"
	"github.com/meshforge/scenecore/types"
)

type (
	// EntityID represents a single entity in the scene. The zero EntityID is
	// never a live entity.
	EntityID    = types.EntityID
	ComponentID = types.ComponentID
	Component   = types.Component
)

var (
	All      = filter.All
	And      = filter.And
	Or       = filter.Or
	Not      = filter.Not
	Contains = filter.Contains
	Exact    = filter.Exact
)
