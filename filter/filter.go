package filter

import (
	"github.com/meshforge/scenecore/types"
)

// ComponentFilter is a filter that filters entities based on their components.
type ComponentFilter interface {
	// MatchesComponents returns true if the entity matches the filter.
	MatchesComponents(components []types.Component) bool
}

// ComponentWrapper wraps a Component type for filtering purposes.
type ComponentWrapper struct {
	Component types.Component
}

// Component returns a ComponentWrapper for the given component type T.
// The zero value of T carries the component name, which is all matching
// needs.
func Component[T types.Component]() ComponentWrapper {
	var x T
	return ComponentWrapper{
		Component: x,
	}
}

func unwrap(wrapped []ComponentWrapper) []types.Component {
	components := make([]types.Component, 0, len(wrapped))
	for _, w := range wrapped {
		components = append(components, w.Component)
	}
	return components
}
