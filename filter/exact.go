package filter

import (
	"github.com/meshforge/scenecore/types"
)

type exact struct {
	components []types.Component
}

// Exact matches entities that hold exactly the components specified, no more
// and no fewer.
func Exact(components ...ComponentWrapper) ComponentFilter {
	return exact{
		components: unwrap(components),
	}
}

func (f exact) MatchesComponents(components []types.Component) bool {
	if len(components) != len(f.components) {
		return false
	}
	for _, componentType := range components {
		if !MatchComponent(f.components, componentType) {
			return false
		}
	}
	return true
}
