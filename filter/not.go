package filter

import (
	"github.com/meshforge/scenecore/types"
)

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

type not struct {
	filter ComponentFilter
}

func (f *not) MatchesComponents(components []types.Component) bool {
	return !f.filter.MatchesComponents(components)
}
