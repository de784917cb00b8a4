package filter

import (
	"github.com/meshforge/scenecore/types"
)

type all struct {
}

func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.Component) bool {
	return true
}
