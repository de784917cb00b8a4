package query

import (
	"github.com/meshforge/scenecore/filter"
	"github.com/meshforge/scenecore/types"
)

// CallbackFn is called once per matching entity. Return false to stop the
// iteration early.
type CallbackFn func(types.EntityID) bool

// Search visits entities whose component set matches a filter. Matching
// reads component values from ground truth, so build searches through the
// facade rather than holding them across mutations.
type Search struct {
	facade *Facade
	filter filter.ComponentFilter
}

// Each iterates over all entities that match the search, in ascending id
// order. Return false from the callback to stop, true to continue.
func (s *Search) Each(callback CallbackFn) {
	for _, id := range s.facade.store.Entities() {
		if !s.filter.MatchesComponents(s.facade.store.Components(id)) {
			continue
		}
		if !callback(id) {
			return
		}
	}
}

// Count returns the number of entities that match the search.
func (s *Search) Count() int {
	count := 0
	s.Each(func(types.EntityID) bool {
		count++
		return true
	})
	return count
}

// First returns the lowest-id entity that matches the search.
func (s *Search) First() (types.EntityID, bool) {
	var first types.EntityID
	found := false
	s.Each(func(id types.EntityID) bool {
		first = id
		found = true
		return false
	})
	return first, found
}

// MustFirst is First for callers that know a match exists.
func (s *Search) MustFirst() types.EntityID {
	id, ok := s.First()
	if !ok {
		panic("no entity matches the search")
	}
	return id
}

// Collect returns every matching entity id in ascending order.
func (s *Search) Collect() []types.EntityID {
	var out []types.EntityID
	s.Each(func(id types.EntityID) bool {
		out = append(out, id)
		return true
	})
	return out
}
