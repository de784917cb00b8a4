package store

import "github.com/rotisserie/eris"

var (
	// ErrEntityDoesNotExist is returned when an operation references an
	// entity id that was never created or has since been destroyed.
	ErrEntityDoesNotExist = eris.New("entity does not exist")

	// ErrHierarchyCycle is returned when a reparent would make an entity
	// its own ancestor.
	ErrHierarchyCycle = eris.New("reparent would create a cycle")

	// ErrMutationInProgress is returned when an event handler attempts to
	// mutate the entity whose change it is currently reacting to.
	ErrMutationInProgress = eris.New("entity mutation already in progress")
)
