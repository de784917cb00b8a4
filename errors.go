package scenecore

import (
	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/ident"
	"github.com/meshforge/scenecore/storage/redis"
	"github.com/meshforge/scenecore/store"
	"github.com/meshforge/scenecore/types"
)

// The sentinels callers match with eris.Is. Re-exported here so users of the
// facade never import the subsystem packages just to classify an error.
var (
	ErrEntityDoesNotExist         = store.ErrEntityDoesNotExist
	ErrHierarchyCycle             = store.ErrHierarchyCycle
	ErrMutationInProgress         = store.ErrMutationInProgress
	ErrInvalidPersistentID        = ident.ErrInvalidID
	ErrPersistentIDInUse          = ident.ErrAlreadyReserved
	ErrPersistentIDSpaceExhausted = ident.ErrExhausted
	ErrComponentNotRegistered     = component.ErrComponentNotRegistered
	ErrComponentAlreadyRegistered = component.ErrComponentAlreadyRegistered
	ErrComponentSchemaMismatch    = types.ErrComponentSchemaMismatch
	ErrNoSceneFound               = redis.ErrNoSceneFound
)
