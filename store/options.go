package store

import "github.com/meshforge/scenecore/types"

// CreateOption configures a single CreateEntity call.
type CreateOption func(*createConfig)

type createConfig struct {
	parent       types.EntityID
	hasParent    bool
	persistentID string
}

// WithParent places the new entity under parent instead of at the root.
func WithParent(parent types.EntityID) CreateOption {
	return func(cfg *createConfig) {
		cfg.parent = parent
		cfg.hasParent = true
	}
}

// WithPersistentID reserves the given stable id for the new entity instead
// of generating one. Used when loading documents that already carry ids.
func WithPersistentID(id string) CreateOption {
	return func(cfg *createConfig) {
		cfg.persistentID = id
	}
}
