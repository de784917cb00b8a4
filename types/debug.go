package types

import "encoding/json"

type DebugStateRequest struct{}

// DebugStateElement is one entity's full state as reported by the inspector:
// identity, hierarchy position, tags, and every component keyed by type name.
type DebugStateElement struct {
	ID           EntityID                   `json:"id"`
	PersistentID string                     `json:"persistentId"`
	Name         string                     `json:"name,omitempty"`
	Parent       *EntityID                  `json:"parent,omitempty"`
	Tags         []string                   `json:"tags,omitempty"`
	Components   map[string]json.RawMessage `json:"components"`
}

type DebugStateResponse []DebugStateElement
