package index

import (
	"fmt"

	"github.com/meshforge/scenecore/types"
)

// Discrepancy describes one disagreement between a live index and the state
// recomputed from ground truth. Produced by the diagnostic validation pass;
// an empty list means every index exactly mirrors the store.
type Discrepancy struct {
	// Index names the structure that disagrees: "entity", "component",
	// "hierarchy", or "tag".
	Index string `json:"index"`
	// Detail is a human-readable description of the disagreement.
	Detail string `json:"detail"`
	// EntityID is the entity the disagreement concerns, when there is one.
	EntityID types.EntityID `json:"entityId,omitempty"`
}

func (d Discrepancy) String() string {
	if d.EntityID != 0 {
		return fmt.Sprintf("%s index: entity %d: %s", d.Index, d.EntityID, d.Detail)
	}
	return fmt.Sprintf("%s index: %s", d.Index, d.Detail)
}
