package types

// EntityID identifies an entity within a single scene. The low 32 bits hold
// the entity's slot index and the high 32 bits hold the slot's generation at
// allocation time. Recycling a slot bumps its generation, so an id kept
// around after its entity was destroyed stops matching instead of silently
// aliasing whatever entity reuses the slot.
//
// The zero EntityID is never allocated and can be used as a "no entity"
// value.
type EntityID uint64

// NewEntityID packs a slot index and generation into an EntityID.
func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index encoded in the id.
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation returns the slot generation the id was allocated under.
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}
