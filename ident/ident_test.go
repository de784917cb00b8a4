package ident_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/ident"
)

func TestGenerateProducesValidV4(t *testing.T) {
	svc := ident.NewService()
	id := svc.Generate()

	assert.NilError(t, ident.Validate(id))
	assert.False(t, svc.IsReserved(id), "Generate must not reserve")
}

func TestReserveAndRelease(t *testing.T) {
	svc := ident.NewService()
	id := svc.Generate()

	assert.NilError(t, svc.Reserve(id))
	assert.True(t, svc.IsReserved(id))
	assert.Equal(t, 1, svc.ReservedCount())

	assert.ErrorIs(t, svc.Reserve(id), ident.ErrAlreadyReserved)

	svc.Release(id)
	assert.False(t, svc.IsReserved(id))

	// Releasing again is a no-op.
	svc.Release(id)
	assert.Equal(t, 0, svc.ReservedCount())
}

func TestReserveRejectsMalformedIDs(t *testing.T) {
	svc := ident.NewService()

	for _, bad := range []string{
		"",
		"not-a-uuid",
		"123e4567-e89b-12d3-a456-42661417400", // one hex digit short
	} {
		assert.ErrorIs(t, svc.Reserve(bad), ident.ErrInvalidID, "id %q", bad)
	}

	// Well-formed but not version 4.
	v1 := "c232ab00-9414-11ec-b3c8-9f68deced846"
	assert.ErrorIs(t, svc.Reserve(v1), ident.ErrInvalidID)
	assert.Equal(t, 0, svc.ReservedCount())
}

func TestGenerateUniqueReserves(t *testing.T) {
	svc := ident.NewService()

	first, err := svc.GenerateUnique()
	assert.NilError(t, err)
	assert.True(t, svc.IsReserved(first))

	second, err := svc.GenerateUnique()
	assert.NilError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, svc.ReservedCount())

	parsed, err2 := uuid.Parse(second)
	assert.NilError(t, err2)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestClearDropsReservations(t *testing.T) {
	svc := ident.NewService()
	id, err := svc.GenerateUnique()
	assert.NilError(t, err)

	svc.Clear()
	assert.False(t, svc.IsReserved(id))
	assert.Equal(t, 0, svc.ReservedCount())
}
