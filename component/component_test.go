package component_test

import (
	"testing"

	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/types"
)

type Transform struct {
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

func (Transform) Name() string { return "Transform" }

type MeshRenderer struct {
	Mesh     string `json:"mesh"`
	Material string `json:"material"`
}

func (MeshRenderer) Name() string { return "MeshRenderer" }

func TestMetadataReflectsNameAndSchema(t *testing.T) {
	meta, err := component.NewComponentMetadata[Transform]()
	assert.NilError(t, err)

	assert.Equal(t, "Transform", meta.Name())
	assert.Assert(t, len(meta.GetSchema()) > 0)

	ok, err := types.IsComponentValid(Transform{}, meta.GetSchema())
	assert.NilError(t, err)
	assert.True(t, ok)
}

func TestSetIDOnlyOnce(t *testing.T) {
	meta, err := component.NewComponentMetadata[Transform]()
	assert.NilError(t, err)

	assert.NilError(t, meta.SetID(3))
	// Setting the same id again is allowed so a component type can be reused
	// across scenes in tests.
	assert.NilError(t, meta.SetID(3))
	assert.IsError(t, meta.SetID(4))
	assert.Equal(t, types.ComponentID(3), meta.ID())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	meta, err := component.NewComponentMetadata[Transform]()
	assert.NilError(t, err)

	in := Transform{Position: [3]float64{1, 2, 3}, Scale: [3]float64{1, 1, 1}}
	bz, err := meta.Encode(in)
	assert.NilError(t, err)

	out, err := meta.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	meta, err := component.NewComponentMetadata[MeshRenderer]()
	assert.NilError(t, err)

	_, err = meta.DecodeStrict([]byte(`{"mesh":"cube","materail":"steel"}`))
	assert.ErrorIs(t, err, types.ErrComponentSchemaMismatch)

	_, err = meta.DecodeStrict([]byte(`{"mesh":42}`))
	assert.ErrorIs(t, err, types.ErrComponentSchemaMismatch)

	got, err := meta.DecodeStrict([]byte(`{"mesh":"cube","material":"steel"}`))
	assert.NilError(t, err)
	assert.Equal(t, MeshRenderer{Mesh: "cube", Material: "steel"}, got)
}

func TestValidateAgainstSchema(t *testing.T) {
	transform, err := component.NewComponentMetadata[Transform]()
	assert.NilError(t, err)
	renderer, err := component.NewComponentMetadata[MeshRenderer]()
	assert.NilError(t, err)

	assert.NilError(t, transform.ValidateAgainstSchema(transform.GetSchema()))
	assert.ErrorIs(t, transform.ValidateAgainstSchema(renderer.GetSchema()), types.ErrComponentSchemaMismatch)
}

func TestNewUsesDefaultValue(t *testing.T) {
	def := MeshRenderer{Mesh: "cube", Material: "default"}
	meta, err := component.NewComponentMetadata[MeshRenderer](component.WithDefault(def))
	assert.NilError(t, err)

	bz, err := meta.New()
	assert.NilError(t, err)

	got, err := meta.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, def, got)
}
