package types

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ComponentID is the scene-local numeric id assigned to a component type at
// registration time. Ids are assigned in registration order and are not
// stable across sessions; persistence always refers to components by name.
type ComponentID int

// Component is the interface a user-defined struct implements to become a
// component type.
type Component interface {
	// Name returns the name of the component type. Names are unique within a
	// scene and are the keys used in serialized documents.
	Name() string
}

// ComponentMetadata wraps a user-defined Component struct and provides the
// functionality the core needs internally: identity, codec round-trips, and
// schema validation.
type ComponentMetadata interface {
	// SetID sets the ComponentID of this component type. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component type.
	ID() ComponentID
	// New returns the marshaled bytes of the default value for the component struct.
	New() ([]byte, error)
	Encode(any) ([]byte, error)
	Decode([]byte) (Component, error)
	// DecodeStrict decodes a raw payload, rejecting fields that are not part
	// of the component type. This is the validation path for payloads coming
	// from documents or the network.
	DecodeStrict([]byte) (Component, error)
	GetSchema() []byte
	// ValidateAgainstSchema compares the component type's reflected schema
	// with the target schema, returning ErrComponentSchemaMismatch if they
	// differ.
	ValidateAgainstSchema(targetSchema []byte) error

	Component
}

// ComponentSnapshot is one entry of an entity's component listing: the
// component type name and the encoded component data.
type ComponentSnapshot struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// SerializeComponentSchema returns the reflected JSON schema of a component.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsComponentValid reports whether the component's reflected schema matches
// the given schema bytes.
func IsComponentValid(component Component, jsonSchemaBytes []byte) (bool, error) {
	componentSchemaBytes, err := SerializeComponentSchema(component)
	if err != nil {
		return false, err
	}
	return IsSchemaValid(componentSchemaBytes, jsonSchemaBytes)
}

// IsSchemaValid reports whether two JSON schemas are equivalent.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
