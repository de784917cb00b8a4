package component

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/storage/redis"
	"github.com/meshforge/scenecore/types"
)

var (
	ErrComponentNotRegistered     = eris.New("component not registered")
	ErrComponentAlreadyRegistered = eris.New("component already registered")
)

// SchemaStorage persists component schemas across sessions so the manager
// can detect a component definition drifting away from the one a stored
// project was saved under.
type SchemaStorage interface {
	GetSchema(componentName string) ([]byte, error)
	SetSchema(componentName string, schemaData []byte) error
}

// Manager owns the schema table: every component type registered with the
// scene, keyed by name, with the scene-local ComponentID assignment.
type Manager struct {
	registeredComponents map[string]types.ComponentMetadata
	componentsByID       map[types.ComponentID]types.ComponentMetadata
	nextComponentID      types.ComponentID
	schemaStorage        SchemaStorage
}

// NewManager creates a new component manager. schemaStorage may be nil, in
// which case schemas are not pinned across sessions.
func NewManager(schemaStorage SchemaStorage) *Manager {
	return &Manager{
		registeredComponents: make(map[string]types.ComponentMetadata),
		componentsByID:       make(map[types.ComponentID]types.ComponentMetadata),
		nextComponentID:      1,
		schemaStorage:        schemaStorage,
	}
}

// RegisterComponent registers a component type with the manager. There can
// only be one component type with a given name, declared by the user through
// the Name() method. A duplicate name fails and leaves the table unchanged.
func (m *Manager) RegisterComponent(compMetadata types.ComponentMetadata) error {
	if _, ok := m.registeredComponents[compMetadata.Name()]; ok {
		return eris.Wrap(ErrComponentAlreadyRegistered,
			fmt.Sprintf("component %q is already registered", compMetadata.Name()))
	}

	if m.schemaStorage != nil {
		if err := m.validateOrPinSchema(compMetadata); err != nil {
			return err
		}
	}

	// Assign the id only after schema validation, so a rejected component is
	// not registered and does not burn an id.
	if err := compMetadata.SetID(m.nextComponentID); err != nil {
		return err
	}
	m.registeredComponents[compMetadata.Name()] = compMetadata
	m.componentsByID[compMetadata.ID()] = compMetadata
	m.nextComponentID++

	return nil
}

// validateOrPinSchema checks the registering component's schema against the
// stored one, or stores it when this is the first session to see the type.
func (m *Manager) validateOrPinSchema(compMetadata types.ComponentMetadata) error {
	storedSchema, err := m.schemaStorage.GetSchema(compMetadata.Name())
	if err != nil && !eris.Is(err, redis.ErrNoSchemaFound) {
		return err
	}

	if storedSchema == nil {
		return m.schemaStorage.SetSchema(compMetadata.Name(), compMetadata.GetSchema())
	}

	if err := compMetadata.ValidateAgainstSchema(storedSchema); err != nil {
		if eris.Is(eris.Cause(err), types.ErrComponentSchemaMismatch) {
			return eris.Wrap(err,
				fmt.Sprintf("component %q does not match the schema stored in storage", compMetadata.Name()),
			)
		}
		return eris.Wrap(err, "error when validating component schema against stored schema in storage")
	}
	return nil
}

// GetComponents returns a list of all registered component types.
// Note: The order of the components in the list is not deterministic.
func (m *Manager) GetComponents() []types.ComponentMetadata {
	registeredComponents := make([]types.ComponentMetadata, 0, len(m.registeredComponents))
	for _, comp := range m.registeredComponents {
		registeredComponents = append(registeredComponents, comp)
	}
	return registeredComponents
}

// GetComponentByName returns the component metadata for the given name.
func (m *Manager) GetComponentByName(name string) (types.ComponentMetadata, error) {
	c, ok := m.registeredComponents[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component %q is not registered", name))
	}
	return c, nil
}

// GetComponentByID returns the component metadata for the given id.
func (m *Manager) GetComponentByID(id types.ComponentID) (types.ComponentMetadata, error) {
	c, ok := m.componentsByID[id]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component id %d is not registered", id))
	}
	return c, nil
}

// ComponentCount returns the number of registered component types.
func (m *Manager) ComponentCount() int {
	return len(m.registeredComponents)
}
