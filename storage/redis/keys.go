package redis

import "fmt"

func (r *SchemaStorage) schemaStorageKey() string {
	return fmt.Sprintf("%s:COMPONENT_NAME_TO_SCHEMA_DATA", r.Namespace)
}

func (r *SceneStorage) sceneStorageKey() string {
	return fmt.Sprintf("%s:SCENE_NAME_TO_DOCUMENT", r.Namespace)
}
