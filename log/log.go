// Package log carries the structured logging helpers shared across the
// module: loggers are zerolog, events carry snake_case keys, and scene state
// is logged as arrays of component dictionaries.
package log

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/meshforge/scenecore/types"
)

// Loggable exposes the registered component table for logging.
type Loggable interface {
	GetComponents() []types.ComponentMetadata
}

func loadComponentIntoArrayLogger(
	component types.ComponentMetadata,
	arrayLogger *zerolog.Array,
) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(component.ID()))
	dictLogger = dictLogger.Str("component_name", component.Name())
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.GetComponents()
	sort.Slice(components, func(i, j int) bool {
		return components[i].ID() < components[j].ID()
	})
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, comp := range components {
		arrayLogger = loadComponentIntoArrayLogger(comp, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func loadEntityIntoEvent(
	zeroLoggerEvent *zerolog.Event, entityID types.EntityID,
	components []types.ComponentMetadata, tags []string,
) *zerolog.Event {
	arrayLogger := zerolog.Arr()
	for _, comp := range components {
		arrayLogger = loadComponentIntoArrayLogger(comp, arrayLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	tagLogger := zerolog.Arr()
	for _, entityTag := range tags {
		tagLogger = tagLogger.Str(entityTag)
	}
	zeroLoggerEvent.Array("tags", tagLogger)
	return zeroLoggerEvent.Uint64("entity_id", uint64(entityID))
}

// Entity logs one entity: its id, held components, and tags.
func Entity(
	logger *zerolog.Logger,
	level zerolog.Level, entityID types.EntityID,
	components []types.ComponentMetadata, tags []string,
) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadEntityIntoEvent(zeroLoggerEvent, entityID, components, tags).Send()
}

// Scene logs the whole scene shape: the component table plus entity count.
func Scene(logger *zerolog.Logger, target Loggable, entityCount int, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Int("total_entities", entityCount)
	zeroLoggerEvent.Send()
}

// CreateSceneLogger creates a sub logger with the entry {"scene": sceneName}.
func CreateSceneLogger(logger *zerolog.Logger, sceneName string) *zerolog.Logger {
	newLogger := logger.With().Str("scene", sceneName).Logger()
	return &newLogger
}
