package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/component"
	"github.com/meshforge/scenecore/log"
	"github.com/meshforge/scenecore/types"
)

type Transform struct {
	Position [3]float64 `json:"position"`
}

func (Transform) Name() string { return "Transform" }

func newRegistry(t *testing.T) *component.Manager {
	t.Helper()
	registry := component.NewManager(nil)
	meta, err := component.NewComponentMetadata[Transform]()
	assert.NilError(t, err)
	assert.NilError(t, registry.RegisterComponent(meta))
	return registry
}

func TestEntityLogsComponentsAndTags(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	registry := newRegistry(t)
	meta, err := registry.GetComponentByName("Transform")
	assert.NilError(t, err)

	log.Entity(&logger, zerolog.DebugLevel, types.EntityID(7),
		[]types.ComponentMetadata{meta}, []string{"hero", "player"})

	line := buf.String()
	assert.Contains(t, line, `"entity_id":7`)
	assert.Contains(t, line, `"component_name":"Transform"`)
	assert.Contains(t, line, `"tags":["hero","player"]`)
}

func TestSceneLogsEntityCount(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	log.Scene(&logger, newRegistry(t), 42, zerolog.InfoLevel)

	assert.Contains(t, buf.String(), `"total_entities":42`)
}

func TestCreateSceneLoggerAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sub := log.CreateSceneLogger(&logger, "main")
	sub.Info().Msg("hello")

	line := buf.String()
	assert.Contains(t, line, `"scene":"main"`)
	assert.True(t, strings.Contains(line, `"message":"hello"`))
}
