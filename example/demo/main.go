// A small authoring session against a live scene. The demo builds a desk
// corner out of a handful of entities, runs a couple of text queries, then
// keeps the inspector server running so its endpoints can be poked at:
//
//	curl localhost:4040/scene
//	curl localhost:4040/debug/state
//	curl -d '{"query":"TAG(lighting)"}' -H 'Content-Type: application/json' localhost:4040/query
//
// A websocket client on ws://localhost:4040/events sees the mutation stream;
// the demo flushes it on a fixed cadence the way an editor does once per
// frame. Set REDIS_ADDRESS to give the scene a document store; the demo then
// saves the level after building it, so a restart reopens the same document.
package main

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meshforge/scenecore"
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

type PointLight struct {
	Color     [3]float64 `json:"color"`
	Intensity float64    `json:"intensity"`
}

func (PointLight) Name() string { return "PointLight" }

func main() {
	scene, err := scenecore.NewScene(
		scenecore.WithPrettyLog(),
		scenecore.WithSceneName("demo-level"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	Must(
		scenecore.RegisterComponent[Transform](scene),
		scenecore.RegisterComponent[MeshRenderer](scene),
		scenecore.RegisterComponent[PointLight](scene),
	)

	Must(scene.Start())

	// A save from an earlier run already holds the level.
	if scene.EntityCount() == 0 {
		buildLevel(scene)
		if err := scene.Save(); err != nil {
			log.Warn().Err(err).Msg("level not saved")
		}
	}

	lit, err := scene.RunQuery("CONTAINS(Transform) & TAG(lighting)")
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	for _, id := range lit {
		name, _ := scene.EntityName(id)
		log.Info().Uint64("id", uint64(id)).Str("name", name).Msg("lit by query")
	}

	for range time.Tick(200 * time.Millisecond) {
		scene.FlushEvents()
	}
}

func buildLevel(scene *scenecore.Scene) {
	desk := mustCreate(scene, "Desk")
	Must(scenecore.AddComponent(scene, desk, Transform{
		Position: [3]float64{0, 0, 0},
		Scale:    [3]float64{1, 1, 1},
	}))
	Must(scenecore.AddComponent(scene, desk, MeshRenderer{Mesh: "desk.glb", Material: "oak"}))

	lamp := mustCreate(scene, "Desk Lamp", scenecore.WithParent(desk))
	Must(scenecore.AddComponent(scene, lamp, Transform{
		Position: [3]float64{0.4, 0.75, -0.2},
		Scale:    [3]float64{1, 1, 1},
	}))
	Must(scenecore.AddComponent(scene, lamp, PointLight{
		Color:     [3]float64{1, 0.85, 0.6},
		Intensity: 40,
	}))
	Must(scene.AddTag(lamp, "lighting"))

	monitor := mustCreate(scene, "Monitor", scenecore.WithParent(desk))
	Must(scenecore.AddComponent(scene, monitor, Transform{
		Position: [3]float64{-0.1, 0.78, -0.25},
		Scale:    [3]float64{1, 1, 1},
	}))
	Must(scenecore.AddComponent(scene, monitor, MeshRenderer{Mesh: "monitor.glb", Material: "plastic"}))

	ceiling := mustCreate(scene, "Ceiling Light")
	Must(scenecore.AddComponent(scene, ceiling, Transform{
		Position: [3]float64{0, 2.6, 0},
		Scale:    [3]float64{1, 1, 1},
	}))
	Must(scenecore.AddComponent(scene, ceiling, PointLight{
		Color:     [3]float64{1, 1, 1},
		Intensity: 120,
	}))
	Must(scene.AddTag(ceiling, "lighting"))

	log.Info().Int("entities", scene.EntityCount()).Msg("level built")
}

func mustCreate(scene *scenecore.Scene, name string, opts ...scenecore.CreateOption) types.EntityID {
	id, err := scene.CreateEntity(name, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	return id
}

func Must(err ...error) {
	e := errors.Join(err...)
	if e != nil {
		log.Fatal().Err(e).Msg("")
	}
}
