package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/meshforge/scenecore"
)

// NewTestScene creates a Scene suitable for unit tests, backed by a miniredis
// instance that is cleaned up with the test. The scene is not started;
// register component types first, then call Start if the test needs the
// lifecycle.
func NewTestScene(t testing.TB, opts ...scenecore.SceneOption) *scenecore.Scene {
	// Init testing environment
	s := miniredis.RunT(t)
	return NewTestSceneWithCustomRedis(t, s, opts...)
}

// NewTestSceneWithCustomRedis creates a test Scene on a caller-owned
// miniredis, so two scenes can share one storage backend.
func NewTestSceneWithCustomRedis(
	t testing.TB,
	miniRedis *miniredis.Miniredis,
	opts ...scenecore.SceneOption,
) *scenecore.Scene {
	t.Setenv("REDIS_ADDRESS", miniRedis.Addr())

	scene, err := scenecore.NewScene(opts...)
	if err != nil {
		t.Fatalf("Unable to initialize test scene: %v", err)
	}
	return scene
}

// NewMemoryScene creates a test Scene with no storage attached at all.
func NewMemoryScene(t testing.TB, opts ...scenecore.SceneOption) *scenecore.Scene {
	t.Setenv("REDIS_ADDRESS", "")

	scene, err := scenecore.NewScene(opts...)
	if err != nil {
		t.Fatalf("Unable to initialize test scene: %v", err)
	}
	return scene
}
