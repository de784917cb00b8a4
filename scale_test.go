package scenecore_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meshforge/scenecore"
	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/testutils"
)

// populateScene creates a scene holding n entities, each with a Transform,
// every tenth with a MeshRenderer on top.
func populateScene(t testing.TB, n int) *scenecore.Scene {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	s := testutils.NewMemoryScene(t, scenecore.WithServerDisabled())
	assert.NilError(t, scenecore.RegisterComponent[Transform](s))
	assert.NilError(t, scenecore.RegisterComponent[MeshRenderer](s))

	for i := 0; i < n; i++ {
		id, err := s.CreateEntity(fmt.Sprintf("entity-%d", i))
		assert.NilError(t, err)
		assert.NilError(t, scenecore.AddComponent(s, id, Transform{Position: [3]float64{float64(i), 0, 0}}))
		if i%10 == 0 {
			assert.NilError(t, scenecore.AddComponent(s, id, MeshRenderer{Mesh: "chunk"}))
		}
	}
	return s
}

// timeQueries measures a fixed batch of full listings against the scene.
func timeQueries(t testing.TB, s *scenecore.Scene, rounds int) time.Duration {
	start := time.Now()
	for i := 0; i < rounds; i++ {
		all := s.Query().ListAllEntities()
		if len(all) == 0 {
			t.Fatal("expected a populated scene")
		}
		with, err := s.Query().ListEntitiesWithComponent("Transform")
		assert.NilError(t, err)
		if len(with) != len(all) {
			t.Fatalf("index out of sync: %d != %d", len(with), len(all))
		}
	}
	return time.Since(start)
}

// Listing queries must stay proportional to the number of entities. A
// quadratic regression shows up as a ~100x jump between the two sizes below,
// which the generous 30x bound still catches reliably on noisy CI machines.
func TestQueryCostScalesLinearly(t *testing.T) {
	const rounds = 50

	small := populateScene(t, 1_000)
	smallElapsed := timeQueries(t, small, rounds)

	big := populateScene(t, 10_000)
	bigElapsed := timeQueries(t, big, rounds)

	floor := 2 * time.Millisecond
	if smallElapsed < floor {
		smallElapsed = floor
	}
	assert.True(t, bigElapsed < 30*smallElapsed,
		"10,000-entity queries took %v, more than 30x the 1,000-entity %v", bigElapsed, smallElapsed)
}

func TestCreationCostScalesLinearly(t *testing.T) {
	start := time.Now()
	populateScene(t, 1_000)
	smallElapsed := time.Since(start)

	start = time.Now()
	populateScene(t, 10_000)
	bigElapsed := time.Since(start)

	floor := 2 * time.Millisecond
	if smallElapsed < floor {
		smallElapsed = floor
	}
	assert.True(t, bigElapsed < 30*smallElapsed,
		"creating 10,000 entities took %v, more than 30x the 1,000-entity %v", bigElapsed, smallElapsed)
}

func BenchmarkCreateEntityWithComponent(b *testing.B) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	s := testutils.NewMemoryScene(b, scenecore.WithServerDisabled())
	assert.NilError(b, scenecore.RegisterComponent[Transform](s))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, err := s.CreateEntity("bench")
		if err != nil {
			b.Fatal(err)
		}
		if err := scenecore.AddComponent(s, id, Transform{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkListEntitiesWithComponent(b *testing.B) {
	for n := 100; n <= 10_000; n *= 10 {
		s := populateScene(b, n)
		b.Run(fmt.Sprintf("%d entities", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := s.Query().ListEntitiesWithComponent("Transform"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	s := populateScene(b, 1)
	id := s.Entities()[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := scenecore.GetComponent[Transform](s, id); !ok {
			b.Fatal("component missing")
		}
	}
}

func BenchmarkSnapshot(b *testing.B) {
	for n := 100; n <= 10_000; n *= 10 {
		s := populateScene(b, n)
		b.Run(fmt.Sprintf("%d entities", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := s.Snapshot(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
