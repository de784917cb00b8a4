package scenecore_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/meshforge/scenecore"
	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/events"
	"github.com/meshforge/scenecore/testutils"
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

type RigidBody struct {
	Mass float64 `json:"mass"`
}

func (RigidBody) Name() string { return "RigidBody" }

func newScene(t *testing.T) *scenecore.Scene {
	s := testutils.NewMemoryScene(t, scenecore.WithServerDisabled())
	assert.NilError(t, scenecore.RegisterComponent[Transform](s))
	assert.NilError(t, scenecore.RegisterComponent[MeshRenderer](s))
	assert.NilError(t, scenecore.RegisterComponent[RigidBody](s))
	return s
}

func TestDeleteEntityLeavesNoTrace(t *testing.T) {
	s := newScene(t)

	parent, err := s.CreateEntity("Parent")
	assert.NilError(t, err)
	child, err := s.CreateEntity("Child", scenecore.WithParent(parent))
	assert.NilError(t, err)

	assert.NilError(t, scenecore.AddComponent(s, parent, Transform{Scale: [3]float64{1, 1, 1}}))
	assert.NilError(t, scenecore.AddComponent(s, parent, MeshRenderer{Mesh: "cube"}))
	assert.NilError(t, s.AddTag(parent, "static"))
	pid, err := s.PersistentID(parent)
	assert.NilError(t, err)

	assert.NilError(t, s.DeleteEntity(parent))

	assert.False(t, s.Alive(parent))
	assert.False(t, s.Query().HasEntity(parent))
	withTransform, err := s.Query().ListEntitiesWithComponent("Transform")
	assert.NilError(t, err)
	assert.Len(t, withTransform, 0)
	assert.Len(t, s.Query().FindByTag("static"), 0)
	_, ok := s.EntityByPersistentID(pid)
	assert.False(t, ok)

	// The child survives and becomes a root.
	assert.True(t, s.Alive(child))
	_, ok = s.Parent(child)
	assert.False(t, ok)
	assert.Contains(t, s.Query().Roots(), child)

	assert.Len(t, s.ValidateIndices(), 0)
}

func TestComponentIndexMatchesGroundTruth(t *testing.T) {
	s := newScene(t)

	a, err := s.CreateEntity("a")
	assert.NilError(t, err)
	b, err := s.CreateEntity("b")
	assert.NilError(t, err)
	c, err := s.CreateEntity("c")
	assert.NilError(t, err)

	groundTruth := func() []scenecore.EntityID {
		var with []scenecore.EntityID
		for _, id := range []scenecore.EntityID{a, b, c} {
			if _, ok := scenecore.GetComponent[Transform](s, id); ok {
				with = append(with, id)
			}
		}
		return with
	}
	checkIndex := func() {
		indexed, err := s.Query().ListEntitiesWithComponent("Transform")
		assert.NilError(t, err)
		assert.ElementsMatch(t, groundTruth(), indexed)
	}

	assert.NilError(t, scenecore.AddComponent(s, a, Transform{}))
	checkIndex()
	assert.NilError(t, scenecore.AddComponent(s, c, Transform{}))
	checkIndex()
	// An update must not duplicate the index entry.
	assert.NilError(t, scenecore.AddComponent(s, a, Transform{Scale: [3]float64{2, 2, 2}}))
	checkIndex()
	assert.NilError(t, scenecore.RemoveComponent[Transform](s, a))
	checkIndex()
	assert.NilError(t, s.DeleteEntity(c))
	checkIndex()
	assert.Len(t, s.ValidateIndices(), 0)
}

func TestRemovalsAreIdempotent(t *testing.T) {
	s := newScene(t)

	id, err := s.CreateEntity("thing")
	assert.NilError(t, err)

	// Nothing below has been added, so nothing below should complain.
	assert.NilError(t, scenecore.RemoveComponent[Transform](s, id))
	s.RemoveTag(id, "missing")
	assert.NilError(t, s.DeleteEntity(id))
	assert.NilError(t, s.DeleteEntity(id))
	assert.NilError(t, scenecore.RemoveComponent[Transform](s, id))
}

func TestReparentMovesChildBetweenParents(t *testing.T) {
	s := newScene(t)

	parent, err := s.CreateEntity("Parent")
	assert.NilError(t, err)
	otherParent, err := s.CreateEntity("OtherParent")
	assert.NilError(t, err)
	child, err := s.CreateEntity("Child", scenecore.WithParent(parent))
	assert.NilError(t, err)

	assert.NilError(t, s.SetParent(child, otherParent))

	assert.Len(t, s.Query().Children(parent), 0)
	assert.Contains(t, s.Query().Children(otherParent), child)
	got, ok := s.Parent(child)
	assert.True(t, ok)
	assert.Equal(t, otherParent, got)
}

func TestHierarchyCycleRejected(t *testing.T) {
	s := newScene(t)

	grandparent, err := s.CreateEntity("grandparent")
	assert.NilError(t, err)
	parent, err := s.CreateEntity("parent", scenecore.WithParent(grandparent))
	assert.NilError(t, err)
	child, err := s.CreateEntity("child", scenecore.WithParent(parent))
	assert.NilError(t, err)

	err = s.SetParent(grandparent, child)
	assert.ErrorIs(t, err, scenecore.ErrHierarchyCycle)
	err = s.SetParent(parent, parent)
	assert.ErrorIs(t, err, scenecore.ErrHierarchyCycle)

	// The failed attempts must not have moved anything.
	got, ok := s.Parent(parent)
	assert.True(t, ok)
	assert.Equal(t, grandparent, got)
	_, ok = s.Parent(grandparent)
	assert.False(t, ok)
}

func TestComponentSetQueries(t *testing.T) {
	s := newScene(t)

	e, err := s.CreateEntity("drawable")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, e, Transform{}))
	assert.NilError(t, scenecore.AddComponent(s, e, MeshRenderer{Mesh: "sphere"}))

	physicsOnly, err := s.CreateEntity("physics-only")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, physicsOnly, RigidBody{Mass: 10}))

	both, err := s.Query().ListEntitiesWithComponents("Transform", "MeshRenderer")
	assert.NilError(t, err)
	assert.DeepEqual(t, []scenecore.EntityID{e}, both)

	any, err := s.Query().ListEntitiesWithAnyComponent("MeshRenderer", "RigidBody")
	assert.NilError(t, err)
	assert.ElementsMatch(t, []scenecore.EntityID{e, physicsOnly}, any)

	_, err = s.Query().ListEntitiesWithComponent("Missing")
	assert.ErrorIs(t, err, scenecore.ErrComponentNotRegistered)
}

func TestTagNormalization(t *testing.T) {
	s := newScene(t)

	e, err := s.CreateEntity("enemy")
	assert.NilError(t, err)
	assert.NilError(t, s.AddTag(e, "Flying Enemy"))

	assert.True(t, s.HasTag(e, "flying-enemy"))
	assert.DeepEqual(t, []scenecore.EntityID{e}, s.Query().FindByTag("FLYING-ENEMY"))
	assert.DeepEqual(t, []string{"flying-enemy"}, s.Tags(e))

	// Whitespace-only tags are dropped entirely.
	assert.NilError(t, s.AddTag(e, "   "))
	assert.DeepEqual(t, []string{"flying-enemy"}, s.Tags(e))
}

func TestStaleIDsStayDead(t *testing.T) {
	s := newScene(t)

	first, err := s.CreateEntity("first")
	assert.NilError(t, err)
	assert.NilError(t, s.DeleteEntity(first))

	// The new entity reuses the slot under a bumped generation, so the old
	// id must stay invalid.
	second, err := s.CreateEntity("second")
	assert.NilError(t, err)
	assert.False(t, s.Alive(first))
	assert.True(t, s.Alive(second))
	assert.NotEqual(t, first, second)

	err = scenecore.AddComponent(s, first, Transform{})
	assert.ErrorIs(t, err, scenecore.ErrEntityDoesNotExist)
}

func TestAddComponentToUnknownEntityFails(t *testing.T) {
	s := newScene(t)

	err := scenecore.AddComponent(s, scenecore.EntityID(12345), Transform{})
	assert.ErrorIs(t, err, scenecore.ErrEntityDoesNotExist)
}

func TestAddUnregisteredComponentFails(t *testing.T) {
	s := testutils.NewMemoryScene(t, scenecore.WithServerDisabled())

	id, err := s.CreateEntity("bare")
	assert.NilError(t, err)
	err = scenecore.AddComponent(s, id, Transform{})
	assert.ErrorIs(t, err, scenecore.ErrComponentNotRegistered)
}

func TestSchemaValidationRejectsUnknownFields(t *testing.T) {
	s := newScene(t)

	id, err := s.CreateEntity("strict")
	assert.NilError(t, err)

	err = s.AddComponentByName(id, "RigidBody", []byte(`{"mass": 1, "drag": 0.3}`))
	assert.ErrorIs(t, err, scenecore.ErrComponentSchemaMismatch)
	_, ok := scenecore.GetComponent[RigidBody](s, id)
	assert.False(t, ok)

	assert.NilError(t, s.AddComponentByName(id, "RigidBody", []byte(`{"mass": 1}`)))
	body, ok := scenecore.GetComponent[RigidBody](s, id)
	assert.True(t, ok)
	assert.Equal(t, 1.0, body.Mass)
}

func TestEventsFireInMutationOrder(t *testing.T) {
	s := newScene(t)

	var kinds []events.Kind
	s.Bus().Subscribe(func(ev events.Event) {
		kinds = append(kinds, ev.Kind())
	})

	id, err := s.CreateEntity("emitter")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, id, Transform{}))
	assert.NilError(t, scenecore.AddComponent(s, id, Transform{Scale: [3]float64{2, 2, 2}}))
	assert.NilError(t, scenecore.RemoveComponent[Transform](s, id))
	assert.NilError(t, scenecore.AddComponent(s, id, RigidBody{Mass: 5}))
	assert.NilError(t, s.DeleteEntity(id))

	assert.DeepEqual(t, []events.Kind{
		events.KindEntityCreated,
		events.KindComponentAdded,
		events.KindComponentUpdated,
		events.KindComponentRemoved,
		events.KindComponentAdded,
		events.KindComponentRemoved, // the RigidBody stripped by the delete
		events.KindEntityDestroyed,
	}, kinds)
}

func TestHandlerReMutatingSameEntityIsBounded(t *testing.T) {
	s := newScene(t)

	var handlerErr error
	var crossErr error
	var other scenecore.EntityID
	events.On(s.Bus(), func(ev events.ComponentAdded) {
		// Re-mutating the entity that is being dispatched must fail...
		handlerErr = scenecore.AddComponent(s, ev.EntityID, Transform{Scale: [3]float64{9, 9, 9}})
		// ...while touching a different entity stays legal.
		if other != 0 && other != ev.EntityID {
			crossErr = scenecore.AddComponent(s, other, RigidBody{Mass: 1})
		}
	})

	id, err := s.CreateEntity("guarded")
	assert.NilError(t, err)
	other, err = s.CreateEntity("bystander")
	assert.NilError(t, err)

	assert.NilError(t, scenecore.AddComponent(s, id, MeshRenderer{Mesh: "quad"}))
	assert.ErrorIs(t, handlerErr, scenecore.ErrMutationInProgress)
	assert.NilError(t, crossErr)
}

func TestPersistentIDsAreValidV4AndUnique(t *testing.T) {
	s := newScene(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := s.CreateEntity("gen")
		assert.NilError(t, err)
		pid, err := s.PersistentID(id)
		assert.NilError(t, err)

		parsed, err := uuid.Parse(pid)
		assert.NilError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.False(t, seen[pid], "persistent id %q assigned twice", pid)
		seen[pid] = true
	}
}

func TestSuppliedPersistentIDValidation(t *testing.T) {
	s := newScene(t)

	_, err := s.CreateEntity("bad", scenecore.WithPersistentID("not-a-uuid"))
	assert.ErrorIs(t, err, scenecore.ErrInvalidPersistentID)

	pid := "6ba7b810-9dad-41d1-80b4-00c04fd430c8"
	first, err := s.CreateEntity("holder", scenecore.WithPersistentID(pid))
	assert.NilError(t, err)
	_, err = s.CreateEntity("dup", scenecore.WithPersistentID(pid))
	assert.ErrorIs(t, err, scenecore.ErrPersistentIDInUse)

	// A released id can be reserved again.
	assert.NilError(t, s.DeleteEntity(first))
	_, err = s.CreateEntity("again", scenecore.WithPersistentID(pid))
	assert.NilError(t, err)
}

func TestRegisterComponentAfterStartFails(t *testing.T) {
	s := testutils.NewMemoryScene(t, scenecore.WithServerDisabled())
	assert.NilError(t, scenecore.RegisterComponent[Transform](s))
	assert.NilError(t, s.Start())
	t.Cleanup(func() {
		assert.NilError(t, s.Shutdown())
	})

	err := scenecore.RegisterComponent[MeshRenderer](s)
	assert.ErrorContains(t, err, "to register component")
}

func TestDuplicateComponentRegistrationFails(t *testing.T) {
	s := testutils.NewMemoryScene(t, scenecore.WithServerDisabled())
	assert.NilError(t, scenecore.RegisterComponent[Transform](s))
	err := scenecore.RegisterComponent[Transform](s)
	assert.ErrorIs(t, err, scenecore.ErrComponentAlreadyRegistered)
}

func TestLifecycleStages(t *testing.T) {
	s := newScene(t)
	assert.False(t, s.IsReady())

	assert.NilError(t, s.Start())
	assert.True(t, s.IsReady())

	err := s.Start()
	assert.ErrorContains(t, err, "already been started")

	assert.NilError(t, s.Shutdown())
	assert.False(t, s.IsReady())
	// Shutting down twice is fine.
	assert.NilError(t, s.Shutdown())
}

func TestClearResetsEverything(t *testing.T) {
	s := newScene(t)

	id, err := s.CreateEntity("doomed")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, id, Transform{}))
	assert.NilError(t, s.AddTag(id, "temp"))

	s.Clear()

	assert.Equal(t, 0, s.EntityCount())
	assert.False(t, s.Alive(id))
	assert.Len(t, s.Query().AllTags(), 0)
	assert.Len(t, s.ValidateIndices(), 0)

	// Component types stay registered after a clear.
	next, err := s.CreateEntity("fresh")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, next, Transform{}))
}

func TestRenameEntity(t *testing.T) {
	s := newScene(t)

	id, err := s.CreateEntity("old-name")
	assert.NilError(t, err)
	assert.NilError(t, s.RenameEntity(id, "new-name"))

	name, err := s.EntityName(id)
	assert.NilError(t, err)
	assert.Equal(t, "new-name", name)

	err = s.RenameEntity(scenecore.EntityID(999), "nope")
	assert.ErrorIs(t, err, scenecore.ErrEntityDoesNotExist)
}

func TestRunQueryText(t *testing.T) {
	s := newScene(t)

	lit, err := s.CreateEntity("lamp")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, lit, Transform{}))
	assert.NilError(t, scenecore.AddComponent(s, lit, MeshRenderer{Mesh: "lamp"}))
	assert.NilError(t, s.AddTag(lit, "glowing"))

	plain, err := s.CreateEntity("crate")
	assert.NilError(t, err)
	assert.NilError(t, scenecore.AddComponent(s, plain, Transform{}))

	ids, err := s.RunQuery("CONTAINS(Transform) & CONTAINS(MeshRenderer)")
	assert.NilError(t, err)
	assert.DeepEqual(t, []scenecore.EntityID{lit}, ids)

	ids, err = s.RunQuery("TAG(glowing) | CONTAINS(RigidBody)")
	assert.NilError(t, err)
	assert.DeepEqual(t, []scenecore.EntityID{lit}, ids)

	_, err = s.RunQuery("CONTAINS(")
	assert.IsError(t, err)
}
