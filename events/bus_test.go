package events_test

import (
	"testing"

	"github.com/meshforge/scenecore/assert"
	"github.com/meshforge/scenecore/events"
	"github.com/meshforge/scenecore/types"
)

func TestSubscribersRunInSubscriptionOrder(t *testing.T) {
	bus := events.NewBus()
	var order []int
	bus.Subscribe(func(events.Event) { order = append(order, 1) })
	bus.Subscribe(func(events.Event) { order = append(order, 2) })
	bus.Subscribe(func(events.Event) { order = append(order, 3) })

	bus.Publish(events.EntityCreated{EntityID: 1})

	assert.DeepEqual(t, []int{1, 2, 3}, order)
}

func TestOnOnlyReceivesItsVariant(t *testing.T) {
	bus := events.NewBus()
	var created []types.EntityID
	var destroyed []types.EntityID
	events.On(bus, func(ev events.EntityCreated) { created = append(created, ev.EntityID) })
	events.On(bus, func(ev events.EntityDestroyed) { destroyed = append(destroyed, ev.EntityID) })

	bus.Publish(events.EntityCreated{EntityID: 7})
	bus.Publish(events.EntityDestroyed{EntityID: 7})
	bus.Publish(events.EntityCreated{EntityID: 8})

	assert.DeepEqual(t, []types.EntityID{7, 8}, created)
	assert.DeepEqual(t, []types.EntityID{7}, destroyed)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	sub := bus.Subscribe(func(events.Event) { calls++ })

	bus.Publish(events.EntityCreated{EntityID: 1})
	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Publish(events.EntityCreated{EntityID: 2})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestUnsubscribeDuringDispatchStopsDelivery(t *testing.T) {
	bus := events.NewBus()
	var second *events.Subscription
	firstCalls, secondCalls := 0, 0
	bus.Subscribe(func(events.Event) {
		firstCalls++
		second.Unsubscribe()
	})
	second = bus.Subscribe(func(events.Event) { secondCalls++ })

	bus.Publish(events.EntityCreated{EntityID: 1})

	// The first handler removed the second before it ran.
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 0, secondCalls)
	assert.Equal(t, 1, bus.SubscriberCount())
}

func TestSubscribeDuringDispatchTakesEffectNextPublish(t *testing.T) {
	bus := events.NewBus()
	lateCalls := 0
	registered := false
	bus.Subscribe(func(events.Event) {
		if !registered {
			registered = true
			bus.Subscribe(func(events.Event) { lateCalls++ })
		}
	})

	bus.Publish(events.EntityCreated{EntityID: 1})
	assert.Equal(t, 0, lateCalls)

	bus.Publish(events.EntityCreated{EntityID: 2})
	assert.Equal(t, 1, lateCalls)
}

func TestReentrantPublishRunsToCompletion(t *testing.T) {
	bus := events.NewBus()
	var seen []events.Kind
	events.On(bus, func(ev events.ComponentRemoved) {
		seen = append(seen, ev.Kind())
		// A removal handler reacting by publishing a follow-up event must
		// deliver it before the outer Publish returns.
		bus.Publish(events.EntityDestroyed{EntityID: ev.EntityID})
	})
	events.On(bus, func(ev events.EntityDestroyed) {
		seen = append(seen, ev.Kind())
	})

	bus.Publish(events.ComponentRemoved{EntityID: 3, ComponentID: 1, Component: "Transform"})

	assert.DeepEqual(t, []events.Kind{events.KindComponentRemoved, events.KindEntityDestroyed}, seen)
}

func TestClearDropsAllSubscribers(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	sub := bus.Subscribe(func(events.Event) { calls++ })
	bus.Clear()

	bus.Publish(events.EntityCreated{EntityID: 1})
	sub.Unsubscribe() // must not panic after Clear

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.SubscriberCount())
}
