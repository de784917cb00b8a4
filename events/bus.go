package events

// Bus is a synchronous publish/subscribe dispatcher. Publish runs every
// subscriber to completion, in subscription order, before it returns; this is
// what keeps derived indices exact after every mutation without a
// reconciliation pass.
//
// The bus is not safe for concurrent use. Like the rest of the core it
// belongs to the single update thread. Handlers may publish further events
// (reentrant dispatch); subscriptions added or removed during a dispatch take
// effect once the current dispatch has finished.
type Bus struct {
	subs   []*subscriber
	nextID uint64
	depth  int
	dirty  bool
}

type subscriber struct {
	id      uint64
	fn      func(Event)
	removed bool
}

// Subscription is the handle returned by Subscribe. Unsubscribe detaches the
// handler; calling it more than once is a no-op.
type Subscription struct {
	bus *Bus
	sub *subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every event. Handlers run synchronously inside
// the mutating call that publishes the event, in subscription order.
func (b *Bus) Subscribe(fn func(Event)) *Subscription {
	b.nextID++
	sub := &subscriber{id: b.nextID, fn: fn}
	b.subs = append(b.subs, sub)
	return &Subscription{bus: b, sub: sub}
}

// Publish delivers ev to every live subscriber and returns when all of them
// have run.
func (b *Bus) Publish(ev Event) {
	b.depth++
	// The three-index slice pins the backing array so handlers that
	// subscribe mid-dispatch do not become visible to this dispatch.
	snapshot := b.subs[:len(b.subs):len(b.subs)]
	for _, sub := range snapshot {
		if sub.removed {
			continue
		}
		sub.fn(ev)
	}
	b.depth--
	if b.depth == 0 && b.dirty {
		b.compact()
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	n := 0
	for _, sub := range b.subs {
		if !sub.removed {
			n++
		}
	}
	return n
}

// Clear drops every subscription. Outstanding Subscription handles become
// no-ops.
func (b *Bus) Clear() {
	for _, sub := range b.subs {
		sub.removed = true
	}
	b.subs = nil
	b.dirty = false
}

func (b *Bus) compact() {
	live := b.subs[:0]
	for _, sub := range b.subs {
		if !sub.removed {
			live = append(live, sub)
		}
	}
	for i := len(live); i < len(b.subs); i++ {
		b.subs[i] = nil
	}
	b.subs = live
	b.dirty = false
}

// Unsubscribe detaches the handler. Safe to call during a dispatch; the
// handler will not run again, and the slot is reclaimed once the dispatch
// stack unwinds. Calling Unsubscribe twice is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.sub == nil || s.sub.removed {
		return
	}
	s.sub.removed = true
	if s.bus.depth == 0 {
		s.bus.compact()
	} else {
		s.bus.dirty = true
	}
}

// On subscribes fn to a single event variant. Events of other kinds are
// ignored.
func On[T Event](b *Bus, fn func(T)) *Subscription {
	return b.Subscribe(func(ev Event) {
		if typed, ok := ev.(T); ok {
			fn(typed)
		}
	})
}
