package event

import "sync"

// Handler consumes a delivered event.
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is an in-process, synchronous publish/subscribe router.
//
// The bus is constructed explicitly and injected into producers and consumers;
// there is no package-level instance. Publish delivers to the subscribers
// registered for the event's type, in registration order, on the publishing
// goroutine. Events are not persisted by the bus and late subscribers see no
// replay.
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[Type][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]subscriber)}
}

// Subscribe registers a handler for one event type.
//
// The returned function removes the subscription; it is safe to call more
// than once.
func (b *Bus) Subscribe(t Type, handler Handler) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[t] = append(b.subscribers[t], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(t, id)
		})
	}
}

// SubscribeAll registers a handler for every type in the closed enumeration.
func (b *Bus) SubscribeAll(handler Handler) (unsubscribe func()) {
	unsubscribers := make([]func(), 0, len(Types()))
	for _, t := range Types() {
		unsubscribers = append(unsubscribers, b.Subscribe(t, handler))
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}

// Publish delivers the event synchronously to every subscriber registered for
// its type. Delivery order follows registration order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	registered := b.subscribers[e.Type]
	// Copy so a handler that unsubscribes during delivery cannot mutate the
	// slice being iterated.
	active := make([]subscriber, len(registered))
	copy(active, registered)
	b.mu.RUnlock()

	for _, s := range active {
		s.handler(e)
	}
}

func (b *Bus) remove(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	registered := b.subscribers[t]
	for i, s := range registered {
		if s.id == id {
			b.subscribers[t] = append(registered[:i], registered[i+1:]...)
			return
		}
	}
}
