package events

// Handler receives a published event. Handlers run inline on the
// publisher's stack and must not mutate the subscriber registry.
type Handler func(Event)

// Bus is a synchronous publish/subscribe registry keyed by event Kind.
// It is not safe for concurrent use; the simulation core is confined to
// one logical thread and the bus inherits that model. Construct one per
// engine and inject it, there is no process-wide instance.
type Bus struct {
	handlers    map[Kind][]Handler
	dispatching bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers a handler for one event kind. Handlers fire in
// registration order. Subscribing from inside a handler is a programming
// error and panics.
func (b *Bus) Subscribe(k Kind, h Handler) {
	if b.dispatching {
		panic("events: Subscribe called during dispatch")
	}
	b.handlers[k] = append(b.handlers[k], h)
}

// SubscribeAll registers a handler for every event kind, useful for
// journaling and telemetry taps.
func (b *Bus) SubscribeAll(h Handler) {
	for k := KindItemSpawned; k <= KindNearMissDetected; k++ {
		b.Subscribe(k, h)
	}
}

// Publish dispatches the event to all handlers registered for its kind,
// in registration order, before returning.
func (b *Bus) Publish(e Event) {
	hs := b.handlers[e.EventKind()]
	if len(hs) == 0 {
		return
	}
	b.dispatching = true
	defer func() { b.dispatching = false }()
	for _, h := range hs {
		h(e)
	}
}
