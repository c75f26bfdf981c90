// Package events implements the synchronous event queue shared by the
// engine components. Events are queued while a step runs and delivered to
// subscribers in emission order when the owner drains the queue.
package events

import "github.com/nathoo/eldoria/types"

// Handler receives one delivered event.
type Handler func(types.Event)

// Bus is a single-threaded observer list with a pending queue.
// Delivery never recurses: events emitted by a handler while draining are
// delivered by the same Drain call after the current batch.
type Bus struct {
	handlers []Handler
	queue    []types.Event
	draining bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler. Handlers cannot be removed; subscribers that
// lose interest should ignore events instead.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Emit queues an event for the next Drain. A nil bus drops it.
func (b *Bus) Emit(ev types.Event) {
	if b == nil {
		return
	}
	b.queue = append(b.queue, ev)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.queue)
}

// Drain delivers every queued event to every handler and returns the
// delivered events in order. A Drain issued from inside a handler is a no-op;
// the outer Drain picks the new events up.
func (b *Bus) Drain() []types.Event {
	if b == nil || b.draining {
		return nil
	}
	b.draining = true
	defer func() { b.draining = false }()

	var delivered []types.Event
	for len(b.queue) > 0 {
		batch := b.queue
		b.queue = nil
		for _, ev := range batch {
			for _, h := range b.handlers {
				h(ev)
			}
		}
		delivered = append(delivered, batch...)
	}
	return delivered
}

// Filter returns the events of the given types, preserving order.
func Filter(evts []types.Event, kinds ...types.EventType) []types.Event {
	want := make(map[types.EventType]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []types.Event
	for _, ev := range evts {
		if want[ev.Type] {
			out = append(out, ev)
		}
	}
	return out
}
