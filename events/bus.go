// Package events distributes camera, analysis, and speech lifecycle
// notifications to in-process listeners. The bus decouples the session
// and the orchestrator from their observers (metrics, UI bridges):
// publishers never block on a slow listener, and a panicking listener
// cannot take down the event loop that published to it.
package events

import (
	"sync"

	"github.com/scenetalk/runtime/logger"
)

// Listener receives published events. Listeners run on a delivery
// goroutine owned by the bus, never on the publisher's goroutine.
type Listener func(*Event)

// EventBus fans events out to listeners registered for a single event
// type or for all of them. The zero value is not usable; call
// NewEventBus.
type EventBus struct {
	mu       sync.RWMutex
	byType   map[EventType][]Listener
	allTypes []Listener
}

func NewEventBus() *EventBus {
	return &EventBus{byType: make(map[EventType][]Listener)}
}

// Subscribe registers a listener for one event type.
func (b *EventBus) Subscribe(t EventType, fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType[t] = append(b.byType[t], fn)
}

// SubscribeAll registers a listener for every event type. Type-specific
// listeners are delivered to before global ones.
func (b *EventBus) SubscribeAll(fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allTypes = append(b.allTypes, fn)
}

// Publish delivers the event asynchronously. The listener set is
// snapshotted under the lock, so a listener registered after Publish
// returns does not see the event.
func (b *EventBus) Publish(ev *Event) {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.byType[ev.Type])+len(b.allTypes))
	targets = append(targets, b.byType[ev.Type]...)
	targets = append(targets, b.allTypes...)
	b.mu.RUnlock()

	go func() {
		for _, fn := range targets {
			deliver(fn, ev)
		}
	}()
}

func deliver(fn Listener, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("event listener panicked", "event", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}
