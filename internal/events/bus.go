// Package events is a small typed publish/subscribe bus.
//
// Provider adapters publish when late-arriving catalog data lands; the
// aggregator and HTTP layer subscribe to invalidate derived state.
//
// # Usage
//
//	bus := events.NewBus()
//	unsubscribe := bus.Subscribe(events.FontsourceUpdated, func(e events.Event) {
//		aggregator.ClearCache("")
//	})
//	defer unsubscribe()
package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Type is the closed set of events the bus carries.
type Type string

const (
	FontSquirrelUpdated Type = "fontsquirrel-updated"
	FontsourceUpdated   Type = "fontsource-updated"
	OpenFoundryUpdated  Type = "openfoundry-updated"
	CustomUpdated       Type = "custom-updated"
	CatalogRefreshed    Type = "catalog-refreshed"
)

// Types lists every event type the bus accepts.
var Types = []Type{FontSquirrelUpdated, FontsourceUpdated, OpenFoundryUpdated, CustomUpdated, CatalogRefreshed}

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Event is delivered to subscribers.
type Event struct {
	Type Type
	Data any
}

// Handler receives events synchronously on the publisher's goroutine.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches events to subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Type][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]subscription)}
}

// Subscribe registers h for events of type t and returns a function that
// removes the registration. Calling the returned function more than once is
// harmless.
func (b *Bus) Subscribe(t Type, h Handler) (unsubscribe func()) {
	if !t.Valid() || h == nil {
		logrus.WithField("event", t).Warn("Ignoring subscription to unknown event type")
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(t, id) })
	}
}

func (b *Bus) remove(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[t]
	for i, s := range subs {
		if s.id == id {
			b.subs[t] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers data to every current subscriber of t. A panicking handler
// is logged and skipped; it never reaches the publisher.
func (b *Bus) Publish(t Type, data any) {
	if !t.Valid() {
		logrus.WithField("event", t).Warn("Dropping publish of unknown event type")
		return
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs[t]))
	copy(subs, b.subs[t])
	b.mu.RUnlock()

	e := Event{Type: t, Data: data}
	for _, s := range subs {
		dispatch(s.handler, e)
	}
}

// SubscriberCount returns the number of handlers registered for t.
func (b *Bus) SubscriberCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[t])
}

func dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"event": e.Type,
				"panic": r,
			}).Error("Event handler panicked")
		}
	}()
	h(e)
}
