package events

import (
	"sync"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// Bus is a per-actor pub/sub event bus with support for global subscribers.
// Game code emits structured events; each subscriber (session writer,
// logger, etc.) encodes them per-transport.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[world.Ref][]Subscriber
	global      []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[world.Ref][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific actor's events.
func (b *Bus) Subscribe(actor world.Ref, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[actor] = append(b.subscribers[actor], sub)
}

// Unsubscribe removes a subscriber for a specific actor.
func (b *Bus) Unsubscribe(actor world.Ref, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[actor]
	for i, s := range subs {
		if s == sub {
			b.subscribers[actor] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[actor]) == 0 {
		delete(b.subscribers, actor)
	}
}

// SubscribeGlobal registers a subscriber that receives all events.
func (b *Bus) SubscribeGlobal(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, sub)
}

// Emit sends an event to the actor specified in ev.Actor and all global
// subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.Actor]
	globals := b.global
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
	for _, s := range globals {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// EmitToActor sends an event to a specific actor (overriding ev.Actor).
func (b *Bus) EmitToActor(actor world.Ref, ev Event) {
	ev.Actor = actor
	b.Emit(ev)
}

// ActorSubscribers returns the number of subscribers for an actor.
func (b *Bus) ActorSubscribers(actor world.Ref) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[actor])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for actor, subs := range b.subscribers {
		var active []Subscriber
		for _, s := range subs {
			if !s.Closed() {
				active = append(active, s)
			}
		}
		if len(active) == 0 {
			delete(b.subscribers, actor)
		} else {
			b.subscribers[actor] = active
		}
	}

	var activeGlobal []Subscriber
	for _, s := range b.global {
		if !s.Closed() {
			activeGlobal = append(activeGlobal, s)
		}
	}
	b.global = activeGlobal
}
