// SPDX-License-Identifier: MIT
package backend

import (
	"sync"

	"github.com/shuliangfu/video-player/internal/media"
)

// Subscription identifies one handler registration. Handlers are detached
// by token because Go functions are not comparable.
type Subscription struct {
	event media.EventType
	id    int
}

// Event returns the event type the subscription is attached to.
func (s Subscription) Event() media.EventType { return s.event }

// Emitter is a composable listener registry. Backends hold one by value
// composition rather than inheritance, which keeps the detach-on-swap
// invariant testable on its own.
type Emitter struct {
	mu       sync.Mutex
	seq      int
	handlers map[media.EventType][]handlerEntry
}

type handlerEntry struct {
	id int
	fn func(media.Event)
}

// NewEmitter returns an empty registry.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[media.EventType][]handlerEntry)}
}

// On registers fn for event type t, preserving registration order.
func (e *Emitter) On(t media.EventType, fn func(media.Event)) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.handlers[t] = append(e.handlers[t], handlerEntry{id: e.seq, fn: fn})
	return Subscription{event: t, id: e.seq}
}

// Off detaches exactly the registration identified by sub. Unknown
// subscriptions are ignored.
func (e *Emitter) Off(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entries := e.handlers[sub.event]
	for i, entry := range entries {
		if entry.id == sub.id {
			e.handlers[sub.event] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(e.handlers[sub.event]) == 0 {
		delete(e.handlers, sub.event)
	}
}

// Emit delivers ev to the handlers registered for its type, in registration
// order. Handlers run without the registry lock held.
func (e *Emitter) Emit(ev media.Event) {
	e.mu.Lock()
	entries := e.handlers[ev.Type]
	fns := make([]func(media.Event), len(entries))
	for i, entry := range entries {
		fns[i] = entry.fn
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Count reports how many handlers are attached for t.
func (e *Emitter) Count(t media.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[t])
}

// Total reports how many handlers are attached across all event types.
func (e *Emitter) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, entries := range e.handlers {
		n += len(entries)
	}
	return n
}

// Clear detaches every handler.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = make(map[media.EventType][]handlerEntry)
}
