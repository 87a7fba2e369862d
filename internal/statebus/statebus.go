// Package statebus is the shared state and event channel behaviors and the
// renderer communicate through. Values (selected article, zoom, translation,
// debug flag) are observable; named events carry ad-hoc payloads. All
// delivery is synchronous: the engine is single-threaded cooperative, so a
// callback runs to completion before the publisher continues.
package statebus

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/san-kum/lexigraph/internal/logging"
)

// Callback receives the value stored under a key, or an event payload.
type Callback func(value any)

// Subscription unregisters one observer or event handler.
type Subscription struct {
	bus   *Bus
	key   string
	id    int
	event bool
}

func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.cancel(s)
	s.bus = nil
}

type handler struct {
	id int
	fn Callback
}

// Bus is an explicitly constructed service instance: consumers receive it by
// injection, never through a package global.
type Bus struct {
	mu       sync.Mutex
	log      logging.Logger
	nextID   int
	values   map[string]any
	watchers map[string][]handler
	events   map[string][]handler
}

func New(log logging.Logger) *Bus {
	if log == nil {
		log = logging.Discard()
	}
	return &Bus{
		log:      log,
		values:   make(map[string]any),
		watchers: make(map[string][]handler),
		events:   make(map[string][]handler),
	}
}

// Get returns the stored value, or nil when unset.
func (b *Bus) Get(key string) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values[key]
}

// Set stores a value and notifies observers of the key. Setting the value
// already stored is a no-op and does not notify.
func (b *Bus) Set(key string, value any) {
	b.mu.Lock()
	if prev, ok := b.values[key]; ok && sameValue(prev, value) {
		b.mu.Unlock()
		return
	}
	b.values[key] = value
	hs := snapshot(b.watchers[key])
	b.mu.Unlock()

	b.dispatch(key, hs, value)
}

// Observe subscribes to changes of a key. The callback does not fire for the
// currently stored value, only for subsequent changes.
func (b *Bus) Observe(key string, fn Callback) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.watchers[key] = append(b.watchers[key], handler{id: b.nextID, fn: fn})
	return &Subscription{bus: b, key: key, id: b.nextID}
}

// On subscribes to a named event.
func (b *Bus) On(event string, fn Callback) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.events[event] = append(b.events[event], handler{id: b.nextID, fn: fn})
	return &Subscription{bus: b, key: event, id: b.nextID, event: true}
}

// Emit delivers an event to every handler registered for it.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	hs := snapshot(b.events[event])
	b.mu.Unlock()

	b.dispatch(event, hs, payload)
}

// dispatch runs handlers outside the lock. A panicking handler is logged and
// skipped; it never aborts delivery to the rest.
func (b *Bus) dispatch(key string, hs []handler, value any) {
	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("statebus handler panicked",
						logging.F("key", key),
						logging.F("panic", fmt.Sprint(r)))
				}
			}()
			h.fn(value)
		}()
	}
}

func (b *Bus) cancel(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.watchers
	if s.event {
		m = b.events
	}
	hs := m[s.key]
	for i, h := range hs {
		if h.id == s.id {
			m[s.key] = append(hs[:i], hs[i+1:]...)
			return
		}
	}
}

// sameValue reports whether two stored values are equal without panicking
// on uncomparable types such as slices; those always count as changed.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func snapshot(hs []handler) []handler {
	if len(hs) == 0 {
		return nil
	}
	out := make([]handler, len(hs))
	copy(out, hs)
	return out
}

// Scoped returns a view prefixing every key and event name, so independent
// graph instances can share one bus without colliding.
type Scoped struct {
	bus    *Bus
	prefix string
}

func (b *Bus) Scoped(prefix string) *Scoped {
	return &Scoped{bus: b, prefix: prefix + ":"}
}

func (s *Scoped) Get(key string) any             { return s.bus.Get(s.prefix + key) }
func (s *Scoped) Set(key string, value any)      { s.bus.Set(s.prefix+key, value) }
func (s *Scoped) Emit(event string, payload any) { s.bus.Emit(s.prefix+event, payload) }

func (s *Scoped) Observe(key string, fn Callback) *Subscription {
	return s.bus.Observe(s.prefix+key, fn)
}

func (s *Scoped) On(event string, fn Callback) *Subscription {
	return s.bus.On(s.prefix+event, fn)
}
