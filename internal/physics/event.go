package physics

import "sync"

// CollisionEvent is delivered once per counterpart of a blocked motion test.
type CollisionEvent struct {
	Mover ObjectID
	Info  CollideInfo
}

// Event is a multicast callback list.
type Event[T any] struct {
	mu        sync.Mutex
	listeners []func(T)
}

// AddListener adds a callback invoked on every Invoke. Nil callbacks are ignored.
func (e *Event[T]) AddListener(callback func(T)) {
	if callback == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, callback)
	e.mu.Unlock()
}

// RemoveAllListeners clears all listeners
func (e *Event[T]) RemoveAllListeners() {
	e.mu.Lock()
	e.listeners = nil
	e.mu.Unlock()
}

// Invoke calls every listener in registration order. The list is copied first
// so a listener may add listeners without deadlocking.
func (e *Event[T]) Invoke(arg T) {
	e.mu.Lock()
	listeners := append([]func(T)(nil), e.listeners...)
	e.mu.Unlock()
	for _, listener := range listeners {
		listener(arg)
	}
}

// ListenerCount returns the number of registered listeners (for debugging)
func (e *Event[T]) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
