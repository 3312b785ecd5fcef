// Package events carries change notifications from the editing state (history,
// library) to whoever displays it: the HTTP facade, the terminal preview, logs.
package events

import "sync"

// Feed delivers values to registered callbacks synchronously, in the caller's goroutine
type Feed[T any] struct {
	mu          sync.RWMutex
	subscribers map[uint64]func(T)
	nextID      uint64
	replay      bool
	last        T
	published   bool
}

// NewFeed creates a Feed. With replay set, a new subscriber is called
// immediately with the most recently published value, if there is one.
func NewFeed[T any](replay bool) *Feed[T] {
	return &Feed[T]{
		subscribers: make(map[uint64]func(T)),
		replay:      replay,
	}
}

// Subscribe registers fn and returns a function that removes it again.
// Cancelling more than once is harmless.
func (f *Feed[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		panic("Feed: subscriber cannot be nil")
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subscribers[id] = fn
	replay := f.replay && f.published
	last := f.last
	f.mu.Unlock()

	// outside the lock: fn may publish or cancel
	if replay {
		fn(last)
	}

	return func() {
		f.mu.Lock()
		delete(f.subscribers, id)
		f.mu.Unlock()
	}
}

// Publish calls every subscriber with value
func (f *Feed[T]) Publish(value T) {
	f.mu.Lock()
	if f.replay {
		f.last = value
		f.published = true
	}
	targets := make([]func(T), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		targets = append(targets, fn)
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(value)
	}
}

// Subscribers returns the number of registered callbacks
func (f *Feed[T]) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}
