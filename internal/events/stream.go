package events

import "sync"

// Stream fans values out to buffered channels. Delivery never blocks the
// publisher: a subscriber whose buffer is full misses that value.
type Stream[T any] struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan T
	nextID      uint64
}

// NewStream creates an empty Stream
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subscribers: make(map[uint64]chan T)}
}

// Subscribe returns a channel with the given buffer size that receives every
// published value, and a cancel function that unregisters and closes it
func (s *Stream[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Publish offers value to every subscriber and returns how many accepted it
func (s *Stream[T]) Publish(value T) int {
	// sends happen under the read lock so cancel cannot close a channel mid-send
	s.mu.RLock()
	defer s.mu.RUnlock()

	delivered := 0
	for _, ch := range s.subscribers {
		select {
		case ch <- value:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open subscriptions
func (s *Stream[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
