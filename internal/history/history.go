// Package history keeps the turns of one interactive session in memory.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is an append-only, insertion-ordered list scoped to one session.
type Store[T any] struct {
	mu        sync.RWMutex
	id        string
	startedAt time.Time
	entries   []T
}

// New starts an empty session with a fresh id.
func New[T any]() *Store[T] {
	return &Store[T]{id: uuid.NewString(), startedAt: time.Now()}
}

// ID identifies the session.
func (s *Store[T]) ID() string { return s.id }

// StartedAt reports when the session began.
func (s *Store[T]) StartedAt() time.Time { return s.startedAt }

func (s *Store[T]) Append(entry T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// All returns a copy of every entry in insertion order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Last returns the most recent entry, if any.
func (s *Store[T]) Last() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if len(s.entries) == 0 {
		return zero, false
	}
	return s.entries[len(s.entries)-1], true
}
