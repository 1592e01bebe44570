// Package history holds the in-memory conversation context shared by every
// turn of the farmer session.
package history

import (
	"sync"
	"time"

	"github.com/nadzzz/kisanvani/internal/intent"
)

// TimestampLayout is the wire format for turn timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Turn is one completed query/response exchange. It is never mutated after
// being appended.
type Turn struct {
	Query     string        `json:"query"`
	Response  string        `json:"response"`
	Intent    intent.Intent `json:"intent"`
	Timestamp time.Time     `json:"-"`
}

// Store is an append-only turn sequence guarded by a mutex. The zero value
// is ready to use.
type Store struct {
	mu    sync.RWMutex
	turns []Turn
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Append records a turn at the end of the sequence.
func (s *Store) Append(t Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, t)
	s.mu.Unlock()
}

// Recent returns at most n of the latest turns, oldest first. The returned
// slice is a copy and safe to retain.
func (s *Store) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if len(s.turns) > n {
		start = len(s.turns) - n
	}
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// All returns a copy of the full sequence.
func (s *Store) All() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of recorded turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear discards every turn.
func (s *Store) Clear() {
	s.mu.Lock()
	s.turns = nil
	s.mu.Unlock()
}
