package memory

import (
	"sync"

	"cartographer/internal/app/ports"
)

const DefaultCapacity = 256

// Store keeps the most recent render runs in a fixed-size ring.
type Store struct {
	mu   sync.RWMutex
	runs []ports.RenderRunRecord
	next int
	full bool
}

func NewStore() *Store {
	return NewStoreWithCapacity(DefaultCapacity)
}

func NewStoreWithCapacity(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{runs: make([]ports.RenderRunRecord, capacity)}
}

func (s *Store) append(run ports.RenderRunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[s.next] = run
	s.next = (s.next + 1) % len(s.runs)
	if s.next == 0 {
		s.full = true
	}
}

// newestFirst walks the ring from the latest insert backwards.
func (s *Store) newestFirst(fn func(ports.RenderRunRecord) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.next
	if s.full {
		n = len(s.runs)
	}
	for i := 0; i < n; i++ {
		idx := (s.next - 1 - i + len(s.runs)) % len(s.runs)
		if !fn(s.runs[idx]) {
			return
		}
	}
}
