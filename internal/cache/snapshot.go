package cache

import (
	"sync"
	"time"
)

// Snapshot holds a single cached value with a TTL. It backs stores that cache
// one full ledger snapshot: there is no keyed lookup and no eviction beyond
// expiry, because only ever one value lives here.
type Snapshot[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	value     T
	present   bool
	expiresAt time.Time
}

func NewSnapshot[T any](ttl time.Duration) *Snapshot[T] {
	return &Snapshot[T]{ttl: ttl}
}

// Get returns the cached value if one is present and not expired.
func (s *Snapshot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if !s.present {
		return zero, false
	}
	if time.Now().After(s.expiresAt) {
		s.value = zero
		s.present = false
		return zero, false
	}
	return s.value, true
}

// Set replaces the cached value and restarts its TTL.
func (s *Snapshot[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.present = true
	s.expiresAt = time.Now().Add(s.ttl)
}

// Clear drops the cached value.
func (s *Snapshot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.present = false
}

// CleanExpired drops the value if its TTL has passed, returning the number of
// entries removed. Satisfies Cleaner.
func (s *Snapshot[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present || time.Now().Before(s.expiresAt) {
		return 0
	}
	var zero T
	s.value = zero
	s.present = false
	return 1
}
