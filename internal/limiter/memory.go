package limiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// Memory is the in-process Limiter.  State lives for the process lifetime
// and is never swept; acceptable for a single-process deployment.  A single
// mutex guards the map so a key's check-and-increment never interleaves
// with another request for the same key.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemory returns an empty in-process limiter.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]*bucket), now: time.Now}
}

// NewMemoryWithClock is NewMemory with an injected time source for tests.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{buckets: make(map[string]*bucket), now: now}
}

// Allow consumes one attempt under key.  A missing or lapsed bucket is reset
// to a fresh window with count 1; under budget the count increments; at the
// budget the bucket is left unchanged and the call reports how long until
// the window resets.
func (m *Memory) Allow(_ context.Context, key string, max int, window time.Duration) (bool, time.Duration) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || now.After(b.resetAt) {
		m.buckets[key] = &bucket{count: 1, resetAt: now.Add(window)}
		return true, 0
	}
	if b.count < max {
		b.count++
		return true, 0
	}
	return false, b.resetAt.Sub(now)
}
