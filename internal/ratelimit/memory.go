package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepInterval is how often Run drops expired windows.
const SweepInterval = 60 * time.Second

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in a mutex guarded map.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock uses now as the time source.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry), now: now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, max int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	switch {
	case !ok:
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
	case e.resetAt.Before(now):
		e.count = 1
		e.resetAt = now.Add(window)
	case e.count >= max:
		return Result{Allowed: false, Count: e.count, ResetAt: e.resetAt}, nil
	default:
		e.count++
	}
	return Result{Allowed: true, Count: e.count, ResetAt: e.resetAt}, nil
}

// Sweep drops every entry whose window has elapsed and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if e.resetAt.Before(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("rate limit entries swept", "removed", n)
			}
		}
	}
}
