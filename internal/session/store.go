// internal/session/store.go
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"go.uber.org/zap"
)

// ErrConfigNotFound is returned by Update when no session was initialised for the key.
var ErrConfigNotFound = errors.New("session config not found")

// Key identifies one in-progress flow of one user.
type Key struct {
	UserID string
	Flow   types.FlowKind
}

type entry[T any] struct {
	value     T
	touchedAt time.Time
}

// Store holds mutable per-user flow state in memory. Values are copied in and
// out, so callers never share a pointer with the store.
type Store[T any] struct {
	entries map[Key]entry[T]
	mu      sync.RWMutex
	logger  *zap.Logger
	now     func() time.Time

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewStore creates an empty session store.
func NewStore[T any](logger *zap.Logger) *Store[T] {
	return &Store[T]{
		entries: make(map[Key]entry[T]),
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the current value for key and whether it exists.
func (s *Store[T]) Get(key Key) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddUint64(&s.reads, 1)
	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	e.touchedAt = s.now()
	s.entries[key] = e
	return e.value, true
}

// Init creates the session for key, replacing any earlier one.
func (s *Store[T]) Init(key Key, seed T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[T]{value: seed, touchedAt: s.now()}
	atomic.AddUint64(&s.writes, 1)
	return seed
}

// Update applies patch to a copy of the session and stores the copy only if
// patch returns nil. A rejected patch leaves the stored value untouched.
func (s *Store[T]) Update(key Key, patch func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, ErrConfigNotFound
	}

	next := e.value
	if err := patch(&next); err != nil {
		return e.value, err
	}

	s.entries[key] = entry[T]{value: next, touchedAt: s.now()}
	atomic.AddUint64(&s.writes, 1)
	return next, nil
}

// Delete drops the session for key, if any.
func (s *Store[T]) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	atomic.AddUint64(&s.writes, 1)
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CountByFlow returns the number of live sessions per flow kind.
func (s *Store[T]) CountByFlow() map[types.FlowKind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[types.FlowKind]int)
	for key := range s.entries {
		counts[key.Flow]++
	}
	return counts
}

// GetStats returns store statistics
func (s *Store[T]) GetStats() (sessions, reads, writes uint64) {
	s.mu.RLock()
	sessions = uint64(len(s.entries))
	s.mu.RUnlock()

	reads = atomic.LoadUint64(&s.reads)
	writes = atomic.LoadUint64(&s.writes)
	return sessions, reads, writes
}

// CleanupStale removes sessions untouched for longer than maxAge.
func (s *Store[T]) CleanupStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0

	for key, e := range s.entries {
		if e.touchedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Cleaned up stale sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", len(s.entries)))
	}

	return removed
}

// StartJanitor sweeps stale sessions every interval until ctx is done.
// onSweep, if set, is called after every sweep.
func (s *Store[T]) StartJanitor(ctx context.Context, interval, ttl time.Duration, onSweep func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupStale(ttl)
				if onSweep != nil {
					onSweep()
				}
			}
		}
	}()
}
