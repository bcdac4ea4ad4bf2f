package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
)

var _ vouchers.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

type idempotencyEntry struct {
	value     string
	expiresAt time.Time
}

// InMemoryIdempotencyStore para una sola instancia (REDIS_URL vacío) y pruebas.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	now     func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		now:     time.Now,
	}
}

func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		if e.value == pendingMarker {
			return "", false, nil
		}
		return e.value, false, nil
	}
	s.entries[key] = idempotencyEntry{value: pendingMarker, expiresAt: now.Add(ttl)}
	return "", true, nil
}

func (s *InMemoryIdempotencyStore) Complete(_ context.Context, key, voucherID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = idempotencyEntry{value: voucherID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
