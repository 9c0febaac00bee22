package memory

import (
	"context"
	"sync"
	"time"

	"hotelfront/internal/app/middleware"
)

// IdempotencyStore is the in-process replay store. Like the Mongo store the
// first saved result for a key wins until it expires.
type IdempotencyStore struct {
	mu      sync.Mutex
	results map[string]middleware.IdempotencyRecord
	ttl     time.Duration
	now     func() time.Time
	saves   int
}

// sweepEvery bounds how many saves pass between expiry sweeps.
const sweepEvery = 256

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{results: make(map[string]middleware.IdempotencyRecord), ttl: ttl, now: time.Now}
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.live(key)
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.live(rec.Key); !taken {
		s.results[rec.Key] = rec
	}
	s.saves++
	if s.saves%sweepEvery == 0 {
		s.sweep()
	}
	return nil
}

// live returns the unexpired record for key, dropping an expired one.
func (s *IdempotencyStore) live(key string) (middleware.IdempotencyRecord, bool) {
	rec, ok := s.results[key]
	if ok && s.expired(rec) {
		delete(s.results, key)
		return middleware.IdempotencyRecord{}, false
	}
	return rec, ok
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord) bool {
	return s.ttl > 0 && s.now().Sub(rec.OccurredAt) > s.ttl
}

func (s *IdempotencyStore) sweep() {
	for key, rec := range s.results {
		if s.expired(rec) {
			delete(s.results, key)
		}
	}
}
