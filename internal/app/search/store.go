package search

import (
	"sort"
	"sync"
)

// Origin identifies who wrote a value. Writes through Set and Reset have no origin.
type Origin string

// Change is delivered to subscribers after every write.
type Change struct {
	Value    string
	Revision uint64
	Origin   Origin
}

// Store holds the free-text search query of one storefront client.
//
// Writes are delivered to subscribers synchronously and in revision order.
// Subscribers may read the store but must not write to it from the callback.
type Store struct {
	notifyMu sync.Mutex

	mu      sync.Mutex
	value   string
	rev     uint64
	subs    map[uint64]func(Change)
	nextSub uint64
}

func NewStore() *Store {
	return &Store{subs: make(map[uint64]func(Change))}
}

func (s *Store) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Set replaces the query unconditionally. Empty and blank values are stored as given.
func (s *Store) Set(value string) {
	s.write("", value)
}

// Reset clears the query.
func (s *Store) Reset() {
	s.write("", "")
}

// SetFrom is Set on behalf of a bound input.
func (s *Store) SetFrom(origin Origin, value string) {
	s.write(origin, value)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) write(origin Origin, value string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.value = value
	s.rev++
	change := Change{Value: value, Revision: s.rev, Origin: origin}
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
