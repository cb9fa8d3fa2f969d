package verdict

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

const defaultMaxEntries = 10000

type memEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
	elem      *list.Element
}

// MemoryStore is an in-process LRU store. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memEntry
	lru        *list.List // front is most recently used
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore returns a store holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		entries:    map[string]*memEntry{},
		lru:        list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.remove(e)
		return nil, false, nil
	}
	s.lru.MoveToFront(e.elem)
	return slices.Clone(e.data), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	if e, ok := s.entries[key]; ok {
		e.data, e.expiresAt = slices.Clone(data), expiresAt
		s.lru.MoveToFront(e.elem)
		return nil
	}

	e := &memEntry{key: key, data: slices.Clone(data), expiresAt: expiresAt}
	e.elem = s.lru.PushFront(e)
	s.entries[key] = e
	for len(s.entries) > s.maxEntries {
		s.remove(s.lru.Back().Value.(*memEntry))
	}
	return nil
}

func (s *MemoryStore) remove(e *memEntry) {
	s.lru.Remove(e.elem)
	delete(s.entries, e.key)
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }
