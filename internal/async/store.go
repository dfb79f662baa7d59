package async

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store keeps the most recent job records. The oldest are evicted once size is
// reached, whatever their status.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Record]
}

func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, Record](size)
	if err != nil {
		return nil, fmt.Errorf("job store: %w", err)
	}
	return &Store{cache: c}, nil
}

func (s *Store) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(r.ID, r)
}

// Get returns a copy of the record without affecting eviction order.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Peek(id)
}

// Update applies fn to the stored record. It reports false if the record was
// evicted; fn is not called then.
func (s *Store) Update(id string, fn func(*Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache.Peek(id)
	if !ok {
		return false
	}
	fn(&r)
	s.cache.Add(id, r)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
