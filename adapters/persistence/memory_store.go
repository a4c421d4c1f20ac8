package persistence

import (
	"context"
	"sync"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
)

// MemoryStore keeps buckets in a map. Used by tests and the "memory" driver.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	values map[string][]byte
	// FailPut, when set, is consulted before every Put; a non-nil result fails it.
	FailPut func(b tracker.Bucket) error
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, b tracker.Bucket) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[keyOf(s.prefix, b)]
	if !ok {
		return nil, tracker.ErrBucketNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(_ context.Context, b tracker.Bucket, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		if err := s.FailPut(b); err != nil {
			return err
		}
	}
	s.values[keyOf(s.prefix, b)] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, b tracker.Bucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, keyOf(s.prefix, b))
	return nil
}

func (s *MemoryStore) Close() error { return nil }
