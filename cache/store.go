package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store holds encoded cache entries.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Set must not retain value; Get returns a slice the caller owns.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore is an in-process store. With no capacity it is a plain map
// that never evicts; with a capacity it evicts least recently used entries.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	lru     *lru.Cache[string, []byte]
}

// NewMemoryStore creates an in-process store. capacity <= 0 means unbounded.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		return &MemoryStore{entries: make(map[string][]byte)}, nil
	}
	l, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru store: %w", err)
	}
	return &MemoryStore{lru: l}, nil
}

// Bounded reports whether the store evicts entries.
func (s *MemoryStore) Bounded() bool {
	return s.lru != nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.lru != nil {
		v, ok := s.lru.Get(key)
		return bytes.Clone(v), ok, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return bytes.Clone(v), ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	value = bytes.Clone(value)
	if s.lru != nil {
		s.lru.Add(key, value)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if s.lru != nil {
		s.lru.Remove(key)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context) error {
	if s.lru != nil {
		s.lru.Purge()
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	if s.lru != nil {
		return s.lru.Len(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

var _ Store = (*MemoryStore)(nil)
