package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests. It honours the same
// contract as GormStore, including CompareAndSet atomicity.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make(json.RawMessage, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = raw
	return nil
}

func (s *MemoryStore) CompareAndSet(ctx context.Context, key string, previous json.RawMessage, value interface{}) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[key]
	if !ok || !bytes.Equal(current, previous) {
		return false, nil
	}
	s.entries[key] = raw
	return true, nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0)
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	values := make([]json.RawMessage, 0, len(keys))
	for _, key := range keys {
		value := make(json.RawMessage, len(s.entries[key]))
		copy(value, s.entries[key])
		values = append(values, value)
	}
	return values, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
