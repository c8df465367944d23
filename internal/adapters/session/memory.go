// Package session provides SessionStore implementations backing the
// staged-data store and run state for a single install run.
package session

import (
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// MemoryStore is an in-memory SessionStore. It is the default for tests and
// for embedding the wizard engine into a host that supplies its own
// durability.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]interface{}),
	}
}

// Put upserts a value under the given key.
func (s *MemoryStore) Put(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok
}

// Delete removes the value stored under key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// DeletePrefix removes every key that starts with the given prefix.
func (s *MemoryStore) DeletePrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}

// Keys returns all keys that start with the given prefix, sorted.
func (s *MemoryStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Ensure MemoryStore implements SessionStore.
var _ ports.SessionStore = (*MemoryStore)(nil)
