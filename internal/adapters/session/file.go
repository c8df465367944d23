package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// FileStore is a SessionStore persisted to a single TOML file. Every
// mutation is written through, so staged data survives process restarts
// between wizard interactions of the same install run.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]interface{}
}

// OpenFileStore opens (or creates) the session file at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]interface{}),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}

	if err := toml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Put upserts a value under the given key and persists the store.
func (s *FileStore) Put(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.persist()
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

// Delete removes the value stored under key and persists the store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.persist()
}

// DeletePrefix removes every key that starts with the given prefix.
func (s *FileStore) DeletePrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persist()
}

// Keys returns all keys that start with the given prefix, sorted.
func (s *FileStore) Keys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// persist writes the store to disk atomically (temp file + rename).
// Callers must hold the mutex.
func (s *FileStore) persist() error {
	raw, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Ensure FileStore implements SessionStore.
var _ ports.SessionStore = (*FileStore)(nil)
