// Package storage provides PermanentStore implementations. The in-memory
// store is the reference adapter: it honors the upsert-by-logical-identity
// contract the commit phase relies on, and doubles as the test double for
// the installation manager.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// ErrNotMigrated is returned when rows are written before the schema exists.
var ErrNotMigrated = errors.New("schema has not been migrated")

// MemoryStore is an in-memory PermanentStore.
type MemoryStore struct {
	mu         sync.Mutex
	tableNames []string
	tables     map[string]map[string]map[string]interface{}
	migrations int
	seeded     bool
	linked     bool
}

// NewMemoryStore creates a store that will declare the given tables when
// the schema is migrated.
func NewMemoryStore(tableNames ...string) *MemoryStore {
	return &MemoryStore{
		tableNames: tableNames,
		tables:     make(map[string]map[string]map[string]interface{}),
	}
}

// MigrateSchema creates all declared tables. With reset, existing tables
// and their rows are dropped first.
func (s *MemoryStore) MigrateSchema(_ context.Context, reset bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reset {
		s.tables = make(map[string]map[string]map[string]interface{})
		s.migrations = 0
	}
	for _, name := range s.tableNames {
		if _, ok := s.tables[name]; !ok {
			s.tables[name] = make(map[string]map[string]interface{})
		}
	}
	s.migrations++
	return nil
}

// RollbackMigration reverts the most recent migration.
func (s *MemoryStore) RollbackMigration(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrations == 0 {
		return false, nil
	}
	s.migrations--
	if s.migrations == 0 {
		s.tables = make(map[string]map[string]map[string]interface{})
	}
	return true, nil
}

// RunSeed marks the store as seeded.
func (s *MemoryStore) RunSeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrations == 0 {
		return ErrNotMigrated
	}
	s.seeded = true
	return nil
}

// UpsertRow writes a row keyed by its logical identity. The table is
// created on demand so commits of namespaces without a declared table
// still succeed.
func (s *MemoryStore) UpsertRow(_ context.Context, table, key string, row map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrations == 0 {
		return ErrNotMigrated
	}
	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[string]map[string]interface{})
		s.tables[table] = rows
	}
	copied := make(map[string]interface{}, len(row))
	for k, v := range row {
		copied[k] = v
	}
	rows[key] = copied
	return nil
}

// HasTable reports whether the table exists.
func (s *MemoryStore) HasTable(_ context.Context, table string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[table]
	return ok
}

// CreateStorageLink records that the storage link was created.
func (s *MemoryStore) CreateStorageLink(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linked = true
	return nil
}

// Row returns a stored row for inspection, and whether it exists.
func (s *MemoryStore) Row(table, key string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return nil, false
	}
	row, ok := rows[key]
	return row, ok
}

// Seeded reports whether seed data has been run.
func (s *MemoryStore) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeded
}

// Linked reports whether the storage link was created.
func (s *MemoryStore) Linked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linked
}

// Ensure MemoryStore implements PermanentStore.
var _ ports.PermanentStore = (*MemoryStore)(nil)
