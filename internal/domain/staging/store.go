// Package staging holds configuration captured before permanent storage
// exists. Entries are namespaced per step and kept in a durable run-scoped
// session store; they are the single source of truth until the commit phase
// moves them into permanent storage.
package staging

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// reservedPrefix isolates staged entries from unrelated session state.
const reservedPrefix = "groundwork.staged."

// Store is the namespaced staged-data store.
type Store struct {
	session ports.SessionStore
}

// NewStore creates a Store over the given session store.
func NewStore(session ports.SessionStore) *Store {
	return &Store{session: session}
}

// Put upserts a value under (namespace, key). Re-executing a step overwrites
// its previous entry.
func (s *Store) Put(namespace, key string, value interface{}) error {
	doc := s.doc(namespace)
	doc[key] = value
	return s.session.Put(reservedPrefix+namespace, doc)
}

// PutAll upserts every key/value pair of values into the namespace.
func (s *Store) PutAll(namespace string, values map[string]interface{}) error {
	doc := s.doc(namespace)
	for key, value := range values {
		doc[key] = value
	}
	return s.session.Put(reservedPrefix+namespace, doc)
}

// Get returns the value under (namespace, key), or def when absent.
// Keys may use dotted paths to reach into nested staged documents,
// e.g. Get("database", "connection.host", "localhost").
func (s *Store) Get(namespace, key string, def interface{}) interface{} {
	value, ok := lookupPath(s.doc(namespace), key)
	if !ok {
		return def
	}
	return value
}

// Has reports whether (namespace, key) is staged.
func (s *Store) Has(namespace, key string) bool {
	_, ok := lookupPath(s.doc(namespace), key)
	return ok
}

// Doc returns a copy of the full staged document for a namespace.
func (s *Store) Doc(namespace string) map[string]interface{} {
	return copyDoc(s.doc(namespace))
}

// Decode unmarshals the staged document for a namespace into out.
func (s *Store) Decode(namespace string, out interface{}) error {
	return mapstructure.Decode(s.doc(namespace), out)
}

// Namespaces returns every namespace with staged data, sorted.
func (s *Store) Namespaces() []string {
	keys := s.session.Keys(reservedPrefix)
	namespaces := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaces = append(namespaces, strings.TrimPrefix(key, reservedPrefix))
	}
	return namespaces
}

// ClearNamespace removes every staged entry in the namespace.
func (s *Store) ClearNamespace(namespace string) error {
	return s.session.Delete(reservedPrefix + namespace)
}

// ClearAll removes every staged entry under the reserved prefix. Only the
// commit phase and an explicit reset may call this.
func (s *Store) ClearAll() error {
	return s.session.DeletePrefix(reservedPrefix)
}

// Snapshot returns an immutable copy of all staged data, suitable for
// display-predicate evaluation while the store keeps mutating.
func (s *Store) Snapshot() Snapshot {
	data := make(map[string]map[string]interface{})
	for _, namespace := range s.Namespaces() {
		data[namespace] = copyDoc(s.doc(namespace))
	}
	return Snapshot{data: data}
}

// doc returns the live staged document for a namespace.
func (s *Store) doc(namespace string) map[string]interface{} {
	raw, ok := s.session.Get(reservedPrefix + namespace)
	if !ok {
		return make(map[string]interface{})
	}
	return cast.ToStringMap(raw)
}

// lookupPath resolves a possibly dotted key inside a staged document.
func lookupPath(doc map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	current := doc
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		next := cast.ToStringMap(value)
		if next == nil {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// copyDoc deep-copies a staged document.
func copyDoc(doc map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		copied[key] = copyValue(value)
	}
	return copied
}

// copyValue deep-copies nested maps and slices; scalars are returned as-is.
func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return copyDoc(v)
	case []interface{}:
		copied := make([]interface{}, len(v))
		for i, item := range v {
			copied[i] = copyValue(item)
		}
		return copied
	default:
		return value
	}
}
