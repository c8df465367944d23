package staging

import (
	"sort"

	"github.com/spf13/cast"
)

// Snapshot is an immutable point-in-time copy of all staged data. Display
// predicates evaluate against a Snapshot so that concurrent mutation of the
// live store cannot be observed mid-iteration.
type Snapshot struct {
	data map[string]map[string]interface{}
}

// NewSnapshot builds a Snapshot from raw namespace documents. Intended for
// tests; production snapshots come from Store.Snapshot.
func NewSnapshot(data map[string]map[string]interface{}) Snapshot {
	copied := make(map[string]map[string]interface{}, len(data))
	for namespace, doc := range data {
		copied[namespace] = copyDoc(doc)
	}
	return Snapshot{data: copied}
}

// Get returns the value under (namespace, key), or def when absent.
// Dotted-path keys reach into nested documents.
func (s Snapshot) Get(namespace, key string, def interface{}) interface{} {
	doc, ok := s.data[namespace]
	if !ok {
		return def
	}
	value, ok := lookupPath(doc, key)
	if !ok {
		return def
	}
	return value
}

// Has reports whether (namespace, key) is present.
func (s Snapshot) Has(namespace, key string) bool {
	doc, ok := s.data[namespace]
	if !ok {
		return false
	}
	_, ok = lookupPath(doc, key)
	return ok
}

// GetString returns the value under (namespace, key) coerced to a string.
func (s Snapshot) GetString(namespace, key, def string) string {
	value := s.Get(namespace, key, def)
	return cast.ToString(value)
}

// GetBool returns the value under (namespace, key) coerced to a bool.
func (s Snapshot) GetBool(namespace, key string, def bool) bool {
	value := s.Get(namespace, key, def)
	return cast.ToBool(value)
}

// Doc returns a copy of the document for a namespace.
func (s Snapshot) Doc(namespace string) map[string]interface{} {
	doc, ok := s.data[namespace]
	if !ok {
		return map[string]interface{}{}
	}
	return copyDoc(doc)
}

// Namespaces returns every namespace in the snapshot, sorted.
func (s Snapshot) Namespaces() []string {
	namespaces := make([]string, 0, len(s.data))
	for namespace := range s.data {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)
	return namespaces
}

// IsEmpty reports whether the snapshot holds no staged data.
func (s Snapshot) IsEmpty() bool {
	return len(s.data) == 0
}
