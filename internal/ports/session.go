package ports

// SessionStore is a durable key/value store scoped to a single install run.
// It outlives individual wizard interactions but is cheap to reset; the
// staged-data store and the run state are both layered on top of it.
//
// Keys are flat strings; callers namespace them under reserved prefixes to
// avoid collision with unrelated application state.
type SessionStore interface {
	// Put upserts a value under the given key.
	Put(key string, value interface{}) error

	// Get returns the value stored under key, and whether it exists.
	Get(key string) (interface{}, bool)

	// Delete removes the value stored under key. Deleting a missing key
	// is a no-op.
	Delete(key string) error

	// DeletePrefix removes every key that starts with the given prefix.
	DeletePrefix(prefix string) error

	// Keys returns all keys that start with the given prefix, sorted.
	Keys(prefix string) []string
}
