// Package envfile reads and writes the application's environment file,
// the flat KEY=value document most deployments source their runtime
// configuration from. The install commit phase persists the generated
// application secret here.
package envfile

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/ini.v1"
)

// File is an editable view over an environment file.
type File struct {
	mu   sync.Mutex
	path string
	cfg  *ini.File
}

// Open loads the env file at path, creating an empty document when the
// file does not exist yet.
func Open(path string) (*File, error) {
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return &File{path: path, cfg: cfg}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get returns the value for key, or empty string when absent.
func (f *File) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Section("").Key(key).String()
}

// Has reports whether key is present.
func (f *File) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Section("").HasKey(key)
}

// Set upserts key to value. The change is not persisted until Save.
func (f *File) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg.Section("").Key(key).SetValue(value)
}

// SetAll upserts every key/value pair in values.
func (f *File) SetAll(values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, value := range values {
		f.cfg.Section("").Key(key).SetValue(value)
	}
}

// Save writes the document back to disk.
func (f *File) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cfg.SaveTo(f.path); err != nil {
		return fmt.Errorf("save env file %s: %w", f.path, err)
	}
	return os.Chmod(f.path, 0o600)
}
