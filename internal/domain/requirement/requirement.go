// Package requirement evaluates environment facts against the declared
// requirements of an installation: minimum runtime version, installed
// capabilities, and filesystem permissions.
package requirement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Requirements declares what the target environment must provide before
// the wizard may proceed. Read once at startup and treated as read-only.
type Requirements struct {
	// MinRuntimeVersion is the minimum semantic version of the runtime,
	// with or without a leading "v".
	MinRuntimeVersion string

	// Capabilities are names of runtime capabilities that must be present
	// (extensions, optional subsystems).
	Capabilities []string

	// Paths maps filesystem paths to a required permission string made of
	// "r" and "w" characters, e.g. "rw".
	Paths map[string]string
}

// IsEmpty reports whether nothing is required.
func (r Requirements) IsEmpty() bool {
	return r.MinRuntimeVersion == "" && len(r.Capabilities) == 0 && len(r.Paths) == 0
}

// Facts supplies the environment side of a requirement check.
type Facts interface {
	// RuntimeVersion returns the semantic version of the running platform.
	RuntimeVersion() string

	// HasCapability reports whether a named capability is installed.
	HasCapability(name string) bool

	// PathPermissions probes a filesystem path for read and write access.
	PathPermissions(path string) (readable, writable bool)
}

// SystemFacts is the default Facts implementation: a declared runtime
// version and capability set plus live filesystem probes.
type SystemFacts struct {
	version      string
	capabilities map[string]struct{}
}

// NewSystemFacts creates SystemFacts for the given version and capabilities.
func NewSystemFacts(version string, capabilities []string) *SystemFacts {
	caps := make(map[string]struct{}, len(capabilities))
	for _, name := range capabilities {
		caps[name] = struct{}{}
	}
	return &SystemFacts{version: version, capabilities: caps}
}

// RuntimeVersion returns the declared runtime version.
func (f *SystemFacts) RuntimeVersion() string {
	return f.version
}

// HasCapability reports whether the capability was declared.
func (f *SystemFacts) HasCapability(name string) bool {
	_, ok := f.capabilities[name]
	return ok
}

// PathPermissions probes the filesystem for read and write access.
func (f *SystemFacts) PathPermissions(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}

	if info.IsDir() {
		_, readErr := os.ReadDir(path)
		probe := filepath.Join(path, ".groundwork-probe")
		writeErr := os.WriteFile(probe, nil, 0o600)
		if writeErr == nil {
			_ = os.Remove(probe)
		}
		return readErr == nil, writeErr == nil
	}

	file, readErr := os.Open(path)
	if readErr == nil {
		_ = file.Close()
	}
	handle, writeErr := os.OpenFile(path, os.O_WRONLY, 0)
	if writeErr == nil {
		_ = handle.Close()
	}
	return readErr == nil, writeErr == nil
}

// parsePermission splits a permission string into read/write demands.
func parsePermission(perm string) (needRead, needWrite bool, err error) {
	for _, c := range perm {
		switch c {
		case 'r':
			needRead = true
		case 'w':
			needWrite = true
		default:
			return false, false, fmt.Errorf("unknown permission %q in %q", string(c), perm)
		}
	}
	return needRead, needWrite, nil
}

// formatPermission renders read/write demands back to a permission string.
func formatPermission(read, write bool) string {
	var b strings.Builder
	if read {
		b.WriteString("r")
	}
	if write {
		b.WriteString("w")
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
