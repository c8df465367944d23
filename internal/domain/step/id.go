// Package step defines the wizard's step model: identities, descriptors,
// the registry that orders them, the validation rule AST, and the
// validator that applies it.
package step

import (
	"errors"
	"regexp"
	"strings"
)

// ID uniquely identifies a step within an installation.
// Plugins may qualify their ids with a vendor prefix (e.g. "acme:billing").
type ID struct {
	value string
}

// Errors for ID validation.
var (
	ErrEmptyID   = errors.New("step ID cannot be empty")
	ErrInvalidID = errors.New("step ID format invalid: must be lowercase alphanumeric with hyphens, underscores, or a colon-separated vendor prefix")
)

// idPattern validates step ID format. Lowercase alphanumeric segments with
// hyphens and underscores, optionally separated by colons. No spaces, and
// no leading or trailing colon.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(?::[a-z0-9][a-z0-9_-]*)*$`)

// NewID creates a new ID from a string.
func NewID(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ID{}, ErrEmptyID
	}

	if !idPattern.MatchString(trimmed) {
		return ID{}, ErrInvalidID
	}

	return ID{value: trimmed}, nil
}

// MustNewID creates a new ID from a string, panicking on error.
// Use this for compile-time known values that should never fail validation.
func MustNewID(value string) ID {
	id, err := NewID(value)
	if err != nil {
		panic("invalid step ID: " + value + ": " + err.Error())
	}
	return id
}

// String returns the string representation.
func (id ID) String() string {
	return id.value
}

// Equals checks equality with another ID.
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

// Vendor extracts the vendor prefix (first segment), or "" for core steps.
func (id ID) Vendor() string {
	if i := strings.Index(id.value, ":"); i >= 0 {
		return id.value[:i]
	}
	return ""
}

// IsZero returns true if this is a zero-value ID.
func (id ID) IsZero() bool {
	return id.value == ""
}
