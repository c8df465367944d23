package step

import (
	"context"

	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// ExecuteFunc is a step's domain-specific execute hook.
type ExecuteFunc func(ctx context.Context, form FormData) (Output, error)

// CommitFunc writes a staged document into permanent storage.
type CommitFunc func(ctx context.Context, store ports.PermanentStore, doc map[string]interface{}) error

// DisplayFunc decides whether a step appears in the active sequence for a
// given staged snapshot. It must be a pure function of the snapshot.
type DisplayFunc func(snap staging.Snapshot) bool

// Descriptor is an immutable, data-driven Step implementation. Plugins
// build one with the With* methods and register it; the zero hooks give
// sensible defaults (always displayed, execute stages the submitted form,
// commit uses the default settings upsert).
type Descriptor struct {
	id        ID
	position  int
	namespace string
	dependsOn []ID
	display   DisplayFunc
	rules     map[string][]Rule
	execute   ExecuteFunc
	commit    CommitFunc
}

// NewDescriptor creates a Descriptor with the given identity and position.
// The staged namespace defaults to the step id.
func NewDescriptor(id ID, position int) Descriptor {
	return Descriptor{
		id:        id,
		position:  position,
		namespace: id.String(),
	}
}

// WithNamespace returns a copy writing to the given staged namespace.
func (d Descriptor) WithNamespace(namespace string) Descriptor {
	d.namespace = namespace
	return d
}

// WithDependsOn returns a copy depending on the given step ids.
func (d Descriptor) WithDependsOn(ids ...ID) Descriptor {
	deps := make([]ID, len(ids))
	copy(deps, ids)
	d.dependsOn = deps
	return d
}

// WithDisplay returns a copy using the given display predicate.
func (d Descriptor) WithDisplay(fn DisplayFunc) Descriptor {
	d.display = fn
	return d
}

// WithRules returns a copy using the given field rules.
func (d Descriptor) WithRules(rules map[string][]Rule) Descriptor {
	copied := make(map[string][]Rule, len(rules))
	for field, fieldRules := range rules {
		list := make([]Rule, len(fieldRules))
		copy(list, fieldRules)
		copied[field] = list
	}
	d.rules = copied
	return d
}

// WithExecute returns a copy using the given execute hook.
func (d Descriptor) WithExecute(fn ExecuteFunc) Descriptor {
	d.execute = fn
	return d
}

// WithCommit returns a copy that commits its own staged document.
func (d Descriptor) WithCommit(fn CommitFunc) Descriptor {
	d.commit = fn
	return d
}

// ID returns the step id.
func (d Descriptor) ID() ID {
	return d.id
}

// Position returns the sort key.
func (d Descriptor) Position() int {
	return d.position
}

// DependsOn returns the dependency ids.
func (d Descriptor) DependsOn() []ID {
	deps := make([]ID, len(d.dependsOn))
	copy(deps, d.dependsOn)
	return deps
}

// Namespace returns the staged-data namespace.
func (d Descriptor) Namespace() string {
	return d.namespace
}

// Display evaluates the display predicate; a Descriptor without one is
// always displayed.
func (d Descriptor) Display(snap staging.Snapshot) bool {
	if d.display == nil {
		return true
	}
	return d.display(snap)
}

// Rules returns the field rules.
func (d Descriptor) Rules() map[string][]Rule {
	copied := make(map[string][]Rule, len(d.rules))
	for field, fieldRules := range d.rules {
		list := make([]Rule, len(fieldRules))
		copy(list, fieldRules)
		copied[field] = list
	}
	return copied
}

// Execute runs the execute hook; a Descriptor without one stages the
// submitted form data unchanged.
func (d Descriptor) Execute(ctx context.Context, form FormData) (Output, error) {
	if d.execute == nil {
		out := make(Output, len(form))
		for key, value := range form {
			out[key] = value
		}
		return out, nil
	}
	return d.execute(ctx, form)
}

// CanCommit reports whether a custom commit hook was set.
func (d Descriptor) CanCommit() bool {
	return d.commit != nil
}

// Commit runs the custom commit hook.
func (d Descriptor) Commit(ctx context.Context, store ports.PermanentStore, doc map[string]interface{}) error {
	if d.commit == nil {
		return nil
	}
	return d.commit(ctx, store, doc)
}

// Ensure Descriptor implements the step capability interfaces.
var (
	_ Step        = Descriptor{}
	_ Committable = Descriptor{}
)
