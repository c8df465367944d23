package step

import (
	"context"

	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// FormData is the raw data submitted for one step.
type FormData map[string]interface{}

// Output is the structured document a step stages after executing.
type Output map[string]interface{}

// Step is one self-contained unit of the setup wizard. Implementations are
// immutable once registered.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() ID

	// Position is the sort key for ordering the active sequence.
	// Ties are broken by registration order.
	Position() int

	// DependsOn returns the IDs of steps that must complete before this
	// one may execute.
	DependsOn() []ID

	// Namespace returns the staged-data namespace this step writes to.
	Namespace() string

	// Display reports whether the step belongs in the active sequence for
	// the given staged-data snapshot. A hidden step keeps any data it
	// already staged.
	Display(snap staging.Snapshot) bool

	// Rules returns the field-validation rules, keyed by field path.
	Rules() map[string][]Rule

	// Execute runs the step's domain-specific work for validated form
	// data and returns the document to stage. External calls must honor
	// the context deadline.
	Execute(ctx context.Context, form FormData) (Output, error)
}

// Committable is a capability interface for steps that write their staged
// document into permanent storage themselves during the commit phase,
// instead of the default settings upsert.
type Committable interface {
	Step

	// CanCommit reports whether the step wants to commit its own data.
	CanCommit() bool

	// Commit writes the staged document into permanent storage. Writes
	// must be upserts keyed by logical identity so retries stay
	// idempotent.
	Commit(ctx context.Context, store ports.PermanentStore, doc map[string]interface{}) error
}

// AsCommittable attempts to cast a step to Committable.
// Returns nil if the step doesn't commit its own data.
func AsCommittable(s Step) Committable {
	if c, ok := s.(Committable); ok && c.CanCommit() {
		return c
	}
	return nil
}
