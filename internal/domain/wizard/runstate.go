package wizard

import (
	"github.com/spf13/cast"

	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// runPrefix isolates run-state keys from unrelated session state.
const runPrefix = "groundwork.run."

const (
	keyCurrent   = runPrefix + "current"
	keyCompleted = runPrefix + "completed"
	keyFinalized = runPrefix + "finalized"
)

// RunState tracks the progress of the single in-flight install run: the
// current step, the ordered list of completed steps, and whether the run
// was finalized. It is persisted in the session store so it survives
// across wizard interactions.
type RunState struct {
	session ports.SessionStore
}

// NewRunState creates a RunState over the given session store.
func NewRunState(session ports.SessionStore) *RunState {
	return &RunState{session: session}
}

// Current returns the current step id, or a zero ID when unset.
func (r *RunState) Current() step.ID {
	raw, ok := r.session.Get(keyCurrent)
	if !ok {
		return step.ID{}
	}
	id, err := step.NewID(cast.ToString(raw))
	if err != nil {
		return step.ID{}
	}
	return id
}

// SetCurrent records the current step id.
func (r *RunState) SetCurrent(id step.ID) error {
	return r.session.Put(keyCurrent, id.String())
}

// Completed returns the ordered list of completed step ids.
func (r *RunState) Completed() []step.ID {
	raw, ok := r.session.Get(keyCompleted)
	if !ok {
		return nil
	}
	values := cast.ToStringSlice(raw)
	ids := make([]step.ID, 0, len(values))
	for _, value := range values {
		id, err := step.NewID(value)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// IsCompleted reports whether the step id was completed in this run.
func (r *RunState) IsCompleted(id step.ID) bool {
	for _, done := range r.Completed() {
		if done.Equals(id) {
			return true
		}
	}
	return false
}

// AppendCompleted appends a step id to the completed list. Appending an
// already-completed id is a no-op, so re-executed steps stay listed once.
func (r *RunState) AppendCompleted(id step.ID) error {
	if r.IsCompleted(id) {
		return nil
	}
	completed := r.Completed()
	values := make([]string, 0, len(completed)+1)
	for _, done := range completed {
		values = append(values, done.String())
	}
	values = append(values, id.String())
	return r.session.Put(keyCompleted, values)
}

// Finalized reports whether the installation was committed.
func (r *RunState) Finalized() bool {
	raw, ok := r.session.Get(keyFinalized)
	if !ok {
		return false
	}
	return cast.ToBool(raw)
}

// SetFinalized records the finalized marker.
func (r *RunState) SetFinalized(finalized bool) error {
	return r.session.Put(keyFinalized, finalized)
}

// Reset clears all run state. Used after a successful commit, or
// explicitly in development mode.
func (r *RunState) Reset() error {
	return r.session.DeletePrefix(runPrefix)
}
