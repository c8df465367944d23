package wizard

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/groundwork/internal/domain/step"
)

// Wizard walks the active step sequence one lifecycle at a time. Steps
// whose display predicate is false when the sequence is recomputed are
// skipped entirely: none of their lifecycle methods run and they are
// omitted from the completed list, without blocking unrelated steps.
type Wizard struct {
	registry   *step.Registry
	run        *RunContext
	lifecycles map[string]*Lifecycle
}

// NewWizard creates a Wizard over a validated registry. Entering a
// finalized run is refused unless the development override is set.
func NewWizard(registry *step.Registry, run *RunContext) (*Wizard, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	if run.Run.Finalized() && !run.DevOverride {
		return nil, ErrAlreadyFinalized
	}

	return &Wizard{
		registry:   registry,
		run:        run,
		lifecycles: make(map[string]*Lifecycle),
	}, nil
}

// RunContext returns the wizard's run context.
func (w *Wizard) RunContext() *RunContext {
	return w.run
}

// ActiveSequence returns the ordered active steps for the current staged
// snapshot.
func (w *Wizard) ActiveSequence() []step.Step {
	return w.registry.ActiveSequence(w.run.Staging.Snapshot())
}

// Current returns the first active step that has not completed, or false
// when every active step is done.
func (w *Wizard) Current() (step.Step, bool) {
	for _, s := range w.ActiveSequence() {
		if !w.run.Run.IsCompleted(s.ID()) {
			return s, true
		}
	}
	return nil, false
}

// Finished reports whether every active step has completed.
func (w *Wizard) Finished() bool {
	_, ok := w.Current()
	return !ok
}

// Lifecycle returns the lifecycle instance for a step, creating and
// caching it on first use so mount idempotence and failure state survive
// across interactions.
func (w *Wizard) Lifecycle(id step.ID) (*Lifecycle, error) {
	if l, ok := w.lifecycles[id.String()]; ok {
		return l, nil
	}

	s, err := w.registry.Resolve(id)
	if err != nil {
		return nil, err
	}

	l, err := NewLifecycle(s, w.run)
	if err != nil {
		return nil, err
	}
	w.lifecycles[id.String()] = l
	return l, nil
}

// Mount mounts the current step and returns its lifecycle.
func (w *Wizard) Mount(ctx context.Context) (*Lifecycle, error) {
	s, ok := w.Current()
	if !ok {
		return nil, fmt.Errorf("%w: no step awaiting input", ErrInvalidTransition)
	}

	l, err := w.Lifecycle(s.ID())
	if err != nil {
		return nil, err
	}
	if err := l.Mount(ctx); err != nil {
		return nil, err
	}
	if err := w.run.Run.SetCurrent(s.ID()); err != nil {
		return nil, fmt.Errorf("record current step: %w", err)
	}
	return l, nil
}

// Submit submits form data for the current step. The step is mounted
// first if the caller has not done so.
func (w *Wizard) Submit(ctx context.Context, form step.FormData) (*step.ValidationResult, error) {
	l, err := w.Mount(ctx)
	if err != nil {
		return nil, err
	}
	return l.Submit(ctx, form)
}
