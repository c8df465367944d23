package step

import (
	"sort"

	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
)

// Registry owns the set of registered steps and resolves the active,
// ordered sequence for a staged-data snapshot. Plugins call Register at
// process start; the core never discovers steps on its own.
type Registry struct {
	byID  map[string]Step
	order []Step // registration order, the tie-break for equal positions
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Step),
	}
}

// Register adds a step. Registering an id twice is a configuration error.
func (r *Registry) Register(s Step) error {
	id := s.ID()
	if id.IsZero() {
		return ErrEmptyID
	}
	if _, exists := r.byID[id.String()]; exists {
		return NewDuplicateStepError(id.String())
	}
	r.byID[id.String()] = s
	r.order = append(r.order, s)
	return nil
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Steps returns all registered steps in registration order.
func (r *Registry) Steps() []Step {
	steps := make([]Step, len(r.order))
	copy(steps, r.order)
	return steps
}

// Resolve returns the step registered under id.
func (r *Registry) Resolve(id ID) (Step, error) {
	s, ok := r.byID[id.String()]
	if !ok {
		return nil, NewStepNotFoundError(id.String())
	}
	return s, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.byID[id.String()]
	return ok
}

// Validate checks that every declared dependency is registered. Call once
// at startup, after all plugins have registered; a violation is fatal.
func (r *Registry) Validate() error {
	for _, s := range r.order {
		for _, dep := range s.DependsOn() {
			if _, ok := r.byID[dep.String()]; !ok {
				return NewUnregisteredDependencyError(s.ID().String(), dep.String())
			}
		}
	}
	return nil
}

// ActiveSequence returns the steps whose display predicate holds for the
// snapshot, sorted ascending by position with registration order breaking
// ties. Deterministic for a fixed snapshot.
func (r *Registry) ActiveSequence(snap staging.Snapshot) []Step {
	active := make([]Step, 0, len(r.order))
	for _, s := range r.order {
		if s.Display(snap) {
			active = append(active, s)
		}
	}
	// active is in registration order; a stable sort on position alone
	// preserves it as the tie-break.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Position() < active[j].Position()
	})
	return active
}
