package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// State represents a lifecycle state for one step instance.
type State string

const (
	// StateMounted is the initial state before form data is loaded.
	StateMounted State = "mounted"
	// StateAwaitingInput means the step is ready for a submission.
	StateAwaitingInput State = "awaiting_input"
	// StateValidating means a submission is being validated.
	StateValidating State = "validating"
	// StateFailed means the last submission failed; the attached
	// ValidationResult explains why. The step returns to AwaitingInput on
	// the next submission.
	StateFailed State = "failed"
	// StateExecuting means the step's execute hook is running.
	StateExecuting State = "executing"
	// StateCompleted is terminal for this step instance.
	StateCompleted State = "completed"
)

// Event types for the lifecycle state machine.
const (
	eventMounted       = "MOUNTED"
	eventSubmit        = "SUBMIT"
	eventValid         = "VALID"
	eventInvalid       = "INVALID"
	eventExecuted      = "EXECUTED"
	eventExecuteFailed = "EXECUTE_FAILED"
	eventRetry         = "RETRY"
)

// Errors for lifecycle state violations. These are faults in how the
// caller drives the wizard, not recoverable validation failures.
var (
	// ErrInvalidTransition is returned when a lifecycle method is called
	// in a state that does not permit it.
	ErrInvalidTransition = errors.New("lifecycle transition not allowed in current state")
	// ErrAlreadyFinalized is returned when operating on a finalized run
	// without the development override.
	ErrAlreadyFinalized = errors.New("installation already finalized")
)

// machineContext is the statekit context for a lifecycle machine.
type machineContext struct {
	StepID string
}

// buildLifecycleMachine constructs the per-step state machine.
func buildLifecycleMachine(stepID string) (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("step-lifecycle").
		WithInitial(statekit.StateID(StateMounted)).
		WithContext(machineContext{StepID: stepID}).
		// Mounted: waiting for staged data to load.
		State(statekit.StateID(StateMounted)).
		On(eventMounted).Target(statekit.StateID(StateAwaitingInput)).Done().
		// AwaitingInput: ready for a submission.
		State(statekit.StateID(StateAwaitingInput)).
		On(eventSubmit).Target(statekit.StateID(StateValidating)).Done().
		// Validating: field and dependency rules run.
		State(statekit.StateID(StateValidating)).
		On(eventValid).Target(statekit.StateID(StateExecuting)).
		On(eventInvalid).Target(statekit.StateID(StateFailed)).Done().
		// Failed: submission rejected; retry returns to awaiting input.
		State(statekit.StateID(StateFailed)).
		On(eventRetry).Target(statekit.StateID(StateAwaitingInput)).Done().
		// Executing: the step's execute hook runs.
		State(statekit.StateID(StateExecuting)).
		On(eventExecuted).Target(statekit.StateID(StateCompleted)).
		On(eventExecuteFailed).Target(statekit.StateID(StateFailed)).Done().
		// Completed: terminal for this instance.
		State(statekit.StateID(StateCompleted)).Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

// Lifecycle drives a single step instance through
// mounted → awaiting_input → validating → {failed, executing} → completed.
// One lifecycle transition runs at a time; the run's staged data and state
// are exclusively owned by the in-flight interaction.
type Lifecycle struct {
	step    step.Step
	run     *RunContext
	interp  *statekit.Interpreter[machineContext]
	form    step.FormData
	result  *step.ValidationResult
	mounted bool
}

// NewLifecycle creates and starts a lifecycle for the given step.
func NewLifecycle(s step.Step, run *RunContext) (*Lifecycle, error) {
	interp, err := buildLifecycleMachine(s.ID().String())
	if err != nil {
		return nil, fmt.Errorf("build lifecycle machine: %w", err)
	}
	interp.Start()

	return &Lifecycle{
		step:   s,
		run:    run,
		interp: interp,
	}, nil
}

// Step returns the step this lifecycle drives.
func (l *Lifecycle) Step() step.Step {
	return l.step
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return State(l.interp.State().Value)
}

// Result returns the ValidationResult attached by the last failed
// submission, or nil.
func (l *Lifecycle) Result() *step.ValidationResult {
	return l.result
}

// Form returns a copy of the working form state.
func (l *Lifecycle) Form() step.FormData {
	form := make(step.FormData, len(l.form))
	for key, value := range l.form {
		form[key] = value
	}
	return form
}

// Mount loads any previously staged data for this step's namespace into
// the working form state. Mount is idempotent: re-mounting reloads the
// same data without side effects, and StepStarted fires only on the first
// mount of this instance.
func (l *Lifecycle) Mount(ctx context.Context) error {
	if l.State() == StateCompleted {
		return fmt.Errorf("%w: step %q already completed", ErrInvalidTransition, l.step.ID())
	}

	snap := l.run.Staging.Snapshot()
	l.form = step.FormData(snap.Doc(l.step.Namespace()))

	if !l.mounted {
		l.interp.Send(statekit.Event{Type: eventMounted})
		l.mounted = true
		l.run.Events.Dispatch(ctx, Event{
			Type:   EventStepStarted,
			StepID: l.step.ID().String(),
			Data:   l.form,
		})
	}

	return nil
}

// Submit validates form data and, when valid, executes the step and stages
// its output. Validation and dependency failures are returned as data in
// the ValidationResult, never as errors; the error return is reserved for
// state violations and infrastructure faults.
func (l *Lifecycle) Submit(ctx context.Context, form step.FormData) (*step.ValidationResult, error) {
	switch l.State() {
	case StateAwaitingInput:
		// Ready.
	case StateFailed:
		l.interp.Send(statekit.Event{Type: eventRetry})
	default:
		return nil, fmt.Errorf("%w: step %q in state %q", ErrInvalidTransition, l.step.ID(), l.State())
	}

	l.form = form
	l.interp.Send(statekit.Event{Type: eventSubmit})

	result := l.run.Validator.ValidateFields(l.step, form)
	if depsOK, depResult := l.run.Validator.ValidateDependencies(l.step, l.run.Run.Completed()); !depsOK {
		for field, messages := range depResult.Errors() {
			for _, message := range messages {
				result.AddError(field, message)
			}
		}
	}

	if !result.Valid() {
		return l.fail(ctx, result, nil)
	}

	l.interp.Send(statekit.Event{Type: eventValid})

	// External calls inside the execute hook are synchronous and
	// blocking; the explicit timeout maps network failure to a Failed
	// transition instead of an unhandled fault.
	execCtx, cancel := context.WithTimeout(ctx, l.run.executeTimeout())
	defer cancel()

	output, err := l.step.Execute(execCtx, form)
	if err != nil {
		result.AddError(l.step.ID().String(), fmt.Sprintf("execution failed: %v", err))
		return l.fail(ctx, result, err)
	}

	if err := l.run.Staging.PutAll(l.step.Namespace(), output); err != nil {
		return nil, fmt.Errorf("stage output for step %q: %w", l.step.ID(), err)
	}

	l.interp.Send(statekit.Event{Type: eventExecuted})

	if err := l.run.Run.AppendCompleted(l.step.ID()); err != nil {
		return nil, fmt.Errorf("record completion of step %q: %w", l.step.ID(), err)
	}

	l.result = result
	l.run.Events.Dispatch(ctx, Event{
		Type:   EventStepCompleted,
		StepID: l.step.ID().String(),
		Data:   output,
	})

	l.run.Logger.Info(ctx, "step completed", ports.F("step", l.step.ID().String()))
	return result, nil
}

// fail transitions to Failed with the result attached and emits StepFailed.
// Nothing is staged on a failed submission.
func (l *Lifecycle) fail(ctx context.Context, result *step.ValidationResult, cause error) (*step.ValidationResult, error) {
	event := eventInvalid
	if cause != nil {
		event = eventExecuteFailed
	}
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	l.result = result

	l.run.Events.Dispatch(ctx, Event{
		Type:   EventStepFailed,
		StepID: l.step.ID().String(),
		Err:    cause,
		Data:   l.form,
	})

	l.run.Logger.Warn(ctx, "step failed",
		ports.F("step", l.step.ID().String()),
		ports.F("errors", result.ErrorCount()))
	return result, nil
}
