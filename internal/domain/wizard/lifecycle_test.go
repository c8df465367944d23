package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundwork/internal/adapters/logging"
	"github.com/felixgeelhaar/groundwork/internal/adapters/session"
	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
)

func newTestRun() *RunContext {
	return NewRunContext(session.NewMemoryStore(), logging.NewNopLogger())
}

func databaseStep() step.Descriptor {
	return step.NewDescriptor(step.MustNewID("database"), 5).
		WithRules(map[string][]step.Rule{
			"host": {step.Required()},
			"port": {step.Required(), step.Numeric()},
		})
}

func accountStep() step.Descriptor {
	return step.NewDescriptor(step.MustNewID("account"), 10).
		WithDependsOn(step.MustNewID("database")).
		WithRules(map[string][]step.Rule{
			"email": {step.Required(), step.Email(), step.UniqueInStore("users", "email")},
		})
}

func collectEvents(run *RunContext) *[]Event {
	var events []Event
	run.Events.Subscribe(func(e Event) {
		events = append(events, e)
	})
	return &events
}

func TestLifecycle_MountIsIdempotent(t *testing.T) {
	run := newTestRun()
	events := collectEvents(run)
	require.NoError(t, run.Staging.Put("database", "host", "localhost"))

	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)

	require.NoError(t, l.Mount(context.Background()))
	assert.Equal(t, StateAwaitingInput, l.State())
	assert.Equal(t, "localhost", l.Form()["host"])

	// Re-mounting reloads the same data without a second StepStarted.
	require.NoError(t, l.Mount(context.Background()))
	assert.Equal(t, StateAwaitingInput, l.State())

	started := 0
	for _, e := range *events {
		if e.Type == EventStepStarted {
			started++
		}
	}
	assert.Equal(t, 1, started)
}

func TestLifecycle_SubmitBeforeMount(t *testing.T) {
	run := newTestRun()
	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)

	_, err = l.Submit(context.Background(), step.FormData{"host": "localhost", "port": "3306"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLifecycle_ValidSubmitStagesOutput(t *testing.T) {
	run := newTestRun()
	events := collectEvents(run)

	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{"host": "localhost", "port": "3306"})
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, StateCompleted, l.State())

	assert.Equal(t, "localhost", run.Staging.Get("database", "host", nil))
	assert.True(t, run.Run.IsCompleted(step.MustNewID("database")))

	types := make([]EventType, len(*events))
	for i, e := range *events {
		types[i] = e.Type
	}
	assert.Equal(t, []EventType{EventStepStarted, EventStepCompleted}, types)
}

func TestLifecycle_InvalidSubmitStagesNothing(t *testing.T) {
	run := newTestRun()
	events := collectEvents(run)

	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{"host": "", "port": "not-a-number"})
	require.NoError(t, err, "validation failures are data, not errors")
	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.FieldErrors("host"))
	assert.NotEmpty(t, result.FieldErrors("port"))
	assert.Equal(t, StateFailed, l.State())
	assert.Same(t, result, l.Result())

	assert.True(t, run.Staging.Snapshot().IsEmpty(), "nothing may be staged on failure")
	assert.False(t, run.Run.IsCompleted(step.MustNewID("database")))

	last := (*events)[len(*events)-1]
	assert.Equal(t, EventStepFailed, last.Type)
}

func TestLifecycle_ResubmitAfterFailure(t *testing.T) {
	run := newTestRun()
	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{"host": "", "port": ""})
	require.NoError(t, err)
	require.False(t, result.Valid())

	// A corrected resubmission passes; the result is fresh, not merged.
	result, err = l.Submit(context.Background(), step.FormData{"host": "localhost", "port": "3306"})
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, StateCompleted, l.State())
}

func TestLifecycle_ExecuteFailure(t *testing.T) {
	run := newTestRun()
	boom := errors.New("connection refused")
	s := step.NewDescriptor(step.MustNewID("database"), 5).
		WithExecute(func(_ context.Context, _ step.FormData) (step.Output, error) {
			return nil, boom
		})

	l, err := NewLifecycle(s, run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{})
	require.NoError(t, err, "an execute failure transitions to Failed, it does not error")
	assert.False(t, result.Valid())
	assert.Equal(t, StateFailed, l.State())
	assert.Contains(t, result.FieldErrors("database")[0], "connection refused")
	assert.True(t, run.Staging.Snapshot().IsEmpty())
}

func TestLifecycle_ExecuteHonorsTimeout(t *testing.T) {
	run := newTestRun()
	run.ExecuteTimeout = 1 // nanosecond; the hook sees an expired context
	s := step.NewDescriptor(step.MustNewID("database"), 5).
		WithExecute(func(ctx context.Context, _ step.FormData) (step.Output, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	l, err := NewLifecycle(s, run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.Equal(t, StateFailed, l.State())
}

func TestLifecycle_DependencyUnmet(t *testing.T) {
	run := newTestRun()
	l, err := NewLifecycle(accountStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{"email": "admin@example.com"})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.Contains(t, result.FieldErrors("account")[0], `"database"`)
	assert.True(t, run.Staging.Snapshot().IsEmpty())
}

func TestLifecycle_StoreDependentRuleIsRecorded(t *testing.T) {
	run := newTestRun()
	require.NoError(t, run.Run.AppendCompleted(step.MustNewID("database")))

	l, err := NewLifecycle(accountStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	result, err := l.Submit(context.Background(), step.FormData{"email": "admin@example.com"})
	require.NoError(t, err)
	assert.True(t, result.Valid())

	skipped := result.SkippedRules()
	require.Len(t, skipped, 1)
	assert.Equal(t, "email", skipped[0].Field)
	assert.Equal(t, "unique:users,email", skipped[0].Rule)
}

func TestLifecycle_MountAfterCompleted(t *testing.T) {
	run := newTestRun()
	l, err := NewLifecycle(databaseStep(), run)
	require.NoError(t, err)
	require.NoError(t, l.Mount(context.Background()))

	_, err = l.Submit(context.Background(), step.FormData{"host": "localhost", "port": "3306"})
	require.NoError(t, err)

	err = l.Mount(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDispatcher_PanickingListenerIsContained(t *testing.T) {
	d := NewDispatcher(logging.NewNopLogger())

	var delivered []EventType
	d.Subscribe(func(Event) {
		panic("listener bug")
	})
	d.Subscribe(func(e Event) {
		delivered = append(delivered, e.Type)
	})

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Type: EventStepStarted})
	})
	assert.Equal(t, []EventType{EventStepStarted}, delivered)
}

func TestRunState_AppendCompletedIsOrderedAndDeduped(t *testing.T) {
	run := newTestRun()

	require.NoError(t, run.Run.AppendCompleted(step.MustNewID("welcome")))
	require.NoError(t, run.Run.AppendCompleted(step.MustNewID("database")))
	require.NoError(t, run.Run.AppendCompleted(step.MustNewID("welcome")))

	completed := run.Run.Completed()
	require.Len(t, completed, 2)
	assert.Equal(t, "welcome", completed[0].String())
	assert.Equal(t, "database", completed[1].String())
}

func TestRunState_Reset(t *testing.T) {
	run := newTestRun()
	require.NoError(t, run.Run.SetCurrent(step.MustNewID("database")))
	require.NoError(t, run.Run.SetFinalized(true))

	require.NoError(t, run.Run.Reset())

	assert.True(t, run.Run.Current().IsZero())
	assert.False(t, run.Run.Finalized())
	assert.Empty(t, run.Run.Completed())
}

func TestWizard_Walkthrough(t *testing.T) {
	run := newTestRun()
	reg := step.NewRegistry()
	require.NoError(t, reg.Register(databaseStep()))
	require.NoError(t, reg.Register(accountStep()))

	wiz, err := NewWizard(reg, run)
	require.NoError(t, err)

	current, ok := wiz.Current()
	require.True(t, ok)
	assert.Equal(t, "database", current.ID().String())

	result, err := wiz.Submit(context.Background(), step.FormData{"host": "localhost", "port": "3306"})
	require.NoError(t, err)
	require.True(t, result.Valid())

	current, ok = wiz.Current()
	require.True(t, ok)
	assert.Equal(t, "account", current.ID().String())

	result, err = wiz.Submit(context.Background(), step.FormData{"email": "admin@example.com"})
	require.NoError(t, err)
	require.True(t, result.Valid())

	assert.True(t, wiz.Finished())

	// Mounting past the end is a caller fault.
	_, err = wiz.Mount(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestWizard_LifecycleInstancesAreCached(t *testing.T) {
	run := newTestRun()
	reg := step.NewRegistry()
	require.NoError(t, reg.Register(databaseStep()))

	wiz, err := NewWizard(reg, run)
	require.NoError(t, err)

	first, err := wiz.Lifecycle(step.MustNewID("database"))
	require.NoError(t, err)
	second, err := wiz.Lifecycle(step.MustNewID("database"))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestWizard_RefusesFinalizedRun(t *testing.T) {
	run := newTestRun()
	require.NoError(t, run.Run.SetFinalized(true))
	reg := step.NewRegistry()
	require.NoError(t, reg.Register(databaseStep()))

	_, err := NewWizard(reg, run)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	run.DevOverride = true
	_, err = NewWizard(reg, run)
	assert.NoError(t, err)
}

func TestWizard_RefusesInvalidRegistry(t *testing.T) {
	run := newTestRun()
	reg := step.NewRegistry()
	require.NoError(t, reg.Register(accountStep())) // depends on unregistered database

	_, err := NewWizard(reg, run)
	assert.ErrorIs(t, err, step.ErrUnregisteredDependency)
}

func TestWizard_HiddenStepIsSkipped(t *testing.T) {
	run := newTestRun()
	reg := step.NewRegistry()
	require.NoError(t, reg.Register(databaseStep()))
	require.NoError(t, reg.Register(step.NewDescriptor(step.MustNewID("mail"), 7).
		WithDisplay(func(snap staging.Snapshot) bool {
			return snap.GetBool("database", "wants_mail", false)
		})))
	require.NoError(t, reg.Register(accountStep()))

	wiz, err := NewWizard(reg, run)
	require.NoError(t, err)

	// Hidden steps never mount and never block later steps.
	assert.Equal(t, []string{"database", "account"},
		activeIDs(wiz.ActiveSequence()))

	result, err := wiz.Submit(context.Background(),
		step.FormData{"host": "localhost", "port": "3306", "wants_mail": true})
	require.NoError(t, err)
	require.True(t, result.Valid())

	// Staging the toggle reveals the step on the next recomputation.
	assert.Equal(t, []string{"database", "mail", "account"},
		activeIDs(wiz.ActiveSequence()))
	current, ok := wiz.Current()
	require.True(t, ok)
	assert.Equal(t, "mail", current.ID().String())
}

func activeIDs(steps []step.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID().String()
	}
	return ids
}
