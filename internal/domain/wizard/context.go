package wizard

import (
	"time"

	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// defaultExecuteTimeout bounds a step's execute hook, including any
// external calls it makes.
const defaultExecuteTimeout = 30 * time.Second

// RunContext carries the run-scoped collaborators every lifecycle needs:
// the staged-data store, the run state, the event dispatcher, and the
// validator. It is passed explicitly through every call; there is no
// ambient session access.
type RunContext struct {
	Staging        *staging.Store
	Run            *RunState
	Events         *Dispatcher
	Validator      *step.Validator
	Logger         ports.Logger
	ExecuteTimeout time.Duration

	// DevOverride permits re-entering an already-finalized run.
	// Non-production use only.
	DevOverride bool
}

// NewRunContext assembles a RunContext over a session store.
func NewRunContext(session ports.SessionStore, logger ports.Logger) *RunContext {
	return &RunContext{
		Staging:        staging.NewStore(session),
		Run:            NewRunState(session),
		Events:         NewDispatcher(logger),
		Validator:      step.NewValidator(),
		Logger:         logger,
		ExecuteTimeout: defaultExecuteTimeout,
	}
}

// executeTimeout returns the configured timeout, or the default.
func (c *RunContext) executeTimeout() time.Duration {
	if c.ExecuteTimeout <= 0 {
		return defaultExecuteTimeout
	}
	return c.ExecuteTimeout
}
