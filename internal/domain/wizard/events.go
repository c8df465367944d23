// Package wizard drives one step at a time through its lifecycle state
// machine, tracks run state, and emits progress events.
package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	// EventInstallationStarted fires when the commit phase begins.
	EventInstallationStarted EventType = "installation_started"
	// EventStepStarted fires when a step is first mounted.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted fires when a step reaches its completed state.
	EventStepCompleted EventType = "step_completed"
	// EventStepFailed fires on a validation or execution failure.
	EventStepFailed EventType = "step_failed"
	// EventInstallationCompleted fires when the commit phase succeeds.
	EventInstallationCompleted EventType = "installation_completed"
)

// Event is one observable progress signal. Events are the only externally
// visible signals of wizard progress.
type Event struct {
	Type           EventType
	RunID          string
	StepID         string
	Data           map[string]interface{}
	Err            error
	CompletedSteps []string
	Duration       time.Duration
}

// Listener receives events synchronously, in emission order.
type Listener func(Event)

// Dispatcher delivers events to zero or more listeners. Delivery is
// synchronous and in-order; a panicking listener is recovered and logged
// so it can never abort the lifecycle transition that triggered it.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    ports.Logger
}

// NewDispatcher creates a Dispatcher logging listener failures to logger.
func NewDispatcher(logger ports.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Subscribe registers a listener for all subsequent events.
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Dispatch delivers the event to every listener before returning.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	d.mu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	for _, l := range listeners {
		d.deliver(ctx, l, event)
	}
}

// deliver invokes one listener, containing any panic.
func (d *Dispatcher) deliver(ctx context.Context, l Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(ctx, "event listener panicked",
				ports.F("event", string(event.Type)),
				ports.F("step", event.StepID),
				ports.F("panic", fmt.Sprintf("%v", r)))
		}
	}()
	l(event)
}
