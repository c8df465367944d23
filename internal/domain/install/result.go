// Package install implements the commit phase: the one-time operation that
// migrates staged data into permanent storage and reports a structured
// result.
package install

import (
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
)

// Status is the terminal outcome of an installation run.
type Status string

const (
	// StatusSuccess means every phase of the commit completed.
	StatusSuccess Status = "success"
	// StatusError means the commit aborted; staged data is preserved so
	// the caller may retry.
	StatusError Status = "error"
)

// Result is the immutable outcome of one Manager.Execute call.
type Result struct {
	status         Status
	message        string
	output         string
	committedSteps []step.ID
}

// NewSuccessResult creates a success Result with the committed step ids in
// commit order.
func NewSuccessResult(message string, committed []step.ID) Result {
	steps := make([]step.ID, len(committed))
	copy(steps, committed)
	return Result{
		status:         StatusSuccess,
		message:        message,
		committedSteps: steps,
	}
}

// NewErrorResult creates an error Result capturing the underlying cause in
// the output.
func NewErrorResult(message string, cause error, committed []step.ID) Result {
	steps := make([]step.ID, len(committed))
	copy(steps, committed)
	output := ""
	if cause != nil {
		output = cause.Error()
	}
	return Result{
		status:         StatusError,
		message:        message,
		output:         output,
		committedSteps: steps,
	}
}

// Status returns the terminal status.
func (r Result) Status() Status {
	return r.status
}

// Success reports whether the commit completed.
func (r Result) Success() bool {
	return r.status == StatusSuccess
}

// Message returns the human-readable summary.
func (r Result) Message() string {
	return r.message
}

// Output returns the captured output of the failing phase, empty on
// success.
func (r Result) Output() string {
	return r.output
}

// CommittedSteps returns the step ids whose staged data reached permanent
// storage, in commit order.
func (r Result) CommittedSteps() []step.ID {
	steps := make([]step.ID, len(r.committedSteps))
	copy(steps, r.committedSteps)
	return steps
}

// CommittedStepStrings returns the committed step ids as strings.
func (r Result) CommittedStepStrings() []string {
	ids := make([]string, len(r.committedSteps))
	for i, id := range r.committedSteps {
		ids[i] = id.String()
	}
	return ids
}
