package step

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for step orchestration.
const (
	ErrCodeStepDuplicate          = "STEP_DUPLICATE"
	ErrCodeStepNotFound           = "STEP_NOT_FOUND"
	ErrCodeDependencyMissing      = "DEPENDENCY_MISSING"
	ErrCodeDependencyUnregistered = "DEPENDENCY_UNREGISTERED"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeExecuteFailed          = "EXECUTE_FAILED"
	ErrCodeCommitFailed           = "COMMIT_FAILED"
	ErrCodeStateInvalid           = "STATE_INVALID"
)

// Sentinel errors for programmatic checks with errors.Is.
var (
	// ErrDuplicateStep is returned when a step id is registered twice.
	ErrDuplicateStep = errors.New("step with this ID is already registered")
	// ErrStepNotFound is returned when resolving an unknown step id.
	ErrStepNotFound = errors.New("step not found")
	// ErrUnregisteredDependency is returned when a registered step depends
	// on an id that was never registered. This is a configuration error
	// surfaced at startup, not at runtime.
	ErrUnregisteredDependency = errors.New("step depends on an unregistered step")
)

// StepError is a structured error with an actionable suggestion.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.StepID != "" {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.StepID))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}

	return b.String()
}

// NewStepError creates a new StepError with the given code and message.
func NewStepError(code, message string) *StepError {
	return &StepError{
		Code:    code,
		Message: message,
	}
}

// WithStepID returns a new StepError with step ID set.
func (e *StepError) WithStepID(stepID string) *StepError {
	return &StepError{
		Code:       e.Code,
		Message:    e.Message,
		StepID:     stepID,
		Suggestion: e.Suggestion,
		Underlying: e.Underlying,
	}
}

// WithSuggestion returns a new StepError with suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	return &StepError{
		Code:       e.Code,
		Message:    e.Message,
		StepID:     e.StepID,
		Suggestion: suggestion,
		Underlying: e.Underlying,
	}
}

// WithUnderlying returns a new StepError wrapping another error.
func (e *StepError) WithUnderlying(err error) *StepError {
	return &StepError{
		Code:       e.Code,
		Message:    e.Message,
		StepID:     e.StepID,
		Suggestion: e.Suggestion,
		Underlying: err,
	}
}

// NewDuplicateStepError creates an error for a duplicate step registration.
func NewDuplicateStepError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeStepDuplicate,
		Message:    "step with this ID is already registered",
		StepID:     stepID,
		Suggestion: "Each step must have a unique ID. Qualify plugin step IDs with a vendor prefix.",
		Underlying: ErrDuplicateStep,
	}
}

// NewStepNotFoundError creates an error for an unknown step id.
func NewStepNotFoundError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeStepNotFound,
		Message:    "no step registered with this ID",
		StepID:     stepID,
		Suggestion: "Check that the plugin providing this step is registered at startup.",
		Underlying: ErrStepNotFound,
	}
}

// NewUnregisteredDependencyError creates an error for a dependency on an
// id that no plugin registered.
func NewUnregisteredDependencyError(stepID, dependsOn string) *StepError {
	return &StepError{
		Code:       ErrCodeDependencyUnregistered,
		Message:    fmt.Sprintf("depends on %q which is not registered", dependsOn),
		StepID:     stepID,
		Suggestion: "Register the missing step before the wizard starts, or remove the dependency.",
		Underlying: ErrUnregisteredDependency,
	}
}
