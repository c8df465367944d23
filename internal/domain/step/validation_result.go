package step

import "sort"

// SkippedRule records a store-dependent rule that was stripped before
// pre-commit validation.
type SkippedRule struct {
	Field string
	Rule  string
}

// ValidationResult maps field paths to error messages for one validation
// attempt. It is produced fresh on every attempt and never merged with a
// previous result. An empty mapping means the step passed.
type ValidationResult struct {
	errors  map[string][]string
	skipped []SkippedRule
}

// NewValidationResult creates an empty (passing) result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		errors: make(map[string][]string),
	}
}

// Valid reports whether no errors were recorded.
func (v *ValidationResult) Valid() bool {
	return len(v.errors) == 0
}

// AddError records an error message for a field path.
func (v *ValidationResult) AddError(field, message string) {
	v.errors[field] = append(v.errors[field], message)
}

// AddSkipped records a stripped store-dependent rule.
func (v *ValidationResult) AddSkipped(field, rule string) {
	v.skipped = append(v.skipped, SkippedRule{Field: field, Rule: rule})
}

// Errors returns a copy of the field-path → messages mapping.
func (v *ValidationResult) Errors() map[string][]string {
	copied := make(map[string][]string, len(v.errors))
	for field, messages := range v.errors {
		list := make([]string, len(messages))
		copy(list, messages)
		copied[field] = list
	}
	return copied
}

// FieldErrors returns the messages recorded for one field path.
func (v *ValidationResult) FieldErrors(field string) []string {
	messages := v.errors[field]
	list := make([]string, len(messages))
	copy(list, messages)
	return list
}

// Fields returns the field paths with errors, sorted.
func (v *ValidationResult) Fields() []string {
	fields := make([]string, 0, len(v.errors))
	for field := range v.errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ErrorCount returns the total number of recorded messages.
func (v *ValidationResult) ErrorCount() int {
	count := 0
	for _, messages := range v.errors {
		count += len(messages)
	}
	return count
}

// SkippedRules returns the store-dependent rules stripped during this
// attempt, in evaluation order.
func (v *ValidationResult) SkippedRules() []SkippedRule {
	list := make([]SkippedRule, len(v.skipped))
	copy(list, v.skipped)
	return list
}
