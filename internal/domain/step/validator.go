package step

import (
	"fmt"
	"sort"
)

// Validator applies a step's field rules and dependency checks.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateFields applies the step's declared field rules to form data.
// Store-dependent rules are stripped first and recorded on the result;
// all field-level errors are aggregated.
func (v *Validator) ValidateFields(s Step, form FormData) *ValidationResult {
	result := NewValidationResult()

	rules := s.Rules()
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		kept, skipped := StripStoreRules(rules[field])
		for _, rule := range skipped {
			result.AddSkipped(field, rule.Name())
		}
		for _, rule := range kept {
			if err := rule.Validate(form[field]); err != nil {
				result.AddError(field, err.Error())
			}
		}
	}

	return result
}

// ValidateDependencies checks that every dependency of the step appears in
// completed. On failure it returns false and a result with an error keyed
// by the step's own id.
func (v *Validator) ValidateDependencies(s Step, completed []ID) (bool, *ValidationResult) {
	result := NewValidationResult()

	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id.String()] = struct{}{}
	}

	for _, dep := range s.DependsOn() {
		if _, ok := done[dep.String()]; !ok {
			result.AddError(s.ID().String(),
				fmt.Sprintf("requires step %q to be completed first", dep.String()))
		}
	}

	return result.Valid(), result
}

// Input pairs a step with the form data to validate for it.
type Input struct {
	Step Step
	Form FormData
}

// ValidateSteps validates several steps at once. It stops at the first
// structural error (a dependency on an unregistered step) but collects all
// field-level errors across the steps it does visit. Results are keyed by
// step id.
func (v *Validator) ValidateSteps(reg *Registry, inputs []Input, completed []ID) (bool, map[string]*ValidationResult, error) {
	results := make(map[string]*ValidationResult, len(inputs))
	ok := true

	for _, input := range inputs {
		for _, dep := range input.Step.DependsOn() {
			if !reg.Has(dep) {
				return false, results, NewUnregisteredDependencyError(
					input.Step.ID().String(), dep.String())
			}
		}

		result := v.ValidateFields(input.Step, input.Form)
		if depsOK, depResult := v.ValidateDependencies(input.Step, completed); !depsOK {
			for field, messages := range depResult.Errors() {
				for _, message := range messages {
					result.AddError(field, message)
				}
			}
		}

		results[input.Step.ID().String()] = result
		if !result.Valid() {
			ok = false
		}
	}

	return ok, results, nil
}
