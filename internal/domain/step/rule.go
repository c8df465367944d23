package step

import (
	"fmt"
	"regexp"

	"github.com/spf13/cast"
)

// Rule is one field-validation rule. Rules referencing the permanent store
// (uniqueness, existence) report StoreDependent and are mechanically
// stripped before pre-commit validation, because the store may not exist
// yet.
//
// Every rule except Required treats an absent or empty value as valid;
// presence is Required's job.
type Rule interface {
	// Name returns the canonical rule name including arguments,
	// e.g. "required", "min:8", "unique:users,email".
	Name() string

	// StoreDependent reports whether evaluating this rule needs the
	// permanent store.
	StoreDependent() bool

	// Validate checks a field value. A non-nil error carries the
	// user-facing message.
	Validate(value interface{}) error
}

// StripStoreRules filters store-dependent rules out of a rule list.
// It returns the rules that can run pre-commit and the ones that were
// skipped, so callers can record the transformation instead of applying
// it silently.
func StripStoreRules(rules []Rule) (kept, skipped []Rule) {
	kept = make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.StoreDependent() {
			skipped = append(skipped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, skipped
}

// isEmpty reports whether a field value counts as "not provided".
func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// Required demands a non-empty value.
func Required() Rule { return requiredRule{} }

type requiredRule struct{}

func (requiredRule) Name() string         { return "required" }
func (requiredRule) StoreDependent() bool { return false }
func (requiredRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return fmt.Errorf("is required")
	}
	return nil
}

// emailPattern is intentionally permissive: one @, no spaces, a dot in the
// domain part.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email demands a plausible email address.
func Email() Rule { return emailRule{} }

type emailRule struct{}

func (emailRule) Name() string         { return "email" }
func (emailRule) StoreDependent() bool { return false }
func (emailRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return nil
	}
	if !emailPattern.MatchString(cast.ToString(value)) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// MinLength demands at least n characters.
func MinLength(n int) Rule { return minLengthRule{n: n} }

type minLengthRule struct{ n int }

func (r minLengthRule) Name() string         { return fmt.Sprintf("min:%d", r.n) }
func (r minLengthRule) StoreDependent() bool { return false }
func (r minLengthRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return nil
	}
	if len([]rune(cast.ToString(value))) < r.n {
		return fmt.Errorf("must be at least %d characters", r.n)
	}
	return nil
}

// MaxLength demands at most n characters.
func MaxLength(n int) Rule { return maxLengthRule{n: n} }

type maxLengthRule struct{ n int }

func (r maxLengthRule) Name() string         { return fmt.Sprintf("max:%d", r.n) }
func (r maxLengthRule) StoreDependent() bool { return false }
func (r maxLengthRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return nil
	}
	if len([]rune(cast.ToString(value))) > r.n {
		return fmt.Errorf("must be at most %d characters", r.n)
	}
	return nil
}

// Numeric demands a numeric value.
func Numeric() Rule { return numericRule{} }

type numericRule struct{}

func (numericRule) Name() string         { return "numeric" }
func (numericRule) StoreDependent() bool { return false }
func (numericRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return nil
	}
	if _, err := cast.ToFloat64E(value); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

// Format demands that the value match a regular expression.
// Panics on an invalid expression; formats are compile-time constants.
func Format(expr string) Rule {
	return formatRule{expr: expr, re: regexp.MustCompile(expr)}
}

type formatRule struct {
	expr string
	re   *regexp.Regexp
}

func (r formatRule) Name() string         { return "format:" + r.expr }
func (r formatRule) StoreDependent() bool { return false }
func (r formatRule) Validate(value interface{}) error {
	if isEmpty(value) {
		return nil
	}
	if !r.re.MatchString(cast.ToString(value)) {
		return fmt.Errorf("has an invalid format")
	}
	return nil
}

// UniqueInStore demands that no row in table already holds this value in
// column. Store-dependent: stripped pre-commit, enforced by the permanent
// store at commit time.
func UniqueInStore(table, column string) Rule {
	return uniqueInStoreRule{table: table, column: column}
}

type uniqueInStoreRule struct {
	table  string
	column string
}

func (r uniqueInStoreRule) Name() string {
	return fmt.Sprintf("unique:%s,%s", r.table, r.column)
}
func (r uniqueInStoreRule) StoreDependent() bool         { return true }
func (r uniqueInStoreRule) Validate(_ interface{}) error { return nil }
func (r uniqueInStoreRule) Table() string                { return r.table }
func (r uniqueInStoreRule) Column() string               { return r.column }

// ExistsInStore demands that some row in table holds this value in column.
// Store-dependent: stripped pre-commit.
func ExistsInStore(table, column string) Rule {
	return existsInStoreRule{table: table, column: column}
}

type existsInStoreRule struct {
	table  string
	column string
}

func (r existsInStoreRule) Name() string {
	return fmt.Sprintf("exists:%s,%s", r.table, r.column)
}
func (r existsInStoreRule) StoreDependent() bool         { return true }
func (r existsInStoreRule) Validate(_ interface{}) error { return nil }
func (r existsInStoreRule) Table() string                { return r.table }
func (r existsInStoreRule) Column() string               { return r.column }
