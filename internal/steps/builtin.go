// Package steps provides the built-in wizard steps. They register through
// the same public registration API third-party plugins use; the core never
// discovers steps on its own.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/groundwork/internal/domain/requirement"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// Built-in step positions. Gaps leave room for plugins to interleave.
const (
	positionWelcome      = 1
	positionRequirements = 2
	positionDatabase     = 5
	positionAccount      = 10
)

// Builtins returns every built-in step in registration order.
func Builtins(checker *requirement.Checker, reqs requirement.Requirements) []step.Step {
	return []step.Step{
		Welcome(),
		Requirements(checker, reqs),
		Database(),
		Account(),
	}
}

// RegisterBuiltins registers every built-in step.
func RegisterBuiltins(reg *step.Registry, checker *requirement.Checker, reqs requirement.Requirements) error {
	for _, s := range Builtins(checker, reqs) {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Welcome greets the operator and records the acknowledgment.
func Welcome() step.Descriptor {
	return step.NewDescriptor(step.MustNewID("welcome"), positionWelcome).
		WithExecute(func(_ context.Context, _ step.FormData) (step.Output, error) {
			return step.Output{"acknowledged": true}, nil
		})
}

// Requirements verifies the environment before anything is collected.
// Unmet requirements surface as an execute failure so the operator can fix
// the host and resubmit.
func Requirements(checker *requirement.Checker, reqs requirement.Requirements) step.Descriptor {
	return step.NewDescriptor(step.MustNewID("requirements"), positionRequirements).
		WithExecute(func(_ context.Context, _ step.FormData) (step.Output, error) {
			report := checker.Check(reqs)
			if !report.Passed() {
				details := make([]string, 0, len(report.Failed()))
				for _, c := range report.Failed() {
					details = append(details, fmt.Sprintf("%s %s (%s)", c.Kind, c.Name, c.Detail))
				}
				return nil, fmt.Errorf("unmet requirements: %s", strings.Join(details, "; "))
			}
			return step.Output{
				"passed": true,
				"checks": len(report.Checks()),
			}, nil
		})
}

// Database collects the connection settings for the eventual permanent
// store. The settings are staged; no connection is attempted before the
// commit phase.
func Database() step.Descriptor {
	return step.NewDescriptor(step.MustNewID("database"), positionDatabase).
		WithRules(map[string][]step.Rule{
			"driver":   {step.Required(), step.Format(`^[a-z][a-z0-9]*$`)},
			"host":     {step.Required(), step.MaxLength(255)},
			"port":     {step.Required(), step.Numeric()},
			"database": {step.Required(), step.MaxLength(64)},
			"username": {step.Required(), step.MaxLength(64)},
			"password": {step.MaxLength(255)},
		})
}

// Account collects the administrator account, hashes the password on
// execute, and commits the row into the users table itself. The email
// uniqueness rule is store-dependent and therefore stripped until the
// store exists.
func Account() step.Descriptor {
	return step.NewDescriptor(step.MustNewID("account"), positionAccount).
		WithDependsOn(step.MustNewID("database")).
		WithRules(map[string][]step.Rule{
			"name":     {step.Required(), step.MaxLength(100)},
			"email":    {step.Required(), step.Email(), step.UniqueInStore("users", "email")},
			"password": {step.Required(), step.MinLength(8), step.MaxLength(72)},
		}).
		WithExecute(func(_ context.Context, form step.FormData) (step.Output, error) {
			password := cast.ToString(form["password"])
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			return step.Output{
				"name":          form["name"],
				"email":         form["email"],
				"password_hash": string(hash),
			}, nil
		}).
		WithCommit(func(ctx context.Context, store ports.PermanentStore, doc map[string]interface{}) error {
			email := cast.ToString(doc["email"])
			if email == "" {
				return fmt.Errorf("staged account has no email")
			}
			return store.UpsertRow(ctx, "users", email, doc)
		})
}
