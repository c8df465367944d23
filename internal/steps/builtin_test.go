package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/groundwork/internal/adapters/storage"
	"github.com/felixgeelhaar/groundwork/internal/domain/requirement"
	"github.com/felixgeelhaar/groundwork/internal/domain/staging"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
)

// fixedFacts answers requirement checks without probing the host.
type fixedFacts struct {
	version      string
	capabilities map[string]bool
}

func (f fixedFacts) RuntimeVersion() string              { return f.version }
func (f fixedFacts) HasCapability(name string) bool      { return f.capabilities[name] }
func (f fixedFacts) PathPermissions(string) (bool, bool) { return true, true }

func TestRegisterBuiltins(t *testing.T) {
	reg := step.NewRegistry()
	checker := requirement.NewChecker(fixedFacts{version: "8.2.0"})

	require.NoError(t, RegisterBuiltins(reg, checker, requirement.Requirements{}))
	require.NoError(t, reg.Validate())

	sequence := reg.ActiveSequence(staging.NewSnapshot(nil))
	ids := make([]string, len(sequence))
	for i, s := range sequence {
		ids[i] = s.ID().String()
	}
	assert.Equal(t, []string{"welcome", "requirements", "database", "account"}, ids)
}

func TestWelcome_StagesAcknowledgment(t *testing.T) {
	out, err := Welcome().Execute(context.Background(), step.FormData{})
	require.NoError(t, err)
	assert.Equal(t, true, out["acknowledged"])
}

func TestRequirements_PassesWhenMet(t *testing.T) {
	checker := requirement.NewChecker(fixedFacts{
		version:      "8.2.0",
		capabilities: map[string]bool{"pdo": true},
	})
	s := Requirements(checker, requirement.Requirements{
		MinRuntimeVersion: "8.1.0",
		Capabilities:      []string{"pdo"},
	})

	out, err := s.Execute(context.Background(), step.FormData{})
	require.NoError(t, err)
	assert.Equal(t, true, out["passed"])
	assert.Equal(t, 2, out["checks"])
}

func TestRequirements_FailsWhenUnmet(t *testing.T) {
	checker := requirement.NewChecker(fixedFacts{version: "8.0.0"})
	s := Requirements(checker, requirement.Requirements{
		MinRuntimeVersion: "8.2.0",
	})

	_, err := s.Execute(context.Background(), step.FormData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmet requirements")
	assert.Contains(t, err.Error(), "runtime")
}

func TestDatabase_Rules(t *testing.T) {
	validator := step.NewValidator()

	result := validator.ValidateFields(Database(), step.FormData{
		"driver":   "mysql",
		"host":     "localhost",
		"port":     "3306",
		"database": "app",
		"username": "app",
		"password": "",
	})
	assert.True(t, result.Valid(), "errors: %v", result.Errors())

	result = validator.ValidateFields(Database(), step.FormData{
		"driver":   "MySQL!",
		"host":     "",
		"port":     "not-a-port",
		"database": "app",
		"username": "app",
	})
	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.FieldErrors("driver"))
	assert.NotEmpty(t, result.FieldErrors("host"))
	assert.NotEmpty(t, result.FieldErrors("port"))
}

func TestAccount_ExecuteHashesPassword(t *testing.T) {
	out, err := Account().Execute(context.Background(), step.FormData{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "Admin", out["name"])
	assert.Equal(t, "admin@example.com", out["email"])

	hash, ok := out["password_hash"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
	assert.NotContains(t, out, "password", "the cleartext password is never staged")
}

func TestAccount_UniqueRuleIsDeferred(t *testing.T) {
	validator := step.NewValidator()

	result := validator.ValidateFields(Account(), step.FormData{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "correct-horse",
	})
	require.True(t, result.Valid())

	skipped := result.SkippedRules()
	require.Len(t, skipped, 1)
	assert.Equal(t, "unique:users,email", skipped[0].Rule)
}

func TestAccount_CommitsOwnRow(t *testing.T) {
	backing := storage.NewMemoryStore("users")
	ctx := context.Background()
	require.NoError(t, backing.MigrateSchema(ctx, false))

	committable := step.AsCommittable(Account())
	require.NotNil(t, committable)

	doc := map[string]interface{}{
		"name":          "Admin",
		"email":         "admin@example.com",
		"password_hash": "hashed",
	}
	require.NoError(t, committable.Commit(ctx, backing, doc))

	row, ok := backing.Row("users", "admin@example.com")
	require.True(t, ok)
	assert.Equal(t, "Admin", row["name"])

	// Missing email means the staged document is unusable.
	err := committable.Commit(ctx, backing, map[string]interface{}{})
	assert.Error(t, err)
}
