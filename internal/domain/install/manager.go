package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/domain/wizard"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// defaultSettingsTable receives the staged documents of steps that do not
// commit their own data.
const defaultSettingsTable = "settings"

// Options selects the optional phases of an Execute call.
type Options struct {
	RunSchemaMigration bool
	RunSeed            bool
	CreateStorageLink  bool
	ResetSchema        bool
}

// Manager runs the commit phase. Execute is never retried by the manager
// itself: a failed commit leaves staged data untouched, and that
// durability is what makes the caller's retry safe.
type Manager struct {
	registry        *step.Registry
	run             *wizard.RunContext
	store           ports.PermanentStore
	secrets         SecretWriter
	markerPath      string
	settingsTable   string
	invalidateCache func(ctx context.Context) error
	logger          ports.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSecretWriter sets where GenerateSecret persists the application
// secret.
func WithSecretWriter(w SecretWriter) Option {
	return func(m *Manager) {
		m.secrets = w
	}
}

// WithCompletionMarker sets the sentinel file written after a finalized
// run, so re-entering the wizard can be refused.
func WithCompletionMarker(path string) Option {
	return func(m *Manager) {
		m.markerPath = path
	}
}

// WithSettingsTable overrides the table receiving default commits.
func WithSettingsTable(table string) Option {
	return func(m *Manager) {
		m.settingsTable = table
	}
}

// WithCacheInvalidator sets the hook that invalidates any cached
// configuration before the commit begins.
func WithCacheInvalidator(fn func(ctx context.Context) error) Option {
	return func(m *Manager) {
		m.invalidateCache = fn
	}
}

// NewManager creates a Manager.
func NewManager(registry *step.Registry, run *wizard.RunContext, store ports.PermanentStore, opts ...Option) *Manager {
	m := &Manager{
		registry:      registry,
		run:           run,
		store:         store,
		settingsTable: defaultSettingsTable,
		logger:        run.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute commits the install run: it invalidates cached configuration,
// migrates the schema, writes every staged namespace into permanent
// storage in active-sequence order, optionally seeds and links storage,
// then clears staged data and finalizes the run.
//
// A failure in any phase before finalization aborts immediately, leaves
// staged data untouched, and is reported as a StatusError result. Only a
// state violation (finalizing twice without the development override) is
// returned as an error.
func (m *Manager) Execute(ctx context.Context, opts Options) (Result, error) {
	if m.run.Run.Finalized() && !m.run.DevOverride {
		return Result{}, fmt.Errorf("%w: refusing to run the commit phase again", wizard.ErrAlreadyFinalized)
	}

	runID := uuid.NewString()
	started := time.Now()

	m.run.Events.Dispatch(ctx, wizard.Event{
		Type:  wizard.EventInstallationStarted,
		RunID: runID,
		Data: map[string]interface{}{
			"run_schema_migration": opts.RunSchemaMigration,
			"run_seed":             opts.RunSeed,
			"create_storage_link":  opts.CreateStorageLink,
			"reset_schema":         opts.ResetSchema,
		},
	})
	m.logger.Info(ctx, "installation started", ports.F("run_id", runID))

	if m.invalidateCache != nil {
		if err := m.invalidateCache(ctx); err != nil {
			return m.abort(ctx, "configuration cache invalidation failed", err, nil), nil
		}
	}

	if opts.RunSchemaMigration {
		if err := m.store.MigrateSchema(ctx, opts.ResetSchema); err != nil {
			return m.abort(ctx, "schema migration failed", err, nil), nil
		}
	}

	// The single point where the staged→permanent boundary is crossed.
	// Writes are upserts keyed by logical identity, so a retried commit
	// never merges partially into permanent storage twice.
	committed := make([]step.ID, 0, m.registry.Len())
	for _, s := range m.registry.ActiveSequence(m.run.Staging.Snapshot()) {
		doc := m.run.Staging.Doc(s.Namespace())

		var err error
		if c := step.AsCommittable(s); c != nil {
			err = c.Commit(ctx, m.store, doc)
		} else {
			err = m.store.UpsertRow(ctx, m.settingsTable, s.ID().String(), doc)
		}
		if err != nil {
			return m.abort(ctx, fmt.Sprintf("commit of step %q failed", s.ID()), err, committed), nil
		}
		committed = append(committed, s.ID())
	}

	if opts.RunSeed {
		if err := m.store.RunSeed(ctx); err != nil {
			return m.abort(ctx, "seeding failed", err, committed), nil
		}
	}

	if opts.CreateStorageLink {
		if err := m.store.CreateStorageLink(ctx); err != nil {
			return m.abort(ctx, "storage link creation failed", err, committed), nil
		}
	}

	if err := m.run.Staging.ClearAll(); err != nil {
		return m.abort(ctx, "clearing staged data failed", err, committed), nil
	}
	if err := m.run.Run.SetFinalized(true); err != nil {
		return m.abort(ctx, "recording finalized state failed", err, committed), nil
	}
	if err := m.writeCompletionMarker(); err != nil {
		return m.abort(ctx, "writing completion marker failed", err, committed), nil
	}

	duration := time.Since(started)
	committedIDs := make([]string, len(committed))
	for i, id := range committed {
		committedIDs[i] = id.String()
	}

	m.run.Events.Dispatch(ctx, wizard.Event{
		Type:           wizard.EventInstallationCompleted,
		RunID:          runID,
		CompletedSteps: committedIDs,
		Duration:       duration,
	})
	m.logger.Info(ctx, "installation completed",
		ports.F("run_id", runID),
		ports.F("steps", len(committed)),
		ports.F("duration", duration.Round(time.Millisecond)))

	return NewSuccessResult("installation completed", committed), nil
}

// Rollback reverts the most recently applied schema migration. Staged data
// is not touched; this is operator-triggered recovery, not automatic
// retry.
func (m *Manager) Rollback(ctx context.Context) (bool, error) {
	reverted, err := m.store.RollbackMigration(ctx)
	if err != nil {
		return false, fmt.Errorf("rollback migration: %w", err)
	}
	if reverted {
		m.logger.Info(ctx, "rolled back most recent migration")
	}
	return reverted, nil
}

// abort logs and builds the error result for a failed phase. Staged data
// is left untouched so a retry is possible.
func (m *Manager) abort(ctx context.Context, message string, cause error, committed []step.ID) Result {
	m.logger.Error(ctx, message, ports.F("error", cause))
	return NewErrorResult(message, cause, committed)
}

// writeCompletionMarker persists the sentinel that refuses wizard
// re-entry.
func (m *Manager) writeCompletionMarker() error {
	if m.markerPath == "" {
		return nil
	}
	if dir := filepath.Dir(m.markerPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	content := fmt.Sprintf("installed at %s\n", time.Now().UTC().Format(time.RFC3339))
	return os.WriteFile(m.markerPath, []byte(content), 0o644)
}

// MarkerExists reports whether a completion marker exists at path.
func MarkerExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
