package ports

import "context"

// PermanentStore is the write interface to the application's eventual
// persistent storage. It is deliberately narrow: the installation commit
// phase never issues ad-hoc queries beyond these primitives, and nothing
// may assume the store exists before MigrateSchema has run.
type PermanentStore interface {
	// MigrateSchema applies all pending schema migrations. When reset is
	// true the schema is dropped and rebuilt from scratch.
	MigrateSchema(ctx context.Context, reset bool) error

	// RollbackMigration reverts the most recently applied migration.
	// Returns false if there was nothing to roll back.
	RollbackMigration(ctx context.Context) (bool, error)

	// RunSeed populates the store with seed data.
	RunSeed(ctx context.Context) error

	// UpsertRow writes a row into the given table keyed by its logical
	// identity. Writing the same key twice replaces the row, which is what
	// makes commit retries idempotent.
	UpsertRow(ctx context.Context, table, key string, row map[string]interface{}) error

	// HasTable reports whether the table exists in the live store.
	HasTable(ctx context.Context, table string) bool

	// CreateStorageLink creates the public storage symlink for the
	// application, if the deployment uses one.
	CreateStorageLink(ctx context.Context) error
}
