package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_WriteBeforeMigration(t *testing.T) {
	store := NewMemoryStore("settings")

	err := store.UpsertRow(context.Background(), "settings", "database", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNotMigrated)

	err = store.RunSeed(context.Background())
	assert.ErrorIs(t, err, ErrNotMigrated)
}

func TestMemoryStore_MigrateCreatesDeclaredTables(t *testing.T) {
	store := NewMemoryStore("settings", "users")
	ctx := context.Background()

	require.NoError(t, store.MigrateSchema(ctx, false))

	assert.True(t, store.HasTable(ctx, "settings"))
	assert.True(t, store.HasTable(ctx, "users"))
	assert.False(t, store.HasTable(ctx, "posts"))
}

func TestMemoryStore_UpsertIsIdempotent(t *testing.T) {
	store := NewMemoryStore("settings")
	ctx := context.Background()
	require.NoError(t, store.MigrateSchema(ctx, false))

	require.NoError(t, store.UpsertRow(ctx, "settings", "database",
		map[string]interface{}{"host": "first"}))
	require.NoError(t, store.UpsertRow(ctx, "settings", "database",
		map[string]interface{}{"host": "second"}))

	row, ok := store.Row("settings", "database")
	require.True(t, ok)
	assert.Equal(t, "second", row["host"], "same key overwrites, never duplicates")
}

func TestMemoryStore_UpsertCreatesUndeclaredTable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.MigrateSchema(ctx, false))

	require.NoError(t, store.UpsertRow(ctx, "plugin_data", "key",
		map[string]interface{}{"value": 1}))
	assert.True(t, store.HasTable(ctx, "plugin_data"))
}

func TestMemoryStore_ResetDropsRows(t *testing.T) {
	store := NewMemoryStore("settings")
	ctx := context.Background()
	require.NoError(t, store.MigrateSchema(ctx, false))
	require.NoError(t, store.UpsertRow(ctx, "settings", "k", map[string]interface{}{"v": 1}))

	require.NoError(t, store.MigrateSchema(ctx, true))

	_, ok := store.Row("settings", "k")
	assert.False(t, ok)
	assert.True(t, store.HasTable(ctx, "settings"))
}

func TestMemoryStore_Rollback(t *testing.T) {
	store := NewMemoryStore("settings")
	ctx := context.Background()

	reverted, err := store.RollbackMigration(ctx)
	require.NoError(t, err)
	assert.False(t, reverted, "nothing to roll back before any migration")

	require.NoError(t, store.MigrateSchema(ctx, false))
	reverted, err = store.RollbackMigration(ctx)
	require.NoError(t, err)
	assert.True(t, reverted)
	assert.False(t, store.HasTable(ctx, "settings"))
}

func TestMemoryStore_SeedAndLink(t *testing.T) {
	store := NewMemoryStore("settings")
	ctx := context.Background()
	require.NoError(t, store.MigrateSchema(ctx, false))

	require.NoError(t, store.RunSeed(ctx))
	require.NoError(t, store.CreateStorageLink(ctx))

	assert.True(t, store.Seeded())
	assert.True(t, store.Linked())
}
