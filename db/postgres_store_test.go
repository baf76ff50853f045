package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Integration test; requires a disposable database in TEST_DATABASE_URL.
func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("skipping postgres integration test: TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.ApplyMigrations(ctx))
	_, err = store.Pool.Exec(ctx, `TRUNCATE ucsb_dining_commons_menu_items RESTART IDENTITY`)
	require.NoError(t, err)

	runStoreContract(t, store)
}
