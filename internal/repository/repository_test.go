package repository

import (
	"context"
	"testing"

	"storefront/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB starts a migrated PostgreSQL container seeded with the
// shared catalogue fixtures.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db.Pool)

	return db.Pool
}

// inTx runs fn inside a transaction that is always rolled back.
func inTx(t *testing.T, pool *pgxpool.Pool, fn func(q Querier)) {
	t.Helper()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	fn(tx)
}
