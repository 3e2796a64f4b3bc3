// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a migrated test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the schema
// migrations and returns a connection pool. The container is terminated
// when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container backed test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()

	if err := migrate.ApplyURL(ctx, connStr, logger); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections: 10,
		MinConnections: 2,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture IDs shared by integration tests.
const (
	StoreDowntown = "store-downtown"
	StoreOnline   = "online"

	ProductShirt = "P-SHIRT"
	ProductJeans = "P-JEANS"

	VariantShirtM  = "V-SHIRT-M"
	VariantShirtL  = "V-SHIRT-L"
	VariantJeans32 = "V-JEANS-32"
)

// SeedCatalog inserts two stores, two products with three variants and
// stock of 10 per variant in every store.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	statements := []struct {
		sql  string
		args []any
	}{
		{"INSERT INTO stores (id, name, location) VALUES ($1, $2, $3)", []any{StoreDowntown, "Downtown", "Main St"}},
		{"INSERT INTO stores (id, name, location) VALUES ($1, $2, $3)", []any{StoreOnline, "Online", ""}},
		{"INSERT INTO products (id, name, price) VALUES ($1, $2, $3)", []any{ProductShirt, "Oxford Shirt", "29.99"}},
		{"INSERT INTO products (id, name, price) VALUES ($1, $2, $3)", []any{ProductJeans, "Slim Jeans", "59.50"}},
		{"INSERT INTO product_variants (id, product_id, size, color) VALUES ($1, $2, $3, $4)", []any{VariantShirtM, ProductShirt, "M", "white"}},
		{"INSERT INTO product_variants (id, product_id, size, color) VALUES ($1, $2, $3, $4)", []any{VariantShirtL, ProductShirt, "L", "white"}},
		{"INSERT INTO product_variants (id, product_id, size, color) VALUES ($1, $2, $3, $4)", []any{VariantJeans32, ProductJeans, "32", "indigo"}},
	}

	for _, s := range statements {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}

	stock := `
		INSERT INTO inventory (store_id, product_id, variant_id, quantity, status)
		SELECT s.id, v.product_id, v.id, 10, 'available'
		FROM stores s CROSS JOIN product_variants v
	`
	if _, err := pool.Exec(ctx, stock); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_details", "orders",
		"fitting_room_requests", "fitting_carts",
		"cart_items", "virtual_carts",
		"inventory", "product_variants", "products", "stores",
	}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
