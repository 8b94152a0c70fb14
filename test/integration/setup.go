package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

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

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			category   TEXT NOT NULL,
			condition  TEXT NOT NULL,
			image_url  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS variants (
			id         TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			label      TEXT NOT NULL,
			price      DOUBLE PRECISION NOT NULL,
			stock      INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			in_stock   BOOLEAN NOT NULL DEFAULT FALSE,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_variants_product_id ON variants(product_id);

		CREATE TABLE IF NOT EXISTS orders (
			id                  UUID PRIMARY KEY,
			customer_name       TEXT NOT NULL,
			email               TEXT NOT NULL,
			phone               TEXT NOT NULL DEFAULT '',
			address_line        TEXT NOT NULL,
			city                TEXT NOT NULL,
			state               TEXT NOT NULL DEFAULT '',
			postal_code         TEXT NOT NULL DEFAULT '',
			country             TEXT NOT NULL DEFAULT '',
			subtotal            DOUBLE PRECISION NOT NULL,
			tax                 DOUBLE PRECISION NOT NULL,
			shipping            DOUBLE PRECISION NOT NULL,
			total               DOUBLE PRECISION NOT NULL,
			currency            TEXT NOT NULL,
			payment_method      TEXT NOT NULL,
			payment_status      TEXT NOT NULL,
			status              TEXT NOT NULL,
			gateway_order_ref   TEXT,
			gateway_payment_ref TEXT,
			signature           TEXT,
			created_at          TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id            UUID PRIMARY KEY,
			order_id      UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id    TEXT NOT NULL,
			name          TEXT NOT NULL,
			variant_label TEXT NOT NULL,
			color         TEXT NOT NULL DEFAULT '',
			image_url     TEXT NOT NULL DEFAULT '',
			unit_price    DOUBLE PRECISION NOT NULL,
			quantity      INTEGER NOT NULL CHECK (quantity > 0)
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

		CREATE TABLE IF NOT EXISTS transactions (
			id                  UUID PRIMARY KEY,
			order_id            UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			amount              DOUBLE PRECISION NOT NULL,
			currency            TEXT NOT NULL,
			payment_method      TEXT NOT NULL,
			gateway             TEXT NOT NULL,
			status              TEXT NOT NULL,
			gateway_order_ref   TEXT,
			gateway_payment_ref TEXT,
			raw_payload         TEXT,
			created_at          TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_order_id ON transactions(order_id);

		CREATE TABLE IF NOT EXISTS store_settings (
			id                   SERIAL PRIMARY KEY,
			tax_enabled          BOOLEAN NOT NULL DEFAULT FALSE,
			tax_rate_percent     DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_enabled     BOOLEAN NOT NULL DEFAULT FALSE,
			shipping_flat_amount DOUBLE PRECISION NOT NULL DEFAULT 0
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalog inserts test products and variants into the database.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id, name, category, condition string
	}{
		{"P001", "Refurbished Laptop", "laptops", "refurbished"},
		{"P002", "Refurbished Phone", "phones", "refurbished"},
		{"P003", "Open-box Monitor", "monitors", "open-box"},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, category, condition, image_url) VALUES ($1, $2, $3, $4, $5)",
			p.id, p.name, p.category, p.condition, "https://img.test/"+p.id+".jpg",
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	variants := []struct {
		id, productID, label string
		price                float64
		stock                int
		isDefault            bool
	}{
		{"V001", "P001", "8GB / 256GB", 500.00, 5, false},
		{"V002", "P001", "16GB / 512GB", 700.00, 3, true},
		{"V003", "P002", "128GB", 300.00, 1, true},
		{"V004", "P003", "Base configuration", 250.00, 10, true},
	}

	for _, v := range variants {
		_, err := pool.Exec(ctx,
			"INSERT INTO variants (id, product_id, label, price, stock, in_stock, is_default) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			v.id, v.productID, v.label, v.price, v.stock, v.stock > 0, v.isDefault,
		)
		if err != nil {
			t.Fatalf("failed to seed variant %s: %v", v.id, err)
		}
	}
}

// SeedSettings inserts a store settings row.
func SeedSettings(t *testing.T, pool *pgxpool.Pool, taxRate, shippingFlat float64) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO store_settings (tax_enabled, tax_rate_percent, shipping_enabled, shipping_flat_amount) VALUES ($1, $2, $3, $4)",
		taxRate > 0, taxRate, shippingFlat > 0, shippingFlat,
	)
	if err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"transactions", "order_items", "orders", "variants", "products", "store_settings"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
