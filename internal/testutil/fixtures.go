package testutil

import (
	"database/sql"
	"testing"
)

func SeedCustomer(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO customers (customer_id, customer_name, customer_grade)
		 VALUES ($1, $2, '일반')
		 ON CONFLICT (customer_id) DO NOTHING`,
		id, name,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", id, err)
	}
}

func SeedProduct(t *testing.T, db *sql.DB, name string, stock int) int {
	t.Helper()
	var id int
	err := db.QueryRow(
		`INSERT INTO products (product_name, unit_price, stock_quantity, is_active)
		 VALUES ($1, 10000, $2, true) RETURNING product_id`,
		name, stock,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return id
}

func SeedBatch(t *testing.T, db *sql.DB, code string, productID, spaceID *int) int {
	t.Helper()
	var id int
	err := db.QueryRow(
		`INSERT INTO production_batches (batch_code, product_id, space_id, start_date, status)
		 VALUES ($1, $2, $3, CURRENT_DATE, 'growing') RETURNING batch_id`,
		code, productID, spaceID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed batch %s: %v", code, err)
	}
	return id
}

func SeedSpace(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	var id int
	err := db.QueryRow(
		`INSERT INTO production_spaces (space_name, is_active)
		 VALUES ($1, true) RETURNING space_id`,
		name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed space %s: %v", name, err)
	}
	return id
}

func CustomerBalance(t *testing.T, db *sql.DB, customerID string) int64 {
	t.Helper()
	var balance int64
	err := db.QueryRow(
		`SELECT current_balance FROM customers WHERE customer_id = $1`, customerID,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("query balance for %s: %v", customerID, err)
	}
	return balance
}

func CountLedgerEntries(t *testing.T, db *sql.DB, customerID string) int {
	t.Helper()
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM customer_ledger WHERE customer_id = $1`, customerID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("count ledger entries for %s: %v", customerID, err)
	}
	return n
}

func ProductStock(t *testing.T, db *sql.DB, productID int) int {
	t.Helper()
	var stock int
	err := db.QueryRow(
		`SELECT stock_quantity FROM products WHERE product_id = $1`, productID,
	).Scan(&stock)
	if err != nil {
		t.Fatalf("query stock for product %d: %v", productID, err)
	}
	return stock
}
