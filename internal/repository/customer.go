package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

const customerColumns = `customer_id, customer_name, mobile_number, address,
	customer_grade, memo, current_balance, created_at`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (
			customer_id, customer_name, mobile_number, address,
			customer_grade, memo, current_balance, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.MobileNumber, c.Address,
		c.Grade, c.Memo, c.CurrentBalance, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrCustomerExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET customer_name = $1, mobile_number = $2,
			address = $3, customer_grade = $4, memo = $5
		WHERE customer_id = $6`,
		c.Name, c.MobileNumber, c.Address, c.Grade, c.Memo, c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRow(res, "Update", domain.ErrCustomerNotFound)
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE customer_id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(res, "Delete", domain.ErrCustomerNotFound)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// List returns customers matching the search term against name or mobile
// number, or all customers when the term is empty.
func (r *CustomerRepository) List(ctx context.Context, search string) ([]domain.Customer, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if search == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+customerColumns+` FROM customers ORDER BY customer_name`)
	} else {
		pattern := "%" + search + "%"
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+customerColumns+` FROM customers
			WHERE customer_name ILIKE $1 OR mobile_number LIKE $1
			ORDER BY customer_name`, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows, "List")
}

// Debtors returns customers whose cached balance is non-zero, largest debt
// first. Prepaid (negative) balances sort last.
func (r *CustomerRepository) Debtors(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers
		WHERE current_balance != 0
		ORDER BY current_balance DESC`)
	if err != nil {
		return nil, fmt.Errorf("Debtors: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows, "Debtors")
}

// AdjustBalance adds delta to the customer's cached balance inside the given
// transaction. The row lock taken by UPDATE serializes concurrent ledger
// mutations against the same customer.
func (r *CustomerRepository) AdjustBalance(ctx context.Context, tx *sql.Tx, customerID string, delta int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE customers SET current_balance = current_balance + $1 WHERE customer_id = $2`,
		delta, customerID,
	)
	if err != nil {
		return fmt.Errorf("AdjustBalance: %w", err)
	}
	return requireRow(res, "AdjustBalance", domain.ErrCustomerNotFound)
}

func collectCustomers(rows *sql.Rows, op string) ([]domain.Customer, error) {
	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return customers, nil
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Scan(
		&c.ID, &c.Name, &c.MobileNumber, &c.Address,
		&c.Grade, &c.Memo, &c.CurrentBalance, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireRow(res sql.Result, op string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
