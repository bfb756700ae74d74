package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Insert writes a new entry with its already-normalized amount and returns
// the assigned ledger id.
func (r *LedgerRepository) Insert(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO customer_ledger (
			customer_id, transaction_date, transaction_type, amount, description
		) VALUES ($1, $2, $3, $4, $5) RETURNING ledger_id`,
		e.CustomerID, e.TransactionDate, e.TransactionType, e.Amount, e.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Insert: %w", err)
	}
	return id, nil
}

// GetForUpdate locks the entry row and returns its stored amount and owning
// customer, which Amend/Remove need to compute the balance delta.
func (r *LedgerRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, ledgerID int64) (amount int64, customerID string, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT amount, customer_id FROM customer_ledger WHERE ledger_id = $1 FOR UPDATE`,
		ledgerID,
	).Scan(&amount, &customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", fmt.Errorf("GetForUpdate: %w", domain.ErrEntryNotFound)
		}
		return 0, "", fmt.Errorf("GetForUpdate: %w", err)
	}
	return amount, customerID, nil
}

// Update rewrites the mutable fields of an entry. The owning customer is
// never touched; an entry belongs to one customer for its lifetime.
func (r *LedgerRepository) Update(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE customer_ledger SET transaction_date = $1, transaction_type = $2,
			amount = $3, description = $4
		WHERE ledger_id = $5`,
		e.TransactionDate, e.TransactionType, e.Amount, e.Description, e.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRow(res, "Update", domain.ErrEntryNotFound)
}

func (r *LedgerRepository) Delete(ctx context.Context, tx *sql.Tx, ledgerID int64) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM customer_ledger WHERE ledger_id = $1`, ledgerID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(res, "Delete", domain.ErrEntryNotFound)
}

const statementColumns = `ledger_id, customer_id, transaction_date, transaction_type,
	amount, description, created_at,
	SUM(amount) OVER (
		PARTITION BY customer_id
		ORDER BY transaction_date ASC, ledger_id ASC
	)::BIGINT AS running_balance`

// Statement returns the customer's entries newest-first, each annotated with
// the running balance over the customer's full chronological history. A date
// range filters the visible window only; the running balance is still the
// global cumulative sum.
func (r *LedgerRepository) Statement(ctx context.Context, customerID string, start, end *time.Time) ([]domain.StatementEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if start != nil && end != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT * FROM (
				SELECT `+statementColumns+`
				FROM customer_ledger WHERE customer_id = $1
			) history
			WHERE transaction_date BETWEEN $2 AND $3
			ORDER BY transaction_date DESC, ledger_id DESC`,
			customerID, *start, *end)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+statementColumns+`
			FROM customer_ledger WHERE customer_id = $1
			ORDER BY transaction_date DESC, ledger_id DESC`,
			customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatementEntry
	for rows.Next() {
		var e domain.StatementEntry
		err := rows.Scan(
			&e.ID, &e.CustomerID, &e.TransactionDate, &e.TransactionType,
			&e.Amount, &e.Description, &e.CreatedAt, &e.RunningBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("Statement: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Statement: rows: %w", err)
	}
	return entries, nil
}

// SumByCustomer recomputes the balance from the entries themselves. Used by
// consistency checks, not by the request path.
func (r *LedgerRepository) SumByCustomer(ctx context.Context, customerID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM customer_ledger WHERE customer_id = $1`,
		customerID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumByCustomer: %w", err)
	}
	return sum, nil
}
