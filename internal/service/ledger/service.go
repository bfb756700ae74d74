package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
)

type entryRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, ledgerID int64) (amount int64, customerID string, err error)
	Update(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
	Delete(ctx context.Context, tx *sql.Tx, ledgerID int64) error
	Statement(ctx context.Context, customerID string, start, end *time.Time) ([]domain.StatementEntry, error)
}

type customerRepo interface {
	AdjustBalance(ctx context.Context, tx *sql.Tx, customerID string, delta int64) error
	Debtors(ctx context.Context) ([]domain.Customer, error)
}

type changeNotifier interface {
	MarkDirty()
}

// Service owns ledger entries and keeps each customer's cached balance equal
// to the sum of that customer's entries. Every mutation pairs the entry write
// with the balance adjustment in one transaction.
type Service struct {
	entries   entryRepo
	customers customerRepo
	notifier  changeNotifier
	db        *sql.DB
}

func NewService(entries entryRepo, customers customerRepo, notifier changeNotifier, db *sql.DB) *Service {
	return &Service{entries: entries, customers: customers, notifier: notifier, db: db}
}

type AppendRequest struct {
	CustomerID      string
	TransactionDate string
	TransactionType string
	Amount          int64
	Description     *string
}

type AmendRequest struct {
	LedgerID        int64
	TransactionDate string
	TransactionType string
	Amount          int64
	Description     *string
}

// Append inserts a new entry with its normalized amount and adds that amount
// to the owning customer's balance. Returns the new ledger id.
func (s *Service) Append(ctx context.Context, req AppendRequest) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Append: begin: %w", err)
	}
	defer tx.Rollback()

	id, err := s.AppendTx(ctx, tx, req)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Append: commit: %w", err)
	}
	s.notifier.MarkDirty()
	return id, nil
}

// AppendTx is Append within a caller-owned transaction, so a sale and its
// ledger posting can commit or roll back together. The caller commits and
// signals the backup notifier.
func (s *Service) AppendTx(ctx context.Context, tx *sql.Tx, req AppendRequest) (int64, error) {
	log := logging.FromContext(ctx)

	if req.CustomerID == "" {
		return 0, fmt.Errorf("Append: customer_id: %w", domain.ErrInvalidRequest)
	}
	date, err := parseDate(req.TransactionDate)
	if err != nil {
		return 0, fmt.Errorf("Append: %w", err)
	}

	txType := domain.TransactionType(req.TransactionType)
	amount := Normalize(txType, req.Amount)

	id, err := s.entries.Insert(ctx, tx, &domain.LedgerEntry{
		CustomerID:      req.CustomerID,
		TransactionDate: date,
		TransactionType: txType,
		Amount:          amount,
		Description:     req.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("Append: %w", err)
	}

	if err := s.customers.AdjustBalance(ctx, tx, req.CustomerID, amount); err != nil {
		return 0, fmt.Errorf("Append: %w", err)
	}

	log.Info("ledger entry created",
		"ledger_id", id,
		"customer_id", req.CustomerID,
		"type", txType,
		"amount", amount,
	)
	return id, nil
}

// Amend rewrites an entry's date, type, amount and description, and applies
// the delta between the new and old signed amounts to the owning customer.
// The owning customer itself is never reassigned.
func (s *Service) Amend(ctx context.Context, req AmendRequest) error {
	log := logging.FromContext(ctx)

	date, err := parseDate(req.TransactionDate)
	if err != nil {
		return fmt.Errorf("Amend: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Amend: begin: %w", err)
	}
	defer tx.Rollback()

	oldAmount, customerID, err := s.entries.GetForUpdate(ctx, tx, req.LedgerID)
	if err != nil {
		return fmt.Errorf("Amend: %w", err)
	}

	txType := domain.TransactionType(req.TransactionType)
	amount := Normalize(txType, req.Amount)

	err = s.entries.Update(ctx, tx, &domain.LedgerEntry{
		ID:              req.LedgerID,
		TransactionDate: date,
		TransactionType: txType,
		Amount:          amount,
		Description:     req.Description,
	})
	if err != nil {
		return fmt.Errorf("Amend: %w", err)
	}

	if delta := amount - oldAmount; delta != 0 {
		if err := s.customers.AdjustBalance(ctx, tx, customerID, delta); err != nil {
			return fmt.Errorf("Amend: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Amend: commit: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("ledger entry amended",
		"ledger_id", req.LedgerID,
		"customer_id", customerID,
		"old_amount", oldAmount,
		"new_amount", amount,
	)
	return nil
}

// Remove deletes an entry and reverses its contribution to the owning
// customer's balance exactly.
func (s *Service) Remove(ctx context.Context, ledgerID int64) error {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Remove: begin: %w", err)
	}
	defer tx.Rollback()

	amount, customerID, err := s.entries.GetForUpdate(ctx, tx, ledgerID)
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}

	if err := s.entries.Delete(ctx, tx, ledgerID); err != nil {
		return fmt.Errorf("Remove: %w", err)
	}

	if err := s.customers.AdjustBalance(ctx, tx, customerID, -amount); err != nil {
		return fmt.Errorf("Remove: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Remove: commit: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("ledger entry removed",
		"ledger_id", ledgerID,
		"customer_id", customerID,
		"amount", amount,
	)
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, domain.ErrInvalidDate)
	}
	return d, nil
}
