package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

// Statement returns the customer's entries newest-first, annotated with the
// running balance over the full chronological history. The range filter only
// applies when both start and end are given; a one-sided range is ignored and
// the full statement comes back. When filtered, the running balance is still
// the global cumulative sum, not reset at the window start. An unknown
// customer yields an empty statement, not an error.
func (s *Service) Statement(ctx context.Context, customerID string, startDate, endDate *string) ([]domain.StatementEntry, error) {
	if customerID == "" {
		return nil, fmt.Errorf("Statement: customer_id: %w", domain.ErrInvalidRequest)
	}

	var start, end *time.Time
	if startDate != nil && endDate != nil {
		sd, err := parseDate(*startDate)
		if err != nil {
			return nil, fmt.Errorf("Statement: start: %w", err)
		}
		ed, err := parseDate(*endDate)
		if err != nil {
			return nil, fmt.Errorf("Statement: end: %w", err)
		}
		start, end = &sd, &ed
	}

	entries, err := s.entries.Statement(ctx, customerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	return entries, nil
}

// Debtors lists customers with a non-zero balance, largest debt first.
func (s *Service) Debtors(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.Debtors(ctx)
	if err != nil {
		return nil, fmt.Errorf("Debtors: %w", err)
	}
	return customers, nil
}
