package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/service/ledger"
)

type salesRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, s *domain.Sale) (int64, error)
	Daily(ctx context.Context, date time.Time) ([]domain.Sale, error)
	Search(ctx context.Context, term string) ([]domain.Sale, error)
	CustomerHistory(ctx context.Context, customerID string) ([]domain.Sale, error)
	TaxReport(ctx context.Context, start, end time.Time) (*domain.TaxReport, error)
}

type ledgerAppender interface {
	AppendTx(ctx context.Context, tx *sql.Tx, req ledger.AppendRequest) (int64, error)
}

type SalesService struct {
	sales    salesRepo
	ledger   ledgerAppender
	notifier changeNotifier
	db       *sql.DB
}

func NewSalesService(sales salesRepo, ledger ledgerAppender, notifier changeNotifier, db *sql.DB) *SalesService {
	return &SalesService{sales: sales, ledger: ledger, notifier: notifier, db: db}
}

type SaleInput struct {
	CustomerID    *string
	OrderDate     string
	ProductName   string
	Quantity      int
	TotalAmount   int64
	PaymentMethod string
	Memo          *string
}

// CreateSale records a sale. Credit sales additionally post a 매출 entry on
// the customer's ledger, so the debt shows up in the balance accounting.
func (s *SalesService) CreateSale(ctx context.Context, in SaleInput) (int64, error) {
	log := logging.FromContext(ctx)

	if in.ProductName == "" {
		return 0, fmt.Errorf("CreateSale: product_name: %w", domain.ErrInvalidRequest)
	}
	date, err := time.Parse("2006-01-02", in.OrderDate)
	if err != nil {
		return 0, fmt.Errorf("CreateSale: %q: %w", in.OrderDate, domain.ErrInvalidDate)
	}
	method := domain.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = domain.PayCash
	}
	if method == domain.PayCredit && in.CustomerID == nil {
		return 0, fmt.Errorf("CreateSale: credit sale needs a customer: %w", domain.ErrInvalidRequest)
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	// The sale row and its credit posting commit together so a failed
	// ledger write never leaves an orphan sale behind.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CreateSale: begin: %w", err)
	}
	defer tx.Rollback()

	saleID, err := s.sales.Insert(ctx, tx, &domain.Sale{
		CustomerID:    in.CustomerID,
		OrderDate:     date,
		ProductName:   in.ProductName,
		Quantity:      in.Quantity,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: method,
		Memo:          in.Memo,
	})
	if err != nil {
		return 0, fmt.Errorf("CreateSale: %w", err)
	}

	if method == domain.PayCredit {
		desc := fmt.Sprintf("외상 매출: %s x%d", in.ProductName, in.Quantity)
		_, err := s.ledger.AppendTx(ctx, tx, ledger.AppendRequest{
			CustomerID:      *in.CustomerID,
			TransactionDate: in.OrderDate,
			TransactionType: string(domain.TypeSale),
			Amount:          in.TotalAmount,
			Description:     &desc,
		})
		if err != nil {
			return 0, fmt.Errorf("CreateSale: ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateSale: commit: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("sale recorded",
		"sales_id", saleID,
		"product", in.ProductName,
		"amount", in.TotalAmount,
		"method", method,
	)
	return saleID, nil
}

func (s *SalesService) DailySales(ctx context.Context, date string) ([]domain.Sale, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("DailySales: %q: %w", date, domain.ErrInvalidDate)
	}
	sales, err := s.sales.Daily(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("DailySales: %w", err)
	}
	return sales, nil
}

func (s *SalesService) SearchSales(ctx context.Context, term string) ([]domain.Sale, error) {
	if term == "" {
		return nil, fmt.Errorf("SearchSales: empty query: %w", domain.ErrInvalidRequest)
	}
	sales, err := s.sales.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("SearchSales: %w", err)
	}
	return sales, nil
}

func (s *SalesService) CustomerSalesHistory(ctx context.Context, customerID string) ([]domain.Sale, error) {
	sales, err := s.sales.CustomerHistory(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("CustomerSalesHistory: %w", err)
	}
	return sales, nil
}

func (s *SalesService) TaxReport(ctx context.Context, start, end string) (*domain.TaxReport, error) {
	sd, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("TaxReport: start %q: %w", start, domain.ErrInvalidDate)
	}
	ed, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("TaxReport: end %q: %w", end, domain.ErrInvalidDate)
	}
	report, err := s.sales.TaxReport(ctx, sd, ed)
	if err != nil {
		return nil, fmt.Errorf("TaxReport: %w", err)
	}
	return report, nil
}
