package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

const salesColumns = `sales_id, customer_id, order_date, product_name,
	quantity, total_amount, payment_method, memo, created_at`

type SalesRepository struct {
	db *sql.DB
}

func NewSalesRepository(db *sql.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) Insert(ctx context.Context, tx *sql.Tx, s *domain.Sale) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sales (customer_id, order_date, product_name, quantity, total_amount, payment_method, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING sales_id`,
		s.CustomerID, s.OrderDate, s.ProductName, s.Quantity, s.TotalAmount, s.PaymentMethod, s.Memo,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Insert: %w", err)
	}
	return id, nil
}

func (r *SalesRepository) Daily(ctx context.Context, date time.Time) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+salesColumns+` FROM sales WHERE order_date = $1 ORDER BY sales_id DESC`,
		date)
	if err != nil {
		return nil, fmt.Errorf("Daily: %w", err)
	}
	defer rows.Close()
	return collectSales(rows, "Daily")
}

// Search matches product name, memo, or the customer's name against a
// free-text term, newest sales first.
func (r *SalesRepository) Search(ctx context.Context, term string) ([]domain.Sale, error) {
	pattern := "%" + term + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.sales_id, s.customer_id, s.order_date, s.product_name,
			s.quantity, s.total_amount, s.payment_method, s.memo, s.created_at
		FROM sales s
		LEFT JOIN customers c ON c.customer_id = s.customer_id
		WHERE s.product_name ILIKE $1 OR s.memo ILIKE $1 OR c.customer_name ILIKE $1
		ORDER BY s.order_date DESC, s.sales_id DESC`,
		pattern)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer rows.Close()
	return collectSales(rows, "Search")
}

func (r *SalesRepository) CustomerHistory(ctx context.Context, customerID string) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+salesColumns+` FROM sales WHERE customer_id = $1
		ORDER BY order_date DESC, sales_id DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("CustomerHistory: %w", err)
	}
	defer rows.Close()
	return collectSales(rows, "CustomerHistory")
}

// TaxReport aggregates gross sales over an inclusive date range and splits
// out the 1/11 VAT share.
func (r *SalesRepository) TaxReport(ctx context.Context, start, end time.Time) (*domain.TaxReport, error) {
	report := &domain.TaxReport{StartDate: start, EndDate: end}
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales WHERE order_date BETWEEN $1 AND $2`,
		start, end,
	).Scan(&report.GrossTotal, &report.SaleCount)
	if err != nil {
		return nil, fmt.Errorf("TaxReport: %w", err)
	}
	report.VATAmount = report.GrossTotal / 11
	report.SupplyAmount = report.GrossTotal - report.VATAmount
	return report, nil
}

func collectSales(rows *sql.Rows, op string) ([]domain.Sale, error) {
	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		err := rows.Scan(
			&s.ID, &s.CustomerID, &s.OrderDate, &s.ProductName,
			&s.Quantity, &s.TotalAmount, &s.PaymentMethod, &s.Memo, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return sales, nil
}
