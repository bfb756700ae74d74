package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/repository"
	"github.com/myceliumfarm/mycelium/internal/service"
	"github.com/myceliumfarm/mycelium/internal/service/ledger"
	"github.com/myceliumfarm/mycelium/internal/testutil"
)

func setupSalesService(t *testing.T, db *sql.DB) *service.SalesService {
	t.Helper()
	flag := backup.NewFlag()
	ledgerSvc := ledger.NewService(
		repository.NewLedgerRepository(db),
		repository.NewCustomerRepository(db),
		flag,
		db,
	)
	return service.NewSalesService(repository.NewSalesRepository(db), ledgerSvc, flag, db)
}

func TestCreateSale_CashLeavesLedgerUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)
	ctx := context.Background()

	cust := "c1"
	testutil.SeedCustomer(t, db, cust, "김철수")

	id, err := svc.CreateSale(ctx, service.SaleInput{
		CustomerID:    &cust,
		OrderDate:     "2024-05-01",
		ProductName:   "표고버섯 1kg",
		Quantity:      2,
		TotalAmount:   30000,
		PaymentMethod: "현금",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, cust))
	assert.Equal(t, int64(0), testutil.CustomerBalance(t, db, cust))
}

func TestCreateSale_CreditPostsSaleEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)
	ctx := context.Background()

	cust := "c1"
	testutil.SeedCustomer(t, db, cust, "김철수")

	_, err := svc.CreateSale(ctx, service.SaleInput{
		CustomerID:    &cust,
		OrderDate:     "2024-05-01",
		ProductName:   "표고버섯 1kg",
		Quantity:      3,
		TotalAmount:   45000,
		PaymentMethod: "외상",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountLedgerEntries(t, db, cust))
	assert.Equal(t, int64(45000), testutil.CustomerBalance(t, db, cust))

	var txType string
	var amount int64
	err = db.QueryRow(
		`SELECT transaction_type, amount FROM customer_ledger WHERE customer_id = $1`, cust,
	).Scan(&txType, &amount)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TypeSale), txType)
	assert.Equal(t, int64(45000), amount)
}

type brokenAppender struct{}

func (brokenAppender) AppendTx(context.Context, *sql.Tx, ledger.AppendRequest) (int64, error) {
	return 0, errors.New("ledger unavailable")
}

func TestCreateSale_FailedCreditPostingRollsBackSale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	flag := backup.NewFlag()
	svc := service.NewSalesService(repository.NewSalesRepository(db), brokenAppender{}, flag, db)
	ctx := context.Background()

	cust := "c1"
	testutil.SeedCustomer(t, db, cust, "김철수")

	_, err := svc.CreateSale(ctx, service.SaleInput{
		CustomerID:    &cust,
		OrderDate:     "2024-05-01",
		ProductName:   "표고버섯 1kg",
		Quantity:      3,
		TotalAmount:   45000,
		PaymentMethod: "외상",
	})
	require.Error(t, err)

	var saleCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sales`).Scan(&saleCount))
	assert.Equal(t, 0, saleCount, "sale must not survive a failed credit posting")
	assert.Equal(t, int64(0), testutil.CustomerBalance(t, db, cust))
	assert.False(t, flag.Dirty())
}

func TestCreateSale_CreditWithoutCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)

	_, err := svc.CreateSale(context.Background(), service.SaleInput{
		OrderDate:     "2024-05-01",
		ProductName:   "표고버섯 1kg",
		TotalAmount:   45000,
		PaymentMethod: "외상",
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDailySales(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)
	ctx := context.Background()

	for _, s := range []struct {
		date   string
		name   string
		amount int64
	}{
		{"2024-05-01", "표고버섯", 10000},
		{"2024-05-01", "느타리버섯", 8000},
		{"2024-05-02", "표고버섯", 12000},
	} {
		_, err := svc.CreateSale(ctx, service.SaleInput{
			OrderDate: s.date, ProductName: s.name, TotalAmount: s.amount,
		})
		require.NoError(t, err)
	}

	sales, err := svc.DailySales(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	_, err = svc.DailySales(ctx, "not-a-date")
	require.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSearchSales_EmptyQueryRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)

	_, err := svc.SearchSales(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestTaxReport_VATIsOneEleventh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupSalesService(t, db)
	ctx := context.Background()

	for _, amount := range []int64{110000, 55000} {
		_, err := svc.CreateSale(ctx, service.SaleInput{
			OrderDate: "2024-05-10", ProductName: "표고버섯", TotalAmount: amount,
		})
		require.NoError(t, err)
	}
	// Outside the report window.
	_, err := svc.CreateSale(ctx, service.SaleInput{
		OrderDate: "2024-06-10", ProductName: "표고버섯", TotalAmount: 999999,
	})
	require.NoError(t, err)

	report, err := svc.TaxReport(ctx, "2024-05-01", "2024-05-31")
	require.NoError(t, err)

	assert.Equal(t, int64(165000), report.GrossTotal)
	assert.Equal(t, int64(15000), report.VATAmount)
	assert.Equal(t, int64(150000), report.SupplyAmount)
	assert.Equal(t, int64(2), report.SaleCount)
}
