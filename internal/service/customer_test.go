package service_test

import (
	"context"
	"database/sql"
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

func setupCustomerService(t *testing.T, db *sql.DB) *service.CustomerService {
	t.Helper()
	return service.NewCustomerService(repository.NewCustomerRepository(db), backup.NewFlag())
}

func TestCreateCustomer_StartsAtZeroBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)

	c, err := svc.CreateCustomer(context.Background(), service.CustomerInput{
		ID:   "c1",
		Name: "김철수",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GradeRegular, c.Grade)
	assert.Equal(t, int64(0), testutil.CustomerBalance(t, db, "c1"))
}

func TestCreateCustomer_DuplicateID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, service.CustomerInput{ID: "c1", Name: "김철수"})
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, service.CustomerInput{ID: "c1", Name: "다른사람"})
	require.ErrorIs(t, err, domain.ErrCustomerExists)
}

func TestUpdateCustomer_DoesNotTouchBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, service.CustomerInput{ID: "c1", Name: "김철수"})
	require.NoError(t, err)

	flag := backup.NewFlag()
	ledgerSvc := ledger.NewService(
		repository.NewLedgerRepository(db),
		repository.NewCustomerRepository(db),
		flag,
		db,
	)
	_, err = ledgerSvc.Append(ctx, ledger.AppendRequest{
		CustomerID:      "c1",
		TransactionDate: "2024-01-01",
		TransactionType: "매출",
		Amount:          3000,
	})
	require.NoError(t, err)

	mobile := "010-1234-5678"
	err = svc.UpdateCustomer(ctx, service.CustomerInput{
		ID:           "c1",
		Name:         "김철수",
		MobileNumber: &mobile,
		Grade:        string(domain.GradeVIP),
	})
	require.NoError(t, err)

	c, err := svc.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.GradeVIP, c.Grade)
	assert.Equal(t, int64(3000), c.CurrentBalance)
}

func TestDeleteCustomer_CascadesLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, service.CustomerInput{ID: "c1", Name: "김철수"})
	require.NoError(t, err)

	flag := backup.NewFlag()
	ledgerSvc := ledger.NewService(
		repository.NewLedgerRepository(db),
		repository.NewCustomerRepository(db),
		flag,
		db,
	)
	_, err = ledgerSvc.Append(ctx, ledger.AppendRequest{
		CustomerID:      "c1",
		TransactionDate: "2024-01-01",
		TransactionType: "매출",
		Amount:          3000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, "c1"))

	var entries int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM customer_ledger`).Scan(&entries))
	assert.Zero(t, entries)
}

func TestListCustomers_SearchByNameOrMobile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)
	ctx := context.Background()

	mobile := "010-9999-0000"
	_, err := svc.CreateCustomer(ctx, service.CustomerInput{ID: "c1", Name: "김철수", MobileNumber: &mobile})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, service.CustomerInput{ID: "c2", Name: "박영희"})
	require.NoError(t, err)

	byName, err := svc.ListCustomers(ctx, "철수")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "c1", byName[0].ID)

	byMobile, err := svc.ListCustomers(ctx, "9999")
	require.NoError(t, err)
	require.Len(t, byMobile, 1)
	assert.Equal(t, "c1", byMobile[0].ID)

	all, err := svc.ListCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetCustomer_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCustomerService(t, db)

	_, err := svc.GetCustomer(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
