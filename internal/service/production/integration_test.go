package production_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/repository"
	"github.com/myceliumfarm/mycelium/internal/service/production"
	"github.com/myceliumfarm/mycelium/internal/testutil"
)

func setupProductionService(t *testing.T, db *sql.DB) *production.Service {
	t.Helper()
	return production.NewService(
		repository.NewProductionRepository(db),
		repository.NewHarvestRepository(db),
		repository.NewProductRepository(db),
		backup.NewFlag(),
		db,
	)
}

func TestHarvestIntake_MovesQuantityIntoStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupProductionService(t, db)
	ctx := context.Background()

	productID := testutil.SeedProduct(t, db, "표고버섯", 10)
	spaceID := testutil.SeedSpace(t, db, "1동 하우스")
	batchID := testutil.SeedBatch(t, db, "B-2024-001", &productID, &spaceID)

	harvestID, err := svc.HarvestIntake(ctx, production.HarvestIntakeRequest{
		BatchID:     batchID,
		HarvestDate: "2024-06-01",
		Quantity:    decimal.RequireFromString("12.5"),
		Unit:        "kg",
	})
	require.NoError(t, err)
	require.Positive(t, harvestID)

	// 12.5 kg truncates to 12 whole units of stock.
	assert.Equal(t, 22, testutil.ProductStock(t, db, productID))

	var changeType string
	var changeQty, currentStock int
	err = db.QueryRow(
		`SELECT change_type, change_quantity, current_stock FROM inventory_logs WHERE product_id = $1`,
		productID,
	).Scan(&changeType, &changeQty, &currentStock)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ChangeHarvestIn), changeType)
	assert.Equal(t, 12, changeQty)
	assert.Equal(t, 22, currentStock)

	var workerName, workType string
	err = db.QueryRow(
		`SELECT worker_name, work_type FROM farming_logs WHERE batch_id = $1`, batchID,
	).Scan(&workerName, &workType)
	require.NoError(t, err)
	assert.Equal(t, "시스템자동", workerName)
	assert.Equal(t, "harvest", workType)

	// The batch stays open unless completion was requested.
	var status string
	err = db.QueryRow(
		`SELECT status FROM production_batches WHERE batch_id = $1`, batchID,
	).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, string(domain.BatchGrowing), status)
}

func TestHarvestIntake_CompletesBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupProductionService(t, db)
	ctx := context.Background()

	productID := testutil.SeedProduct(t, db, "표고버섯", 0)
	batchID := testutil.SeedBatch(t, db, "B-2024-002", &productID, nil)

	_, err := svc.HarvestIntake(ctx, production.HarvestIntakeRequest{
		BatchID:       batchID,
		HarvestDate:   "2024-06-10",
		Quantity:      decimal.NewFromInt(4),
		Unit:          "kg",
		CompleteBatch: true,
	})
	require.NoError(t, err)

	var status string
	var endDate sql.NullTime
	err = db.QueryRow(
		`SELECT status, end_date FROM production_batches WHERE batch_id = $1`, batchID,
	).Scan(&status, &endDate)
	require.NoError(t, err)
	assert.Equal(t, string(domain.BatchCompleted), status)
	require.True(t, endDate.Valid)
	assert.Equal(t, "2024-06-10", endDate.Time.Format("2006-01-02"))
}

func TestHarvestIntake_BatchWithoutProductSkipsStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupProductionService(t, db)
	ctx := context.Background()

	batchID := testutil.SeedBatch(t, db, "B-2024-003", nil, nil)

	_, err := svc.HarvestIntake(ctx, production.HarvestIntakeRequest{
		BatchID:     batchID,
		HarvestDate: "2024-06-15",
		Quantity:    decimal.NewFromInt(5),
		Unit:        "kg",
	})
	require.NoError(t, err)

	var invCount, logCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM inventory_logs`).Scan(&invCount))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM farming_logs`).Scan(&logCount))
	assert.Zero(t, invCount)
	assert.Zero(t, logCount)

	var harvests int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM harvest_records WHERE batch_id = $1`, batchID,
	).Scan(&harvests))
	assert.Equal(t, 1, harvests)
}

func TestHarvestIntake_RejectsNonPositiveQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupProductionService(t, db)

	batchID := testutil.SeedBatch(t, db, "B-2024-004", nil, nil)

	_, err := svc.HarvestIntake(context.Background(), production.HarvestIntakeRequest{
		BatchID:     batchID,
		HarvestDate: "2024-06-15",
		Quantity:    decimal.Zero,
		Unit:        "kg",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	var harvests int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM harvest_records`).Scan(&harvests))
	assert.Zero(t, harvests)
}

func TestHarvestIntake_UnknownBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupProductionService(t, db)

	_, err := svc.HarvestIntake(context.Background(), production.HarvestIntakeRequest{
		BatchID:     424242,
		HarvestDate: "2024-06-15",
		Quantity:    decimal.NewFromInt(1),
		Unit:        "kg",
	})
	require.ErrorIs(t, err, domain.ErrBatchNotFound)
}
