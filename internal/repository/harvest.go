package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

const harvestColumns = `harvest_id, batch_id, harvest_date, quantity, unit,
	grade, traceability_code, memo, created_at`

type HarvestRepository struct {
	db *sql.DB
}

func NewHarvestRepository(db *sql.DB) *HarvestRepository {
	return &HarvestRepository{db: db}
}

func (r *HarvestRepository) Insert(ctx context.Context, tx *sql.Tx, h *domain.HarvestRecord) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		`INSERT INTO harvest_records (batch_id, harvest_date, quantity, unit, grade, traceability_code, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING harvest_id`,
		h.BatchID, h.HarvestDate, h.Quantity, h.Unit, h.Grade, h.TraceabilityCode, h.Memo,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Insert: %w", err)
	}
	return id, nil
}

func (r *HarvestRepository) List(ctx context.Context, batchID *int) ([]domain.HarvestRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if batchID != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+harvestColumns+` FROM harvest_records WHERE batch_id = $1 ORDER BY harvest_date DESC`,
			*batchID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+harvestColumns+` FROM harvest_records ORDER BY harvest_date DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var records []domain.HarvestRecord
	for rows.Next() {
		var h domain.HarvestRecord
		err := rows.Scan(
			&h.ID, &h.BatchID, &h.HarvestDate, &h.Quantity, &h.Unit,
			&h.Grade, &h.TraceabilityCode, &h.Memo, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return records, nil
}

func (r *HarvestRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM harvest_records WHERE harvest_id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(res, "Delete", domain.ErrNotFound)
}
