package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

type ProductionRepository struct {
	db *sql.DB
}

func NewProductionRepository(db *sql.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

// --- Production spaces ---

const spaceColumns = `space_id, space_name, space_type, location_info,
	area_size, area_unit, is_active, memo`

func (r *ProductionRepository) ListSpaces(ctx context.Context) ([]domain.ProductionSpace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spaceColumns+` FROM production_spaces ORDER BY space_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListSpaces: %w", err)
	}
	defer rows.Close()

	var spaces []domain.ProductionSpace
	for rows.Next() {
		var s domain.ProductionSpace
		err := rows.Scan(&s.ID, &s.Name, &s.SpaceType, &s.LocationInfo,
			&s.AreaSize, &s.AreaUnit, &s.IsActive, &s.Memo)
		if err != nil {
			return nil, fmt.Errorf("ListSpaces: scan: %w", err)
		}
		spaces = append(spaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSpaces: rows: %w", err)
	}
	return spaces, nil
}

// SaveSpace inserts when the id is zero and updates otherwise, mirroring the
// desktop UI's single save action.
func (r *ProductionRepository) SaveSpace(ctx context.Context, s *domain.ProductionSpace) error {
	var err error
	if s.ID > 0 {
		var res sql.Result
		res, err = r.db.ExecContext(ctx,
			`UPDATE production_spaces SET space_name = $1, space_type = $2,
				location_info = $3, area_size = $4, area_unit = $5, is_active = $6, memo = $7
			WHERE space_id = $8`,
			s.Name, s.SpaceType, s.LocationInfo, s.AreaSize, s.AreaUnit, s.IsActive, s.Memo, s.ID)
		if err == nil {
			return requireRow(res, "SaveSpace", domain.ErrNotFound)
		}
	} else {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO production_spaces (space_name, space_type, location_info, area_size, area_unit, is_active, memo)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING space_id`,
			s.Name, s.SpaceType, s.LocationInfo, s.AreaSize, s.AreaUnit, s.IsActive, s.Memo,
		).Scan(&s.ID)
	}
	if err != nil {
		return fmt.Errorf("SaveSpace: %w", err)
	}
	return nil
}

func (r *ProductionRepository) DeleteSpace(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM production_spaces WHERE space_id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteSpace: %w", err)
	}
	return requireRow(res, "DeleteSpace", domain.ErrNotFound)
}

// --- Production batches ---

const batchColumns = `batch_id, batch_code, product_id, space_id, start_date,
	end_date, expected_harvest_date, status, initial_quantity, unit`

func (r *ProductionRepository) ListBatches(ctx context.Context) ([]domain.ProductionBatch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM production_batches ORDER BY start_date DESC NULLS LAST, batch_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("ListBatches: %w", err)
	}
	defer rows.Close()

	var batches []domain.ProductionBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBatches: scan: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBatches: rows: %w", err)
	}
	return batches, nil
}

func (r *ProductionRepository) SaveBatch(ctx context.Context, b *domain.ProductionBatch) error {
	var err error
	if b.ID > 0 {
		var res sql.Result
		res, err = r.db.ExecContext(ctx,
			`UPDATE production_batches SET batch_code = $1, product_id = $2, space_id = $3,
				start_date = $4, end_date = $5, expected_harvest_date = $6,
				status = $7, initial_quantity = $8, unit = $9
			WHERE batch_id = $10`,
			b.BatchCode, b.ProductID, b.SpaceID, b.StartDate, b.EndDate,
			b.ExpectedHarvestDate, b.Status, b.InitialQuantity, b.Unit, b.ID)
		if err == nil {
			return requireRow(res, "SaveBatch", domain.ErrBatchNotFound)
		}
	} else {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO production_batches (batch_code, product_id, space_id, start_date,
				end_date, expected_harvest_date, status, initial_quantity, unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING batch_id`,
			b.BatchCode, b.ProductID, b.SpaceID, b.StartDate, b.EndDate,
			b.ExpectedHarvestDate, b.Status, b.InitialQuantity, b.Unit,
		).Scan(&b.ID)
	}
	if err != nil {
		return fmt.Errorf("SaveBatch: %w", err)
	}
	return nil
}

func (r *ProductionRepository) DeleteBatch(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM production_batches WHERE batch_id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteBatch: %w", err)
	}
	return requireRow(res, "DeleteBatch", domain.ErrBatchNotFound)
}

// BatchRefs returns the product and space a batch points at, for the harvest
// intake transaction.
func (r *ProductionRepository) BatchRefs(ctx context.Context, tx *sql.Tx, batchID int) (productID, spaceID *int, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT product_id, space_id FROM production_batches WHERE batch_id = $1`, batchID,
	).Scan(&productID, &spaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("BatchRefs: %w", domain.ErrBatchNotFound)
		}
		return nil, nil, fmt.Errorf("BatchRefs: %w", err)
	}
	return productID, spaceID, nil
}

func (r *ProductionRepository) CompleteBatch(ctx context.Context, tx *sql.Tx, batchID int, endDate time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE production_batches SET status = $1, end_date = $2 WHERE batch_id = $3`,
		domain.BatchCompleted, endDate, batchID,
	)
	if err != nil {
		return fmt.Errorf("CompleteBatch: %w", err)
	}
	return nil
}

// --- Farming logs ---

const farmingLogColumns = `log_id, batch_id, space_id, log_date, worker_name,
	work_type, work_content, created_at`

type FarmingLogFilter struct {
	BatchID   *int
	SpaceID   *int
	StartDate *time.Time
	EndDate   *time.Time
}

func (r *ProductionRepository) ListFarmingLogs(ctx context.Context, f FarmingLogFilter) ([]domain.FarmingLog, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.BatchID != nil {
		add("batch_id = $%d", *f.BatchID)
	}
	if f.SpaceID != nil {
		add("space_id = $%d", *f.SpaceID)
	}
	if f.StartDate != nil {
		add("log_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("log_date <= $%d", *f.EndDate)
	}

	query := `SELECT ` + farmingLogColumns + ` FROM farming_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY log_date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListFarmingLogs: %w", err)
	}
	defer rows.Close()

	var logs []domain.FarmingLog
	for rows.Next() {
		l, err := scanFarmingLog(rows)
		if err != nil {
			return nil, fmt.Errorf("ListFarmingLogs: scan: %w", err)
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListFarmingLogs: rows: %w", err)
	}
	return logs, nil
}

func (r *ProductionRepository) SaveFarmingLog(ctx context.Context, l *domain.FarmingLog) error {
	var err error
	if l.ID > 0 {
		var res sql.Result
		res, err = r.db.ExecContext(ctx,
			`UPDATE farming_logs SET batch_id = $1, space_id = $2, log_date = $3,
				worker_name = $4, work_type = $5, work_content = $6
			WHERE log_id = $7`,
			l.BatchID, l.SpaceID, l.LogDate, l.WorkerName, l.WorkType, l.WorkContent, l.ID)
		if err == nil {
			return requireRow(res, "SaveFarmingLog", domain.ErrNotFound)
		}
	} else {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO farming_logs (batch_id, space_id, log_date, worker_name, work_type, work_content)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING log_id`,
			l.BatchID, l.SpaceID, l.LogDate, l.WorkerName, l.WorkType, l.WorkContent,
		).Scan(&l.ID)
	}
	if err != nil {
		return fmt.Errorf("SaveFarmingLog: %w", err)
	}
	return nil
}

// InsertFarmingLogTx is the tx-bound variant used when harvest intake writes
// its system log.
func (r *ProductionRepository) InsertFarmingLogTx(ctx context.Context, tx *sql.Tx, l *domain.FarmingLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO farming_logs (batch_id, space_id, log_date, worker_name, work_type, work_content)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.BatchID, l.SpaceID, l.LogDate, l.WorkerName, l.WorkType, l.WorkContent,
	)
	if err != nil {
		return fmt.Errorf("InsertFarmingLogTx: %w", err)
	}
	return nil
}

func (r *ProductionRepository) DeleteFarmingLog(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM farming_logs WHERE log_id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteFarmingLog: %w", err)
	}
	return requireRow(res, "DeleteFarmingLog", domain.ErrNotFound)
}

func scanBatch(s scanner) (*domain.ProductionBatch, error) {
	var b domain.ProductionBatch
	err := s.Scan(
		&b.ID, &b.BatchCode, &b.ProductID, &b.SpaceID, &b.StartDate,
		&b.EndDate, &b.ExpectedHarvestDate, &b.Status, &b.InitialQuantity, &b.Unit,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanFarmingLog(s scanner) (*domain.FarmingLog, error) {
	var l domain.FarmingLog
	err := s.Scan(
		&l.ID, &l.BatchID, &l.SpaceID, &l.LogDate,
		&l.WorkerName, &l.WorkType, &l.WorkContent, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
