package production

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/repository"
)

type productionRepo interface {
	ListSpaces(ctx context.Context) ([]domain.ProductionSpace, error)
	SaveSpace(ctx context.Context, s *domain.ProductionSpace) error
	DeleteSpace(ctx context.Context, id int) error
	ListBatches(ctx context.Context) ([]domain.ProductionBatch, error)
	SaveBatch(ctx context.Context, b *domain.ProductionBatch) error
	DeleteBatch(ctx context.Context, id int) error
	BatchRefs(ctx context.Context, tx *sql.Tx, batchID int) (productID, spaceID *int, err error)
	CompleteBatch(ctx context.Context, tx *sql.Tx, batchID int, endDate time.Time) error
	ListFarmingLogs(ctx context.Context, f repository.FarmingLogFilter) ([]domain.FarmingLog, error)
	SaveFarmingLog(ctx context.Context, l *domain.FarmingLog) error
	InsertFarmingLogTx(ctx context.Context, tx *sql.Tx, l *domain.FarmingLog) error
	DeleteFarmingLog(ctx context.Context, id int) error
}

type harvestRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, h *domain.HarvestRecord) (int, error)
	List(ctx context.Context, batchID *int) ([]domain.HarvestRecord, error)
	Delete(ctx context.Context, id int) error
}

type productRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	AddStock(ctx context.Context, tx *sql.Tx, productID, qty int) (int, error)
	InsertInventoryLog(ctx context.Context, tx *sql.Tx, l *domain.InventoryLog) error
}

type changeNotifier interface {
	MarkDirty()
}

type Service struct {
	production productionRepo
	harvests   harvestRepo
	products   productRepo
	notifier   changeNotifier
	db         *sql.DB
}

func NewService(production productionRepo, harvests harvestRepo, products productRepo, notifier changeNotifier, db *sql.DB) *Service {
	return &Service{
		production: production,
		harvests:   harvests,
		products:   products,
		notifier:   notifier,
		db:         db,
	}
}

// --- Spaces, batches, farming logs: thin CRUD over the repository ---

func (s *Service) ListSpaces(ctx context.Context) ([]domain.ProductionSpace, error) {
	return s.production.ListSpaces(ctx)
}

func (s *Service) SaveSpace(ctx context.Context, space *domain.ProductionSpace) error {
	if space.Name == "" {
		return fmt.Errorf("SaveSpace: space_name: %w", domain.ErrInvalidRequest)
	}
	if err := s.production.SaveSpace(ctx, space); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) DeleteSpace(ctx context.Context, id int) error {
	if err := s.production.DeleteSpace(ctx, id); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) ListBatches(ctx context.Context) ([]domain.ProductionBatch, error) {
	return s.production.ListBatches(ctx)
}

func (s *Service) SaveBatch(ctx context.Context, b *domain.ProductionBatch) error {
	if b.BatchCode == "" {
		return fmt.Errorf("SaveBatch: batch_code: %w", domain.ErrInvalidRequest)
	}
	if b.Status == "" {
		b.Status = domain.BatchGrowing
	}
	if err := s.production.SaveBatch(ctx, b); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) DeleteBatch(ctx context.Context, id int) error {
	if err := s.production.DeleteBatch(ctx, id); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) ListFarmingLogs(ctx context.Context, f repository.FarmingLogFilter) ([]domain.FarmingLog, error) {
	return s.production.ListFarmingLogs(ctx, f)
}

func (s *Service) SaveFarmingLog(ctx context.Context, l *domain.FarmingLog) error {
	if err := s.production.SaveFarmingLog(ctx, l); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) DeleteFarmingLog(ctx context.Context, id int) error {
	if err := s.production.DeleteFarmingLog(ctx, id); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *Service) ListHarvests(ctx context.Context, batchID *int) ([]domain.HarvestRecord, error) {
	return s.harvests.List(ctx, batchID)
}

func (s *Service) DeleteHarvest(ctx context.Context, id int) error {
	if err := s.harvests.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.MarkDirty()
	return nil
}

type HarvestIntakeRequest struct {
	BatchID          int
	HarvestDate      string
	Quantity         decimal.Decimal
	Unit             string
	Grade            *string
	TraceabilityCode *string
	Memo             *string
	// CompleteBatch marks the batch finished with end date = harvest date.
	CompleteBatch bool
}

// HarvestIntake records a harvest and moves it into inventory in one
// transaction: insert the harvest record, add the quantity to the batch's
// product stock, append an inventory audit row and a system farming log, and
// optionally close the batch.
func (s *Service) HarvestIntake(ctx context.Context, req HarvestIntakeRequest) (int, error) {
	log := logging.FromContext(ctx)

	if !req.Quantity.IsPositive() {
		return 0, fmt.Errorf("HarvestIntake: %w", domain.ErrInvalidQuantity)
	}
	if req.Unit == "" {
		return 0, fmt.Errorf("HarvestIntake: unit: %w", domain.ErrInvalidRequest)
	}
	date, err := time.Parse("2006-01-02", req.HarvestDate)
	if err != nil {
		return 0, fmt.Errorf("HarvestIntake: %q: %w", req.HarvestDate, domain.ErrInvalidDate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("HarvestIntake: begin: %w", err)
	}
	defer tx.Rollback()

	productID, spaceID, err := s.production.BatchRefs(ctx, tx, req.BatchID)
	if err != nil {
		return 0, fmt.Errorf("HarvestIntake: %w", err)
	}

	harvestID, err := s.harvests.Insert(ctx, tx, &domain.HarvestRecord{
		BatchID:          &req.BatchID,
		HarvestDate:      date,
		Quantity:         req.Quantity,
		Unit:             req.Unit,
		Grade:            req.Grade,
		TraceabilityCode: req.TraceabilityCode,
		Memo:             req.Memo,
	})
	if err != nil {
		return 0, fmt.Errorf("HarvestIntake: %w", err)
	}

	if productID != nil {
		// Stock is tracked in whole units; fractional quantities are
		// truncated, so 12.5kg books 12 units.
		qty := int(req.Quantity.IntPart())

		stock, err := s.products.AddStock(ctx, tx, *productID, qty)
		if err != nil {
			return 0, fmt.Errorf("HarvestIntake: %w", err)
		}

		memo := fmt.Sprintf("배치 %d 수확 입고 (단위: %s)", req.BatchID, req.Unit)
		ref := "PROCESS"
		err = s.products.InsertInventoryLog(ctx, tx, &domain.InventoryLog{
			ProductID:      productID,
			ChangeType:     domain.ChangeHarvestIn,
			ChangeQuantity: qty,
			CurrentStock:   stock,
			Memo:           &memo,
			ReferenceID:    &ref,
		})
		if err != nil {
			return 0, fmt.Errorf("HarvestIntake: %w", err)
		}

		worker := "시스템자동"
		workType := "harvest"
		content := fmt.Sprintf("[자동] 수확 기록 등록: %s%s (배치: %d)", req.Quantity, req.Unit, req.BatchID)
		err = s.production.InsertFarmingLogTx(ctx, tx, &domain.FarmingLog{
			BatchID:     &req.BatchID,
			SpaceID:     spaceID,
			LogDate:     date,
			WorkerName:  &worker,
			WorkType:    &workType,
			WorkContent: &content,
		})
		if err != nil {
			return 0, fmt.Errorf("HarvestIntake: %w", err)
		}
	}

	if req.CompleteBatch {
		if err := s.production.CompleteBatch(ctx, tx, req.BatchID, date); err != nil {
			return 0, fmt.Errorf("HarvestIntake: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("HarvestIntake: commit: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("harvest recorded",
		"harvest_id", harvestID,
		"batch_id", req.BatchID,
		"quantity", req.Quantity,
		"unit", req.Unit,
		"batch_completed", req.CompleteBatch,
	)
	return harvestID, nil
}
