package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/repository"
	"github.com/myceliumfarm/mycelium/internal/service/production"
)

type productionService interface {
	ListSpaces(ctx context.Context) ([]domain.ProductionSpace, error)
	SaveSpace(ctx context.Context, s *domain.ProductionSpace) error
	DeleteSpace(ctx context.Context, id int) error
	ListBatches(ctx context.Context) ([]domain.ProductionBatch, error)
	SaveBatch(ctx context.Context, b *domain.ProductionBatch) error
	DeleteBatch(ctx context.Context, id int) error
	ListFarmingLogs(ctx context.Context, f repository.FarmingLogFilter) ([]domain.FarmingLog, error)
	SaveFarmingLog(ctx context.Context, l *domain.FarmingLog) error
	DeleteFarmingLog(ctx context.Context, id int) error
	ListHarvests(ctx context.Context, batchID *int) ([]domain.HarvestRecord, error)
	DeleteHarvest(ctx context.Context, id int) error
	HarvestIntake(ctx context.Context, req production.HarvestIntakeRequest) (int, error)
}

type ProductionHandler struct {
	production productionService
}

func NewProductionHandler(p productionService) *ProductionHandler {
	return &ProductionHandler{production: p}
}

// --- Spaces ---

type spaceDTO struct {
	ID           int      `json:"space_id"`
	Name         string   `json:"space_name"`
	SpaceType    *string  `json:"space_type"`
	LocationInfo *string  `json:"location_info"`
	AreaSize     *float64 `json:"area_size"`
	AreaUnit     *string  `json:"area_unit"`
	IsActive     bool     `json:"is_active"`
	Memo         *string  `json:"memo"`
}

func (h *ProductionHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.production.ListSpaces(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]spaceDTO, len(spaces))
	for i, s := range spaces {
		dtos[i] = spaceDTO{s.ID, s.Name, s.SpaceType, s.LocationInfo, s.AreaSize, s.AreaUnit, s.IsActive, s.Memo}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProductionHandler) SaveSpace(w http.ResponseWriter, r *http.Request) {
	var req spaceDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	space := domain.ProductionSpace{
		ID: req.ID, Name: req.Name, SpaceType: req.SpaceType,
		LocationInfo: req.LocationInfo, AreaSize: req.AreaSize,
		AreaUnit: req.AreaUnit, IsActive: req.IsActive, Memo: req.Memo,
	}
	if err := h.production.SaveSpace(r.Context(), &space); err != nil {
		logging.FromContext(r.Context()).Error("failed to save space", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"space_id": space.ID})
}

func (h *ProductionHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	if err := h.production.DeleteSpace(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

// --- Batches ---

type batchDTO struct {
	ID                  int     `json:"batch_id"`
	BatchCode           string  `json:"batch_code"`
	ProductID           *int    `json:"product_id"`
	SpaceID             *int    `json:"space_id"`
	StartDate           *string `json:"start_date"`
	EndDate             *string `json:"end_date"`
	ExpectedHarvestDate *string `json:"expected_harvest_date"`
	Status              string  `json:"status"`
	InitialQuantity     *int    `json:"initial_quantity"`
	Unit                *string `json:"unit"`
}

func toBatchDTO(b *domain.ProductionBatch) batchDTO {
	return batchDTO{
		ID:                  b.ID,
		BatchCode:           b.BatchCode,
		ProductID:           b.ProductID,
		SpaceID:             b.SpaceID,
		StartDate:           formatDatePtr(b.StartDate),
		EndDate:             formatDatePtr(b.EndDate),
		ExpectedHarvestDate: formatDatePtr(b.ExpectedHarvestDate),
		Status:              string(b.Status),
		InitialQuantity:     b.InitialQuantity,
		Unit:                b.Unit,
	}
}

func (h *ProductionHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.production.ListBatches(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]batchDTO, len(batches))
	for i := range batches {
		dtos[i] = toBatchDTO(&batches[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProductionHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	expected, err := parseDatePtr(req.ExpectedHarvestDate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	batch := domain.ProductionBatch{
		ID:                  req.ID,
		BatchCode:           req.BatchCode,
		ProductID:           req.ProductID,
		SpaceID:             req.SpaceID,
		StartDate:           start,
		EndDate:             end,
		ExpectedHarvestDate: expected,
		Status:              domain.BatchStatus(req.Status),
		InitialQuantity:     req.InitialQuantity,
		Unit:                req.Unit,
	}
	if err := h.production.SaveBatch(r.Context(), &batch); err != nil {
		logging.FromContext(r.Context()).Error("failed to save batch", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"batch_id": batch.ID})
}

func (h *ProductionHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	if err := h.production.DeleteBatch(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

// --- Farming logs ---

type farmingLogDTO struct {
	ID          int     `json:"log_id"`
	BatchID     *int    `json:"batch_id"`
	SpaceID     *int    `json:"space_id"`
	LogDate     string  `json:"log_date"`
	WorkerName  *string `json:"worker_name"`
	WorkType    *string `json:"work_type"`
	WorkContent *string `json:"work_content"`
}

func (h *ProductionHandler) ListFarmingLogs(w http.ResponseWriter, r *http.Request) {
	var filter repository.FarmingLogFilter
	q := r.URL.Query()
	if v := q.Get("batch_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
		filter.BatchID = &id
	}
	if v := q.Get("space_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
		filter.SpaceID = &id
	}
	if v := q.Get("start"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondAppError(w, ErrInvalidDate, nil)
			return
		}
		filter.StartDate = &d
	}
	if v := q.Get("end"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondAppError(w, ErrInvalidDate, nil)
			return
		}
		filter.EndDate = &d
	}

	logs, err := h.production.ListFarmingLogs(r.Context(), filter)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]farmingLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = farmingLogDTO{
			ID: l.ID, BatchID: l.BatchID, SpaceID: l.SpaceID,
			LogDate:    l.LogDate.Format("2006-01-02"),
			WorkerName: l.WorkerName, WorkType: l.WorkType, WorkContent: l.WorkContent,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProductionHandler) SaveFarmingLog(w http.ResponseWriter, r *http.Request) {
	var req farmingLogDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	date, err := time.Parse("2006-01-02", req.LogDate)
	if err != nil {
		RespondAppError(w, ErrInvalidDate, nil)
		return
	}
	log := domain.FarmingLog{
		ID: req.ID, BatchID: req.BatchID, SpaceID: req.SpaceID, LogDate: date,
		WorkerName: req.WorkerName, WorkType: req.WorkType, WorkContent: req.WorkContent,
	}
	if err := h.production.SaveFarmingLog(r.Context(), &log); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"log_id": log.ID})
}

func (h *ProductionHandler) DeleteFarmingLog(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	if err := h.production.DeleteFarmingLog(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

// --- Harvests ---

type harvestDTO struct {
	ID               int             `json:"harvest_id"`
	BatchID          *int            `json:"batch_id"`
	HarvestDate      string          `json:"harvest_date"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	Grade            *string         `json:"grade"`
	TraceabilityCode *string         `json:"traceability_code"`
	Memo             *string         `json:"memo"`
}

type harvestIntakeRequest struct {
	BatchID          int             `json:"batch_id"`
	HarvestDate      string          `json:"harvest_date"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	Grade            *string         `json:"grade"`
	TraceabilityCode *string         `json:"traceability_code"`
	Memo             *string         `json:"memo"`
	CompleteBatch    bool            `json:"complete_batch"`
}

func (h *ProductionHandler) ListHarvests(w http.ResponseWriter, r *http.Request) {
	var batchID *int
	if v := r.URL.Query().Get("batch_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
		batchID = &id
	}

	records, err := h.production.ListHarvests(r.Context(), batchID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]harvestDTO, len(records))
	for i, rec := range records {
		dtos[i] = harvestDTO{
			ID: rec.ID, BatchID: rec.BatchID,
			HarvestDate: rec.HarvestDate.Format("2006-01-02"),
			Quantity:    rec.Quantity, Unit: rec.Unit, Grade: rec.Grade,
			TraceabilityCode: rec.TraceabilityCode, Memo: rec.Memo,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProductionHandler) CreateHarvest(w http.ResponseWriter, r *http.Request) {
	var req harvestIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	id, err := h.production.HarvestIntake(r.Context(), production.HarvestIntakeRequest{
		BatchID:          req.BatchID,
		HarvestDate:      req.HarvestDate,
		Quantity:         req.Quantity,
		Unit:             req.Unit,
		Grade:            req.Grade,
		TraceabilityCode: req.TraceabilityCode,
		Memo:             req.Memo,
		CompleteBatch:    req.CompleteBatch,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to record harvest", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, map[string]int{"harvest_id": id})
}

func (h *ProductionHandler) DeleteHarvest(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	if err := h.production.DeleteHarvest(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func intFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return 0, false
	}
	return id, true
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &d, nil
}
