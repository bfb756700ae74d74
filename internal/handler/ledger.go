package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/export"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/service/ledger"
)

type ledgerService interface {
	Append(ctx context.Context, req ledger.AppendRequest) (int64, error)
	Amend(ctx context.Context, req ledger.AmendRequest) error
	Remove(ctx context.Context, ledgerID int64) error
	Statement(ctx context.Context, customerID string, startDate, endDate *string) ([]domain.StatementEntry, error)
	Debtors(ctx context.Context) ([]domain.Customer, error)
}

type customerGetter interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

type LedgerHandler struct {
	ledger    ledgerService
	customers customerGetter
}

func NewLedgerHandler(ledger ledgerService, customers customerGetter) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, customers: customers}
}

type ledgerEntryRequest struct {
	CustomerID      string  `json:"customer_id"`
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	Amount          int64   `json:"amount"`
	Description     *string `json:"description"`
}

func (r ledgerEntryRequest) Validate(requireCustomer bool) []FieldError {
	var errs []FieldError
	if requireCustomer && r.CustomerID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.TransactionDate == "" {
		errs = append(errs, FieldError{Field: "transaction_date", Message: "required"})
	}
	if r.TransactionType == "" {
		errs = append(errs, FieldError{Field: "transaction_type", Message: "required"})
	}
	return errs
}

type annotatedEntryDTO struct {
	LedgerID        int64   `json:"ledger_id"`
	CustomerID      string  `json:"customer_id"`
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	Amount          int64   `json:"amount"`
	Description     *string `json:"description"`
	RunningBalance  int64   `json:"running_balance"`
}

func toAnnotatedEntryDTOs(entries []domain.StatementEntry) []annotatedEntryDTO {
	dtos := make([]annotatedEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = annotatedEntryDTO{
			LedgerID:        e.ID,
			CustomerID:      e.CustomerID,
			TransactionDate: e.TransactionDate.Format("2006-01-02"),
			TransactionType: string(e.TransactionType),
			Amount:          e.Amount,
			Description:     e.Description,
			RunningBalance:  e.RunningBalance,
		}
	}
	return dtos
}

func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ledgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(true); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	id, err := h.ledger.Append(r.Context(), ledger.AppendRequest{
		CustomerID:      req.CustomerID,
		TransactionDate: req.TransactionDate,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create ledger entry", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]int64{"ledger_id": id})
}

func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDFromPath(w, r)
	if !ok {
		return
	}

	var req ledgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(false); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	err := h.ledger.Amend(r.Context(), ledger.AmendRequest{
		LedgerID:        id,
		TransactionDate: req.TransactionDate,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update ledger entry", "error", err, "ledger_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Remove(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete ledger entry", "error", err, "ledger_id", id)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func (h *LedgerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	entries, err := h.statementFromRequest(r)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAnnotatedEntryDTOs(entries))
}

// ExportStatement streams the statement as an XLSX attachment.
func (h *LedgerHandler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	c, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	entries, err := h.statementFromRequest(r)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"ledger_%s_%s.xlsx\"", customerID, time.Now().Format("20060102")))

	if err := export.StatementXLSX(w, c.Name, entries); err != nil {
		logging.FromContext(r.Context()).Error("failed to export statement", "error", err, "customer_id", customerID)
	}
}

func (h *LedgerHandler) Debtors(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.Debtors(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list debtors", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTOs(customers))
}

func (h *LedgerHandler) statementFromRequest(r *http.Request) ([]domain.StatementEntry, error) {
	customerID := chi.URLParam(r, "id")

	var start, end *string
	if s := r.URL.Query().Get("start"); s != "" {
		start = &s
	}
	if e := r.URL.Query().Get("end"); e != "" {
		end = &e
	}

	return h.ledger.Statement(r.Context(), customerID, start, end)
}

func ledgerIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return 0, false
	}
	return id, true
}
