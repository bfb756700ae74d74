package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/service"
)

type salesService interface {
	CreateSale(ctx context.Context, in service.SaleInput) (int64, error)
	DailySales(ctx context.Context, date string) ([]domain.Sale, error)
	SearchSales(ctx context.Context, term string) ([]domain.Sale, error)
	CustomerSalesHistory(ctx context.Context, customerID string) ([]domain.Sale, error)
	TaxReport(ctx context.Context, start, end string) (*domain.TaxReport, error)
}

type SalesHandler struct {
	sales salesService
}

func NewSalesHandler(sales salesService) *SalesHandler {
	return &SalesHandler{sales: sales}
}

type saleRequest struct {
	CustomerID    *string `json:"customer_id"`
	OrderDate     string  `json:"order_date"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	TotalAmount   int64   `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Memo          *string `json:"memo"`
}

func (r saleRequest) Validate() []FieldError {
	var errs []FieldError
	if r.OrderDate == "" {
		errs = append(errs, FieldError{Field: "order_date", Message: "required"})
	}
	if r.ProductName == "" {
		errs = append(errs, FieldError{Field: "product_name", Message: "required"})
	}
	return errs
}

type saleDTO struct {
	ID            int64   `json:"sales_id"`
	CustomerID    *string `json:"customer_id"`
	OrderDate     string  `json:"order_date"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	TotalAmount   int64   `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Memo          *string `json:"memo"`
}

func toSaleDTOs(sales []domain.Sale) []saleDTO {
	dtos := make([]saleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = saleDTO{
			ID:            s.ID,
			CustomerID:    s.CustomerID,
			OrderDate:     s.OrderDate.Format("2006-01-02"),
			ProductName:   s.ProductName,
			Quantity:      s.Quantity,
			TotalAmount:   s.TotalAmount,
			PaymentMethod: string(s.PaymentMethod),
			Memo:          s.Memo,
		}
	}
	return dtos
}

func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	id, err := h.sales.CreateSale(r.Context(), service.SaleInput{
		CustomerID:    req.CustomerID,
		OrderDate:     req.OrderDate,
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Memo:          req.Memo,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create sale", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, map[string]int64{"sales_id": id})
}

func (h *SalesHandler) Daily(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.DailySales(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toSaleDTOs(sales))
}

func (h *SalesHandler) Search(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.SearchSales(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toSaleDTOs(sales))
}

func (h *SalesHandler) CustomerHistory(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.CustomerSalesHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toSaleDTOs(sales))
}

func (h *SalesHandler) TaxReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.sales.TaxReport(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"start_date":    report.StartDate.Format("2006-01-02"),
		"end_date":      report.EndDate.Format("2006-01-02"),
		"gross_total":   report.GrossTotal,
		"supply_amount": report.SupplyAmount,
		"vat_amount":    report.VATAmount,
		"sale_count":    report.SaleCount,
	})
}
