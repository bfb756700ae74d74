package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/service"
)

type productService interface {
	CreateProduct(ctx context.Context, in service.ProductInput) (int, error)
	UpdateProduct(ctx context.Context, in service.ProductInput) error
	DeleteProduct(ctx context.Context, id int) error
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AdjustStock(ctx context.Context, productID, qty int, memo *string) (int, error)
	InventoryLogs(ctx context.Context, productID *int) ([]domain.InventoryLog, error)
}

type ProductHandler struct {
	products productService
}

func NewProductHandler(products productService) *ProductHandler {
	return &ProductHandler{products: products}
}

type productRequest struct {
	Code          *string `json:"product_code"`
	Name          string  `json:"product_name"`
	Specification *string `json:"specification"`
	UnitPrice     int64   `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      *bool   `json:"is_active"`
}

func (r productRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "product_name", Message: "required"})
	}
	if r.UnitPrice < 0 {
		errs = append(errs, FieldError{Field: "unit_price", Message: "must not be negative"})
	}
	return errs
}

type productDTO struct {
	ID            int     `json:"product_id"`
	Code          *string `json:"product_code"`
	Name          string  `json:"product_name"`
	Specification *string `json:"specification"`
	UnitPrice     int64   `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
}

func toProductDTO(p *domain.Product) productDTO {
	return productDTO{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Specification: p.Specification,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (r productRequest) toInput(id int) service.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.ProductInput{
		ID:            id,
		Code:          r.Code,
		Name:          r.Name,
		Specification: r.Specification,
		UnitPrice:     r.UnitPrice,
		StockQuantity: r.StockQuantity,
		IsActive:      active,
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	id, err := h.products.CreateProduct(r.Context(), req.toInput(0))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create product", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, map[string]int{"product_id": id})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	if err := h.products.UpdateProduct(r.Context(), req.toInput(id)); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProductDTO(p))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]productDTO, len(products))
	for i := range products {
		dtos[i] = toProductDTO(&products[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type stockAdjustRequest struct {
	ChangeQuantity int     `json:"change_quantity"`
	Memo           *string `json:"memo"`
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := intFromPath(w, r)
	if !ok {
		return
	}
	var req stockAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	stock, err := h.products.AdjustStock(r.Context(), id, req.ChangeQuantity, req.Memo)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to adjust stock", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"stock_quantity": stock})
}

type inventoryLogDTO struct {
	ID             int     `json:"log_id"`
	ProductID      *int    `json:"product_id"`
	ProductName    *string `json:"product_name"`
	Specification  *string `json:"specification"`
	ProductCode    *string `json:"product_code"`
	ChangeType     string  `json:"change_type"`
	ChangeQuantity int     `json:"change_quantity"`
	CurrentStock   int     `json:"current_stock"`
	Memo           *string `json:"memo"`
	ReferenceID    *string `json:"reference_id"`
	CreatedAt      string  `json:"created_at"`
}

func (h *ProductHandler) InventoryLogs(w http.ResponseWriter, r *http.Request) {
	var productID *int
	if v := r.URL.Query().Get("product_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
		productID = &id
	}

	logs, err := h.products.InventoryLogs(r.Context(), productID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]inventoryLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = inventoryLogDTO{
			ID:             l.ID,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Specification:  l.Specification,
			ProductCode:    l.ProductCode,
			ChangeType:     string(l.ChangeType),
			ChangeQuantity: l.ChangeQuantity,
			CurrentStock:   l.CurrentStock,
			Memo:           l.Memo,
			ReferenceID:    l.ReferenceID,
			CreatedAt:      l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
