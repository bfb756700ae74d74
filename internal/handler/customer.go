package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/service"
)

type customerService interface {
	CreateCustomer(ctx context.Context, in service.CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, in service.CustomerInput) error
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, search string) ([]domain.Customer, error)
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerRequest struct {
	ID           string  `json:"customer_id"`
	Name         string  `json:"customer_name"`
	MobileNumber *string `json:"mobile_number"`
	Address      *string `json:"address"`
	Grade        string  `json:"customer_grade"`
	Memo         *string `json:"memo"`
}

func (r customerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "customer_name", Message: "required"})
	}
	return errs
}

type customerDTO struct {
	ID             string    `json:"customer_id"`
	Name           string    `json:"customer_name"`
	MobileNumber   *string   `json:"mobile_number"`
	Address        *string   `json:"address"`
	Grade          string    `json:"customer_grade"`
	Memo           *string   `json:"memo"`
	CurrentBalance int64     `json:"current_balance"`
	CreatedAt      time.Time `json:"created_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		ID:             c.ID,
		Name:           c.Name,
		MobileNumber:   c.MobileNumber,
		Address:        c.Address,
		Grade:          string(c.Grade),
		Memo:           c.Memo,
		CurrentBalance: c.CurrentBalance,
		CreatedAt:      c.CreatedAt,
	}
}

func toCustomerDTOs(customers []domain.Customer) []customerDTO {
	dtos := make([]customerDTO, len(customers))
	for i := range customers {
		dtos[i] = toCustomerDTO(&customers[i])
	}
	return dtos
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.customers.CreateCustomer(r.Context(), service.CustomerInput{
		ID:           req.ID,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Grade:        req.Grade,
		Memo:         req.Memo,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	err := h.customers.UpdateCustomer(r.Context(), service.CustomerInput{
		ID:           req.ID,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Grade:        req.Grade,
		Memo:         req.Memo,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete customer", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, nil)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTOs(customers))
}
