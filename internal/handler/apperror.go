package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInvalidDate      = &AppError{http.StatusBadRequest, "INVALID_DATE", "Date must be a valid YYYY-MM-DD calendar date"}
	ErrInvalidQuantity  = &AppError{http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be greater than zero"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrCustomerNotFound = &AppError{http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found"}
	ErrEntryNotFound    = &AppError{http.StatusNotFound, "LEDGER_ENTRY_NOT_FOUND", "Ledger entry not found"}
	ErrBatchNotFound    = &AppError{http.StatusNotFound, "BATCH_NOT_FOUND", "Production batch not found"}
	ErrProductNotFound  = &AppError{http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found"}
	ErrCustomerExists   = &AppError{http.StatusConflict, "CUSTOMER_ALREADY_EXISTS", "Customer already exists"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
)
