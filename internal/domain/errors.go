package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrBatchNotFound    = errors.New("production batch not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidRequest   = errors.New("invalid request")
)
