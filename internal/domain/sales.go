package domain

import "time"

type PaymentMethod string

const (
	PayCash   PaymentMethod = "현금"
	PayCard   PaymentMethod = "카드"
	PayCredit PaymentMethod = "외상"
)

type Sale struct {
	ID            int64
	CustomerID    *string
	OrderDate     time.Time
	ProductName   string
	Quantity      int
	TotalAmount   int64
	PaymentMethod PaymentMethod
	Memo          *string
	CreatedAt     time.Time
}

// TaxReport is the date-range aggregate used for VAT filing. Amounts are in
// won; VAT is the 1/11 share of the gross total.
type TaxReport struct {
	StartDate    time.Time
	EndDate      time.Time
	GrossTotal   int64
	SupplyAmount int64
	VATAmount    int64
	SaleCount    int64
}
