package domain

import "time"

type Product struct {
	ID            int
	Code          *string
	Name          string
	Specification *string
	UnitPrice     int64
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time
}

type InventoryChangeType string

const (
	ChangeHarvestIn  InventoryChangeType = "생산입고"
	ChangeAdjustment InventoryChangeType = "재고조정"
	ChangeSaleOut    InventoryChangeType = "판매출고"
)

type InventoryLog struct {
	ID             int
	ProductID      *int
	ProductName    *string
	Specification  *string
	ProductCode    *string
	ChangeType     InventoryChangeType
	ChangeQuantity int
	CurrentStock   int
	Memo           *string
	ReferenceID    *string
	CreatedAt      time.Time
}
