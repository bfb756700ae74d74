package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductionSpace struct {
	ID           int
	Name         string
	SpaceType    *string
	LocationInfo *string
	AreaSize     *float64
	AreaUnit     *string
	IsActive     bool
	Memo         *string
}

type BatchStatus string

const (
	BatchGrowing   BatchStatus = "growing"
	BatchCompleted BatchStatus = "completed"
)

type ProductionBatch struct {
	ID                  int
	BatchCode           string
	ProductID           *int
	SpaceID             *int
	StartDate           *time.Time
	EndDate             *time.Time
	ExpectedHarvestDate *time.Time
	Status              BatchStatus
	InitialQuantity     *int
	Unit                *string
}

type FarmingLog struct {
	ID          int
	BatchID     *int
	SpaceID     *int
	LogDate     time.Time
	WorkerName  *string
	WorkType    *string
	WorkContent *string
	CreatedAt   time.Time
}

type HarvestRecord struct {
	ID               int
	BatchID          *int
	HarvestDate      time.Time
	Quantity         decimal.Decimal
	Unit             string
	Grade            *string
	TraceabilityCode *string
	Memo             *string
	CreatedAt        time.Time
}
