package domain

import "time"

type CustomerGrade string

const (
	GradeRegular CustomerGrade = "일반"
	GradeVIP     CustomerGrade = "VIP"
	GradeSpecial CustomerGrade = "특별관리"
)

type Customer struct {
	ID           string
	Name         string
	MobileNumber *string
	Address      *string
	Grade        CustomerGrade
	Memo         *string
	// CurrentBalance is a denormalized running total of the customer's
	// ledger entries. Only the ledger service writes it.
	CurrentBalance int64
	CreatedAt      time.Time
}
