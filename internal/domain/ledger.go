package domain

import "time"

// TransactionType is the fixed vocabulary of ledger entry kinds. Labels are
// kept in Korean because they are stored verbatim and shown in the UI.
type TransactionType string

const (
	TypePayment    TransactionType = "입금"     // payment received, reduces debt
	TypeCarryOver  TransactionType = "이월"     // opening balance carried over
	TypeSale       TransactionType = "매출"     // credit sale, increases debt
	TypeReturn     TransactionType = "반품"     // returned goods
	TypeSaleCancel TransactionType = "매출취소" // voided sale
	TypeAdjustment TransactionType = "조정"     // manual correction, sign as given
)

// IsFixedSign reports whether the type dictates the sign of the stored
// amount. Anything outside the vocabulary behaves like an adjustment.
func (t TransactionType) IsFixedSign() bool {
	switch t {
	case TypePayment, TypeCarryOver, TypeSale, TypeReturn, TypeSaleCancel:
		return true
	}
	return false
}

type LedgerEntry struct {
	ID              int64
	CustomerID      string
	TransactionDate time.Time
	TransactionType TransactionType
	// Amount is the signed value as persisted, already normalized for the
	// entry's type.
	Amount      int64
	Description *string
	CreatedAt   time.Time
}

// StatementEntry is a ledger entry annotated with the customer's running
// balance as of that entry, in chronological order.
type StatementEntry struct {
	LedgerEntry
	RunningBalance int64
}
