package ledger

import "github.com/myceliumfarm/mycelium/internal/domain"

// Normalize maps a transaction type and raw user-supplied amount to the
// signed value that is persisted and summed into the customer balance.
//
// Payments, returns and sale cancellations always reduce the balance;
// carry-overs and sales always increase it, whatever sign the caller sent.
// Everything else is treated as an adjustment: the caller's sign is kept
// as-is, so an unknown future type degrades to adjustment behavior rather
// than an error.
func Normalize(t domain.TransactionType, raw int64) int64 {
	if !t.IsFixedSign() {
		return raw
	}
	switch t {
	case domain.TypePayment, domain.TypeReturn, domain.TypeSaleCancel:
		return -abs(raw)
	default:
		return abs(raw)
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
