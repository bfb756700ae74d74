package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		txType domain.TransactionType
		raw    int64
		want   int64
	}{
		{"payment positive", domain.TypePayment, 5000, -5000},
		{"payment already negative", domain.TypePayment, -5000, -5000},
		{"return positive", domain.TypeReturn, 1200, -1200},
		{"sale cancel positive", domain.TypeSaleCancel, 800, -800},
		{"sale cancel negative", domain.TypeSaleCancel, -800, -800},
		{"sale positive", domain.TypeSale, 3000, 3000},
		{"sale negative", domain.TypeSale, -3000, 3000},
		{"carry over negative", domain.TypeCarryOver, -7000, 7000},
		{"carry over positive", domain.TypeCarryOver, 7000, 7000},
		{"adjustment keeps positive sign", domain.TypeAdjustment, 250, 250},
		{"adjustment keeps negative sign", domain.TypeAdjustment, -250, -250},
		{"unknown type keeps sign", domain.TransactionType("기타"), -99, -99},
		{"zero", domain.TypePayment, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.txType, tt.raw))
		})
	}
}
