package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

func TestStatementXLSX(t *testing.T) {
	desc := "외상 매출"
	entries := []domain.StatementEntry{
		{
			LedgerEntry: domain.LedgerEntry{
				ID:              2,
				CustomerID:      "c1",
				TransactionDate: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
				TransactionType: domain.TypeSale,
				Amount:          1500,
				Description:     &desc,
			},
			RunningBalance: 2500,
		},
		{
			LedgerEntry: domain.LedgerEntry{
				ID:              1,
				CustomerID:      "c1",
				TransactionDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				TransactionType: domain.TypeCarryOver,
				Amount:          1000,
			},
			RunningBalance: 1000,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, StatementXLSX(&buf, "김철수", entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	const sheet = "거래원장"

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "김철수 거래원장", title)

	header, err := f.GetCellValue(sheet, "E3")
	require.NoError(t, err)
	assert.Equal(t, "잔액", header)

	date, err := f.GetCellValue(sheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-05", date)

	balance, err := f.GetCellValue(sheet, "E4")
	require.NoError(t, err)
	assert.Equal(t, "2500", balance)

	txType, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "이월", txType)
}

func TestStatementXLSX_EmptyStatement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StatementXLSX(&buf, "김철수", nil))
	assert.NotZero(t, buf.Len())
}
