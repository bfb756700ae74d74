package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

// StatementXLSX writes a customer statement workbook: one row per ledger
// entry in the order given (newest first), with the running balance column.
func StatementXLSX(w io.Writer, customerName string, entries []domain.StatementEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "거래원장"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("StatementXLSX: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s 거래원장", customerName))

	headers := []string{"거래일", "구분", "금액", "적요", "잔액"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c3", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}

	for i, e := range entries {
		row := i + 4
		desc := ""
		if e.Description != nil {
			desc = *e.Description
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.TransactionDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(e.TransactionType))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), desc)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.RunningBalance)
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 10)
	f.SetColWidth(sheet, "C", "C", 14)
	f.SetColWidth(sheet, "D", "D", 30)
	f.SetColWidth(sheet, "E", "E", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("StatementXLSX: write: %w", err)
	}
	return nil
}
