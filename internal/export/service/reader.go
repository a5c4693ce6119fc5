package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// InvoiceTotals is what re-parsing a rendered invoice workbook yields. Used
// to verify the export restates exactly what the core computed.
type InvoiceTotals struct {
	LineTotals      []decimal.Decimal
	GrandTotal      decimal.Decimal
	PreviousBalance decimal.Decimal
}

// ReadInvoiceTotals re-parses the rendered line totals and totals block from
// an invoice workbook written by WriteInvoice.
func ReadInvoiceTotals(path string) (*InvoiceTotals, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	totals := &InvoiceTotals{}

	row := itemsHeaderRow + 1
	for {
		raw, err := f.GetCellValue(invoiceSheet, fmt.Sprintf("J%d", row))
		if err != nil {
			return nil, err
		}
		if raw == "" {
			break
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("line total at row %d: %w", row, err)
		}
		totals.LineTotals = append(totals.LineTotals, value)
		row++
	}

	grandRow, err := findLabel(f, "I", "Grand Total")
	if err != nil {
		return nil, err
	}
	totals.GrandTotal, err = readDecimal(f, fmt.Sprintf("J%d", grandRow))
	if err != nil {
		return nil, err
	}
	totals.PreviousBalance, err = readDecimal(f, fmt.Sprintf("J%d", grandRow+1))
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func findLabel(f *excelize.File, column, label string) (int, error) {
	for row := 1; row <= 10000; row++ {
		raw, err := f.GetCellValue(invoiceSheet, fmt.Sprintf("%s%d", column, row))
		if err != nil {
			return 0, err
		}
		if raw == label {
			return row, nil
		}
	}
	return 0, fmt.Errorf("label %q not found in column %s", label, column)
}

func readDecimal(f *excelize.File, cell string) (decimal.Decimal, error) {
	raw, err := f.GetCellValue(invoiceSheet, cell)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cell %s: %w", cell, err)
	}
	return value, nil
}
