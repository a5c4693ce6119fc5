package service

import (
	"fmt"
	"testing"
	"time"

	ledgerdomain "github.com/MahmoudHooda2019/alswaife/internal/ledger/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestExporter(t *testing.T) *Service {
	t.Helper()
	return &Service{log: zap.NewNop(), dir: t.TempDir()}
}

func testInvoice(t *testing.T) *ledgerdomain.Invoice {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	invoice := &ledgerdomain.Invoice{
		ID:              node.Generate(),
		Series:          "invoice",
		Number:          7,
		ClientName:      "haddad",
		PreviousBalance: dec("100"),
		GrandTotal:      dec("75.58"),
		Status:          ledgerdomain.InvoiceStatusCommitted,
		IssuedAt:        time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	lines := []struct {
		desc, product, thickness string
		count, length, height    string
		unitPrice, area, total   string
	}{
		{"slab", "marble", "2cm", "1", "2", "3", "10", "6", "60"},
		{"slab", "marble", "2cm", "1", "1", "1", "10.01", "1", "10.01"},
		{"step", "granite", "3cm", "1", "1", "1", "5.57", "1", "5.57"},
	}
	for i, l := range lines {
		invoice.Items = append(invoice.Items, ledgerdomain.InvoiceItem{
			ID:          node.Generate(),
			InvoiceID:   invoice.ID,
			Position:    i,
			ProductCode: l.product,
			Thickness:   l.thickness,
			Description: l.desc,
			Count:       dec(l.count),
			Length:      dec(l.length),
			Height:      dec(l.height),
			UnitPrice:   dec(l.unitPrice),
			Area:        dec(l.area),
			LineTotal:   dec(l.total),
		})
	}
	return invoice
}

func TestWriteInvoiceRoundTripsTotals(t *testing.T) {
	exporter := newTestExporter(t)
	invoice := testInvoice(t)

	path, err := exporter.WriteInvoice(invoice)
	require.NoError(t, err)

	totals, err := ReadInvoiceTotals(path)
	require.NoError(t, err)

	require.Len(t, totals.LineTotals, len(invoice.Items))
	for i, item := range invoice.Items {
		assert.True(t, item.LineTotal.Equal(totals.LineTotals[i]), "line %d", i)
	}
	assert.True(t, invoice.GrandTotal.Equal(totals.GrandTotal))
	assert.True(t, invoice.PreviousBalance.Equal(totals.PreviousBalance))
}

func TestWriteInvoiceFormulaMatchesStatedTotal(t *testing.T) {
	exporter := newTestExporter(t)
	invoice := testInvoice(t)

	path, err := exporter.WriteInvoice(invoice)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	totalRow := itemsHeaderRow + len(invoice.Items) + 2

	formula, err := f.GetCellFormula(invoiceSheet, fmt.Sprintf("K%d", totalRow))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SUM(J%d:J%d)", itemsHeaderRow+1, itemsHeaderRow+len(invoice.Items)), formula)

	// The cross-check formula must agree with the core's grand total at
	// currency precision.
	calc, err := f.CalcCellValue(invoiceSheet, fmt.Sprintf("K%d", totalRow))
	require.NoError(t, err)
	got, err := decimal.NewFromString(calc)
	require.NoError(t, err)
	assert.True(t, invoice.GrandTotal.Equal(got.Round(2)))

	calc, err = f.CalcCellValue(invoiceSheet, fmt.Sprintf("K%d", totalRow+2))
	require.NoError(t, err)
	got, err = decimal.NewFromString(calc)
	require.NoError(t, err)
	assert.True(t, invoice.PreviousBalance.Add(invoice.GrandTotal).Equal(got.Round(2)))
}

func TestWriteInvoiceSummaryAggregates(t *testing.T) {
	exporter := newTestExporter(t)
	invoice := testInvoice(t)

	path, err := exporter.WriteInvoice(invoice)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Two marble 2cm "slab" rows collapse into one summary line.
	desc, err := f.GetCellValue(summarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "slab", desc)
	total, err := f.GetCellValue(summarySheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "70.01", total)

	desc, err = f.GetCellValue(summarySheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "step", desc)

	empty, err := f.GetCellValue(summarySheet, "A4")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWriteStatement(t *testing.T) {
	exporter := newTestExporter(t)

	data := &ledgerdomain.StatementData{
		ClientName: "Abu Haddad & Sons",
		Invoices: []ledgerdomain.Invoice{
			{Number: 1, GrandTotal: dec("100"), IssuedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Number: 2, GrandTotal: dec("60"), IssuedAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)},
		},
		Payments: []ledgerdomain.Payment{
			{Reference: "ref-1", Amount: dec("40"), PaidAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		},
		Balance: dec("120"),
	}

	path, err := exporter.WriteStatement(data)
	require.NoError(t, err)
	assert.Contains(t, path, "statement-abu-haddad-sons.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Sections: 2 invoice rows, 1 payment row -> totals on row 7, balance 9.
	calc, err := f.CalcCellValue(statementSheet, "C7")
	require.NoError(t, err)
	assert.Equal(t, "160", calc)

	calc, err = f.CalcCellValue(statementSheet, "G7")
	require.NoError(t, err)
	assert.Equal(t, "40", calc)

	balance, err := f.GetCellValue(statementSheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "120", balance)

	calc, err = f.CalcCellValue(statementSheet, "C9")
	require.NoError(t, err)
	got, err := decimal.NewFromString(calc)
	require.NoError(t, err)
	assert.True(t, data.Balance.Equal(got.Round(2)))
}

func TestWriteInvoiceHeaderCellsSorted(t *testing.T) {
	exp := newTestExporter(t)
	invoice := testInvoice(t)
	invoice.Header = datatypes.JSONMap{
		"site":   "quarry road",
		"driver": "samir",
		"car":    "truck 3",
	}

	path, err := exp.WriteInvoice(invoice)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Keys land left to right in sorted order, so repeated exports of the
	// same invoice produce identical header cells.
	for i, want := range []string{"car", "driver", "site"} {
		cell := fmt.Sprintf("%c1", 'C'+i)
		got, err := f.GetCellValue(invoiceSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
	got, err := f.GetCellValue(invoiceSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "samir", got)
}
