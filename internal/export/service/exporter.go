// Package service renders finalized invoices and client statements as Excel
// workbooks. It never computes a price: every numeric cell restates a value
// the core already computed, and SUM formulas are written next to those
// values purely as a visual cross-check.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MahmoudHooda2019/alswaife/internal/config"
	ledgerdomain "github.com/MahmoudHooda2019/alswaife/internal/ledger/domain"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	invoiceSheet   = "Invoice"
	summarySheet   = "Summary"
	statementSheet = "Statement"

	// Invoice sheet: items start below the header block.
	itemsHeaderRow = 6
)

type Service struct {
	log *zap.Logger
	dir string
}

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Config *config.Config
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log: p.Log.Named("export.service"),
		dir: p.Config.ExportDir,
	}
}

// InvoicePath is where WriteInvoice puts the workbook for an invoice.
func (s *Service) InvoicePath(invoice *ledgerdomain.Invoice) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.xlsx", slug.Make(invoice.Series), invoice.Number))
}

func (s *Service) WriteInvoice(invoice *ledgerdomain.Invoice) (string, error) {
	path := s.InvoicePath(invoice)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), invoiceSheet)

	setCells(f, invoiceSheet, [][2]any{
		{"A1", "Invoice No."}, {"B1", invoice.Number},
		{"A2", "Client"}, {"B2", invoice.ClientName},
		{"A3", "Date"}, {"B3", invoice.IssuedAt.Format("02/01/2006")},
	})
	// Map order is random; sort so two exports of one invoice are identical.
	headerKeys := make([]string, 0, len(invoice.Header))
	for key := range invoice.Header {
		headerKeys = append(headerKeys, key)
	}
	sort.Strings(headerKeys)
	col := 'C'
	for _, key := range headerKeys {
		f.SetCellValue(invoiceSheet, fmt.Sprintf("%c1", col), key)
		f.SetCellValue(invoiceSheet, fmt.Sprintf("%c2", col), fmt.Sprint(invoice.Header[key]))
		if col++; col > 'H' {
			break
		}
	}

	headers := []string{"#", "Description", "Product", "Thickness", "Count", "Length", "Height", "Area", "Unit Price", "Line Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, itemsHeaderRow)
		f.SetCellValue(invoiceSheet, cell, h)
	}

	firstItemRow := itemsHeaderRow + 1
	for i, item := range invoice.Items {
		row := firstItemRow + i
		setCells(f, invoiceSheet, [][2]any{
			{fmt.Sprintf("A%d", row), i + 1},
			{fmt.Sprintf("B%d", row), item.Description},
			{fmt.Sprintf("C%d", row), item.ProductCode},
			{fmt.Sprintf("D%d", row), item.Thickness},
			{fmt.Sprintf("E%d", row), item.Count.InexactFloat64()},
			{fmt.Sprintf("F%d", row), item.Length.InexactFloat64()},
			{fmt.Sprintf("G%d", row), item.Height.InexactFloat64()},
			{fmt.Sprintf("H%d", row), item.Area.InexactFloat64()},
			{fmt.Sprintf("I%d", row), item.UnitPrice.InexactFloat64()},
			{fmt.Sprintf("J%d", row), item.LineTotal.InexactFloat64()},
		})
	}
	lastItemRow := firstItemRow + len(invoice.Items) - 1

	totalRow := lastItemRow + 2
	setCells(f, invoiceSheet, [][2]any{
		{fmt.Sprintf("I%d", totalRow), "Grand Total"},
		{fmt.Sprintf("J%d", totalRow), invoice.GrandTotal.InexactFloat64()},
		{fmt.Sprintf("I%d", totalRow+1), "Previous Balance"},
		{fmt.Sprintf("J%d", totalRow+1), invoice.PreviousBalance.InexactFloat64()},
		{fmt.Sprintf("I%d", totalRow+2), "New Balance"},
		{fmt.Sprintf("J%d", totalRow+2), invoice.PreviousBalance.Add(invoice.GrandTotal).InexactFloat64()},
	})

	// Cross-check formulas beside the stated values. They must agree with
	// the core's numbers cell for cell.
	if err := f.SetCellFormula(invoiceSheet, fmt.Sprintf("K%d", totalRow),
		fmt.Sprintf("SUM(J%d:J%d)", firstItemRow, lastItemRow)); err != nil {
		return "", err
	}
	if err := f.SetCellFormula(invoiceSheet, fmt.Sprintf("K%d", totalRow+2),
		fmt.Sprintf("J%d+J%d", totalRow, totalRow+1)); err != nil {
		return "", err
	}

	if err := s.writeSummary(f, invoice); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save invoice workbook: %w", err)
	}
	s.log.Info("invoice exported", zap.String("path", path), zap.Int64("number", invoice.Number))
	return path, nil
}

// writeSummary groups items by (description, product, thickness) and restates
// aggregated area and totals, mirroring the printed summary block.
func (s *Service) writeSummary(f *excelize.File, invoice *ledgerdomain.Invoice) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	type key struct{ desc, product, thickness string }
	order := make([]key, 0, len(invoice.Items))
	groups := make(map[key]*ledgerdomain.InvoiceItem)
	for i := range invoice.Items {
		item := invoice.Items[i]
		k := key{item.Description, item.ProductCode, item.Thickness}
		if agg, ok := groups[k]; ok {
			agg.Count = agg.Count.Add(item.Count)
			agg.Area = agg.Area.Add(item.Area)
			agg.LineTotal = agg.LineTotal.Add(item.LineTotal)
			continue
		}
		copied := item
		groups[k] = &copied
		order = append(order, k)
	}

	setCells(f, summarySheet, [][2]any{
		{"A1", "Description"}, {"B1", "Product"}, {"C1", "Thickness"},
		{"D1", "Count"}, {"E1", "Area"}, {"F1", "Total"},
	})
	for i, k := range order {
		agg := groups[k]
		row := i + 2
		setCells(f, summarySheet, [][2]any{
			{fmt.Sprintf("A%d", row), agg.Description},
			{fmt.Sprintf("B%d", row), agg.ProductCode},
			{fmt.Sprintf("C%d", row), agg.Thickness},
			{fmt.Sprintf("D%d", row), agg.Count.InexactFloat64()},
			{fmt.Sprintf("E%d", row), agg.Area.InexactFloat64()},
			{fmt.Sprintf("F%d", row), agg.LineTotal.InexactFloat64()},
		})
	}
	return nil
}

// WriteStatement renders a client's full history: invoices, payments and the
// running balance, with a balance formula over the two section totals.
func (s *Service) WriteStatement(data *ledgerdomain.StatementData) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("statement-%s.xlsx", slug.Make(data.ClientName)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), statementSheet)

	setCells(f, statementSheet, [][2]any{
		{"A1", "Client"}, {"B1", data.ClientName},
		{"A3", "Invoice No."}, {"B3", "Date"}, {"C3", "Total"},
		{"E3", "Payment Date"}, {"F3", "Reference"}, {"G3", "Amount"},
	})

	for i, invoice := range data.Invoices {
		row := 4 + i
		setCells(f, statementSheet, [][2]any{
			{fmt.Sprintf("A%d", row), invoice.Number},
			{fmt.Sprintf("B%d", row), invoice.IssuedAt.Format("02/01/2006")},
			{fmt.Sprintf("C%d", row), invoice.GrandTotal.InexactFloat64()},
		})
	}
	for i, payment := range data.Payments {
		row := 4 + i
		setCells(f, statementSheet, [][2]any{
			{fmt.Sprintf("E%d", row), payment.PaidAt.Format("02/01/2006")},
			{fmt.Sprintf("F%d", row), payment.Reference},
			{fmt.Sprintf("G%d", row), payment.Amount.InexactFloat64()},
		})
	}

	rows := len(data.Invoices)
	if len(data.Payments) > rows {
		rows = len(data.Payments)
	}
	totalRow := 4 + rows + 1

	setCells(f, statementSheet, [][2]any{
		{fmt.Sprintf("B%d", totalRow), "Invoices Total"},
		{fmt.Sprintf("F%d", totalRow), "Payments Total"},
		{fmt.Sprintf("A%d", totalRow+2), "Balance"},
		{fmt.Sprintf("B%d", totalRow+2), data.Balance.InexactFloat64()},
	})
	if len(data.Invoices) > 0 {
		if err := f.SetCellFormula(statementSheet, fmt.Sprintf("C%d", totalRow),
			fmt.Sprintf("SUM(C4:C%d)", 3+len(data.Invoices))); err != nil {
			return "", err
		}
	}
	if len(data.Payments) > 0 {
		if err := f.SetCellFormula(statementSheet, fmt.Sprintf("G%d", totalRow),
			fmt.Sprintf("SUM(G4:G%d)", 3+len(data.Payments))); err != nil {
			return "", err
		}
	}
	if err := f.SetCellFormula(statementSheet, fmt.Sprintf("C%d", totalRow+2),
		fmt.Sprintf("C%d-G%d", totalRow, totalRow)); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save statement workbook: %w", err)
	}
	s.log.Info("statement exported", zap.String("path", path), zap.String("client", data.ClientName))
	return path, nil
}

func setCells(f *excelize.File, sheet string, cells [][2]any) {
	for _, c := range cells {
		_ = f.SetCellValue(sheet, c[0].(string), c[1])
	}
}
