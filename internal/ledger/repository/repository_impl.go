package repository

import (
	"context"
	"errors"

	ledgerdomain "github.com/MahmoudHooda2019/alswaife/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *ledgerdomain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []ledgerdomain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindInvoice(ctx context.Context, db *gorm.DB, series string, number int64) (*ledgerdomain.Invoice, error) {
	var invoice ledgerdomain.Invoice
	err := db.WithContext(ctx).
		Where("series = ? AND number = ?", series, number).
		Take(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).
		Where("invoice_id = ?", invoice.ID).
		Order("position ASC").
		Find(&invoice.Items).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, clientName string) ([]ledgerdomain.Invoice, error) {
	var invoices []ledgerdomain.Invoice
	err := db.WithContext(ctx).
		Where("client_name = ?", clientName).
		Order("number ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) GetLedgerEntry(ctx context.Context, db *gorm.DB, clientName string) (*ledgerdomain.ClientLedgerEntry, error) {
	var entry ledgerdomain.ClientLedgerEntry
	err := db.WithContext(ctx).
		Where("client_name = ?", clientName).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) UpsertLedgerEntry(ctx context.Context, db *gorm.DB, entry *ledgerdomain.ClientLedgerEntry) error {
	res := db.WithContext(ctx).
		Model(&ledgerdomain.ClientLedgerEntry{}).
		Where("client_name = ?", entry.ClientName).
		Updates(map[string]any{
			"running_balance": entry.RunningBalance,
			"updated_at":      entry.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.WithContext(ctx).Create(entry).Error
	}
	return nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *ledgerdomain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, clientName string) ([]ledgerdomain.Payment, error) {
	var payments []ledgerdomain.Payment
	err := db.WithContext(ctx).
		Where("client_name = ?", clientName).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) SumPayments(ctx context.Context, db *gorm.DB, clientName string) (decimal.Decimal, error) {
	payments, err := r.ListPayments(ctx, db, clientName)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Summed in Go, not SQL, to keep the exact-decimal discipline.
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}
