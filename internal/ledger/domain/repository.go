package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	FindInvoice(ctx context.Context, db *gorm.DB, series string, number int64) (*Invoice, error)
	ListInvoices(ctx context.Context, db *gorm.DB, clientName string) ([]Invoice, error)

	GetLedgerEntry(ctx context.Context, db *gorm.DB, clientName string) (*ClientLedgerEntry, error)
	UpsertLedgerEntry(ctx context.Context, db *gorm.DB, entry *ClientLedgerEntry) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListPayments(ctx context.Context, db *gorm.DB, clientName string) ([]Payment, error)
	SumPayments(ctx context.Context, db *gorm.DB, clientName string) (decimal.Decimal, error)
}

type Service interface {
	// Commit finalizes a draft: validates items, sums totals in entry
	// order, allocates the invoice number and persists the invoice plus the
	// ledger update atomically.
	Commit(ctx context.Context, draft Draft) (*Invoice, error)

	// Reverse creates a compensating invoice with negated totals under a
	// fresh number. Committed invoices are never edited in place.
	Reverse(ctx context.Context, series string, number int64) (*Invoice, error)

	// AddPayment records a payment and reduces the client's balance.
	AddPayment(ctx context.Context, clientName string, amount decimal.Decimal, notes string) (*Payment, error)

	// Balance returns the client's running balance, zero for new clients.
	Balance(ctx context.Context, clientName string) (decimal.Decimal, error)

	// GetInvoice loads a committed invoice with its items in entry order.
	GetInvoice(ctx context.Context, series string, number int64) (*Invoice, error)

	// Statement returns everything the statement exporter needs: committed
	// invoices, payments and the running balance.
	Statement(ctx context.Context, clientName string) (*StatementData, error)
}

// StatementData is the exporter's read model for one client.
type StatementData struct {
	ClientName string
	Invoices   []Invoice
	Payments   []Payment
	Balance    decimal.Decimal
}
