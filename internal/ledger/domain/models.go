// Package domain contains persistence models for invoices, the per-client
// ledger and payments.
package domain

import (
	"time"

	pricingdomain "github.com/MahmoudHooda2019/alswaife/internal/pricing/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type InvoiceStatus string

const (
	// InvoiceStatusCommitted is terminal. Corrections are compensating
	// invoices, never edits.
	InvoiceStatusCommitted InvoiceStatus = "committed"
)

// Invoice is a committed, immutable invoice. Number comes from the sequencer
// at commit time; PreviousBalance snapshots the client balance before this
// invoice was applied and feeds the statement's opening-balance line.
type Invoice struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Series string       `gorm:"type:text;not null;uniqueIndex:idx_invoices_series_number"`
	Number int64        `gorm:"not null;uniqueIndex:idx_invoices_series_number"`

	ClientName string `gorm:"type:text;not null;index"`

	// Header carries fields the core treats as opaque: driver, phone,
	// operation number, entry date.
	Header datatypes.JSONMap `gorm:"type:text"`

	PreviousBalance decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(20,6);not null"`

	Status    InvoiceStatus `gorm:"type:text;not null"`
	IssuedAt  time.Time     `gorm:"not null"`
	CreatedAt time.Time     `gorm:"not null"`

	Items []InvoiceItem `gorm:"-"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one persisted invoice row. Position preserves entry order,
// which is also print and summation order.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	InvoiceID snowflake.ID `gorm:"not null;index"`
	Position  int          `gorm:"not null"`

	ProductCode string `gorm:"type:text;not null"`
	Thickness   string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`

	Length    decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	Height    decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	Count     decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	Area      decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(20,6);not null"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// ClientLedgerEntry is the running balance per client: committed invoice
// totals minus recorded payments.
type ClientLedgerEntry struct {
	ClientName     string          `gorm:"primaryKey;type:text"`
	RunningBalance decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

func (ClientLedgerEntry) TableName() string { return "client_ledger" }

// Payment reduces a client's running balance.
type Payment struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	Reference  string          `gorm:"type:text;not null;uniqueIndex"`
	ClientName string          `gorm:"type:text;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	PaidAt     time.Time       `gorm:"not null"`
	Notes      string          `gorm:"type:text"`
	CreatedAt  time.Time       `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// Draft is an uncommitted invoice. Aborting a draft touches no shared state;
// no number is consumed until Commit.
type Draft struct {
	Series     string
	ClientName string
	Header     map[string]any
	Items      []pricingdomain.LineItem
}
