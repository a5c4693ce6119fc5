// Package domain holds the line-item model shared by pricing and the ledger.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDimensions means a line item carries a non-positive length,
	// height, count or an empty thickness. The wrapped message names the
	// offending field.
	ErrInvalidDimensions = errors.New("invalid line item dimensions")
)

// LineItem is one invoice row. Length, Height and Count come from user
// input; Area, UnitPrice and LineTotal are filled in by the pricer and must
// not be set by callers.
type LineItem struct {
	ProductCode string
	Thickness   string
	Description string

	Length decimal.Decimal
	Height decimal.Decimal
	Count  decimal.Decimal

	UnitPrice decimal.Decimal
	Area      decimal.Decimal
	LineTotal decimal.Decimal

	priced bool
}

// Priced reports whether the item has been through the pricer.
func (li LineItem) Priced() bool { return li.priced }

// MarkPriced is called by the pricer once derived values are filled in.
func (li *LineItem) MarkPriced() { li.priced = true }

type Service interface {
	// Price fills in Area, UnitPrice and LineTotal, or fails with
	// ErrInvalidDimensions or the catalog's ErrNoMatchingRule. The input
	// item is not modified.
	Price(ctx context.Context, item LineItem) (LineItem, error)
}
