// Package domain holds the pricing catalog model.
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// WildcardThickness matches any line-item thickness. An exact thickness rule
// always beats a wildcard rule for the same product.
const WildcardThickness = ""

// PricingRule prices one dimension range of a product. The range is
// [RangeLow, RangeHigh); a nil RangeHigh means the range is open-ended.
type PricingRule struct {
	Thickness string
	RangeLow  decimal.Decimal
	RangeHigh *decimal.Decimal
	UnitPrice decimal.Decimal
}

// Open reports whether the rule has no upper bound.
func (r PricingRule) Open() bool { return r.RangeHigh == nil }

// Contains reports whether the dimension falls inside the rule's range.
func (r PricingRule) Contains(dim decimal.Decimal) bool {
	if dim.LessThan(r.RangeLow) {
		return false
	}
	return r.RangeHigh == nil || dim.LessThan(*r.RangeHigh)
}

// Span is the width of the rule's range. The second return value is false for
// open-ended rules, which are treated as wider than any bounded rule.
func (r PricingRule) Span() (decimal.Decimal, bool) {
	if r.RangeHigh == nil {
		return decimal.Decimal{}, false
	}
	return r.RangeHigh.Sub(r.RangeLow), true
}

// Product is an immutable catalog entry. Rule order is declaration order and
// breaks ties between equally specific rules.
type Product struct {
	Code  string
	Rules []PricingRule
}

type Service interface {
	// Resolve returns the unit price for the given product, thickness and
	// lookup dimension, or ErrNoMatchingRule.
	Resolve(ctx context.Context, product, thickness string, dimension decimal.Decimal) (decimal.Decimal, error)

	// Reload re-reads the catalog file and atomically replaces the whole
	// rule set. In-flight resolutions see either the old or the new set.
	Reload(ctx context.Context) error

	// Products lists the loaded products in declaration order.
	Products(ctx context.Context) []Product
}
