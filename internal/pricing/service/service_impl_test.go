package service

import (
	"context"
	"testing"

	catalogdomain "github.com/MahmoudHooda2019/alswaife/internal/catalog/domain"
	catalogservice "github.com/MahmoudHooda2019/alswaife/internal/catalog/service"
	pricingdomain "github.com/MahmoudHooda2019/alswaife/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestPricer(products ...catalogdomain.Product) *Service {
	return &Service{
		log:     zap.NewNop(),
		catalog: catalogservice.NewFromProducts(zap.NewNop(), products),
		scale:   2,
	}
}

func flatProduct(code, price string) catalogdomain.Product {
	return catalogdomain.Product{
		Code: code,
		Rules: []catalogdomain.PricingRule{
			{Thickness: catalogdomain.WildcardThickness, RangeLow: dec("0"), UnitPrice: dec(price)},
		},
	}
}

func TestPriceComputesAreaAndTotal(t *testing.T) {
	pricer := newTestPricer(flatProduct("marble", "10"))

	item, err := pricer.Price(context.Background(), pricingdomain.LineItem{
		ProductCode: "marble",
		Thickness:   "2cm",
		Length:      dec("2"),
		Height:      dec("3"),
		Count:       dec("1"),
	})
	require.NoError(t, err)

	assert.True(t, dec("6").Equal(item.Area))
	assert.True(t, dec("10").Equal(item.UnitPrice))
	assert.True(t, dec("60").Equal(item.LineTotal))
	assert.True(t, item.Priced())
}

func TestPriceRoundsLineTotalOnceHalfUp(t *testing.T) {
	pricer := newTestPricer(flatProduct("marble", "10"))

	// area = 0.35 * 0.29 * 3 = 0.3045; total = 3.045 -> 3.05 half-up.
	item, err := pricer.Price(context.Background(), pricingdomain.LineItem{
		ProductCode: "marble",
		Thickness:   "2cm",
		Length:      dec("0.35"),
		Height:      dec("0.29"),
		Count:       dec("3"),
	})
	require.NoError(t, err)

	assert.True(t, dec("0.3045").Equal(item.Area), "area stays unrounded")
	assert.True(t, dec("3.05").Equal(item.LineTotal))
}

func TestPriceLookupUsesLargerDimension(t *testing.T) {
	pricer := newTestPricer(catalogdomain.Product{
		Code: "marble",
		Rules: []catalogdomain.PricingRule{
			{Thickness: "2cm", RangeLow: dec("0"), RangeHigh: decPtr("100"), UnitPrice: dec("10")},
			{Thickness: "2cm", RangeLow: dec("100"), UnitPrice: dec("8")},
		},
	})

	// height 120 drives the lookup even though length is 40.
	item, err := pricer.Price(context.Background(), pricingdomain.LineItem{
		ProductCode: "marble",
		Thickness:   "2cm",
		Length:      dec("40"),
		Height:      dec("120"),
		Count:       dec("1"),
	})
	require.NoError(t, err)
	assert.True(t, dec("8").Equal(item.UnitPrice))
}

func TestPriceRejectsNonPositiveInputs(t *testing.T) {
	pricer := newTestPricer(flatProduct("marble", "10"))
	base := pricingdomain.LineItem{
		ProductCode: "marble",
		Thickness:   "2cm",
		Length:      dec("1"),
		Height:      dec("1"),
		Count:       dec("1"),
	}

	cases := map[string]func(*pricingdomain.LineItem){
		"zero length":     func(li *pricingdomain.LineItem) { li.Length = dec("0") },
		"negative height": func(li *pricingdomain.LineItem) { li.Height = dec("-2") },
		"zero count":      func(li *pricingdomain.LineItem) { li.Count = dec("0") },
		"empty thickness": func(li *pricingdomain.LineItem) { li.Thickness = "  " },
		"empty product":   func(li *pricingdomain.LineItem) { li.ProductCode = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			item := base
			mutate(&item)
			_, err := pricer.Price(context.Background(), item)
			require.ErrorIs(t, err, pricingdomain.ErrInvalidDimensions)
		})
	}
}

func TestPricePropagatesNoMatchingRule(t *testing.T) {
	pricer := newTestPricer(catalogdomain.Product{
		Code: "marble",
		Rules: []catalogdomain.PricingRule{
			{Thickness: "2cm", RangeLow: dec("0"), RangeHigh: decPtr("100"), UnitPrice: dec("10")},
		},
	})

	_, err := pricer.Price(context.Background(), pricingdomain.LineItem{
		ProductCode: "marble",
		Thickness:   "3cm",
		Length:      dec("1"),
		Height:      dec("1"),
		Count:       dec("1"),
	})
	require.ErrorIs(t, err, catalogdomain.ErrNoMatchingRule)
}
