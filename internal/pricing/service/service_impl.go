package service

import (
	"context"
	"fmt"
	"strings"

	catalogdomain "github.com/MahmoudHooda2019/alswaife/internal/catalog/domain"
	"github.com/MahmoudHooda2019/alswaife/internal/config"
	pricingdomain "github.com/MahmoudHooda2019/alswaife/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	catalog catalogdomain.Service
	scale   int32
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Catalog catalogdomain.Service
	Config  *config.Config
}

func NewService(p ServiceParam) pricingdomain.Service {
	return &Service{
		log:     p.Log.Named("pricing.service"),
		catalog: p.Catalog,
		scale:   p.Config.CurrencyScale,
	}
}

func (s *Service) Price(ctx context.Context, item pricingdomain.LineItem) (pricingdomain.LineItem, error) {
	if err := validate(item); err != nil {
		return pricingdomain.LineItem{}, err
	}

	unitPrice, err := s.catalog.Resolve(ctx, item.ProductCode, item.Thickness, lookupDimension(item))
	if err != nil {
		return pricingdomain.LineItem{}, err
	}

	// Area and the area×price product stay unrounded; rounding happens
	// exactly once, on the line total, half-up at currency scale.
	area := item.Length.Mul(item.Height).Mul(item.Count)

	item.UnitPrice = unitPrice
	item.Area = area
	item.LineTotal = area.Mul(unitPrice).Round(s.scale)
	item.MarkPriced()
	return item, nil
}

// lookupDimension is the single place deciding which physical dimension
// drives the catalog range lookup: the larger of length and height.
func lookupDimension(item pricingdomain.LineItem) decimal.Decimal {
	if item.Height.GreaterThan(item.Length) {
		return item.Height
	}
	return item.Length
}

func validate(item pricingdomain.LineItem) error {
	switch {
	case strings.TrimSpace(item.ProductCode) == "":
		return fmt.Errorf("product code is empty: %w", pricingdomain.ErrInvalidDimensions)
	case strings.TrimSpace(item.Thickness) == "":
		return fmt.Errorf("thickness is empty: %w", pricingdomain.ErrInvalidDimensions)
	case !item.Length.IsPositive():
		return fmt.Errorf("length %s must be positive: %w", item.Length, pricingdomain.ErrInvalidDimensions)
	case !item.Height.IsPositive():
		return fmt.Errorf("height %s must be positive: %w", item.Height, pricingdomain.ErrInvalidDimensions)
	case !item.Count.IsPositive():
		return fmt.Errorf("count %s must be positive: %w", item.Count, pricingdomain.ErrInvalidDimensions)
	}
	return nil
}
