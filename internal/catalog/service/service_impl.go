package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MahmoudHooda2019/alswaife/internal/catalog/domain"
	"github.com/MahmoudHooda2019/alswaife/internal/catalog/loader"
	"github.com/MahmoudHooda2019/alswaife/internal/config"
	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ruleSet struct {
	products []domain.Product
	byCode   map[string]*domain.Product
}

type Service struct {
	log  *zap.Logger
	path string

	rules atomic.Pointer[ruleSet]
}

type ServiceParam struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Log       *zap.Logger
}

func NewService(p ServiceParam) (domain.Service, error) {
	s := &Service{
		log:  p.Log.Named("catalog.service"),
		path: p.Config.CatalogPath,
	}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}

	if p.Config.WatchCatalog {
		if err := s.watch(p.Lifecycle); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewFromProducts builds a catalog directly from an in-memory rule set.
func NewFromProducts(log *zap.Logger, products []domain.Product) *Service {
	s := &Service{log: log.Named("catalog.service")}
	s.swap(products)
	return s
}

func (s *Service) Reload(_ context.Context) error {
	products, err := loader.Load(s.path)
	if err != nil {
		return err
	}
	s.swap(products)
	s.log.Info("catalog loaded", zap.String("path", s.path), zap.Int("products", len(products)))
	return nil
}

func (s *Service) swap(products []domain.Product) {
	set := &ruleSet{
		products: products,
		byCode:   make(map[string]*domain.Product, len(products)),
	}
	for i := range set.products {
		set.byCode[set.products[i].Code] = &set.products[i]
	}
	s.rules.Store(set)
}

func (s *Service) Products(_ context.Context) []domain.Product {
	return s.rules.Load().products
}

func (s *Service) Resolve(_ context.Context, product, thickness string, dimension decimal.Decimal) (decimal.Decimal, error) {
	set := s.rules.Load()

	p, ok := set.byCode[product]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unknown product %q: %w", product, domain.ErrNoMatchingRule)
	}

	candidates := rulesForThickness(p.Rules, thickness)
	if len(candidates) == 0 {
		return decimal.Decimal{}, noRule(product, thickness, dimension)
	}

	if rule, ok := mostSpecific(candidates, dimension); ok {
		return rule.UnitPrice, nil
	}

	// Above every bounded range: the highest range stretches open-ended so
	// out-of-catalog large pieces still price. A gap between ranges, or a
	// dimension below every range, stays a hard failure.
	if rule, ok := highestIfAboveAll(candidates, dimension); ok {
		return rule.UnitPrice, nil
	}
	return decimal.Decimal{}, noRule(product, thickness, dimension)
}

func noRule(product, thickness string, dimension decimal.Decimal) error {
	return fmt.Errorf("product %q thickness %q dimension %s: %w",
		product, thickness, dimension, domain.ErrNoMatchingRule)
}

// rulesForThickness keeps exact-thickness rules when any exist, otherwise the
// wildcard rules. Exact always wins over wildcard.
func rulesForThickness(rules []domain.PricingRule, thickness string) []domain.PricingRule {
	var exact, wildcard []domain.PricingRule
	for _, r := range rules {
		switch r.Thickness {
		case thickness:
			exact = append(exact, r)
		case domain.WildcardThickness:
			wildcard = append(wildcard, r)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return wildcard
}

// mostSpecific picks, among rules whose range contains the dimension, the one
// with the narrowest span. Open-ended rules count as wider than any bounded
// rule; equal spans fall back to declaration order.
func mostSpecific(rules []domain.PricingRule, dimension decimal.Decimal) (domain.PricingRule, bool) {
	var (
		best     domain.PricingRule
		bestSpan decimal.Decimal
		bestOpen bool
		found    bool
	)
	for _, r := range rules {
		if !r.Contains(dimension) {
			continue
		}
		span, bounded := r.Span()
		open := !bounded
		if !found {
			best, bestSpan, bestOpen, found = r, span, open, true
			continue
		}
		if bestOpen && !open {
			best, bestSpan, bestOpen = r, span, open
			continue
		}
		if !bestOpen && !open && span.LessThan(bestSpan) {
			best, bestSpan = r, span
		}
	}
	return best, found
}

// highestIfAboveAll matches the rule with the greatest upper bound when the
// dimension sits above every bounded range and no open-ended rule exists.
func highestIfAboveAll(rules []domain.PricingRule, dimension decimal.Decimal) (domain.PricingRule, bool) {
	var (
		best  domain.PricingRule
		found bool
	)
	for _, r := range rules {
		if r.RangeHigh == nil {
			// An open rule that did not contain the dimension means the
			// dimension is below its lower bound, not above everything.
			return domain.PricingRule{}, false
		}
		if dimension.LessThan(*r.RangeHigh) {
			return domain.PricingRule{}, false
		}
		if !found || r.RangeHigh.GreaterThan(*best.RangeHigh) {
			best, found = r, true
		}
	}
	return best, found
}

func (s *Service) watch(lc fx.Lifecycle) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := watcher.Add(s.path); err != nil {
				return fmt.Errorf("watch %s: %w", s.path, err)
			}
			go s.watchLoop(watcher)
			return nil
		},
		OnStop: func(context.Context) error {
			return watcher.Close()
		},
	})
	return nil
}

func (s *Service) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(context.Background()); err != nil {
				// Keep serving the previous rule set.
				s.log.Warn("catalog reload failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
