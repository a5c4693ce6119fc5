// Package loader parses and validates the JSON pricing catalog.
//
// The structured form is:
//
//	{"products": [{"name": "marble", "rules": [
//	    {"thickness": "2cm", "from": 0, "to": 100, "price": 10},
//	    {"thickness": "*", "from": 0, "price": 12}]}]}
//
// Two legacy forms produced by earlier releases are also accepted, a flat
// {"name": price} object and a [{"name": ..., "price": ...}] list; both map
// to a single wildcard open-ended rule per product.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/MahmoudHooda2019/alswaife/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type ruleFile struct {
	Products []productEntry `json:"products"`
}

type productEntry struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Rules []ruleEntry      `json:"rules"`
}

type ruleEntry struct {
	Thickness string           `json:"thickness"`
	From      decimal.Decimal  `json:"from"`
	To        *decimal.Decimal `json:"to"`
	Price     decimal.Decimal  `json:"price"`
}

// Load reads and validates the catalog file. Malformed entries fail the whole
// load; a half-valid catalog is never returned.
func Load(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrMalformedCatalog)
	}

	var entries []productEntry
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
		}
	case '{':
		var file ruleFile
		if err := json.Unmarshal(trimmed, &file); err == nil && file.Products != nil {
			entries = file.Products
			break
		}
		flat, err := parseFlat(trimmed)
		if err != nil {
			return nil, err
		}
		entries = flat
	default:
		return nil, fmt.Errorf("%w: expected JSON object or array", domain.ErrMalformedCatalog)
	}

	return build(entries)
}

func parseFlat(raw []byte) ([]productEntry, error) {
	var flat map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCatalog, err)
	}

	// The flat form carries no order; sort for a deterministic catalog.
	entries := make([]productEntry, 0, len(flat))
	for name, price := range flat {
		p := price
		entries = append(entries, productEntry{Name: name, Price: &p})
	}
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Name < entries[i].Name {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	return entries, nil
}

func build(entries []productEntry) ([]domain.Product, error) {
	seen := make(map[string]bool, len(entries))
	products := make([]domain.Product, 0, len(entries))

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product with empty name", domain.ErrMalformedCatalog)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate product %q", domain.ErrMalformedCatalog, name)
		}
		seen[name] = true

		rules, err := buildRules(name, entry)
		if err != nil {
			return nil, err
		}
		products = append(products, domain.Product{Code: name, Rules: rules})
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products", domain.ErrMalformedCatalog)
	}
	return products, nil
}

func buildRules(name string, entry productEntry) ([]domain.PricingRule, error) {
	if len(entry.Rules) == 0 {
		// Legacy flat price: one wildcard rule covering every dimension.
		if entry.Price == nil {
			return nil, fmt.Errorf("%w: product %q has neither rules nor a price", domain.ErrMalformedCatalog, name)
		}
		if entry.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %q has a negative price", domain.ErrMalformedCatalog, name)
		}
		return []domain.PricingRule{{
			Thickness: domain.WildcardThickness,
			RangeLow:  decimal.Zero,
			UnitPrice: *entry.Price,
		}}, nil
	}

	rules := make([]domain.PricingRule, 0, len(entry.Rules))
	for i, re := range entry.Rules {
		if re.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %q rule %d has a negative price", domain.ErrMalformedCatalog, name, i)
		}
		if re.From.IsNegative() {
			return nil, fmt.Errorf("%w: product %q rule %d has a negative lower bound", domain.ErrMalformedCatalog, name, i)
		}
		if re.To != nil && !re.To.GreaterThan(re.From) {
			return nil, fmt.Errorf("%w: product %q rule %d range [%s, %s) is empty", domain.ErrMalformedCatalog, name, i, re.From, re.To)
		}

		thickness := strings.TrimSpace(re.Thickness)
		if thickness == "*" {
			thickness = domain.WildcardThickness
		}

		rules = append(rules, domain.PricingRule{
			Thickness: thickness,
			RangeLow:  re.From,
			RangeHigh: re.To,
			UnitPrice: re.Price,
		})
	}
	return rules, nil
}
