package loader

import (
	"testing"

	"github.com/MahmoudHooda2019/alswaife/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredCatalog(t *testing.T) {
	products, err := Parse([]byte(`{
		"products": [
			{"name": "marble", "rules": [
				{"thickness": "2cm", "from": 0, "to": 100, "price": 10},
				{"thickness": "2cm", "from": 100, "price": 8},
				{"thickness": "*", "from": 0, "price": 12}
			]}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "marble", p.Code)
	require.Len(t, p.Rules, 3)

	assert.Equal(t, "2cm", p.Rules[0].Thickness)
	require.NotNil(t, p.Rules[0].RangeHigh)
	assert.True(t, p.Rules[0].RangeHigh.Equal(decimal.NewFromInt(100)))

	assert.Nil(t, p.Rules[1].RangeHigh, "missing 'to' means open-ended")
	assert.Equal(t, domain.WildcardThickness, p.Rules[2].Thickness, "'*' normalizes to wildcard")
}

func TestParseLegacyFlatCatalog(t *testing.T) {
	products, err := Parse([]byte(`{"granite": 15, "marble": 10}`))
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Flat form is sorted by name for determinism.
	assert.Equal(t, "granite", products[0].Code)
	assert.Equal(t, "marble", products[1].Code)

	require.Len(t, products[1].Rules, 1)
	rule := products[1].Rules[0]
	assert.Equal(t, domain.WildcardThickness, rule.Thickness)
	assert.Nil(t, rule.RangeHigh)
	assert.True(t, rule.UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestParseLegacyListCatalog(t *testing.T) {
	products, err := Parse([]byte(`[{"name": "basalt", "price": 7.5}]`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "basalt", products[0].Code)
	assert.True(t, products[0].Rules[0].UnitPrice.Equal(decimal.RequireFromString("7.5")))
}

func TestParseRejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"empty file":       ``,
		"empty name":       `{"products": [{"name": " ", "rules": [{"from": 0, "price": 1}]}]}`,
		"duplicate name":   `{"products": [{"name": "a", "price": 1}, {"name": "a", "price": 2}]}`,
		"negative price":   `{"products": [{"name": "a", "rules": [{"from": 0, "price": -1}]}]}`,
		"negative bound":   `{"products": [{"name": "a", "rules": [{"from": -5, "price": 1}]}]}`,
		"inverted range":   `{"products": [{"name": "a", "rules": [{"from": 100, "to": 50, "price": 1}]}]}`,
		"no rules":         `{"products": [{"name": "a"}]}`,
		"no products":      `{"products": []}`,
		"not a json value": `hello`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.ErrorIs(t, err, domain.ErrMalformedCatalog)
		})
	}
}

func TestParseRejectsPartiallyValidCatalog(t *testing.T) {
	_, err := Parse([]byte(`{
		"products": [
			{"name": "good", "rules": [{"from": 0, "price": 1}]},
			{"name": "bad", "rules": [{"from": 10, "to": 5, "price": 1}]}
		]
	}`))
	require.ErrorIs(t, err, domain.ErrMalformedCatalog)
}
