package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/errors"
)

const tolerance = 1e-9

func TestQuantityDiscountBoundaries(t *testing.T) {
	tiers := catalog.Default().QuantityDiscounts

	tests := []struct {
		quantity int
		want     float64
	}{
		{1, 0},
		{10, 0},
		{11, 5},
		{25, 5},
		{26, 10},
		{50, 10},
		{51, 15},
		{100, 15},
		{101, 20},
		{1_000_000, 20},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QuantityDiscount(tiers, tt.quantity), "quantity %d", tt.quantity)
	}
}

func TestQuantityDiscountExactlyOneTier(t *testing.T) {
	tiers := catalog.Default().QuantityDiscounts
	for q := 1; q <= 500; q++ {
		matches := 0
		for _, tier := range tiers {
			if tier.Contains(q) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "quantity %d", q)
	}
}

func TestCombineDiscounts(t *testing.T) {
	assert.InDelta(t, 14.5, CombineDiscounts(5, 10), tolerance)
	assert.InDelta(t, 75, CombineDiscounts(50, 50), tolerance)
	assert.InDelta(t, 100, CombineDiscounts(100, 30), tolerance)
	assert.Equal(t, 0.0, CombineDiscounts(0, 0))

	for a := 0.0; a <= 100; a += 2.5 {
		for b := 0.0; b <= 100; b += 2.5 {
			combined := CombineDiscounts(a, b)
			assert.InDelta(t, combined, CombineDiscounts(b, a), tolerance)
			assert.LessOrEqual(t, combined, 100+tolerance)
			assert.GreaterOrEqual(t, combined, a-tolerance)
			assert.GreaterOrEqual(t, combined, b-tolerance)
		}
	}
}

func TestPriceItemOriginCurrency(t *testing.T) {
	calc := NewCalculator(catalog.Default())

	item, err := calc.PriceItem(ItemRequest{
		Kind:       catalog.KindLicense,
		ProductID:  "unlimited",
		Quantity:   15,
		DurationID: "annual1",
	}, OriginContext())
	require.NoError(t, err)

	assert.Equal(t, 0, item.ID)
	assert.Equal(t, "Unlimited", item.Name)
	assert.Equal(t, "unlimited", item.ProductID)
	assert.Equal(t, catalog.KindLicense, item.Kind)
	assert.Equal(t, "annual1", item.Contract.ID)
	assert.Equal(t, 5.0, item.QuantityDiscount)
	assert.InDelta(t, 1440, item.BaseTotal, tolerance)
	assert.InDelta(t, 1440, item.Subtotal, tolerance)
	assert.InDelta(t, 5, item.TotalDiscountRate, tolerance)
	assert.InDelta(t, 72, item.DiscountAmount, tolerance)
	assert.InDelta(t, 1368, item.TotalUSD, tolerance)
	assert.InDelta(t, 1368, item.Total, tolerance)
	assert.InDelta(t, 114, item.MonthlyAverage, tolerance)
	assert.InDelta(t, 7.6, item.PerUserPerMonth, tolerance)
	assert.Nil(t, item.Resale)
	assert.Equal(t, ModeOrigin, item.Currency)
}

func TestPriceItemCompoundsCommercialDiscount(t *testing.T) {
	calc := NewCalculator(catalog.Default())

	item, err := calc.PriceItem(ItemRequest{
		Kind:            catalog.KindLicense,
		ProductID:       "unlimited",
		Quantity:        15,
		DurationID:      "annual1",
		DiscountPercent: 10,
	}, OriginContext())
	require.NoError(t, err)

	assert.InDelta(t, 14.5, item.TotalDiscountRate, tolerance)
	assert.InDelta(t, 208.8, item.DiscountAmount, tolerance)
	assert.InDelta(t, 1231.2, item.Total, tolerance)
	assert.Equal(t, 10.0, item.CommercialDiscount)
}

func TestPriceItemAddonWithMultiYearContract(t *testing.T) {
	calc := NewCalculator(catalog.Default())

	item, err := calc.PriceItem(ItemRequest{
		Kind:       catalog.KindAddon,
		ProductID:  "brainAI",
		Quantity:   30,
		DurationID: "annual2",
	}, OriginContext())
	require.NoError(t, err)

	// 5 * 30 * 0.9 * 24 = 3240, 10% quantity discount
	assert.InDelta(t, 3240, item.BaseTotal, tolerance)
	assert.InDelta(t, 324, item.DiscountAmount, tolerance)
	assert.InDelta(t, 2916, item.Total, tolerance)
	assert.InDelta(t, 121.5, item.MonthlyAverage, tolerance)
	assert.InDelta(t, 4.05, item.PerUserPerMonth, tolerance)
	assert.Equal(t, catalog.KindAddon, item.Kind)
}

func TestPriceItemResaleMode(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)

	item, err := calc.PriceItem(ItemRequest{
		Kind:       catalog.KindLicense,
		ProductID:  "unlimited",
		Quantity:   15,
		DurationID: "annual1",
	}, CurrencyContext{Mode: ModeResale, ExchangeRate: 5})
	require.NoError(t, err)
	require.NotNil(t, item.Resale)

	assert.InDelta(t, 1368, item.TotalUSD, tolerance)
	assert.InDelta(t, 1368, item.Resale.OriginUSD, tolerance)
	assert.InDelta(t, item.Resale.SellingPrice, item.Total, tolerance)
	assert.InDelta(t, item.Total/12, item.MonthlyAverage, tolerance)
	assert.InDelta(t, item.Total/12/15, item.PerUserPerMonth, tolerance)
	assert.Equal(t, ModeResale, item.Currency)
	assert.Greater(t, item.Total, item.TotalUSD*5)
}

func TestPriceItemErrors(t *testing.T) {
	calc := NewCalculator(catalog.Default())
	valid := ItemRequest{Kind: catalog.KindLicense, ProductID: "business", Quantity: 5, DurationID: "annual1"}

	tests := []struct {
		name   string
		mutate func(r *ItemRequest)
		cc     CurrencyContext
		code   string
	}{
		{"unknown license", func(r *ItemRequest) { r.ProductID = "gold" }, OriginContext(), errors.CodeUnknownIdentifier},
		{"license id as addon", func(r *ItemRequest) { r.Kind = catalog.KindAddon }, OriginContext(), errors.CodeUnknownIdentifier},
		{"unknown duration", func(r *ItemRequest) { r.DurationID = "forever" }, OriginContext(), errors.CodeUnknownIdentifier},
		{"zero quantity", func(r *ItemRequest) { r.Quantity = 0 }, OriginContext(), errors.CodeValidation},
		{"discount above 100", func(r *ItemRequest) { r.DiscountPercent = 101 }, OriginContext(), errors.CodeValidation},
		{"negative discount", func(r *ItemRequest) { r.DiscountPercent = -1 }, OriginContext(), errors.CodeValidation},
		{"resale without rate", func(r *ItemRequest) {}, CurrencyContext{Mode: ModeResale}, errors.CodeInvalidExchangeRate},
		{"unknown currency", func(r *ItemRequest) {}, CurrencyContext{Mode: "EUR", ExchangeRate: 1}, errors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			item, err := calc.PriceItem(req, tt.cc)
			assert.Nil(t, item)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLineItemRequestAndClone(t *testing.T) {
	calc := NewCalculator(catalog.Default())
	req := ItemRequest{Kind: catalog.KindAddon, ProductID: "notekerAI", Quantity: 3, DurationID: "annual3", DiscountPercent: 7.5}

	item, err := calc.PriceItem(req, CurrencyContext{Mode: ModeResale, ExchangeRate: 5.2})
	require.NoError(t, err)
	assert.Equal(t, req, item.Request())

	clone := item.Clone()
	clone.Resale.SellingPrice = 0
	assert.NotEqual(t, 0.0, item.Resale.SellingPrice)
}
