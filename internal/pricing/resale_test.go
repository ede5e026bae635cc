package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/errors"
)

func TestComputeResaleBreakdown(t *testing.T) {
	tax := catalog.DefaultTaxConfig()

	r, err := ComputeResale(1000, 5, tax)
	require.NoError(t, err)

	assert.InDelta(t, 5000, r.CostLocal, 1e-6)
	assert.InDelta(t, 750, r.IncomeTaxAmount, 1e-6)
	assert.InDelta(t, 19, r.FinancialTaxAmount, 1e-6)
	assert.InDelta(t, 125, r.FixedFeeLocal, 1e-6)
	assert.InDelta(t, 894, r.ImportTaxTotal, 1e-6)
	assert.InDelta(t, 5894, r.CostWithImportTaxes, 1e-6)
	assert.InDelta(t, 21.93, r.CommercializationRate, 1e-9)

	// grossed up: the cost is what is left after taxes and margin on the price
	assert.InDelta(t, 5894/(1-0.4193), r.SellingPrice, 1e-6)
	assert.InDelta(t, r.SellingPrice*0.2193, r.CommercializationAmount, 1e-6)
	assert.InDelta(t, 20, r.MarginPercent, 1e-9)
	assert.Equal(t, 20.0, r.TargetMargin)
}

func TestComputeResaleIdentityHolds(t *testing.T) {
	base := catalog.DefaultTaxConfig()

	for _, amount := range []float64{0, 0.01, 1, 1368, 99_999.99} {
		for _, rate := range []float64{0.5, 1, 5.42, 120} {
			for _, margin := range []float64{0, 10, 35, 78} {
				tax := base
				tax.TargetMargin = margin

				r, err := ComputeResale(amount, rate, tax)
				require.NoError(t, err)

				sum := r.CostWithImportTaxes + r.CommercializationAmount + r.MarginAmount
				assert.InDelta(t, r.SellingPrice, sum, 1e-6)
				assert.GreaterOrEqual(t, r.SellingPrice, r.CostWithImportTaxes)
			}
		}
	}
}

func TestComputeResaleRejectsInvalidInput(t *testing.T) {
	tax := catalog.DefaultTaxConfig()

	_, err := ComputeResale(100, 0, tax)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidExchangeRate))

	_, err = ComputeResale(100, -3, tax)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidExchangeRate))

	tax.TargetMargin = 80 // 21.93 + 80 >= 100
	_, err = ComputeResale(100, 5, tax)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTaxConfiguration))

	tax.Commercialization = catalog.CommercializationTaxes{IncomeTax: 50}
	tax.TargetMargin = 50 // exactly 100
	_, err = ComputeResale(100, 5, tax)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTaxConfiguration))
}

func TestFormatMoney(t *testing.T) {
	usd := catalog.Currency{Code: "USD", Symbol: "$", Locale: "en-US"}
	brl := catalog.Currency{Code: "BRL", Symbol: "R$", Locale: "pt-BR"}

	tests := []struct {
		name string
		v    float64
		cur  catalog.Currency
		want string
	}{
		{"zero", 0, usd, "$0.00"},
		{"thousands", 1368, usd, "$1,368.00"},
		{"cents", 7.6, usd, "$7.60"},
		{"negative", -72.5, usd, "-$72.50"},
		{"millions pt-BR", 1234567.891, brl, "R$ 1.234.567,89"},
		{"hundreds pt-BR", 999.999, brl, "R$ 1.000,00"},
		{"negative pt-BR", -1500.5, brl, "-R$ 1.500,50"},
		{"unknown locale", 1500.5, catalog.Currency{Code: "EUR", Symbol: "€"}, "€1,500.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.v, tt.cur))
		})
	}
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 2.68, RoundCents(2.675))
	assert.Equal(t, 208.8, RoundCents(208.79999999999998))
	assert.Equal(t, -1.01, RoundCents(-1.005))
}
