package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volari/license-quoter/internal/errors"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	lic, err := c.License("unlimited")
	require.NoError(t, err)
	assert.Equal(t, 8.0, lic.UnitPrice)
	assert.Equal(t, KindLicense, lic.Kind)

	addon, err := c.Product(KindAddon, "brainAI")
	require.NoError(t, err)
	assert.Equal(t, 5.0, addon.UnitPrice)
	assert.Equal(t, KindAddon, addon.Kind)

	d, err := c.Duration("annual3")
	require.NoError(t, err)
	assert.Equal(t, 36, d.Months)
	assert.Equal(t, 0.8, d.Multiplier)

	assert.InDelta(t, 21.93, c.Tax.CommercializationRate(), 1e-9)
}

func TestLookupUnknownIdentifier(t *testing.T) {
	c := Default()

	_, err := c.License("brainAI")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownIdentifier))

	_, err = c.Addon("enterprise")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownIdentifier))

	_, err = c.Duration("annual9")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownIdentifier))

	_, err = c.Product(Kind("bundle"), "unlimited")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownIdentifier))
}

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []QuantityTier
		wantErr bool
	}{
		{"canonical", defaultQuantityTiers(), false},
		{"single unbounded", []QuantityTier{{Min: 1, Max: 0}}, false},
		{"empty", nil, true},
		{"does not start at one", []QuantityTier{{Min: 2, Max: 0}}, true},
		{"gap", []QuantityTier{{Min: 1, Max: 10}, {Min: 12, Max: 0}}, true},
		{"overlap", []QuantityTier{{Min: 1, Max: 10}, {Min: 10, Max: 0}}, true},
		{"bounded top", []QuantityTier{{Min: 1, Max: 10}, {Min: 11, Max: 20}}, true},
		{"unbounded in the middle", []QuantityTier{{Min: 1, Max: 0}, {Min: 11, Max: 0}}, true},
		{"inverted range", []QuantityTier{{Min: 1, Max: 5}, {Min: 6, Max: 3}, {Min: 4, Max: 0}}, true},
		{"discount above 100", []QuantityTier{{Min: 1, Max: 0, DiscountPercent: 120}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTaxRejectsNonPositiveDenominator(t *testing.T) {
	tax := DefaultTaxConfig()
	tax.TargetMargin = 80

	err := ValidateTax(tax)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTaxConfiguration))

	tax.TargetMargin = 78
	assert.NoError(t, ValidateTax(tax))

	tax.Import.FixedFeeUSD = -1
	assert.True(t, errors.HasCode(ValidateTax(tax), errors.CodeInvalidCatalog))
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Acme Resale", c.Company.Name)
	assert.Len(t, c.Licenses, 2)

	pro, err := c.License("pro")
	require.NoError(t, err)
	assert.Equal(t, 20.0, pro.UnitPrice)
	assert.Equal(t, KindLicense, pro.Kind)

	monthly, err := c.Duration("monthly")
	require.NoError(t, err)
	assert.Equal(t, 1, monthly.Months)

	// sections omitted from the file come from the built-in catalog
	assert.Equal(t, DefaultTaxConfig(), c.Tax)
	assert.Equal(t, "BRL", c.Currency.Resale.Code)
	assert.Equal(t, "monthly", c.DefaultDuration().ID)
}

func TestLoadFileRejectsInvalidTax(t *testing.T) {
	_, err := LoadFile("testdata/bad_tax.yaml")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTaxConfiguration))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/missing.yaml")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidCatalog))
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Licenses, c.Licenses)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Licenses, c.Licenses)
	assert.Equal(t, Default().QuantityDiscounts, c.QuantityDiscounts)
	assert.Equal(t, Default().Tax, c.Tax)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("licenses: [unclosed"))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidCatalog))
}
