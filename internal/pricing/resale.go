package pricing

import (
	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/errors"
)

// ComputeResale converts a USD cost into a local selling price.
//
// Import taxes and the fixed fee are charged on the converted cost. The
// selling price is then grossed up so that commercialization taxes and the
// target margin, both stated as a share of the selling price, are covered:
//
//	sellingPrice = costWithImportTaxes / (1 - (commercialization + margin) / 100)
func ComputeResale(originUSD, exchangeRate float64, tax catalog.TaxConfig) (*ResaleBreakdown, error) {
	if exchangeRate <= 0 {
		return nil, errors.ErrInvalidExchangeRate(exchangeRate)
	}
	commercializationRate := tax.CommercializationRate()
	denominator := 1 - (commercializationRate+tax.TargetMargin)/100
	if denominator <= 0 {
		return nil, errors.ErrInvalidTaxConfiguration(commercializationRate, tax.TargetMargin)
	}

	costLocal := originUSD * exchangeRate
	incomeTax := costLocal * tax.Import.IncomeTaxRate / 100
	financialTax := costLocal * tax.Import.FinancialTaxRate / 100
	fixedFeeLocal := tax.Import.FixedFeeUSD * exchangeRate
	costWithImportTaxes := costLocal + incomeTax + financialTax + fixedFeeLocal

	sellingPrice := costWithImportTaxes / denominator
	commercializationAmount := sellingPrice * commercializationRate / 100
	marginAmount := sellingPrice - costWithImportTaxes - commercializationAmount

	var marginPercent float64
	if sellingPrice != 0 {
		marginPercent = marginAmount / sellingPrice * 100
	}

	return &ResaleBreakdown{
		OriginUSD:               originUSD,
		ExchangeRate:            exchangeRate,
		CostLocal:               costLocal,
		IncomeTaxAmount:         incomeTax,
		FinancialTaxAmount:      financialTax,
		FixedFeeLocal:           fixedFeeLocal,
		ImportTaxTotal:          incomeTax + financialTax + fixedFeeLocal,
		CostWithImportTaxes:     costWithImportTaxes,
		CommercializationRate:   commercializationRate,
		CommercializationAmount: commercializationAmount,
		SellingPrice:            sellingPrice,
		MarginAmount:            marginAmount,
		MarginPercent:           marginPercent,
		TargetMargin:            tax.TargetMargin,
	}, nil
}
