package catalog

import (
	"fmt"

	"github.com/volari/license-quoter/internal/errors"
)

// Validate checks the catalog invariants: unique positive-priced products,
// usable durations, quantity tiers covering [1, ∞) without gaps or overlaps,
// and a tax configuration whose gross-up denominator stays positive.
func (c *Catalog) Validate() error {
	if len(c.Licenses) == 0 && len(c.Addons) == 0 {
		return errors.ErrInvalidCatalog("no products configured", nil)
	}
	if err := validateProducts("license", c.Licenses); err != nil {
		return err
	}
	if err := validateProducts("addon", c.Addons); err != nil {
		return err
	}
	if err := validateDurations(c.ContractDurations); err != nil {
		return err
	}
	if err := ValidateTiers(c.QuantityDiscounts); err != nil {
		return err
	}
	return ValidateTax(c.Tax)
}

func validateProducts(kind string, products []Product) error {
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID == "" {
			return errors.ErrInvalidCatalog(kind+" without id", nil)
		}
		if seen[p.ID] {
			return errors.ErrInvalidCatalog(fmt.Sprintf("duplicate %s '%s'", kind, p.ID), nil)
		}
		seen[p.ID] = true
		if p.UnitPrice <= 0 {
			return errors.ErrInvalidCatalog(fmt.Sprintf("%s '%s' must have a positive price", kind, p.ID), nil)
		}
	}
	return nil
}

func validateDurations(durations []ContractDuration) error {
	if len(durations) == 0 {
		return errors.ErrInvalidCatalog("no contract durations configured", nil)
	}
	seen := make(map[string]bool, len(durations))
	for _, d := range durations {
		if d.ID == "" {
			return errors.ErrInvalidCatalog("contract duration without id", nil)
		}
		if seen[d.ID] {
			return errors.ErrInvalidCatalog(fmt.Sprintf("duplicate contract duration '%s'", d.ID), nil)
		}
		seen[d.ID] = true
		if d.Months <= 0 {
			return errors.ErrInvalidCatalog(fmt.Sprintf("contract duration '%s' must last at least one month", d.ID), nil)
		}
		if d.Multiplier <= 0 {
			return errors.ErrInvalidCatalog(fmt.Sprintf("contract duration '%s' must have a positive multiplier", d.ID), nil)
		}
	}
	return nil
}

// ValidateTiers checks that tiers are ordered, contiguous from 1, and end
// with a single unbounded tier, so exactly one tier matches any quantity ≥ 1.
func ValidateTiers(tiers []QuantityTier) error {
	if len(tiers) == 0 {
		return errors.ErrInvalidCatalog("no quantity discount tiers configured", nil)
	}
	next := 1
	for i, t := range tiers {
		if t.Min != next {
			return errors.ErrInvalidCatalog(fmt.Sprintf("quantity tier %d starts at %d, expected %d", i, t.Min, next), nil)
		}
		if t.DiscountPercent < 0 || t.DiscountPercent > 100 {
			return errors.ErrInvalidCatalog(fmt.Sprintf("quantity tier %d discount must be within 0-100", i), nil)
		}
		last := i == len(tiers)-1
		if t.Max == 0 {
			if !last {
				return errors.ErrInvalidCatalog(fmt.Sprintf("quantity tier %d is unbounded but not last", i), nil)
			}
			return nil
		}
		if t.Max < t.Min {
			return errors.ErrInvalidCatalog(fmt.Sprintf("quantity tier %d ends before it starts", i), nil)
		}
		next = t.Max + 1
	}
	return errors.ErrInvalidCatalog("last quantity tier must be unbounded (max: 0)", nil)
}

// ValidateTax rejects negative rates and configurations where
// commercialization taxes plus target margin reach 100%.
func ValidateTax(t TaxConfig) error {
	rates := map[string]float64{
		"import.incomeTax":                     t.Import.IncomeTaxRate,
		"import.financialTax":                  t.Import.FinancialTaxRate,
		"import.fixedFeeUSD":                   t.Import.FixedFeeUSD,
		"commercialization.incomeTax":          t.Commercialization.IncomeTax,
		"commercialization.socialContribution": t.Commercialization.SocialContribution,
		"commercialization.serviceTax":         t.Commercialization.ServiceTax,
		"commercialization.pis":                t.Commercialization.PIS,
		"commercialization.cofins":             t.Commercialization.COFINS,
		"targetMargin":                         t.TargetMargin,
	}
	for name, v := range rates {
		if v < 0 {
			return errors.ErrInvalidCatalog(fmt.Sprintf("tax parameter %s must not be negative", name), nil)
		}
	}
	if t.CommercializationRate()+t.TargetMargin >= 100 {
		return errors.ErrInvalidTaxConfiguration(t.CommercializationRate(), t.TargetMargin)
	}
	return nil
}
