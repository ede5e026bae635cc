package pricing

import "github.com/volari/license-quoter/internal/catalog"

// QuantityDiscount returns the discount percent of the tier containing quantity.
// Tiers are expected to satisfy catalog.ValidateTiers; quantities below 1 get 0.
func QuantityDiscount(tiers []catalog.QuantityTier, quantity int) float64 {
	for _, t := range tiers {
		if t.Contains(quantity) {
			return t.DiscountPercent
		}
	}
	return 0
}

// CombineDiscounts compounds two percentage discounts: applying a% then b%
// equals a single a + b - a*b/100 discount.
func CombineDiscounts(a, b float64) float64 {
	return a + b - (a * b / 100)
}
