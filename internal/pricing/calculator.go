package pricing

import (
	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
)

// Calculator prices product selections against a catalog
type Calculator struct {
	catalog *catalog.Catalog
}

// NewCalculator creates a new calculator over cat
func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{
		catalog: cat,
	}
}

// Catalog returns the catalog prices are looked up in
func (c *Calculator) Catalog() *catalog.Catalog {
	return c.catalog
}

// QuantityDiscount returns the automatic discount for a seat count
func (c *Calculator) QuantityDiscount(quantity int) float64 {
	return QuantityDiscount(c.catalog.QuantityDiscounts, quantity)
}

// ValidateCurrency checks that cc can be priced under
func ValidateCurrency(cc CurrencyContext) error {
	if !cc.Mode.Valid() {
		return errors.ErrValidation("currency", "'"+string(cc.Mode)+"' is not supported")
	}
	if cc.Mode == ModeResale && cc.ExchangeRate <= 0 {
		return errors.ErrInvalidExchangeRate(cc.ExchangeRate)
	}
	return nil
}

// PriceItem computes the full breakdown for one selection. The returned
// item has ID 0; the quote that takes ownership assigns the identifier.
func (c *Calculator) PriceItem(req ItemRequest, cc CurrencyContext) (*LineItem, error) {
	if req.Quantity < 1 {
		return nil, errors.ErrValidation("quantity", "must be at least 1")
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, errors.ErrValidation("discountPercent", "must be between 0 and 100")
	}
	if err := ValidateCurrency(cc); err != nil {
		return nil, err
	}

	product, err := c.catalog.Product(req.Kind, req.ProductID)
	if err != nil {
		return nil, err
	}
	contract, err := c.catalog.Duration(req.DurationID)
	if err != nil {
		return nil, err
	}

	monthlyPrice := product.UnitPrice * float64(req.Quantity) * contract.Multiplier
	baseTotal := monthlyPrice * float64(contract.Months)
	subtotal := baseTotal

	quantityDiscount := c.QuantityDiscount(req.Quantity)
	commercialDiscount := req.DiscountPercent
	totalDiscountRate := CombineDiscounts(quantityDiscount, commercialDiscount)
	discountAmount := subtotal * totalDiscountRate / 100

	totalUSD := subtotal - discountAmount
	total := totalUSD

	var resale *ResaleBreakdown
	if cc.Mode == ModeResale {
		resale, err = ComputeResale(totalUSD, cc.ExchangeRate, c.catalog.Tax)
		if err != nil {
			return nil, err
		}
		total = resale.SellingPrice
	}

	monthlyAverage := total / float64(contract.Months)
	perUserPerMonth := monthlyAverage / float64(req.Quantity)

	item := &LineItem{
		Kind:               product.Kind,
		ProductID:          product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Contract:           contract,
		Quantity:           req.Quantity,
		BaseTotal:          baseTotal,
		Subtotal:           subtotal,
		QuantityDiscount:   quantityDiscount,
		CommercialDiscount: commercialDiscount,
		TotalDiscountRate:  totalDiscountRate,
		DiscountAmount:     discountAmount,
		TotalUSD:           totalUSD,
		Total:              total,
		MonthlyAverage:     monthlyAverage,
		PerUserPerMonth:    perUserPerMonth,
		Resale:             resale,
		Currency:           cc.Mode,
	}

	logger.Debug("Item priced", logger.Fields{
		"product_id":          product.ID,
		"kind":                product.Kind,
		"contract":            contract.ID,
		"quantity":            req.Quantity,
		"total_discount_rate": totalDiscountRate,
		"total_usd":           totalUSD,
		"total":               total,
		"currency":            cc.Mode,
	})

	return item, nil
}
