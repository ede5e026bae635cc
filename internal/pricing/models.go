package pricing

import "github.com/volari/license-quoter/internal/catalog"

// CurrencyMode selects how a line item total is expressed
type CurrencyMode string

const (
	// ModeOrigin keeps totals in the USD price list currency
	ModeOrigin CurrencyMode = "USD"
	// ModeResale converts to BRL with import taxes, commercialization taxes and margin
	ModeResale CurrencyMode = "BRL"
)

// Valid reports whether m is a supported currency mode
func (m CurrencyMode) Valid() bool {
	return m == ModeOrigin || m == ModeResale
}

// CurrencyContext is the currency assumption items are priced under
type CurrencyContext struct {
	Mode         CurrencyMode `json:"mode"`
	ExchangeRate float64      `json:"exchangeRate"` // local currency per USD; required in resale mode
}

// OriginContext is the USD context
func OriginContext() CurrencyContext {
	return CurrencyContext{Mode: ModeOrigin, ExchangeRate: 1}
}

// ItemRequest is one product selection to be priced
type ItemRequest struct {
	Kind            catalog.Kind `json:"productType" validate:"required,oneof=license addon"`
	ProductID       string       `json:"productId" validate:"required"`
	Quantity        int          `json:"quantity" validate:"gte=1"`
	DurationID      string       `json:"durationId" validate:"required"`
	DiscountPercent float64      `json:"discountPercent" validate:"gte=0,lte=100"`
}

// LineItem is the priced result of one product selection
type LineItem struct {
	ID          int                      `json:"id"`
	Kind        catalog.Kind             `json:"type"`
	ProductID   string                   `json:"productId"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Contract    catalog.ContractDuration `json:"contract"`
	Quantity    int                      `json:"quantity"`

	BaseTotal          float64 `json:"baseTotal"`
	Subtotal           float64 `json:"subtotal"`
	QuantityDiscount   float64 `json:"quantityDiscount"`   // percent
	CommercialDiscount float64 `json:"commercialDiscount"` // percent
	TotalDiscountRate  float64 `json:"totalDiscountRate"`  // percent, compounded
	DiscountAmount     float64 `json:"discountAmount"`
	TotalUSD           float64 `json:"totalUSD"`
	Total              float64 `json:"total"` // in Currency
	MonthlyAverage     float64 `json:"monthlyAverage"`
	PerUserPerMonth    float64 `json:"perUserPerMonth"`

	Resale   *ResaleBreakdown `json:"resale,omitempty"`
	Currency CurrencyMode     `json:"currency"`
}

// Request recovers the inputs the item was priced from
func (i LineItem) Request() ItemRequest {
	return ItemRequest{
		Kind:            i.Kind,
		ProductID:       i.ProductID,
		Quantity:        i.Quantity,
		DurationID:      i.Contract.ID,
		DiscountPercent: i.CommercialDiscount,
	}
}

// Clone returns a deep copy of the item
func (i LineItem) Clone() LineItem {
	out := i
	if i.Resale != nil {
		r := *i.Resale
		out.Resale = &r
	}
	return out
}

// CloneItems deep-copies a slice of items
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for idx, it := range items {
		out[idx] = it.Clone()
	}
	return out
}

// ResaleBreakdown itemizes the conversion of a USD cost into a local selling price
type ResaleBreakdown struct {
	OriginUSD               float64 `json:"originUSD"`
	ExchangeRate            float64 `json:"exchangeRate"`
	CostLocal               float64 `json:"costLocal"`
	IncomeTaxAmount         float64 `json:"incomeTaxAmount"`
	FinancialTaxAmount      float64 `json:"financialTaxAmount"`
	FixedFeeLocal           float64 `json:"fixedFeeLocal"`
	ImportTaxTotal          float64 `json:"importTaxTotal"`
	CostWithImportTaxes     float64 `json:"costWithImportTaxes"`
	CommercializationRate   float64 `json:"commercializationRate"`
	CommercializationAmount float64 `json:"commercializationAmount"`
	SellingPrice            float64 `json:"sellingPrice"`
	MarginAmount            float64 `json:"marginAmount"`
	MarginPercent           float64 `json:"marginPercent"` // margin / selling price
	TargetMargin            float64 `json:"targetMargin"`  // configured target
}
