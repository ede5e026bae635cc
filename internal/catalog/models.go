package catalog

// Kind distinguishes license tiers from add-ons
type Kind string

const (
	KindLicense Kind = "license"
	KindAddon   Kind = "addon"
)

// Valid reports whether k is a known product kind
func (k Kind) Valid() bool {
	return k == KindLicense || k == KindAddon
}

// Product is a license tier or an add-on priced per user per month in USD
type Product struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	UnitPrice   float64 `yaml:"price" json:"price"`
	Kind        Kind    `yaml:"-" json:"kind"`
}

// ContractDuration is a commitment length with its price multiplier
type ContractDuration struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Months     int     `yaml:"months" json:"months"`
	// DiscountPercent is the nominal discount shown next to the duration;
	// pricing uses Multiplier.
	DiscountPercent float64 `yaml:"discount" json:"discount"`
}

// QuantityTier maps a seat range to an automatic discount. Max == 0 is unbounded.
type QuantityTier struct {
	Min             int     `yaml:"min" json:"min"`
	Max             int     `yaml:"max" json:"max"`
	DiscountPercent float64 `yaml:"discount" json:"discount"`
}

// Contains reports whether quantity falls inside the tier
func (t QuantityTier) Contains(quantity int) bool {
	return quantity >= t.Min && (t.Max == 0 || quantity <= t.Max)
}

// ImportTaxes are charged on the local-currency cost of an imported license
type ImportTaxes struct {
	IncomeTaxRate    float64 `yaml:"incomeTax" json:"incomeTax"`       // withholding income tax, %
	FinancialTaxRate float64 `yaml:"financialTax" json:"financialTax"` // financial transaction tax, %
	FixedFeeUSD      float64 `yaml:"fixedFeeUSD" json:"fixedFeeUSD"`   // per shipment
}

// CommercializationTaxes are charged on the resale price
type CommercializationTaxes struct {
	IncomeTax          float64 `yaml:"incomeTax" json:"incomeTax"`
	SocialContribution float64 `yaml:"socialContribution" json:"socialContribution"`
	ServiceTax         float64 `yaml:"serviceTax" json:"serviceTax"`
	PIS                float64 `yaml:"pis" json:"pis"`
	COFINS             float64 `yaml:"cofins" json:"cofins"`
}

// TaxConfig holds the resale tax and margin parameters
type TaxConfig struct {
	Import            ImportTaxes           `yaml:"import" json:"import"`
	Commercialization CommercializationTaxes `yaml:"commercialization" json:"commercialization"`
	TargetMargin      float64               `yaml:"targetMargin" json:"targetMargin"`
}

// CommercializationRate is the sum of the five commercialization rates
func (t TaxConfig) CommercializationRate() float64 {
	c := t.Commercialization
	return c.IncomeTax + c.SocialContribution + c.ServiceTax + c.PIS + c.COFINS
}

// IsZero reports whether no tax parameter was set
func (t TaxConfig) IsZero() bool {
	return t == TaxConfig{}
}

// Currency describes how an amount is labelled
type Currency struct {
	Code   string `yaml:"code" json:"code"`
	Symbol string `yaml:"symbol" json:"symbol"`
	Locale string `yaml:"locale" json:"locale"`
}

// Currencies groups the origin (USD) and resale currencies
type Currencies struct {
	Origin Currency `yaml:"origin" json:"origin"`
	Resale Currency `yaml:"resale" json:"resale"`
}

// Company is the reseller shown on quote headers
type Company struct {
	Name    string `yaml:"name" json:"name"`
	Tagline string `yaml:"tagline" json:"tagline"`
}

// Catalog is the read-only reference data all pricing depends on
type Catalog struct {
	Company           Company            `yaml:"company" json:"company"`
	Currency          Currencies         `yaml:"currency" json:"currency"`
	Licenses          []Product          `yaml:"licenses" json:"licenses"`
	Addons            []Product          `yaml:"addons" json:"addons"`
	ContractDurations []ContractDuration `yaml:"contractDurations" json:"contractDurations"`
	QuantityDiscounts []QuantityTier     `yaml:"quantityDiscounts" json:"quantityDiscounts"`
	Tax               TaxConfig          `yaml:"tax" json:"tax"`

	licenses  map[string]Product
	addons    map[string]Product
	durations map[string]ContractDuration
}
