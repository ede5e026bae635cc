package catalog

// Default returns the built-in reseller catalog
func Default() *Catalog {
	c := &Catalog{
		Company: Company{
			Name:    "Volari",
			Tagline: "Revenda Autorizada ClickUp",
		},
		Currency: defaultCurrencies(),
		Licenses: []Product{
			{ID: "unlimited", Name: "Unlimited", UnitPrice: 8, Description: "Equipes pequenas e médias"},
			{ID: "business", Name: "Business", UnitPrice: 12, Description: "Equipes em crescimento"},
			{ID: "businessPlus", Name: "Business Plus", UnitPrice: 19, Description: "Equipes avançadas com recursos premium"},
			{ID: "enterprise", Name: "Enterprise", UnitPrice: 35, Description: "Grandes organizações"},
		},
		Addons: []Product{
			{ID: "brainAI", Name: "Brain AI", UnitPrice: 5, Description: "Assistente inteligente com IA para automação"},
			{ID: "notekerAI", Name: "Noteker AI", UnitPrice: 3, Description: "Transcrição e anotações automáticas"},
		},
		ContractDurations: []ContractDuration{
			{ID: "annual1", Name: "1 Ano", Multiplier: 1.0, Months: 12, DiscountPercent: 0},
			{ID: "annual2", Name: "2 Anos", Multiplier: 0.90, Months: 24, DiscountPercent: 10},
			{ID: "annual3", Name: "3 Anos", Multiplier: 0.80, Months: 36, DiscountPercent: 20},
		},
		QuantityDiscounts: defaultQuantityTiers(),
		Tax:               DefaultTaxConfig(),
	}
	c.index()
	return c
}

func defaultQuantityTiers() []QuantityTier {
	return []QuantityTier{
		{Min: 1, Max: 10, DiscountPercent: 0},
		{Min: 11, Max: 25, DiscountPercent: 5},
		{Min: 26, Max: 50, DiscountPercent: 10},
		{Min: 51, Max: 100, DiscountPercent: 15},
		{Min: 101, Max: 0, DiscountPercent: 20},
	}
}

func defaultCurrencies() Currencies {
	return Currencies{
		Origin: Currency{Code: "USD", Symbol: "$", Locale: "en-US"},
		Resale: Currency{Code: "BRL", Symbol: "R$", Locale: "pt-BR"},
	}
}

// DefaultTaxConfig returns the Brazilian import and resale parameters
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		Import: ImportTaxes{
			IncomeTaxRate:    15,   // IRRF on software remittance
			FinancialTaxRate: 0.38, // IOF
			FixedFeeUSD:      25,
		},
		Commercialization: CommercializationTaxes{
			IncomeTax:          4.8,  // IRPJ, presumed profit
			SocialContribution: 2.88, // CSLL
			ServiceTax:         5,    // ISS
			PIS:                1.65,
			COFINS:             7.6,
		},
		TargetMargin: 20,
	}
}
