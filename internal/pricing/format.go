package pricing

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/volari/license-quoter/internal/catalog"
)

// RoundCents rounds v half away from zero to two decimal places
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatMoney renders v with the currency symbol and the locale's separators,
// e.g. "$1,368.00" or "R$ 1.368,00".
func FormatMoney(v float64, cur catalog.Currency) string {
	tag, err := language.Parse(cur.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	d := decimal.NewFromFloat(v).Round(2)
	amount, _ := d.Abs().Float64()

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	symbol := cur.Symbol
	if utf8.RuneCountInString(symbol) > 1 {
		symbol += " "
	}

	p := message.NewPrinter(tag)
	return sign + symbol + p.Sprint(number.Decimal(amount, number.Scale(2)))
}
