package quotes

import (
	"github.com/volari/license-quoter/internal/pricing"
)

// Quote is the working collection of priced items
type Quote struct {
	Items    []pricing.LineItem      `json:"items"`
	Counter  int                     `json:"counter"` // id the next item gets
	Currency pricing.CurrencyContext `json:"currency"`
}

// Subtotal sums the pre-discount subtotals
func (q Quote) Subtotal() float64 {
	var sum float64
	for _, it := range q.Items {
		sum += it.Subtotal
	}
	return sum
}

// Total sums the final totals in the quote currency
func (q Quote) Total() float64 {
	var sum float64
	for _, it := range q.Items {
		sum += it.Total
	}
	return sum
}

// Clone returns a deep copy of the quote
func (q Quote) Clone() Quote {
	out := q
	out.Items = pricing.CloneItems(q.Items)
	if out.Items == nil {
		out.Items = []pricing.LineItem{}
	}
	return out
}
