package persistence

import (
	"time"

	"github.com/volari/license-quoter/internal/pricing"
)

// Storage keys
const (
	KeyCurrentQuote = "clickup_current_quote"
	KeyHistory      = "clickup_quotes_history"
	KeyCurrency     = "clickup_currency"
	KeyExchangeRate = "clickup_exchange_rate"
)

// HistoryCapacity is the number of saved quotes kept, most recent first
const HistoryCapacity = 50

// Snapshot is the persisted working quote
type Snapshot struct {
	Items     []pricing.LineItem `json:"items"`
	Counter   int                `json:"counter"` // next item id
	Timestamp time.Time          `json:"timestamp"`
}

// SavedQuote is a named history entry
type SavedQuote struct {
	ID        int64              `json:"id"` // creation time in epoch milliseconds
	Name      string             `json:"name"`
	Items     []pricing.LineItem `json:"items"`
	Total     float64            `json:"total"`
	Timestamp time.Time          `json:"timestamp"`
	ItemCount int                `json:"itemCount"`
}

// NextCounter returns the id the next item appended to items should get
func NextCounter(items []pricing.LineItem) int {
	max := 0
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}
