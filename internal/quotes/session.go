package quotes

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/persistence"
	"github.com/volari/license-quoter/internal/pricing"
	"github.com/volari/license-quoter/internal/validator"
)

// Session owns the working quote. Every operation holds the session lock, so
// recomputation never interleaves with adds or removes.
type Session struct {
	mu    sync.Mutex
	id    string
	calc  *pricing.Calculator
	gw    *persistence.Gateway
	log   *logger.Logger
	quote Quote

	notifier Notifier
}

// Notifier is told about quotes saved to history
type Notifier interface {
	QuoteSaved(ctx context.Context, sessionID string, saved persistence.SavedQuote) error
}

// Option configures a Session
type Option func(*Session)

// WithNotifier publishes every quote saved to history through n
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithDefaultCurrency sets the currency used when no preference is stored
func WithDefaultCurrency(cc pricing.CurrencyContext) Option {
	return func(s *Session) { s.quote.Currency = cc }
}

// Open restores the working quote and currency preference from gw. A missing
// or unreadable snapshot starts an empty quote.
func Open(ctx context.Context, calc *pricing.Calculator, gw *persistence.Gateway, opts ...Option) (*Session, error) {
	id := uuid.New().String()
	s := &Session{
		id:   id,
		calc: calc,
		gw:   gw,
		log:  logger.FromContext(ctx).With(logger.Fields{"session_id": id}),
		quote: Quote{
			Items:    []pricing.LineItem{},
			Counter:  1,
			Currency: pricing.OriginContext(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	cc, ok, err := gw.LoadCurrency(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		if cc.Mode == pricing.ModeResale && cc.ExchangeRate <= 0 {
			cc.ExchangeRate = s.quote.Currency.ExchangeRate
		}
		if pricing.ValidateCurrency(cc) == nil {
			s.quote.Currency = cc
		} else {
			s.log.Warn("Ignoring stored currency preference", logger.Fields{"currency": cc.Mode, "exchange_rate": cc.ExchangeRate})
		}
	}

	snap, err := gw.LoadCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		s.quote.Items = snap.Items
		s.quote.Counter = snap.Counter
		if s.quote.Items == nil {
			s.quote.Items = []pricing.LineItem{}
		}
		if err := s.reconcileLocked(ctx); err != nil {
			return nil, err
		}
	}

	s.log.Info("Quote session opened", logger.Fields{
		"items":    len(s.quote.Items),
		"currency": s.quote.Currency.Mode,
		"backend":  gw.Backend(),
	})
	return s, nil
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

// Calculator returns the pricing engine the session prices with
func (s *Session) Calculator() *pricing.Calculator {
	return s.calc
}

// AddItem validates and prices req under the session currency, appends it
// and persists the quote
func (s *Session) AddItem(ctx context.Context, req pricing.ItemRequest) (*pricing.LineItem, error) {
	if err := validator.ValidateItemRequest(&req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.calc.PriceItem(req, s.quote.Currency)
	if err != nil {
		return nil, err
	}
	added := s.appendLocked(*item)

	s.log.Info("Item added to quote", logger.Fields{
		"item_id":    added.ID,
		"product_id": added.ProductID,
		"quantity":   added.Quantity,
		"total":      added.Total,
	})
	return &added, s.saveLocked(ctx)
}

func (s *Session) appendLocked(item pricing.LineItem) pricing.LineItem {
	item.ID = s.quote.Counter
	s.quote.Counter++
	s.quote.Items = append(s.quote.Items, item)
	return item.Clone()
}

// RemoveItem drops the item with id. Unknown ids leave the quote unchanged.
func (s *Session) RemoveItem(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]pricing.LineItem, 0, len(s.quote.Items))
	for _, it := range s.quote.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.quote.Items) {
		return nil
	}
	s.quote.Items = kept

	s.log.Info("Item removed from quote", logger.Fields{"item_id": id})
	return s.saveLocked(ctx)
}

// Clear empties the quote. Ids keep counting from where they were.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quote.Items = []pricing.LineItem{}
	s.log.Info("Quote cleared")
	return s.gw.ClearCurrent(ctx)
}

// ChangeCurrency switches the currency context, re-prices every item and
// stores the preference
func (s *Session) ChangeCurrency(ctx context.Context, mode string, rate float64) error {
	cc, err := validator.ValidateCurrency(mode, rate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repriced, err := s.repriceLocked(s.quote.Items, cc)
	if err != nil {
		return err
	}
	// preference before snapshot; Open reprices a snapshot left behind
	if err := s.gw.SaveCurrency(ctx, cc); err != nil {
		return err
	}
	return s.commitLocked(ctx, repriced, cc)
}

// RecomputeAll re-prices every item under cc, keeping positions and ids.
// If any item fails to price the quote is left untouched.
func (s *Session) RecomputeAll(ctx context.Context, cc pricing.CurrencyContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recomputeLocked(ctx, cc)
}

func (s *Session) recomputeLocked(ctx context.Context, cc pricing.CurrencyContext) error {
	repriced, err := s.repriceLocked(s.quote.Items, cc)
	if err != nil {
		return err
	}
	return s.commitLocked(ctx, repriced, cc)
}

// repriceLocked prices items under cc into a new slice, keeping ids. Nothing
// is returned unless every item prices.
func (s *Session) repriceLocked(items []pricing.LineItem, cc pricing.CurrencyContext) ([]pricing.LineItem, error) {
	if err := pricing.ValidateCurrency(cc); err != nil {
		return nil, err
	}

	repriced := make([]pricing.LineItem, len(items))
	for i, it := range items {
		item, err := s.calc.PriceItem(it.Request(), cc)
		if err != nil {
			s.log.Warn("Recompute aborted", logger.Fields{"item_id": it.ID, "error": err.Error()})
			return nil, err
		}
		item.ID = it.ID
		repriced[i] = *item
	}
	return repriced, nil
}

func (s *Session) commitLocked(ctx context.Context, items []pricing.LineItem, cc pricing.CurrencyContext) error {
	s.quote.Items = items
	s.quote.Currency = cc

	s.log.Info("Quote recomputed", logger.Fields{
		"currency":      cc.Mode,
		"exchange_rate": cc.ExchangeRate,
		"items":         len(items),
	})
	return s.saveLocked(ctx)
}

// reconcileLocked reprices a restored quote whose items were priced in a
// currency other than the session's. Items that no longer price are kept as
// stored.
func (s *Session) reconcileLocked(ctx context.Context) error {
	stale := false
	for _, it := range s.quote.Items {
		if it.Currency != s.quote.Currency.Mode {
			stale = true
			break
		}
	}
	if !stale {
		return nil
	}

	repriced, err := s.repriceLocked(s.quote.Items, s.quote.Currency)
	if err != nil {
		s.log.Warn("Restored quote left in its stored currency", logger.Fields{"error": err.Error()})
		return nil
	}
	return s.commitLocked(ctx, repriced, s.quote.Currency)
}

// Currency returns the active currency context
func (s *Session) Currency() pricing.CurrencyContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Currency
}

// Items returns a copy of the quote items in order
func (s *Session) Items() []pricing.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Clone().Items
}

// Snapshot returns a copy of the whole quote
func (s *Session) Snapshot() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Clone()
}

// Subtotal sums the item subtotals
func (s *Session) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Subtotal()
}

// Total sums the item totals
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote.Total()
}

// SaveToHistory stores a named copy of the quote. A failing notifier is
// logged; the quote stays saved.
func (s *Session) SaveToHistory(ctx context.Context, name string) (*persistence.SavedQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.gw.SaveNamed(ctx, name, s.quote.Items)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.QuoteSaved(ctx, s.id, *saved); err != nil {
			s.log.Warn("Saved quote not published", logger.Fields{"history_id": saved.ID, "error": err.Error()})
		}
	}
	return saved, nil
}

// LoadFromHistory replaces the working quote with the saved quote id,
// re-priced under the session currency. A saved item that no longer prices
// leaves the working quote untouched.
func (s *Session) LoadFromHistory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.gw.LoadNamed(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.repriceLocked(snap.Items, s.quote.Currency)
	if err != nil {
		return err
	}
	s.quote.Items = items
	s.quote.Counter = snap.Counter

	s.log.Info("Quote loaded from history", logger.Fields{
		"history_id": id,
		"items":      len(items),
		"currency":   s.quote.Currency.Mode,
	})
	return s.saveLocked(ctx)
}

// DeleteFromHistory removes the saved quote id
func (s *Session) DeleteFromHistory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.DeleteNamed(ctx, id)
}

// History lists saved quotes, most recent first
func (s *Session) History(ctx context.Context) ([]persistence.SavedQuote, error) {
	return s.gw.ListHistory(ctx)
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := s.gw.SaveCurrent(ctx, s.quote.Items, s.quote.Counter); err != nil {
		s.log.Error("Failed to save current quote", logger.Fields{"error": err.Error()})
		return err
	}
	return nil
}
