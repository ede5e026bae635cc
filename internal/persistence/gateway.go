package persistence

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/volari/license-quoter/internal/database"
	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/pricing"
)

// Gateway persists the working quote, the named history and the currency
// preference in a key-value store
type Gateway struct {
	store    database.Store
	now      func() time.Time
	capacity int
}

// Option configures a Gateway
type Option func(*Gateway)

// WithClock overrides the wall clock used for ids and timestamps
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithCapacity overrides the history capacity
func WithCapacity(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.capacity = n
		}
	}
}

// NewGateway creates a gateway over store
func NewGateway(store database.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		now:      time.Now,
		capacity: HistoryCapacity,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend names the store in use
func (g *Gateway) Backend() string {
	return g.store.Name()
}

// SaveCurrent overwrites the working quote snapshot
func (g *Gateway) SaveCurrent(ctx context.Context, items []pricing.LineItem, counter int) error {
	snap := Snapshot{
		Items:     pricing.CloneItems(items),
		Counter:   counter,
		Timestamp: g.now().UTC(),
	}
	if snap.Items == nil {
		snap.Items = []pricing.LineItem{}
	}
	return g.put(ctx, KeyCurrentQuote, snap)
}

// LoadCurrent returns the saved working quote, or nil when there is none.
// A malformed snapshot is logged and reported as absent.
func (g *Gateway) LoadCurrent(ctx context.Context) (*Snapshot, error) {
	raw, ok, err := g.store.Get(ctx, KeyCurrentQuote)
	if err != nil || !ok {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		logCorrupt(KeyCurrentQuote, err)
		return nil, nil
	}
	if snap.Counter < 1 {
		snap.Counter = NextCounter(snap.Items)
	}
	return &snap, nil
}

// ClearCurrent removes the working quote snapshot
func (g *Gateway) ClearCurrent(ctx context.Context) error {
	return g.store.Delete(ctx, KeyCurrentQuote)
}

// SaveNamed prepends a copy of items to the history under name
func (g *Gateway) SaveNamed(ctx context.Context, name string, items []pricing.LineItem) (*SavedQuote, error) {
	if len(items) == 0 {
		return nil, errors.ErrEmptySaveRequest()
	}

	history, err := g.ListHistory(ctx)
	if err != nil {
		return nil, err
	}

	now := g.now()
	id := now.UnixMilli()
	for _, h := range history {
		if h.ID >= id {
			id = h.ID + 1
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Quote " + now.Format("2006-01-02 15:04:05")
	}

	saved := SavedQuote{
		ID:        id,
		Name:      name,
		Items:     pricing.CloneItems(items),
		Timestamp: now.UTC(),
		ItemCount: len(items),
	}
	for _, it := range items {
		saved.Total += it.Total
	}

	history = append([]SavedQuote{saved}, history...)
	if len(history) > g.capacity {
		history = history[:g.capacity]
	}
	if err := g.put(ctx, KeyHistory, history); err != nil {
		return nil, err
	}

	logger.Info("Quote saved to history", logger.Fields{
		"history_id": saved.ID,
		"name":       saved.Name,
		"item_count": saved.ItemCount,
		"total":      saved.Total,
	})
	return &saved, nil
}

// ListHistory returns saved quotes, most recent first. Malformed history is
// logged and reported as empty.
func (g *Gateway) ListHistory(ctx context.Context) ([]SavedQuote, error) {
	raw, ok, err := g.store.Get(ctx, KeyHistory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []SavedQuote{}, nil
	}

	var history []SavedQuote
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logCorrupt(KeyHistory, err)
		return []SavedQuote{}, nil
	}
	if history == nil {
		history = []SavedQuote{}
	}
	return history, nil
}

// LoadNamed returns a working-quote snapshot rebuilt from the history entry id
func (g *Gateway) LoadNamed(ctx context.Context, id int64) (*Snapshot, error) {
	history, err := g.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range history {
		if h.ID == id {
			items := pricing.CloneItems(h.Items)
			if items == nil {
				items = []pricing.LineItem{}
			}
			return &Snapshot{
				Items:     items,
				Counter:   NextCounter(items),
				Timestamp: h.Timestamp,
			}, nil
		}
	}
	return nil, errors.ErrHistoryNotFound(id)
}

// DeleteNamed removes the history entry id; unknown ids are ignored
func (g *Gateway) DeleteNamed(ctx context.Context, id int64) error {
	history, err := g.ListHistory(ctx)
	if err != nil {
		return err
	}

	kept := make([]SavedQuote, 0, len(history))
	for _, h := range history {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(history) {
		return nil
	}
	return g.put(ctx, KeyHistory, kept)
}

// SaveCurrency stores the currency preference
func (g *Gateway) SaveCurrency(ctx context.Context, cc pricing.CurrencyContext) error {
	if err := g.store.Set(ctx, KeyCurrency, string(cc.Mode)); err != nil {
		return err
	}
	return g.store.Set(ctx, KeyExchangeRate, strconv.FormatFloat(cc.ExchangeRate, 'f', -1, 64))
}

// LoadCurrency returns the stored currency preference and whether one exists.
// An unreadable exchange rate comes back as zero.
func (g *Gateway) LoadCurrency(ctx context.Context) (pricing.CurrencyContext, bool, error) {
	var cc pricing.CurrencyContext

	mode, ok, err := g.store.Get(ctx, KeyCurrency)
	if err != nil || !ok {
		return cc, false, err
	}
	cc.Mode = pricing.CurrencyMode(mode)

	raw, ok, err := g.store.Get(ctx, KeyExchangeRate)
	if err != nil {
		return cc, false, err
	}
	if ok {
		rate, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if perr != nil {
			logCorrupt(KeyExchangeRate, perr)
		} else {
			cc.ExchangeRate = rate
		}
	}
	return cc, true, nil
}

func (g *Gateway) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.ErrInternalServer("failed to encode "+key, err)
	}
	return g.store.Set(ctx, key, string(data))
}

func logCorrupt(key string, err error) {
	appErr := errors.ErrPersistenceReadCorrupt(key, err)
	logger.Warn("Ignoring unreadable stored value", logger.Fields{
		"key":   key,
		"code":  appErr.Code,
		"error": appErr.Error(),
	})
}
