package main

import (
	"context"
	"io"
	"os"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/config"
	"github.com/volari/license-quoter/internal/database"
	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/persistence"
	"github.com/volari/license-quoter/internal/pricing"
	"github.com/volari/license-quoter/internal/queue"
	"github.com/volari/license-quoter/internal/quotes"
)

// app is what every subcommand works against
type app struct {
	catalog *catalog.Catalog
	session *quotes.Session
	store   database.Store
}

// close releases the storage backend when it holds a connection
func (a *app) close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type opener func(ctx context.Context) (*app, error)

// openApp wires config, catalog, storage and the quote session
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.NewFromConfig(cfg.Logging.Format, cfg.Logging.Level))

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.RedisSecretID != "" {
		// an unresolved secret leaves the url empty and storage falls back to memory
		secrets, err := config.NewSecretsClient(cfg.AWS.Region)
		if err == nil {
			err = config.ResolveRedisURL(ctx, &cfg.Storage, secrets)
		}
		if err != nil {
			logger.Warn("Failed to resolve redis secret", logger.Fields{"secret_id": cfg.Storage.RedisSecretID, "error": err.Error()})
		}
	}

	store := database.Open(ctx, cfg.Storage, cfg.AWS.Region)
	gw := persistence.NewGateway(store)

	opts := []quotes.Option{
		quotes.WithDefaultCurrency(pricing.CurrencyContext{
			Mode:         pricing.CurrencyMode(cfg.Currency.Mode),
			ExchangeRate: cfg.Currency.ExchangeRate,
		}),
	}
	if cfg.Events.QueueURL != "" {
		publisher, err := queue.NewClient(cfg.AWS.Region, cfg.Events.Endpoint, cfg.Events.QueueURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, quotes.WithNotifier(publisher))
	}

	session, err := quotes.Open(ctx, pricing.NewCalculator(cat), gw, opts...)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	return &app{catalog: cat, session: session, store: store}, nil
}

func main() {
	if err := newRootCmd(openApp).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
