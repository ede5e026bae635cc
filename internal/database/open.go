package database

import (
	"context"
	"time"

	"github.com/volari/license-quoter/internal/config"
	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
)

const pingTimeout = 3 * time.Second

// Open builds the store selected by cfg. When the backend cannot be reached
// it logs a warning and falls back to an in-memory store, so the quoter keeps
// working without durability.
func Open(ctx context.Context, cfg config.StorageConfig, region string) Store {
	store, err := dial(cfg, region)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = store.Ping(pingCtx)
		cancel()
	}
	if err != nil {
		logger.Warn("Storage backend unavailable, using memory", logger.Fields{
			"backend": cfg.Backend,
			"error":   err.Error(),
		})
		return NewMemoryStore()
	}

	logger.Info("Storage backend ready", logger.Fields{"backend": store.Name()})
	return store
}

func dial(cfg config.StorageConfig, region string) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendRedis:
		return NewRedisStoreFromURL(cfg.RedisURL, cfg.KeyPrefix)
	case config.BackendDynamoDB:
		return NewDynamoStore(region, cfg.DynamoTable, cfg.DynamoEndpoint, cfg.KeyPrefix)
	default:
		return nil, errors.ErrValidation("storage", "unknown backend '"+cfg.Backend+"'")
	}
}
