package cli

import (
	"fmt"

	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/store"

	"github.com/redis/go-redis/v9"
)

// newStore builds the persistence backend selected in configuration.
func newStore(cfg *config.Config, logger *errors.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.NewFileStore(cfg.Store.Path, logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return store.NewRedisStore(client, cfg.Store.Redis.Key, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
