// Package adapter selects the storage backend named by configuration.
package adapter

import (
	"context"
	"fmt"

	"donationhub/internal/adapter/memstore"
	"donationhub/internal/adapter/repo"
	"donationhub/internal/domain"
	"donationhub/internal/infra"
)

// Backend is an opened store together with its lifecycle hooks.
type Backend struct {
	Store domain.Store
	// Ping reports whether the backing database answers.
	Ping func(ctx context.Context) error
	// Close releases connections. Safe to call once.
	Close func()
}

// OpenStore opens the store named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case infra.StoreDriverMemory:
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		return &Backend{
			Store: memstore.New(),
			Ping:  func(context.Context) error { return nil },
			Close: func() {},
		}, nil
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runner := infra.NewSQLRunner(pool, logger.With().Str("component", "sql").Logger())
		return &Backend{
			Store: repo.NewStore(runner),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
