package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finplanner/internal/advisor"
	"github.com/sells-group/finplanner/internal/cache"
	"github.com/sells-group/finplanner/internal/service"
	"github.com/sells-group/finplanner/internal/store"
)

// appEnv holds the store, cache and service shared by the stateful commands.
type appEnv struct {
	Store   store.Store
	Cache   cache.Cache
	Service *service.PlanService
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if c, ok := e.Cache.(io.Closer); ok {
		_ = c.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for mode, opens and migrates the store, and builds
// the plan service. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	adv := advisor.FromConfig(cfg)
	zap.L().Debug("environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("cache", cfg.Cache.Driver),
		zap.Bool("advisor", adv.Enabled()),
	)

	return &appEnv{
		Store:   st,
		Cache:   c,
		Service: service.New(st, c, adv),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
