// Package cache memoizes plan results keyed by a fingerprint of the inputs.
package cache

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/config"
	"github.com/sells-group/finplanner/internal/model"
)

// Cache stores computed plans. Implementations must be safe for concurrent
// use and must not hand out values that alias their internal state.
type Cache interface {
	Get(ctx context.Context, key string) (*model.PlanResult, bool)
	Set(ctx context.Context, key string, plan *model.PlanResult) error
}

// New builds the cache selected by cfg.Driver.
func New(cfg config.CacheConfig) (Cache, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	switch cfg.Driver {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return NewMemory(ttl), nil
	case "redis":
		return NewRedis(RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB, TTL: ttl}), nil
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (*model.PlanResult, bool) { return nil, false }
func (Noop) Set(context.Context, string, *model.PlanResult) error { return nil }

// clonePlan deep-copies the slices of p. Empty slices stay empty and nil
// stays nil, so a cached plan encodes exactly like a fresh one.
func clonePlan(p *model.PlanResult) *model.PlanResult {
	out := *p
	out.Warnings = slices.Clone(p.Warnings)
	if p.Allocations != nil {
		out.Allocations = make([]model.Allocation, len(p.Allocations))
		for i, a := range p.Allocations {
			a.SuggestedInstruments = slices.Clone(a.SuggestedInstruments)
			out.Allocations[i] = a
		}
	}
	return &out
}
