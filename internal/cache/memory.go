package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sells-group/finplanner/internal/model"
)

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	c *gocache.Cache
}

// NewMemory returns a Memory cache. A ttl <= 0 keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		return &Memory{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (*model.PlanResult, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	p, ok := v.(*model.PlanResult)
	if !ok {
		return nil, false
	}
	return clonePlan(p), true
}

func (m *Memory) Set(_ context.Context, key string, plan *model.PlanResult) error {
	m.c.SetDefault(key, clonePlan(plan))
	return nil
}

// Len reports the number of unexpired entries.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}
