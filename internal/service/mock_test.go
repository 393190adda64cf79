package service

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/model"
)

// fakeNoter records the plans it was asked to annotate.
type fakeNoter struct {
	mu    sync.Mutex
	calls int
	note  string
}

func (f *fakeNoter) Note(_ context.Context, _ model.UserProfile, _ []model.Goal, _ model.PlanResult) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.note
}

// countingCache wraps a map and counts hits; setErr makes every Set fail.
type countingCache struct {
	mu     sync.Mutex
	items  map[string]model.PlanResult
	hits   int
	setErr bool
}

func newCountingCache() *countingCache {
	return &countingCache{items: make(map[string]model.PlanResult)}
}

func (c *countingCache) Get(_ context.Context, key string) (*model.PlanResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.hits++
	return &p, true
}

func (c *countingCache) Set(_ context.Context, key string, plan *model.PlanResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr {
		return eris.New("cache: unavailable")
	}
	c.items[key] = *plan
	return nil
}
