package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finplanner/internal/config"
	"github.com/sells-group/finplanner/internal/model"
)

func TestPrintGoals(t *testing.T) {
	var buf bytes.Buffer
	printGoals(&buf, nil)
	assert.Equal(t, "No goals.\n", buf.String())

	buf.Reset()
	printGoals(&buf, []model.Goal{{ID: "g1", Name: "House", TargetAmount: 60000, Horizon: model.HorizonMedium, Priority: 4}})
	out := buf.String()
	assert.Contains(t, out, "HORIZON")
	assert.Contains(t, out, "$60,000.00")
	assert.Contains(t, out, "MEDIUM")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "No saved plans.\n", buf.String())

	buf.Reset()
	printHistory(&buf, []model.PlanRecord{{
		ID:        "p1",
		Result:    scenarioPlan(),
		Note:      "n",
		CreatedAt: time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "2024-01-31 09:30")
	assert.Contains(t, out, "$22,000.00")
	assert.Contains(t, out, "yes")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:   config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "cli.db")},
		Cache:   config.CacheConfig{Driver: "memory", TTLMinutes: 1},
		Advisor: config.AdvisorConfig{Enabled: true, RetryAttempts: 1},
		Batch:   config.BatchConfig{Concurrency: 2},
	}
}

func TestInitEnv_SQLite(t *testing.T) {
	cfg = testConfig(t)
	t.Cleanup(func() { cfg = nil })

	env, err := initEnv(context.Background(), "store")
	require.NoError(t, err)
	defer env.Close()

	ctx := context.Background()
	_, err = env.Service.SaveProfile(ctx, "u1", model.UserProfile{Age: 30, Salary: 80000, Country: "usa", State: "ga"})
	require.NoError(t, err)

	rec, err := env.Service.Generate(ctx, "u1", true)
	require.NoError(t, err)
	// No API key, so the advisor answers with its fallback text.
	assert.Contains(t, rec.Note, "Your financial plan is ready for review.")
}

func TestInitEnv_Errors(t *testing.T) {
	cfg = testConfig(t)
	t.Cleanup(func() { cfg = nil })

	cfg.Store.Driver = "mysql"
	_, err := initEnv(context.Background(), "store")
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Cache.Driver = "memcached"
	_, err = initEnv(context.Background(), "serve")
	assert.Error(t, err)
}
