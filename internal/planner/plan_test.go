package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finplanner/internal/model"
)

func TestBuild_RoundTrip(t *testing.T) {
	t.Parallel()

	result := Build(baseProfile(), nil)

	assert.Equal(t, 62, result.RiskScore)
	assert.InDelta(t, 22000.0, result.TotalInvestable, 1e-9)
	assert.InDelta(t, 17063.0, result.TaxEstimate, 1e-6)
	assert.Equal(t, []string{
		"Emergency fund is below 3 months of income ($20,000.00). Priority should be building this first.",
	}, result.Warnings)

	require.Len(t, result.Allocations, 4)
	want := []struct {
		class model.AssetClass
		pct   float64
	}{
		{model.AssetStocks, 55.8},
		{model.AssetBonds, 30.4},
		{model.AssetRealEstate, 6.2},
		{model.AssetCash, 7.6},
	}
	var sum float64
	for i, w := range want {
		assert.Equal(t, w.class, result.Allocations[i].AssetClass)
		assert.InDelta(t, w.pct, result.Allocations[i].Percentage, 1e-9)
		sum += result.Allocations[i].Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	goals := []model.Goal{
		{ID: "g1", Name: "House", TargetAmount: 60000, Horizon: model.HorizonMedium, Priority: 4},
		{ID: "g2", Name: "Retire", TargetAmount: 1e6, Horizon: model.HorizonLong, Priority: 5},
	}

	first := Build(p, goals)
	for range 10 {
		assert.Equal(t, first, Build(p, goals))
	}
}

func TestBuild_DegenerateInputs(t *testing.T) {
	t.Parallel()

	p := model.UserProfile{
		Age:               40,
		Salary:            0,
		Country:           "XX",
		Savings:           -8000,
		MonthlyInvestable: -500,
		DebtPayments:      900,
	}

	var result model.PlanResult
	require.NotPanics(t, func() { result = Build(p, []model.Goal{}) })

	assert.InDelta(t, -14000.0, result.TotalInvestable, 1e-9)
	assert.Zero(t, result.TaxEstimate)
	assert.Equal(t, []string{WarnNoSurplus}, result.Warnings)
	for _, a := range result.Allocations {
		assert.LessOrEqual(t, a.Amount, 0.0)
	}
}

func TestBuild_ConcurrentCallsAgree(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	goals := []model.Goal{{ID: "g", Name: "Car", Horizon: model.HorizonShort, Priority: 2}}
	want := Build(p, goals)

	results := make([]model.PlanResult, 32)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			results[i] = Build(p, goals)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestTotalInvestable(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 22000.0, TotalInvestable(baseProfile()), 1e-9)
	assert.InDelta(t, -1000.0, TotalInvestable(model.UserProfile{Savings: 200, MonthlyInvestable: -100}), 1e-9)
}
