package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finplanner/internal/model"
)

func TestPercentages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score                 int
		stock, bond, re, cash float64
	}{
		{62, 55.8, 30.4, 6.2, 7.6},
		{0, 10, 72, 0, 18},
		{11, 10, 71.12, 1.1, 17.78},
		{95, 85.5, 4, 9.5, 1},
		{100, 90, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			t.Parallel()
			stock, bond, re, cash := Percentages(tt.score)
			assert.InDelta(t, tt.stock, stock, 1e-9, "stock at %d", tt.score)
			assert.InDelta(t, tt.bond, bond, 1e-9, "bond at %d", tt.score)
			assert.InDelta(t, tt.re, re, 1e-9, "real estate at %d", tt.score)
			assert.InDelta(t, tt.cash, cash, 1e-9, "cash at %d", tt.score)
		})
	}
}

func TestPercentages_BoundsAndSum(t *testing.T) {
	t.Parallel()

	for score := 0; score <= 100; score++ {
		stock, bond, re, cash := Percentages(score)
		assert.GreaterOrEqual(t, stock, 10.0)
		assert.LessOrEqual(t, stock, 90.0)
		assert.GreaterOrEqual(t, re, 0.0)
		assert.LessOrEqual(t, re, 15.0)
		assert.GreaterOrEqual(t, bond, 0.0)
		assert.GreaterOrEqual(t, cash, 0.0)
		assert.InDelta(t, 100.0, stock+bond+re+cash, 1e-9, "score %d", score)
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	allocs := Synthesize(62, 22000)
	require.Len(t, allocs, 4)

	wantOrder := model.AssetClasses()
	for i, a := range allocs {
		assert.Equal(t, wantOrder[i], a.AssetClass)
		assert.InDelta(t, a.Percentage/100*22000, a.Amount, 1e-6)
		assert.NotEmpty(t, a.SuggestedInstruments)
	}

	assert.InDelta(t, 12276.0, allocs[0].Amount, 1e-6)
	assert.InDelta(t, 6688.0, allocs[1].Amount, 1e-6)
	assert.InDelta(t, 1364.0, allocs[2].Amount, 1e-6)
	assert.InDelta(t, 1672.0, allocs[3].Amount, 1e-6)

	assert.Equal(t, []string{"VTI (Total US Stock)", "VXUS (International Stock)", "ITOT"}, allocs[0].SuggestedInstruments)
	assert.Equal(t, []string{"VMFXX (Money Market)", "HYSA (High-Yield Savings)"}, allocs[3].SuggestedInstruments)
}

func TestSynthesize_SumAcrossTotals(t *testing.T) {
	t.Parallel()

	for _, total := range []float64{22000, 0, -5000, 1e9} {
		for score := 0; score <= 100; score += 7 {
			var pct, amount float64
			for _, a := range Synthesize(score, total) {
				assert.GreaterOrEqual(t, a.Percentage, 0.0)
				pct += a.Percentage
				amount += a.Amount
			}
			assert.InDelta(t, 100.0, pct, 1e-9)
			assert.InDelta(t, total, amount, 1e-6*max(1, abs(total)))
		}
	}
}

func TestSynthesize_NegativeTotal(t *testing.T) {
	t.Parallel()

	for _, a := range Synthesize(50, -10000) {
		assert.LessOrEqual(t, a.Amount, 0.0)
	}
}

func TestInstruments_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := Instruments(model.AssetBonds)
	require.Len(t, got, 3)
	got[0] = "mutated"
	assert.Equal(t, "BND (Total Bond Market)", Instruments(model.AssetBonds)[0])

	allocs := Synthesize(40, 1000)
	allocs[2].SuggestedInstruments[0] = "mutated"
	assert.Equal(t, "VNQ (Vanguard Real Estate)", Synthesize(40, 1000)[2].SuggestedInstruments[0])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
