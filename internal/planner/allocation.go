package planner

import (
	"math"

	"github.com/sells-group/finplanner/internal/model"
)

// Allocation bounds, in percent.
const (
	minStockPct = 10.0
	maxStockPct = 90.0
	maxREPct    = 15.0

	stockPerScore = 0.9
	scorePerREPct = 10.0
	// bondShare is the part of the non-stock, non-real-estate remainder that
	// goes to bonds; cash takes the rest.
	bondShare = 0.8
)

// instruments lists example vehicles per asset class.
var instruments = map[model.AssetClass][]string{
	model.AssetStocks:     {"VTI (Total US Stock)", "VXUS (International Stock)", "ITOT"},
	model.AssetBonds:      {"BND (Total Bond Market)", "AGG", "BNDX (Intl Bonds)"},
	model.AssetRealEstate: {"VNQ (Vanguard Real Estate)", "O (Realty Income)"},
	model.AssetCash:       {"VMFXX (Money Market)", "HYSA (High-Yield Savings)"},
}

// Instruments returns a copy of the example vehicles for class.
func Instruments(class model.AssetClass) []string {
	src := instruments[class]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Percentages maps a risk score onto the four buckets. Cash is the remainder,
// so the four values always sum to 100.
func Percentages(riskScore int) (stock, bond, re, cash float64) {
	score := float64(riskScore)
	stock = clamp(score*stockPerScore, minStockPct, maxStockPct)
	re = clamp(score/scorePerREPct, 0, maxREPct)
	bond = math.Max(0, (100-stock-re)*bondShare)
	cash = 100 - stock - re - bond
	return stock, bond, re, cash
}

// Synthesize builds the four allocations for riskScore, sizing each bucket
// against totalInvestable. Negative totals produce negative amounts.
func Synthesize(riskScore int, totalInvestable float64) []model.Allocation {
	stock, bond, re, cash := Percentages(riskScore)
	pcts := map[model.AssetClass]float64{
		model.AssetStocks:     stock,
		model.AssetBonds:      bond,
		model.AssetRealEstate: re,
		model.AssetCash:       cash,
	}

	classes := model.AssetClasses()
	out := make([]model.Allocation, 0, len(classes))
	for _, class := range classes {
		pct := pcts[class]
		out = append(out, model.Allocation{
			AssetClass:           class,
			Percentage:           pct,
			Amount:               totalInvestable * (pct / 100),
			SuggestedInstruments: Instruments(class),
		})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
