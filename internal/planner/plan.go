// Package planner computes deterministic investment plans: a tax estimate,
// a risk score, cautionary warnings, and a four-bucket asset allocation.
//
// Every function in this package is pure. The same inputs always yield the
// same PlanResult, and the package is safe for concurrent use.
package planner

import "github.com/sells-group/finplanner/internal/model"

// Build composes the tax, risk, warning, and allocation calculations into a
// single plan for p and goals. It never fails.
func Build(p model.UserProfile, goals []model.Goal) model.PlanResult {
	riskScore := ScoreRisk(p.Age, goals)
	tax := EstimateTax(p.Salary, p.Country, p.State)
	warnings := EvaluateWarnings(p)
	total := TotalInvestable(p)

	return model.PlanResult{
		RiskScore:       riskScore,
		Allocations:     Synthesize(riskScore, total),
		TotalInvestable: total,
		Warnings:        warnings,
		TaxEstimate:     tax,
	}
}

// TotalInvestable is current savings plus twelve months of surplus.
func TotalInvestable(p model.UserProfile) float64 {
	return p.Savings + p.MonthlyInvestable*12
}
