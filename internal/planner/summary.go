package planner

import "github.com/sells-group/finplanner/internal/model"

// Risk tolerance labels for a 0-100 score.
const (
	ToleranceConservative = "Conservative"
	ToleranceModerate     = "Moderate"
	ToleranceAggressive   = "Aggressive"
)

// ToleranceLabel names the band a risk score falls in: above 70 is
// aggressive, above 40 moderate, anything else conservative.
func ToleranceLabel(score int) string {
	switch {
	case score > 70:
		return ToleranceAggressive
	case score > 40:
		return ToleranceModerate
	default:
		return ToleranceConservative
	}
}

// GoalProgress measures current savings against the combined goal targets.
type GoalProgress struct {
	TotalTargetCapital float64 `json:"totalTargetCapital"`
	// SavingsProgress is savings as a whole percent of TotalTargetCapital.
	// It is 0 when the total is not positive and may exceed 100.
	SavingsProgress int `json:"savingsProgress"`
}

// Progress sums the goal targets and rates savings against them.
func Progress(savings float64, goals []model.Goal) GoalProgress {
	var total float64
	for _, g := range goals {
		total += g.TargetAmount
	}
	gp := GoalProgress{TotalTargetCapital: total}
	if total > 0 {
		gp.SavingsProgress = roundHalfUp(savings / total * 100)
	}
	return gp
}

// Summary holds the derived headline figures shown next to a plan. It is
// computed from a PlanResult and never stored in one.
type Summary struct {
	RiskTolerance string `json:"riskTolerance"`
	GoalProgress
}

// Summarize derives the headline figures for plan built from p and goals.
func Summarize(p model.UserProfile, goals []model.Goal, plan model.PlanResult) Summary {
	return Summary{
		RiskTolerance: ToleranceLabel(plan.RiskScore),
		GoalProgress:  Progress(p.Savings, goals),
	}
}
