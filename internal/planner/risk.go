package planner

import (
	"math"

	"github.com/sells-group/finplanner/internal/model"
)

const (
	ageWeight     = 0.6
	horizonWeight = 0.4

	// neutralHorizonFactor stands in for the average when there are no goals.
	neutralHorizonFactor = 50.0
)

// HorizonFactor maps a goal horizon to its risk contribution. Anything that
// is not LONG or MEDIUM scores as SHORT.
func HorizonFactor(h model.Horizon) float64 {
	switch h {
	case model.HorizonLong:
		return 100
	case model.HorizonMedium:
		return 50
	default:
		return 10
	}
}

// AverageHorizonFactor is the arithmetic mean of every goal's horizon factor,
// or 50 when goals is empty. Priority does not weight the mean.
func AverageHorizonFactor(goals []model.Goal) float64 {
	if len(goals) == 0 {
		return neutralHorizonFactor
	}
	var sum float64
	for _, g := range goals {
		sum += HorizonFactor(g.Horizon)
	}
	return sum / float64(len(goals))
}

// ScoreRisk returns a 0-100 risk tolerance score. Younger savers and longer
// horizons score higher. Halves round up.
func ScoreRisk(age int, goals []model.Goal) int {
	ageFactor := math.Max(0, float64(100-age))
	raw := ageFactor*ageWeight + AverageHorizonFactor(goals)*horizonWeight
	return clampScore(roundHalfUp(raw))
}

// roundHalfUp rounds x to the nearest integer with .5 going toward +Inf.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}
