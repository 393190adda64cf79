package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
)

const systemPrompt = "You are a professional, encouraging financial coach. " +
	"You explain plans that were already computed; you never change the numbers."

// BuildPrompt renders the user message for a coaching note.
func BuildPrompt(p model.UserProfile, goals []model.Goal, plan model.PlanResult) string {
	var b strings.Builder

	b.WriteString("Review this financial plan.\n")
	fmt.Fprintf(&b, "Profile: Age %d, Salary %s, Country %s", p.Age, planner.FormatUSD(p.Salary), p.Country)
	if p.State != "" {
		fmt.Fprintf(&b, " (%s)", p.State)
	}
	b.WriteString(".\n")

	if len(goals) > 0 {
		b.WriteString("Goals:\n")
		for _, g := range goals {
			fmt.Fprintf(&b, "- %s: %s, %s, priority %d\n", g.Name, planner.FormatUSD(g.TargetAmount), g.Horizon, g.Priority)
		}
	}

	parts := make([]string, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		parts = append(parts, fmt.Sprintf("%s: %s%%", a.AssetClass, strconv.FormatFloat(a.Percentage, 'f', -1, 64)))
	}
	fmt.Fprintf(&b, "Allocations: %s.\n", strings.Join(parts, ", "))
	fmt.Fprintf(&b, "Risk Score: %d.\n", plan.RiskScore)
	fmt.Fprintf(&b, "Total investable this year: %s. Estimated tax: %s.\n",
		planner.FormatUSD(plan.TotalInvestable), planner.FormatUSD(plan.TaxEstimate))
	for _, w := range plan.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	b.WriteString("\nProvide a coaching note of two paragraphs. ")
	b.WriteString("Explain why this allocation fits their goals. ")
	b.WriteString("End with a disclaimer that this is automated educational content.")
	return b.String()
}
