package planner

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/finplanner/internal/model"
)

const (
	emergencyFundMonths = 3
	maxDebtToIncome     = 0.36
)

// Warning texts. The emergency fund text is a format string; callers render
// it through EmergencyFundWarning.
const (
	WarnNoSurplus     = "Your monthly investable amount is zero or negative. Consider reviewing your budget."
	warnEmergencyFund = "Emergency fund is below 3 months of income (%s). Priority should be building this first."
	WarnHighDebt      = "Your debt-to-income ratio is high (>36%). Focus on high-interest debt reduction."
)

// EmergencyFundTarget is three months of gross salary.
func EmergencyFundTarget(salary float64) float64 {
	return (salary / 12) * emergencyFundMonths
}

// DebtToIncome returns annualized debt payments over salary. ok is false when
// salary is not positive and the ratio is undefined.
func DebtToIncome(p model.UserProfile) (ratio float64, ok bool) {
	if p.Salary <= 0 {
		return 0, false
	}
	return (p.DebtPayments * 12) / p.Salary, true
}

// EvaluateWarnings returns the red flags raised by p, in a fixed order:
// investable surplus, emergency fund, debt ratio. The result is never nil.
func EvaluateWarnings(p model.UserProfile) []string {
	warnings := []string{}

	if p.MonthlyInvestable <= 0 {
		warnings = append(warnings, WarnNoSurplus)
	}

	if target := EmergencyFundTarget(p.Salary); p.EmergencyFund < target {
		warnings = append(warnings, EmergencyFundWarning(target))
	}

	if dti, ok := DebtToIncome(p); ok && dti > maxDebtToIncome {
		warnings = append(warnings, WarnHighDebt)
	}

	return warnings
}

// EmergencyFundWarning renders the emergency fund warning for target.
func EmergencyFundWarning(target float64) string {
	return fmt.Sprintf(warnEmergencyFund, FormatUSD(target))
}

// FormatUSD renders an amount as en-US currency, e.g. $20,000.00.
func FormatUSD(amount float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	if amount < 0 {
		return p.Sprintf("-$%.2f", -amount)
	}
	return p.Sprintf("$%.2f", amount)
}
