package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// CountryUSA is the only jurisdiction with a bracketed tax computation.
const CountryUSA = "USA"

// UserProfile holds the income and savings inputs for a planning request.
type UserProfile struct {
	Age               int     `json:"age" yaml:"age"`
	Salary            float64 `json:"salary" yaml:"salary"`
	Country           string  `json:"country" yaml:"country"`
	State             string  `json:"state" yaml:"state"` // only meaningful when Country is USA
	Savings           float64 `json:"savings" yaml:"savings"`
	MonthlyInvestable float64 `json:"monthlyInvestable" yaml:"monthlyInvestable"` // may be <= 0
	DebtPayments      float64 `json:"debtPayments" yaml:"debtPayments"`           // monthly
	EmergencyFund     float64 `json:"emergencyFund" yaml:"emergencyFund"`
}

// Validate checks that a profile is numerically well formed before it is
// handed to the planner. The planner itself accepts any input.
func (p UserProfile) Validate() error {
	var errs []string
	if p.Age <= 0 {
		errs = append(errs, "age must be > 0")
	}
	if p.Salary < 0 {
		errs = append(errs, "salary must be >= 0")
	}
	if strings.TrimSpace(p.Country) == "" {
		errs = append(errs, "country is required")
	}
	if p.DebtPayments < 0 {
		errs = append(errs, "debtPayments must be >= 0")
	}
	if p.EmergencyFund < 0 {
		errs = append(errs, "emergencyFund must be >= 0")
	}
	if len(errs) > 0 {
		return eris.Errorf("model: invalid profile: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Normalize upper-cases jurisdiction codes so lookups are case-insensitive.
func (p UserProfile) Normalize() UserProfile {
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
	p.State = strings.ToUpper(strings.TrimSpace(p.State))
	return p
}

func (p UserProfile) String() string {
	return fmt.Sprintf("age=%d salary=%.0f country=%s state=%s", p.Age, p.Salary, p.Country, p.State)
}
