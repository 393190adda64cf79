package planner

import "github.com/sells-group/finplanner/internal/model"

// nonUSFlatRate is applied to every jurisdiction outside the USA.
const nonUSFlatRate = 0.25

// lowestBracketRate applies to salaries at or below the first bracket floor.
const lowestBracketRate = 0.10

// defaultStateRate is used for any state code missing from stateRates.
const defaultStateRate = 0.05

// taxBracket is one marginal federal bracket. Base is the precomputed tax owed
// on all income up to Floor.
type taxBracket struct {
	Floor float64
	Rate  float64
	Base  float64
}

// federalBrackets are the 2024 single-filer brackets, highest floor first.
var federalBrackets = [...]taxBracket{
	{Floor: 609_350, Rate: 0.37, Base: 183_647},
	{Floor: 243_725, Rate: 0.35, Base: 55_678},
	{Floor: 191_950, Rate: 0.32, Base: 39_110},
	{Floor: 100_525, Rate: 0.24, Base: 17_168},
	{Floor: 47_150, Rate: 0.22, Base: 5_444},
	{Floor: 11_600, Rate: 0.12, Base: 1_160},
}

// stateRates maps a US state code to a flat income tax estimate.
var stateRates = map[string]float64{
	"GA": 0.0549,
	"CA": 0.093,
	"NY": 0.065,
	"TX": 0,
	"FL": 0,
	"WA": 0,
}

// EstimateTax returns the annual tax estimate for salary in the given
// jurisdiction. Non-US jurisdictions get a flat 25%; US salaries pay federal
// brackets plus a flat state rate.
func EstimateTax(salary float64, country, state string) float64 {
	if country != model.CountryUSA {
		return salary * nonUSFlatRate
	}
	return FederalTax(salary) + salary*StateRate(state)
}

// FederalTax applies the marginal bracket table to salary.
func FederalTax(salary float64) float64 {
	for _, b := range federalBrackets {
		if salary > b.Floor {
			return (salary-b.Floor)*b.Rate + b.Base
		}
	}
	return salary * lowestBracketRate
}

// StateRate returns the flat state rate, falling back to 5% for unknown codes.
// States listed with a zero rate stay at zero.
func StateRate(state string) float64 {
	if r, ok := stateRates[state]; ok {
		return r
	}
	return defaultStateRate
}
