package model

import "time"

// AssetClass labels one of the four allocation buckets.
type AssetClass string

const (
	AssetStocks     AssetClass = "Stocks (Domestic & International)"
	AssetBonds      AssetClass = "Bonds (Fixed Income)"
	AssetRealEstate AssetClass = "Real Estate (REITs)"
	AssetCash       AssetClass = "Cash / Money Market"
)

// AssetClasses returns the buckets in the fixed order every plan uses.
func AssetClasses() []AssetClass {
	return []AssetClass{AssetStocks, AssetBonds, AssetRealEstate, AssetCash}
}

// Short returns a compact name for table and CSV headers.
func (a AssetClass) Short() string {
	switch a {
	case AssetStocks:
		return "stocks"
	case AssetBonds:
		return "bonds"
	case AssetRealEstate:
		return "real_estate"
	case AssetCash:
		return "cash"
	default:
		return string(a)
	}
}

// Allocation is one weighted bucket of a plan.
type Allocation struct {
	AssetClass           AssetClass `json:"assetClass"`
	Percentage           float64    `json:"percentage"`
	Amount               float64    `json:"amount"`
	SuggestedInstruments []string   `json:"suggestedInstruments"`
}

// PlanResult is the full output of one planning run.
type PlanResult struct {
	RiskScore       int          `json:"riskScore"`
	Allocations     []Allocation `json:"allocations"`
	TotalInvestable float64      `json:"totalInvestable"` // may be negative
	Warnings        []string     `json:"warnings"`
	TaxEstimate     float64      `json:"taxEstimate"`
}

// Allocation returns the bucket for class, or false if absent.
func (r PlanResult) Allocation(class AssetClass) (Allocation, bool) {
	for _, a := range r.Allocations {
		if a.AssetClass == class {
			return a, true
		}
	}
	return Allocation{}, false
}

// PlanSource records which producer built a stored plan.
type PlanSource string

const (
	PlanSourceDeterministic PlanSource = "deterministic"
)

// PlanRecord is a persisted plan with the inputs fingerprint it was built from.
type PlanRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Source    PlanSource `json:"source"`
	Result    PlanResult `json:"result"`
	Note      string     `json:"note,omitempty"`
	InputHash string     `json:"inputHash"`
	CreatedAt time.Time  `json:"createdAt"`
}

// User owns one profile and any number of goals.
type User struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Profile   *UserProfile `json:"profile,omitempty"`
	Goals     []Goal       `json:"goals"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// PlanInput is the request document accepted by the CLI and the stateless
// API endpoint.
type PlanInput struct {
	Profile UserProfile `json:"profile" yaml:"profile"`
	Goals   []Goal      `json:"goals" yaml:"goals"`
}

// Validate checks the profile and every goal.
func (in PlanInput) Validate() error {
	if err := in.Profile.Validate(); err != nil {
		return err
	}
	for _, g := range in.Goals {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}
