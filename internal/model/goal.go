package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Horizon is the time-to-goal bucket of a Goal.
type Horizon string

const (
	HorizonShort  Horizon = "Short term (0-2 years)"
	HorizonMedium Horizon = "Medium term (2-7 years)"
	HorizonLong   Horizon = "Long term (7+ years)"
)

// Horizons returns every horizon from shortest to longest.
func Horizons() []Horizon {
	return []Horizon{HorizonShort, HorizonMedium, HorizonLong}
}

// Valid reports whether h is one of the known horizons.
func (h Horizon) Valid() bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	}
	return false
}

// Code returns the short code (SHORT, MEDIUM, LONG) used in CSV input.
func (h Horizon) Code() string {
	switch h {
	case HorizonShort:
		return "SHORT"
	case HorizonMedium:
		return "MEDIUM"
	case HorizonLong:
		return "LONG"
	default:
		return ""
	}
}

// ParseHorizon accepts either the display label or the short code.
func ParseHorizon(s string) (Horizon, error) {
	v := strings.TrimSpace(s)
	if h := Horizon(v); h.Valid() {
		return h, nil
	}
	switch strings.ToUpper(v) {
	case "SHORT":
		return HorizonShort, nil
	case "MEDIUM":
		return HorizonMedium, nil
	case "LONG":
		return HorizonLong, nil
	}
	return "", eris.Errorf("model: unknown horizon %q", s)
}

// UnmarshalText lets YAML and JSON decoders accept short codes too.
func (h *Horizon) UnmarshalText(b []byte) error {
	parsed, err := ParseHorizon(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Goal is a single financial target. Priority is captured for display and
// storage; the planner does not weight by it.
type Goal struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	TargetAmount float64 `json:"targetAmount" yaml:"targetAmount"`
	Horizon      Horizon `json:"horizon" yaml:"horizon"`
	Priority     int     `json:"priority" yaml:"priority"` // 1-5
}

// MinPriority and MaxPriority bound Goal.Priority.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Validate checks a goal before it is stored or planned.
func (g Goal) Validate() error {
	var errs []string
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, "name is required")
	}
	if g.TargetAmount < 0 {
		errs = append(errs, "targetAmount must be >= 0")
	}
	if !g.Horizon.Valid() {
		errs = append(errs, "horizon is invalid")
	}
	if g.Priority < MinPriority || g.Priority > MaxPriority {
		errs = append(errs, "priority must be between 1 and 5")
	}
	if len(errs) > 0 {
		return eris.Errorf("model: invalid goal %q: %s", g.Name, strings.Join(errs, "; "))
	}
	return nil
}
