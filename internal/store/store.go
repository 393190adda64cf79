package store

import (
	"context"
	"errors"

	"github.com/sells-group/finplanner/internal/model"
)

// ErrNotFound is returned, wrapped, when a user, profile, goal or plan does
// not exist. Check with errors.Is.
var ErrNotFound = errors.New("store: not found")

// PlanFilter specifies criteria for listing stored plans.
type PlanFilter struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// defaultListLimit caps ListPlans when the filter leaves Limit unset.
const defaultListLimit = 50

func (f PlanFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines the persistence interface for users, their planning inputs,
// and generated plans. Users are created implicitly by the first profile or
// goal write.
type Store interface {
	// Users
	UpsertUser(ctx context.Context, user model.User) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)

	// Profiles
	SaveProfile(ctx context.Context, userID string, profile model.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)

	// Goals
	CreateGoal(ctx context.Context, userID string, goal model.Goal) (*model.Goal, error)
	UpdateGoal(ctx context.Context, userID string, goal model.Goal) error
	DeleteGoal(ctx context.Context, userID, goalID string) error
	ListGoals(ctx context.Context, userID string) ([]model.Goal, error)

	// Plans
	SavePlan(ctx context.Context, rec *model.PlanRecord) error
	GetPlan(ctx context.Context, userID, planID string) (*model.PlanRecord, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
