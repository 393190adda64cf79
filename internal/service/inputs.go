package service

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/model"
)

// SaveProfile validates, normalizes and stores a user's profile.
func (s *PlanService) SaveProfile(ctx context.Context, userID string, p model.UserProfile) (model.UserProfile, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return model.UserProfile{}, &InvalidInputError{Err: err}
	}
	if err := s.store.SaveProfile(ctx, userID, p); err != nil {
		return model.UserProfile{}, eris.Wrapf(err, "service: save profile for %s", userID)
	}
	return p, nil
}

// AddGoal validates and stores a new goal.
func (s *PlanService) AddGoal(ctx context.Context, userID string, g model.Goal) (*model.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, &InvalidInputError{Err: err}
	}
	created, err := s.store.CreateGoal(ctx, userID, g)
	if err != nil {
		return nil, eris.Wrapf(err, "service: add goal for %s", userID)
	}
	return created, nil
}

// UpdateGoal validates and replaces an existing goal.
func (s *PlanService) UpdateGoal(ctx context.Context, userID string, g model.Goal) error {
	if g.ID == "" {
		return &InvalidInputError{Err: eris.New("service: goal id is required")}
	}
	if err := g.Validate(); err != nil {
		return &InvalidInputError{Err: err}
	}
	if err := s.store.UpdateGoal(ctx, userID, g); err != nil {
		return eris.Wrapf(err, "service: update goal %s", g.ID)
	}
	return nil
}
