// Package service composes the planner with storage, caching and the
// coaching advisor. The CLI and the HTTP API both go through PlanService.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finplanner/internal/cache"
	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
	"github.com/sells-group/finplanner/internal/store"
)

// Noter writes a coaching note for a finished plan. It must not fail; it
// returns a fallback note instead.
type Noter interface {
	Note(ctx context.Context, p model.UserProfile, goals []model.Goal, plan model.PlanResult) string
}

// InvalidInputError wraps a validation failure so callers can tell bad input
// from infrastructure errors.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string { return e.Err.Error() }

func (e *InvalidInputError) Unwrap() error { return e.Err }

// IsInvalidInput reports whether err is, or wraps, an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// PlanService builds, caches and persists plans.
type PlanService struct {
	store store.Store
	cache cache.Cache
	noter Noter
	now   func() time.Time
}

// New creates a PlanService. A nil cache disables caching; a nil noter
// disables coaching notes.
func New(st store.Store, c cache.Cache, noter Noter) *PlanService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PlanService{store: st, cache: c, noter: noter, now: time.Now}
}

// Store exposes the underlying store for read-only callers.
func (s *PlanService) Store() store.Store { return s.store }

// Preview validates the inputs and returns the plan without persisting it.
// Results are cached by input fingerprint; cache failures are logged only.
func (s *PlanService) Preview(ctx context.Context, p model.UserProfile, goals []model.Goal) (model.PlanResult, error) {
	in := model.PlanInput{Profile: p.Normalize(), Goals: goals}
	if err := in.Validate(); err != nil {
		return model.PlanResult{}, &InvalidInputError{Err: err}
	}
	return s.build(ctx, in), nil
}

func (s *PlanService) build(ctx context.Context, in model.PlanInput) model.PlanResult {
	key := cache.Key(in.Profile, in.Goals)
	if cached, ok := s.cache.Get(ctx, key); ok {
		zap.L().Debug("service: plan cache hit", zap.String("key", key))
		return *cached
	}

	result := planner.Build(in.Profile, in.Goals)
	if err := s.cache.Set(ctx, key, &result); err != nil {
		zap.L().Warn("service: plan cache set failed", zap.String("key", key), zap.Error(err))
	}
	return result
}

// Note returns a coaching note for plan. Without a noter it returns "".
func (s *PlanService) Note(ctx context.Context, p model.UserProfile, goals []model.Goal, plan model.PlanResult) string {
	if s.noter == nil {
		return ""
	}
	return s.noter.Note(ctx, p, goals, plan)
}

// Generate builds a plan from the user's stored profile and goals and saves
// it. withNote attaches a coaching note.
func (s *PlanService) Generate(ctx context.Context, userID string, withNote bool) (*model.PlanRecord, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, eris.Wrapf(err, "service: load profile for %s", userID)
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, eris.Wrapf(err, "service: load goals for %s", userID)
	}

	in := model.PlanInput{Profile: profile.Normalize(), Goals: goals}
	if err := in.Validate(); err != nil {
		return nil, &InvalidInputError{Err: err}
	}

	rec := &model.PlanRecord{
		UserID:    userID,
		Source:    model.PlanSourceDeterministic,
		Result:    s.build(ctx, in),
		InputHash: cache.Key(in.Profile, in.Goals),
		CreatedAt: s.now().UTC(),
	}
	if withNote {
		rec.Note = s.Note(ctx, in.Profile, in.Goals, rec.Result)
	}

	if err := s.store.SavePlan(ctx, rec); err != nil {
		return nil, eris.Wrapf(err, "service: save plan for %s", userID)
	}

	zap.L().Info("service: plan generated",
		zap.String("user_id", userID),
		zap.String("plan_id", rec.ID),
		zap.Int("risk_score", rec.Result.RiskScore),
		zap.Int("warnings", len(rec.Result.Warnings)),
		zap.Bool("note", rec.Note != ""),
	)
	return rec, nil
}

// History lists a user's saved plans, newest first.
func (s *PlanService) History(ctx context.Context, userID string, limit, offset int) ([]model.PlanRecord, error) {
	plans, err := s.store.ListPlans(ctx, store.PlanFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, eris.Wrapf(err, "service: history for %s", userID)
	}
	return plans, nil
}

// Get returns one saved plan.
func (s *PlanService) Get(ctx context.Context, userID, planID string) (*model.PlanRecord, error) {
	rec, err := s.store.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, eris.Wrapf(err, "service: get plan %s", planID)
	}
	return rec, nil
}
