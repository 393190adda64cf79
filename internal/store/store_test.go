package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finplanner/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testProfile() model.UserProfile {
	return model.UserProfile{
		Age:               30,
		Salary:            80000,
		Country:           "USA",
		State:             "GA",
		Savings:           10000,
		MonthlyInvestable: 1000,
		DebtPayments:      500,
		EmergencyFund:     5000,
	}
}

func testResult() model.PlanResult {
	return model.PlanResult{
		RiskScore: 62,
		Allocations: []model.Allocation{
			{AssetClass: model.AssetStocks, Percentage: 55.8, Amount: 12276, SuggestedInstruments: []string{"VTI (Total US Stock)"}},
			{AssetClass: model.AssetCash, Percentage: 7.6, Amount: 1672, SuggestedInstruments: []string{"VMFXX (Money Market)"}},
		},
		TotalInvestable: 22000,
		Warnings:        []string{"Emergency fund is below 3 months of income ($20,000.00). Priority should be building this first."},
		TaxEstimate:     17063,
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("UpsertAndGetUser", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u, err := s.UpsertUser(ctx, model.User{Email: "ana@example.com", Name: "Ana"})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "Ana", u.Name)
		assert.Nil(t, u.Profile)
		assert.Empty(t, u.Goals)

		u2, err := s.UpsertUser(ctx, model.User{ID: u.ID, Email: "ana@new.example.com", Name: "Ana B"})
		require.NoError(t, err)
		assert.Equal(t, u.ID, u2.ID)
		assert.Equal(t, "ana@new.example.com", u2.Email)
		assert.Equal(t, "Ana B", u2.Name)
	})

	t.Run("GetUserNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetUser(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("SaveAndGetProfile", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetProfile(ctx, "u1")
		assert.True(t, errors.Is(err, ErrNotFound))

		require.NoError(t, s.SaveProfile(ctx, "u1", testProfile()))
		got, err := s.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, testProfile(), *got)

		updated := testProfile()
		updated.Salary = 95000
		require.NoError(t, s.SaveProfile(ctx, "u1", updated))
		got, err = s.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 95000.0, got.Salary)

		// The first write creates the user implicitly.
		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, u.Profile)
		assert.Equal(t, 95000.0, u.Profile.Salary)
	})

	t.Run("GoalLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		goals, err := s.ListGoals(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, goals)
		assert.Empty(t, goals)

		house, err := s.CreateGoal(ctx, "u1", model.Goal{Name: "House", TargetAmount: 60000, Horizon: model.HorizonMedium, Priority: 4})
		require.NoError(t, err)
		assert.NotEmpty(t, house.ID)

		_, err = s.CreateGoal(ctx, "u1", model.Goal{ID: "retire", Name: "Retire", TargetAmount: 1e6, Horizon: model.HorizonLong, Priority: 5})
		require.NoError(t, err)

		goals, err = s.ListGoals(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, goals, 2)
		names := []string{goals[0].Name, goals[1].Name}
		assert.ElementsMatch(t, []string{"House", "Retire"}, names)

		house.Horizon = model.HorizonShort
		house.Priority = 2
		require.NoError(t, s.UpdateGoal(ctx, "u1", *house))

		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, u.Goals, 2)
		for _, g := range u.Goals {
			if g.ID == house.ID {
				assert.Equal(t, model.HorizonShort, g.Horizon)
				assert.Equal(t, 2, g.Priority)
			}
		}

		require.NoError(t, s.DeleteGoal(ctx, "u1", "retire"))
		goals, err = s.ListGoals(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, house.ID, goals[0].ID)
	})

	t.Run("GoalNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.UpdateGoal(ctx, "u1", model.Goal{ID: "nope", Name: "x", Horizon: model.HorizonLong, Priority: 1})
		assert.True(t, errors.Is(err, ErrNotFound))

		err = s.DeleteGoal(ctx, "u1", "nope")
		assert.True(t, errors.Is(err, ErrNotFound))

		// Goals are scoped to their owner.
		g, err := s.CreateGoal(ctx, "owner", model.Goal{Name: "Car", Horizon: model.HorizonShort, Priority: 3})
		require.NoError(t, err)
		err = s.DeleteGoal(ctx, "intruder", g.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("SaveGetListPlans", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		base := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
		var ids []string
		for i := range 3 {
			rec := &model.PlanRecord{
				UserID:    "u1",
				Result:    testResult(),
				InputHash: "abc",
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			}
			if i == 2 {
				rec.Note = "Keep going."
			}
			require.NoError(t, s.SavePlan(ctx, rec))
			assert.NotEmpty(t, rec.ID)
			assert.Equal(t, model.PlanSourceDeterministic, rec.Source)
			ids = append(ids, rec.ID)
		}

		got, err := s.GetPlan(ctx, "u1", ids[2])
		require.NoError(t, err)
		assert.Equal(t, testResult(), got.Result)
		assert.Equal(t, "Keep going.", got.Note)
		assert.Equal(t, "abc", got.InputHash)
		assert.True(t, base.Add(2*time.Hour).Equal(got.CreatedAt))

		list, err := s.ListPlans(ctx, PlanFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, ids[2], list[0].ID, "newest first")
		assert.Equal(t, ids[0], list[2].ID)

		page, err := s.ListPlans(ctx, PlanFilter{UserID: "u1", Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, ids[1], page[0].ID)

		other, err := s.ListPlans(ctx, PlanFilter{UserID: "someone-else"})
		require.NoError(t, err)
		assert.NotNil(t, other)
		assert.Empty(t, other)
	})

	t.Run("GetPlanNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rec := &model.PlanRecord{UserID: "u1", Result: testResult()}
		require.NoError(t, s.SavePlan(ctx, rec))

		_, err := s.GetPlan(ctx, "u1", "missing")
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = s.GetPlan(ctx, "u2", rec.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestPlanFilterLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, PlanFilter{}.limit())
	assert.Equal(t, defaultListLimit, PlanFilter{Limit: -3}.limit())
	assert.Equal(t, 7, PlanFilter{Limit: 7}.limit())
}
