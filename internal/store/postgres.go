package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/db"
	"github.com/sells-group/finplanner/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var (
	upsertUserSQL = db.MustUpsertSQL(db.UpsertConfig{
		Table:        "users",
		Columns:      []string{"id", "email", "name", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"email", "name", "updated_at"},
	})
	ensureUserSQL = db.MustUpsertSQL(db.UpsertConfig{
		Table:        "users",
		Columns:      []string{"id", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{},
	})
	upsertProfileSQL = db.MustUpsertSQL(db.UpsertConfig{
		Table:        "profiles",
		Columns:      []string{"user_id", "profile", "updated_at"},
		ConflictKeys: []string{"user_id"},
	})
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS goals (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	target_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	horizon       TEXT NOT NULL,
	priority      INTEGER NOT NULL DEFAULT 3 CHECK (priority BETWEEN 1 AND 5),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	source     TEXT NOT NULL,
	result     JSONB NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	input_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_plans_user_created ON plans(user_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	if _, err := s.pool.Exec(ctx, upsertUserSQL, user.ID, user.Email, user.Name, now, now); err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert user %s", user.ID)
	}
	return s.GetUser(ctx, user.ID)
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at, updated_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "user %s", userID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get user %s", userID)
	}

	profile, err := s.GetProfile(ctx, userID)
	switch {
	case err == nil:
		u.Profile = profile
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if u.Goals, err = s.ListGoals(ctx, userID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) ensureUser(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, ensureUserSQL, userID, now, now)
	return eris.Wrapf(err, "postgres: ensure user %s", userID)
}

func (s *PostgresStore) SaveProfile(ctx context.Context, userID string, profile model.UserProfile) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx, upsertProfileSQL, userID, profileJSON, time.Now().UTC())
	return eris.Wrapf(err, "postgres: save profile %s", userID)
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profileJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM profiles WHERE user_id = $1`, userID,
	).Scan(&profileJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "profile for user %s", userID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", userID)
	}

	var p model.UserProfile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &p, nil
}

func (s *PostgresStore) CreateGoal(ctx context.Context, userID string, goal model.Goal) (*model.Goal, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, horizon, priority, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		goal.ID, userID, goal.Name, goal.TargetAmount, string(goal.Horizon), goal.Priority, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert goal for user %s", userID)
	}
	return &goal, nil
}

func (s *PostgresStore) UpdateGoal(ctx context.Context, userID string, goal model.Goal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE goals SET name = $1, target_amount = $2, horizon = $3, priority = $4 WHERE id = $5 AND user_id = $6`,
		goal.Name, goal.TargetAmount, string(goal.Horizon), goal.Priority, goal.ID, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update goal %s", goal.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "goal %s", goal.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete goal %s", goalID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "goal %s", goalID)
	}
	return nil
}

func (s *PostgresStore) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, target_amount, horizon, priority FROM goals WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list goals %s", userID)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, eris.Wrap(rows.Err(), "postgres: list goals iterate")
}

func (s *PostgresStore) SavePlan(ctx context.Context, rec *model.PlanRecord) error {
	if err := s.ensureUser(ctx, rec.UserID); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = model.PlanSourceDeterministic
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal plan result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO plans (id, user_id, source, result, note, input_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, string(rec.Source), resultJSON, rec.Note, rec.InputHash, rec.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert plan for user %s", rec.UserID)
}

func (s *PostgresStore) GetPlan(ctx context.Context, userID, planID string) (*model.PlanRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, source, result, note, input_hash, created_at FROM plans WHERE id = $1 AND user_id = $2`,
		planID, userID,
	)
	rec, err := scanPlan(row)
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "plan %s", planID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan %s", planID)
	}
	return rec, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source, result, note, input_hash, created_at FROM plans WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		filter.UserID, filter.limit(), max(filter.Offset, 0),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plans")
	}
	defer rows.Close()

	plans := []model.PlanRecord{}
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *rec)
	}
	return plans, eris.Wrap(rows.Err(), "postgres: list plans iterate")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
