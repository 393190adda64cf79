package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/finplanner/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY REFERENCES users(id),
	profile    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS goals (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id),
	name          TEXT NOT NULL,
	target_amount REAL NOT NULL DEFAULT 0,
	horizon       TEXT NOT NULL,
	priority      INTEGER NOT NULL DEFAULT 3,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	source     TEXT NOT NULL,
	result     TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	input_hash TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_plans_user_created ON plans(user_id, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, user model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name, updated_at = excluded.updated_at`,
		user.ID, user.Email, user.Name, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert user %s", user.ID)
	}
	return s.GetUser(ctx, user.ID)
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at, updated_at FROM users WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "user %s", userID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get user %s", userID)
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

// ensureUser creates a bare user row if none exists.
func (s *SQLiteStore) ensureUser(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		userID, now, now,
	)
	return eris.Wrapf(err, "sqlite: ensure user %s", userID)
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, userID string, profile model.UserProfile) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, profile, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at`,
		userID, string(profileJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save profile %s", userID)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profileJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM profiles WHERE user_id = ?`, userID,
	).Scan(&profileJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "profile for user %s", userID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", userID)
	}

	var p model.UserProfile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	return &p, nil
}

func (s *SQLiteStore) CreateGoal(ctx context.Context, userID string, goal model.Goal) (*model.Goal, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, name, target_amount, horizon, priority, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, userID, goal.Name, goal.TargetAmount, string(goal.Horizon), goal.Priority, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert goal for user %s", userID)
	}
	return &goal, nil
}

func (s *SQLiteStore) UpdateGoal(ctx context.Context, userID string, goal model.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, horizon = ?, priority = ? WHERE id = ? AND user_id = ?`,
		goal.Name, goal.TargetAmount, string(goal.Horizon), goal.Priority, goal.ID, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update goal %s", goal.ID)
	}
	return checkRowsAffected(res, "goal", goal.ID)
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, goalID, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete goal %s", goalID)
	}
	return checkRowsAffected(res, "goal", goalID)
}

func (s *SQLiteStore) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_amount, horizon, priority FROM goals WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list goals %s", userID)
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
	return goals, eris.Wrap(rows.Err(), "sqlite: list goals iterate")
}

func (s *SQLiteStore) SavePlan(ctx context.Context, rec *model.PlanRecord) error {
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
		return eris.Wrap(err, "sqlite: marshal plan result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, user_id, source, result, note, input_hash, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.Source), string(resultJSON), rec.Note, rec.InputHash, rec.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert plan for user %s", rec.UserID)
}

func (s *SQLiteStore) GetPlan(ctx context.Context, userID, planID string) (*model.PlanRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, source, result, note, input_hash, created_at FROM plans WHERE id = ? AND user_id = ?`,
		planID, userID,
	)
	rec, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "plan %s", planID)
	}
	return rec, err
}

func (s *SQLiteStore) ListPlans(ctx context.Context, filter PlanFilter) ([]model.PlanRecord, error) {
	query := `SELECT id, user_id, source, result, note, input_hash, created_at FROM plans WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`
	args := []any{filter.UserID, filter.limit()}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plans")
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
	return plans, eris.Wrap(rows.Err(), "sqlite: list plans iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanGoal(row scannable) (model.Goal, error) {
	var g model.Goal
	var horizon string
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &horizon, &g.Priority); err != nil {
		return model.Goal{}, eris.Wrap(err, "scan goal")
	}
	g.Horizon = model.Horizon(horizon)
	return g, nil
}

// scanPlan returns sql.ErrNoRows or pgx.ErrNoRows unwrapped so callers can
// map them to ErrNotFound.
func scanPlan(row scannable) (*model.PlanRecord, error) {
	var rec model.PlanRecord
	var source string
	var resultJSON []byte

	err := row.Scan(&rec.ID, &rec.UserID, &source, &resultJSON, &rec.Note, &rec.InputHash, &rec.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, eris.Wrap(err, "scan plan")
	}
	rec.Source = model.PlanSource(source)

	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, eris.Wrap(err, "unmarshal plan result")
	}
	return &rec, nil
}
