package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/bodymap/internal/models"
)

// GetOrCreateUser finds or creates a user by login and returns its ID.
// A non-empty displayName replaces the stored one.
func (s *Store) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, created_ms) VALUES (?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id
	`, login, displayName, toMillis(time.Now())).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}

// UserID looks up a user by login.
func (s *Store) UserID(ctx context.Context, login string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE login = ?`, login).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %s: %w", login, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("querying user: %w", err)
	}
	return id, nil
}

// Profile returns the user's profile, or nil when the user does not exist.
func (s *Store) Profile(ctx context.Context, userID int) (*models.Profile, error) {
	p := models.Profile{UserID: userID}
	var (
		created int64
		goal    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.login, u.display_name, u.created_ms, p.body_weight_kg, p.training_goal
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = ?
	`, userID).Scan(&p.Login, &p.DisplayName, &created, &p.BodyWeightKg, &goal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	p.CreatedAt = fromMillis(created)
	p.TrainingGoal = goal.String
	return &p, nil
}

// UpsertProfile stores the editable profile fields for an existing user.
func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, body_weight_kg, training_goal)
		SELECT id, ?, ? FROM users WHERE id = ?
		ON CONFLICT (user_id) DO UPDATE
			SET body_weight_kg = excluded.body_weight_kg, training_goal = excluded.training_goal
	`, p.BodyWeightKg, p.TrainingGoal, p.UserID)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", p.UserID, ErrNotFound)
	}
	return nil
}
