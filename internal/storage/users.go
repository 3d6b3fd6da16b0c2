package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/bodymap/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by login name and returns its ID.
// Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}

// Profile returns the user's profile, or nil when the user does not exist.
// Users without a profiles row get a profile carrying only identity fields.
func (db *DB) Profile(ctx context.Context, userID int) (*models.Profile, error) {
	p := models.Profile{UserID: userID}
	var goal *string
	err := db.Pool.QueryRow(ctx, `
		SELECT u.login, u.display_name, u.created_at, p.body_weight_kg, p.training_goal
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, userID).Scan(&p.Login, &p.DisplayName, &p.CreatedAt, &p.BodyWeightKg, &goal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	if goal != nil {
		p.TrainingGoal = *goal
	}
	return &p, nil
}

// UpsertProfile stores the editable profile fields for a user.
func (db *DB) UpsertProfile(ctx context.Context, p models.Profile) error {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, body_weight_kg, training_goal)
		SELECT id, $2, $3 FROM users WHERE id = $1
		ON CONFLICT (user_id) DO UPDATE
			SET body_weight_kg = EXCLUDED.body_weight_kg,
			    training_goal = EXCLUDED.training_goal,
			    updated_at = NOW()
	`, p.UserID, p.BodyWeightKg, p.TrainingGoal)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", p.UserID, ErrNotFound)
	}
	return nil
}
