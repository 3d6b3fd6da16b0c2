package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/uuid"
)

// RecentSessions returns the user's sessions dated at or after since, oldest first.
func (s *Store) RecentSessions(ctx context.Context, userID int, since time.Time) ([]models.WorkoutSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.name, s.date_ms,
		       e.id, e.name, e.primary_muscle, e.secondary_muscles,
		       st.id, st.weight_kg, st.reps
		FROM workout_sessions s
		LEFT JOIN session_exercises e ON e.session_id = s.id
		LEFT JOIN exercise_sets st ON st.exercise_id = e.id
		WHERE s.user_id = ? AND s.date_ms >= ?
		ORDER BY s.date_ms ASC, s.id, e.position, e.id, st.position, st.id
	`, userID, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var (
		result []models.WorkoutSession
		lastEx sql.NullInt64
	)
	for rows.Next() {
		var (
			sess      models.WorkoutSession
			dateMS    int64
			exID      sql.NullInt64
			exName    sql.NullString
			primary   *string
			secondary sql.NullString
			setID     sql.NullInt64
			set       models.SetEntry
		)
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Name, &dateMS,
			&exID, &exName, &primary, &secondary,
			&setID, &set.Weight, &set.Reps); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		if n := len(result); n == 0 || result[n-1].ID != sess.ID {
			sess.Date = fromMillis(dateMS)
			result = append(result, sess)
			lastEx = sql.NullInt64{}
		}
		current := &result[len(result)-1]
		if !exID.Valid {
			continue
		}
		if lastEx != exID {
			ex := models.ExerciseEntry{Name: exName.String, PrimaryMuscle: primary}
			if secondary.Valid {
				if err := json.Unmarshal([]byte(secondary.String), &ex.SecondaryMuscles); err != nil {
					return nil, fmt.Errorf("decoding secondary muscles of exercise %d: %w", exID.Int64, err)
				}
			}
			current.Exercises = append(current.Exercises, ex)
			lastEx = exID
		}
		if setID.Valid {
			ex := &current.Exercises[len(current.Exercises)-1]
			ex.Sets = append(ex.Sets, set)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return result, nil
}

// InsertSession stores a session with its exercises and sets in one transaction.
// A zero session ID is replaced with a new random one; the stored ID is returned.
func (s *Store) InsertSession(ctx context.Context, sess models.WorkoutSession) (uuid.UUID, error) {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workout_sessions (id, user_id, name, date_ms) VALUES (?, ?, ?, ?)`,
		sess.ID.String(), sess.UserID, sess.Name, toMillis(sess.Date)); err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}

	for i, ex := range sess.Exercises {
		secondary := ex.SecondaryMuscles
		if secondary == nil {
			secondary = []string{}
		}
		encoded, err := json.Marshal(secondary)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encoding secondary muscles: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO session_exercises (session_id, position, name, primary_muscle, secondary_muscles)
			 VALUES (?, ?, ?, ?, ?)`,
			sess.ID.String(), i, ex.Name, ex.PrimaryMuscle, string(encoded))
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting exercise %d: %w", i, err)
		}
		exID, err := res.LastInsertId()
		if err != nil {
			return uuid.Nil, fmt.Errorf("reading exercise id: %w", err)
		}
		for j, set := range ex.Sets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO exercise_sets (exercise_id, position, weight_kg, reps) VALUES (?, ?, ?, ?)`,
				exID, j, set.Weight, set.Reps); err != nil {
				return uuid.Nil, fmt.Errorf("inserting set %d of exercise %d: %w", j, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("committing session: %w", err)
	}
	return sess.ID, nil
}
