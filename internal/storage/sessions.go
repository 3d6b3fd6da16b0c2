package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecentSessions returns the user's sessions dated at or after since, oldest
// first, with exercises and sets in logged order.
func (db *DB) RecentSessions(ctx context.Context, userID int, since time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.user_id, s.name, s.date,
		       e.id, e.name, e.primary_muscle, e.secondary_muscles,
		       st.id, st.weight_kg, st.reps
		FROM workout_sessions s
		LEFT JOIN session_exercises e ON e.session_id = s.id
		LEFT JOIN exercise_sets st ON st.exercise_id = e.id
		WHERE s.user_id = $1 AND s.date >= $2
		ORDER BY s.date ASC, s.id, e.position, e.id, st.position, st.id
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var (
		result  []models.WorkoutSession
		lastEx  int64
		haveEx  bool
		current *models.WorkoutSession
	)
	for rows.Next() {
		var (
			s         models.WorkoutSession
			exID      *int64
			exName    *string
			primary   *string
			secondary []string
			setID     *int64
			set       models.SetEntry
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Date,
			&exID, &exName, &primary, &secondary,
			&setID, &set.Weight, &set.Reps); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		if current == nil || current.ID != s.ID {
			result = append(result, s)
			current = &result[len(result)-1]
			haveEx = false
		}
		if exID == nil {
			continue
		}
		if !haveEx || lastEx != *exID {
			ex := models.ExerciseEntry{PrimaryMuscle: primary, SecondaryMuscles: secondary}
			if exName != nil {
				ex.Name = *exName
			}
			current.Exercises = append(current.Exercises, ex)
			lastEx, haveEx = *exID, true
		}
		if setID != nil {
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
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) (uuid.UUID, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, name, date) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.Name, s.Date); err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}

	for i, ex := range s.Exercises {
		secondary := ex.SecondaryMuscles
		if secondary == nil {
			secondary = []string{}
		}
		var exID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO session_exercises (session_id, position, name, primary_muscle, secondary_muscles)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			s.ID, i, ex.Name, ex.PrimaryMuscle, secondary).Scan(&exID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting exercise %d: %w", i, err)
		}
		if err := insertSets(ctx, tx, exID, ex.Sets); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing session: %w", err)
	}
	return s.ID, nil
}

func insertSets(ctx context.Context, tx pgx.Tx, exerciseID int64, sets []models.SetEntry) error {
	if len(sets) == 0 {
		return nil
	}

	query := `INSERT INTO exercise_sets (exercise_id, position, weight_kg, reps) VALUES `
	args := make([]any, 0, len(sets)*4)
	valueStrings := make([]string, 0, len(sets))

	for i, set := range sets {
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4))
		args = append(args, exerciseID, i, set.Weight, set.Reps)
	}

	if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting sets: %w", err)
	}
	return nil
}
