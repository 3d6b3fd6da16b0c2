package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is one logged training session with its exercises.
type WorkoutSession struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int             `json:"user_id"`
	Name      string          `json:"name,omitempty"`
	Date      time.Time       `json:"date"`
	Exercises []ExerciseEntry `json:"exercises"`
}

// ExerciseEntry is a single exercise performed within a session.
// PrimaryMuscle is a canonical muscle group; SecondaryMuscles are free-form labels.
type ExerciseEntry struct {
	Name             string     `json:"name,omitempty"`
	PrimaryMuscle    *string    `json:"primary_muscle"`
	SecondaryMuscles []string   `json:"secondary_muscles"`
	Sets             []SetEntry `json:"sets"`
}

// SetEntry is one performed set. Weight is nil for bodyweight or unrecorded sets.
type SetEntry struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps,omitempty"`
}

// HasWeight reports whether any set carried a nonzero external load.
func (e ExerciseEntry) HasWeight() bool {
	for _, s := range e.Sets {
		if s.Weight != nil && *s.Weight != 0 {
			return true
		}
	}
	return false
}

// Profile is the user's profile record. It is passed through to callers untouched.
type Profile struct {
	UserID       int       `json:"user_id"`
	Login        string    `json:"login"`
	DisplayName  string    `json:"display_name"`
	BodyWeightKg *float64  `json:"body_weight_kg,omitempty"`
	TrainingGoal string    `json:"training_goal,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
