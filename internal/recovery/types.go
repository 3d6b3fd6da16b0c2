// Package recovery computes per-muscle recovery state from recent training history.
//
// Every function in this package is pure: results depend only on the supplied
// time, session records, muscle catalog and Constants. Fetching, caching and
// refresh coordination belong to the caller.
package recovery

import (
	"sort"
	"time"

	"github.com/claude/bodymap/internal/models"
)

// Status is the categorical recovery state of a muscle group.
type Status string

const (
	StatusNotRecovered Status = "not_recovered"
	StatusRecovering   Status = "recovering"
	StatusRecovered    Status = "recovered"
	StatusUntrained    Status = "untrained"
)

// Intensity is the training-load tier of a bout.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityHeavy    Intensity = "heavy"
)

// Catalog resolves secondary-muscle labels and enumerates the canonical groups.
// *muscles.Table satisfies it.
type Catalog interface {
	Normalize(label string) (string, bool)
	Groups() []string
}

// MuscleEvent is one session's contribution to a single muscle group.
type MuscleEvent struct {
	Date      time.Time
	SetCount  int
	HadWeight bool
}

// History maps a canonical muscle group to its events inside the lookback window.
type History map[string][]MuscleEvent

// Snapshot is the recovery state of one muscle group.
// Intensity and RecoveryTimeHours are nil exactly when Status is StatusUntrained.
type Snapshot struct {
	MuscleGroup           string     `json:"muscle_group"`
	LastWorkedDate        *time.Time `json:"last_worked_date"`
	HoursSinceLastWorkout *float64   `json:"hours_since_last_workout"`
	Status                Status     `json:"status"`
	RecoveryPercentage    int        `json:"recovery_percentage"`
	Intensity             *Intensity `json:"intensity"`
	RecoveryTimeHours     *float64   `json:"recovery_time_hours"`
}

// Overview is the whole-body dashboard summary.
type Overview struct {
	DaysSinceLastWorkout *int `json:"days_since_last_workout"`
	FreshMuscleGroups    int  `json:"fresh_muscle_groups"`
	TotalMuscleGroups    int  `json:"total_muscle_groups"`
}

// Result is the output of one computation pass.
type Result struct {
	ComputedAt time.Time           `json:"computed_at"`
	Snapshots  map[string]Snapshot `json:"-"`
	Overview   Overview            `json:"overview"`
	Profile    *models.Profile     `json:"profile"`
}

// Snapshot returns the state of a canonical muscle group.
func (r *Result) Snapshot(group string) (Snapshot, bool) {
	s, ok := r.Snapshots[group]
	return s, ok
}

// Sorted returns all snapshots ordered by muscle group name.
func (r *Result) Sorted() []Snapshot {
	out := make([]Snapshot, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MuscleGroup < out[j].MuscleGroup
	})
	return out
}
