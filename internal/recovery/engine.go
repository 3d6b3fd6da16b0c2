package recovery

import (
	"time"

	"github.com/claude/bodymap/internal/models"
)

// Recompute runs the full pipeline from raw sessions to per-muscle snapshots and
// the overview. Every group the catalog lists is present in the result, as
// untrained when it has no events. The profile is passed through untouched.
func Recompute(now time.Time, sessions []models.WorkoutSession, profile *models.Profile, cat Catalog, c Constants) *Result {
	history, lastWorkout := Aggregate(now, sessions, cat, c)
	groups := cat.Groups()

	snapshots := make(map[string]Snapshot, len(groups))
	for _, g := range groups {
		snapshots[g] = snapshotFor(now, g, history[g], c)
	}

	return &Result{
		ComputedAt: now,
		Snapshots:  snapshots,
		Overview:   Summarize(now, snapshots, groups, lastWorkout),
		Profile:    profile,
	}
}

// snapshotFor collapses one muscle's history and runs it through the recovery model.
func snapshotFor(now time.Time, group string, events []MuscleEvent, c Constants) Snapshot {
	snap := Snapshot{MuscleGroup: group}

	var hours *float64
	var intensity *Intensity
	if bout, ok := CollapseBout(events, c.BoutWindow); ok {
		last := bout.LastSession
		h := now.Sub(last).Hours()
		i := Classify(bout, c)
		snap.LastWorkedDate = &last
		hours, intensity = &h, &i
	}

	a := Assess(hours, intensity, c)
	snap.HoursSinceLastWorkout = hours
	snap.Status = a.Status
	snap.RecoveryPercentage = a.RecoveryPercentage
	snap.Intensity = intensity
	snap.RecoveryTimeHours = a.RecoveryTimeHours
	return snap
}
