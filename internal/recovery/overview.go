package recovery

import (
	"math"
	"time"
)

// Summarize builds the dashboard overview. Every group in groups counts toward
// the total; recovered and untrained groups count as fresh.
func Summarize(now time.Time, snapshots map[string]Snapshot, groups []string, lastWorkout *time.Time) Overview {
	o := Overview{TotalMuscleGroups: len(groups)}

	recovering := 0
	for _, g := range groups {
		switch snapshots[g].Status {
		case StatusNotRecovered, StatusRecovering:
			recovering++
		}
	}
	o.FreshMuscleGroups = o.TotalMuscleGroups - recovering

	if lastWorkout != nil {
		days := int(math.Floor(now.Sub(*lastWorkout).Hours() / 24))
		o.DaysSinceLastWorkout = &days
	}
	return o
}
