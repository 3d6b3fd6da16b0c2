package recovery

import (
	"math"
	"time"

	"github.com/claude/bodymap/internal/models"
)

type sessionTally struct {
	sets      int
	hadWeight bool
}

// Aggregate attributes each session's sets to muscle groups and returns the
// per-muscle event history plus the date of the latest session that touched
// any muscle. Sessions older than c.Lookback before now are ignored.
//
// Primary muscles receive the full set count. Each mapped secondary label
// receives ceil(sets * c.SecondaryShare); labels that do not normalize, or that
// normalize to the exercise's primary muscle, are skipped.
func Aggregate(now time.Time, sessions []models.WorkoutSession, cat Catalog, c Constants) (History, *time.Time) {
	cutoff := now.Add(-c.Lookback)
	history := make(History)
	var last *time.Time

	for _, s := range sessions {
		if s.Date.Before(cutoff) {
			continue
		}

		tally := make(map[string]*sessionTally)
		var order []string
		add := func(group string, sets int, weighted bool) {
			t, ok := tally[group]
			if !ok {
				t = &sessionTally{}
				tally[group] = t
				order = append(order, group)
			}
			t.sets += sets
			t.hadWeight = t.hadWeight || weighted
		}

		for _, ex := range s.Exercises {
			sets := len(ex.Sets)
			weighted := ex.HasWeight()

			primary := ""
			if ex.PrimaryMuscle != nil {
				primary = *ex.PrimaryMuscle
			}
			if primary != "" {
				add(primary, sets, weighted)
			}

			secondarySets := int(math.Ceil(float64(sets) * c.SecondaryShare))
			for _, label := range ex.SecondaryMuscles {
				group, ok := cat.Normalize(label)
				if !ok || group == primary {
					continue
				}
				add(group, secondarySets, weighted)
			}
		}

		if len(order) == 0 {
			continue
		}
		for _, group := range order {
			t := tally[group]
			history[group] = append(history[group], MuscleEvent{
				Date:      s.Date,
				SetCount:  t.sets,
				HadWeight: t.hadWeight,
			})
		}
		if last == nil || s.Date.After(*last) {
			d := s.Date
			last = &d
		}
	}

	return history, last
}
