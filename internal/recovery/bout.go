package recovery

import "time"

// Bout is the aggregate training stimulus of a muscle's most recent cluster of events.
type Bout struct {
	LastSession     time.Time
	TotalSets       int
	HadWeightedSets bool
}

// CollapseBout finds the latest event and folds every event within window of it
// into one bout. Older events belong to an earlier, already decayed bout and are
// ignored. ok is false when events is empty.
func CollapseBout(events []MuscleEvent, window time.Duration) (b Bout, ok bool) {
	if len(events) == 0 {
		return Bout{}, false
	}

	last := events[0].Date
	for _, e := range events[1:] {
		if e.Date.After(last) {
			last = e.Date
		}
	}

	b.LastSession = last
	for _, e := range events {
		diff := last.Sub(e.Date)
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			continue
		}
		b.TotalSets += e.SetCount
		b.HadWeightedSets = b.HadWeightedSets || e.HadWeight
	}
	return b, true
}
