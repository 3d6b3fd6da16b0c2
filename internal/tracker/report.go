package tracker

import (
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/recovery"
)

// Report is the rendering-layer view of a tracker: the last result plus the
// loading/refreshing flags. It is the JSON body of the recovery API.
type Report struct {
	ComputedAt *time.Time          `json:"computed_at"`
	Loading    bool                `json:"loading"`
	Refreshing bool                `json:"refreshing"`
	Error      string              `json:"error,omitempty"`
	Overview   *recovery.Overview  `json:"overview"`
	Profile    *models.Profile     `json:"profile"`
	Muscles    []recovery.Snapshot `json:"muscles"`
}

// Report snapshots the tracker state. Muscles are sorted by group name and
// empty when no pass has succeeded yet.
func (t *Tracker) Report() *Report {
	t.mu.RLock()
	res, lastErr := t.result, t.lastErr
	t.mu.RUnlock()

	r := &Report{
		Loading:    t.Loading(),
		Refreshing: t.Refreshing(),
		Muscles:    []recovery.Snapshot{},
	}
	if lastErr != nil {
		r.Error = lastErr.Error()
	}
	if res != nil {
		computed := res.ComputedAt
		overview := res.Overview
		r.ComputedAt = &computed
		r.Overview = &overview
		r.Profile = res.Profile
		r.Muscles = res.Sorted()
	}
	return r
}

// Muscle finds a snapshot in the report by canonical group name.
func (r *Report) Muscle(group string) (recovery.Snapshot, bool) {
	for _, s := range r.Muscles {
		if s.MuscleGroup == group {
			return s, true
		}
	}
	return recovery.Snapshot{}, false
}

// BodyPartCatalog enumerates display body parts. *muscles.Table satisfies it.
type BodyPartCatalog interface {
	BodyParts() []string
	GroupForBodyPart(part string) (string, bool)
}

// BodyPartState is one body-map region ready for rendering.
type BodyPartState struct {
	BodyPart           string          `json:"body_part"`
	MuscleGroup        string          `json:"muscle_group"`
	Status             recovery.Status `json:"status"`
	RecoveryPercentage int             `json:"recovery_percentage"`
	Color              string          `json:"color"`
	Step               int             `json:"step"`
}

// NewBodyPartState resolves the gradient color and step for a snapshot.
func NewBodyPartState(part string, s recovery.Snapshot) BodyPartState {
	pct := float64(s.RecoveryPercentage)
	return BodyPartState{
		BodyPart:           part,
		MuscleGroup:        s.MuscleGroup,
		Status:             s.Status,
		RecoveryPercentage: s.RecoveryPercentage,
		Color:              recovery.GradientColor(pct),
		Step:               recovery.GradientStep(pct),
	}
}

// BodyMap lists every body part in catalog order with its group's state.
// It returns nil when the report holds no result.
func BodyMap(r *Report, catalog BodyPartCatalog) []BodyPartState {
	if r.ComputedAt == nil {
		return nil
	}
	parts := catalog.BodyParts()
	out := make([]BodyPartState, 0, len(parts))
	for _, part := range parts {
		group, ok := catalog.GroupForBodyPart(part)
		if !ok {
			continue
		}
		s, ok := r.Muscle(group)
		if !ok {
			continue
		}
		out = append(out, NewBodyPartState(part, s))
	}
	return out
}
