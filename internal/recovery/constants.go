package recovery

import "time"

// Constants holds the fixed parameters of the recovery model. Values are
// copied into every call; nothing in the package mutates them.
type Constants struct {
	// Lookback bounds which sessions are considered at all.
	Lookback time.Duration
	// BoutWindow groups events this close to the most recent one into a single bout.
	BoutWindow time.Duration

	// SecondaryShare is the fraction of an exercise's sets credited to each
	// secondary muscle, rounded up.
	SecondaryShare float64
	// WeightedMultiplier scales the set count when any set in the bout carried weight.
	WeightedMultiplier float64

	// Effective-set thresholds: below ModerateSets is light, below HeavySets is moderate.
	ModerateSets float64
	HeavySets    float64

	LightRecoveryHours    float64
	ModerateRecoveryHours float64
	HeavyRecoveryHours    float64

	// NotRecoveredShare of the recovery time marks the end of the not_recovered phase.
	NotRecoveredShare float64
}

// DefaultConstants returns the production model parameters.
func DefaultConstants() Constants {
	return Constants{
		Lookback:              7 * 24 * time.Hour,
		BoutWindow:            24 * time.Hour,
		SecondaryShare:        0.5,
		WeightedMultiplier:    1.5,
		ModerateSets:          4,
		HeavySets:             8,
		LightRecoveryHours:    36,
		ModerateRecoveryHours: 54,
		HeavyRecoveryHours:    72,
		NotRecoveredShare:     0.33,
	}
}

// RecoveryHours returns the full recovery time for an intensity tier.
func (c Constants) RecoveryHours(i Intensity) float64 {
	switch i {
	case IntensityHeavy:
		return c.HeavyRecoveryHours
	case IntensityModerate:
		return c.ModerateRecoveryHours
	default:
		return c.LightRecoveryHours
	}
}
