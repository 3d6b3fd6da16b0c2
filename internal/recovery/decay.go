package recovery

import "math"

// Assessment is the recovery model's verdict for one muscle.
type Assessment struct {
	Status             Status
	RecoveryPercentage int
	RecoveryTimeHours  *float64
}

// Assess applies the linear recovery model. With no training data (either
// argument nil) the muscle is untrained and fully recovered.
//
// The percentage is hours/recoveryTime*100, rounded and clamped to [0, 100].
// Status thresholds are independent of the gradient bands in gradient.go.
func Assess(hoursSince *float64, intensity *Intensity, c Constants) Assessment {
	if hoursSince == nil || intensity == nil {
		return Assessment{Status: StatusUntrained, RecoveryPercentage: 100}
	}

	hours := *hoursSince
	recoveryTime := c.RecoveryHours(*intensity)
	notRecoveredUntil := recoveryTime * c.NotRecoveredShare

	var status Status
	switch {
	case hours < notRecoveredUntil:
		status = StatusNotRecovered
	case hours < recoveryTime:
		status = StatusRecovering
	default:
		status = StatusRecovered
	}

	pct := math.Round(math.Min(100, hours/recoveryTime*100))
	if pct < 0 {
		// Session dated after now.
		pct = 0
	}

	return Assessment{
		Status:             status,
		RecoveryPercentage: int(pct),
		RecoveryTimeHours:  &recoveryTime,
	}
}
