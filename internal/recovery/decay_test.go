package recovery

import "testing"

// TestAssessUntrained verifies missing inputs yield untrained at 100%.
func TestAssessUntrained(t *testing.T) {
	c := DefaultConstants()
	heavy := IntensityHeavy
	hours := 5.0

	for name, a := range map[string]Assessment{
		"both nil":      Assess(nil, nil, c),
		"nil hours":     Assess(nil, &heavy, c),
		"nil intensity": Assess(&hours, nil, c),
	} {
		if a.Status != StatusUntrained {
			t.Errorf("%s: status = %s, want untrained", name, a.Status)
		}
		if a.RecoveryPercentage != 100 {
			t.Errorf("%s: pct = %d, want 100", name, a.RecoveryPercentage)
		}
		if a.RecoveryTimeHours != nil {
			t.Errorf("%s: recovery time = %v, want nil", name, *a.RecoveryTimeHours)
		}
	}
}

// TestAssessStatusBands verifies the not_recovered/recovering/recovered thresholds
// and the linear percentage for each tier.
func TestAssessStatusBands(t *testing.T) {
	c := DefaultConstants()
	tests := []struct {
		name      string
		intensity Intensity
		hours     float64
		status    Status
		pct       int
	}{
		{"heavy fresh", IntensityHeavy, 0, StatusNotRecovered, 0},
		{"heavy just before third", IntensityHeavy, 23.7, StatusNotRecovered, 33},
		{"heavy past third", IntensityHeavy, 24, StatusRecovering, 33},
		{"heavy midway", IntensityHeavy, 36, StatusRecovering, 50},
		{"heavy done", IntensityHeavy, 72, StatusRecovered, 100},
		{"heavy long ago", IntensityHeavy, 150, StatusRecovered, 100},
		{"moderate", IntensityModerate, 27, StatusRecovering, 50},
		{"moderate early", IntensityModerate, 17, StatusNotRecovered, 31},
		{"light", IntensityLight, 9, StatusNotRecovered, 25},
		{"light done", IntensityLight, 36, StatusRecovered, 100},
		{"rounding half up", IntensityLight, 4.5, StatusNotRecovered, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := tt.intensity
			h := tt.hours
			a := Assess(&h, &i, c)
			if a.Status != tt.status {
				t.Errorf("status = %s, want %s", a.Status, tt.status)
			}
			if a.RecoveryPercentage != tt.pct {
				t.Errorf("pct = %d, want %d", a.RecoveryPercentage, tt.pct)
			}
			if a.RecoveryTimeHours == nil || *a.RecoveryTimeHours != c.RecoveryHours(i) {
				t.Errorf("recovery time = %v, want %v", a.RecoveryTimeHours, c.RecoveryHours(i))
			}
		})
	}
}

// TestAssessMonotonic verifies the percentage never decreases with time and stays within [0, 100].
func TestAssessMonotonic(t *testing.T) {
	c := DefaultConstants()
	for _, i := range []Intensity{IntensityLight, IntensityModerate, IntensityHeavy} {
		prev := -1
		for h := 0.0; h <= 200; h += 0.5 {
			hours := h
			intensity := i
			pct := Assess(&hours, &intensity, c).RecoveryPercentage
			if pct < prev {
				t.Fatalf("%s: pct dropped from %d to %d at %.1fh", i, prev, pct, h)
			}
			if pct < 0 || pct > 100 {
				t.Fatalf("%s: pct %d out of range at %.1fh", i, pct, h)
			}
			prev = pct
		}
	}
}

// TestAssessFutureSession verifies a session dated after now clamps to 0%.
func TestAssessFutureSession(t *testing.T) {
	c := DefaultConstants()
	i := IntensityLight
	h := -3.0
	a := Assess(&h, &i, c)
	if a.RecoveryPercentage != 0 {
		t.Errorf("pct = %d, want 0", a.RecoveryPercentage)
	}
	if a.Status != StatusNotRecovered {
		t.Errorf("status = %s, want not_recovered", a.Status)
	}
}
