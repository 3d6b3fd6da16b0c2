package recovery

import "testing"

// TestClassifyThresholds verifies the tier boundaries and the weighted multiplier.
func TestClassifyThresholds(t *testing.T) {
	c := DefaultConstants()
	tests := []struct {
		sets     int
		weighted bool
		want     Intensity
	}{
		{0, false, IntensityLight},
		{3, false, IntensityLight},
		{4, false, IntensityModerate},
		{7, false, IntensityModerate},
		{8, false, IntensityHeavy},
		{2, true, IntensityLight},    // 3
		{3, true, IntensityModerate}, // 4.5
		{5, true, IntensityModerate}, // 7.5
		{6, true, IntensityHeavy},    // 9
		{10, true, IntensityHeavy},   // 15
	}
	for _, tt := range tests {
		got := Classify(Bout{TotalSets: tt.sets, HadWeightedSets: tt.weighted}, c)
		if got != tt.want {
			t.Errorf("Classify(sets=%d, weighted=%v) = %s, want %s", tt.sets, tt.weighted, got, tt.want)
		}
	}
}

// TestClassifyMonotonic verifies adding sets never lowers the tier.
func TestClassifyMonotonic(t *testing.T) {
	c := DefaultConstants()
	rank := map[Intensity]int{IntensityLight: 0, IntensityModerate: 1, IntensityHeavy: 2}

	for _, weighted := range []bool{false, true} {
		prev := -1
		for sets := 0; sets <= 40; sets++ {
			r := rank[Classify(Bout{TotalSets: sets, HadWeightedSets: weighted}, c)]
			if r < prev {
				t.Fatalf("tier dropped at sets=%d weighted=%v", sets, weighted)
			}
			prev = r
		}
	}
}

// TestEffectiveSets verifies the weighted multiplier is applied only to weighted bouts.
func TestEffectiveSets(t *testing.T) {
	c := DefaultConstants()
	if got := EffectiveSets(10, true, c); got != 15 {
		t.Errorf("EffectiveSets(10, weighted) = %v, want 15", got)
	}
	if got := EffectiveSets(7, false, c); got != 7 {
		t.Errorf("EffectiveSets(7, unweighted) = %v, want 7", got)
	}
}
