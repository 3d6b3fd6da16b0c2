package recovery

// EffectiveSets scales the set count by c.WeightedMultiplier when any set was weighted.
func EffectiveSets(totalSets int, weighted bool, c Constants) float64 {
	sets := float64(totalSets)
	if weighted {
		sets *= c.WeightedMultiplier
	}
	return sets
}

// Classify returns the intensity tier of a bout.
func Classify(b Bout, c Constants) Intensity {
	eff := EffectiveSets(b.TotalSets, b.HadWeightedSets, c)
	switch {
	case eff < c.ModerateSets:
		return IntensityLight
	case eff < c.HeavySets:
		return IntensityModerate
	default:
		return IntensityHeavy
	}
}
