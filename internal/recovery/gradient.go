package recovery

import "math"

// Palette is the body-map gradient, from freshly trained to fully recovered.
// Entries cover 0-20, 20-40, 40-60, 60-80 and 80-100 (exclusive); the last is 100.
var Palette = [6]string{
	"#dc2626",
	"#ea580c",
	"#f59e0b",
	"#facc15",
	"#a3e635",
	"#22c55e",
}

// GradientColor maps a recovery percentage to a palette color.
func GradientColor(pct float64) string {
	if pct >= 100 {
		return Palette[len(Palette)-1]
	}
	clamped := math.Max(0, math.Min(99, pct))
	return Palette[int(math.Floor(clamped/20))]
}

// GradientStep maps a recovery percentage to a renderer intensity step in 1..6.
// It returns 0, meaning do not render, for percentages above 100.
func GradientStep(pct float64) int {
	if pct > 100 {
		return 0
	}
	if pct == 100 {
		return 6
	}
	step := int(math.Floor(pct/20)) + 1
	return max(1, min(6, step))
}
