package recovery

import (
	"strings"
	"time"

	"github.com/claude/bodymap/internal/models"
)

var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

// stubCatalog is a small in-memory catalog for engine tests.
type stubCatalog struct {
	groups  []string
	aliases map[string]string
}

func newStubCatalog() stubCatalog {
	return stubCatalog{
		groups:  []string{"Back", "Biceps", "Chest", "Quads", "Shoulders", "Triceps"},
		aliases: map[string]string{
			"lats":        "Back",
			"back":        "Back",
			"biceps":      "Biceps",
			"chest":       "Chest",
			"quads":       "Quads",
			"front delts": "Shoulders",
			"shoulders":   "Shoulders",
			"triceps":     "Triceps",
		},
	}
}

func (c stubCatalog) Normalize(label string) (string, bool) {
	g, ok := c.aliases[strings.ToLower(label)]
	return g, ok
}

func (c stubCatalog) Groups() []string { return c.groups }

func ptr[T any](v T) *T { return &v }

// sets builds n sets, all with the given weight (nil for bodyweight).
func sets(n int, weight *float64) []models.SetEntry {
	out := make([]models.SetEntry, n)
	for i := range out {
		out[i] = models.SetEntry{Weight: weight}
	}
	return out
}

func exercise(primary string, secondary []string, s []models.SetEntry) models.ExerciseEntry {
	ex := models.ExerciseEntry{SecondaryMuscles: secondary, Sets: s}
	if primary != "" {
		ex.PrimaryMuscle = ptr(primary)
	}
	return ex
}

func session(date time.Time, exercises ...models.ExerciseEntry) models.WorkoutSession {
	return models.WorkoutSession{Date: date, Exercises: exercises}
}
