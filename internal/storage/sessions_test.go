package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// testDB connects to the database named by BODYMAP_TEST_DSN, applying
// migrations first. Tests are skipped when it is unset.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("BODYMAP_TEST_DSN")
	if dsn == "" {
		t.Skip("BODYMAP_TEST_DSN not set")
	}
	if err := RunMigrations(dsn, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

// TestInsertAndReadSessions verifies a stored session round-trips with nested
// exercises, nullable weights and the since filter.
func TestInsertAndReadSessions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	login := "storage-test-" + time.Now().Format("150405.000000000")
	userID, err := db.GetOrCreateUser(ctx, login, "Storage Test")
	if err != nil {
		t.Fatal(err)
	}

	w := 60.0
	reps := 8
	back := "Back"
	day := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	in := models.WorkoutSession{
		UserID: userID,
		Name:   "Pull",
		Date:   day,
		Exercises: []models.ExerciseEntry{
			{
				Name:             "Row",
				PrimaryMuscle:    &back,
				SecondaryMuscles: []string{"biceps", "rear delts"},
				Sets:             []models.SetEntry{{Weight: &w, Reps: &reps}, {Reps: &reps}},
			},
			{Name: "Stretch", SecondaryMuscles: []string{}},
		},
	}
	id, err := db.InsertSession(ctx, in)
	if err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	old := models.WorkoutSession{UserID: userID, Date: day.AddDate(0, 0, -30)}
	if _, err := db.InsertSession(ctx, old); err != nil {
		t.Fatalf("InsertSession(old): %v", err)
	}

	got, err := db.RecentSessions(ctx, userID, day.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
	in.ID = id
	if diff := cmp.Diff(in, got[0], cmpopts.EquateEmpty(), cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
}

// TestProfileMissingUser verifies an unknown user yields a nil profile and no error.
func TestProfileMissingUser(t *testing.T) {
	db := testDB(t)
	p, err := db.Profile(context.Background(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("profile = %+v, want nil", p)
	}
}
