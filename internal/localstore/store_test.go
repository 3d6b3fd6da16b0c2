package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "bodymap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, login, name string) int {
	t.Helper()
	id, err := s.GetOrCreateUser(context.Background(), login, name)
	if err != nil {
		t.Fatalf("GetOrCreateUser(%q): %v", login, err)
	}
	return id
}

func ptr[T any](v T) *T { return &v }

// TestOpenIsIdempotent verifies reopening an existing file keeps the data.
func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodymap.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	id := mustUser(t, s, "a@example.com", "A")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.UserID(context.Background(), "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("UserID after reopen = %d, want %d", got, id)
	}
}

// TestGetOrCreateUser verifies repeated calls return the same ID and keep the display name.
func TestGetOrCreateUser(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	first := mustUser(t, s, "sam@example.com", "Sam")
	second := mustUser(t, s, "sam@example.com", "")
	if first != second {
		t.Errorf("second call id = %d, want %d", second, first)
	}

	p, err := s.Profile(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("profile = nil, want a row")
	}
	if p.DisplayName != "Sam" || p.Login != "sam@example.com" {
		t.Errorf("profile = %q/%q, want Sam/sam@example.com", p.DisplayName, p.Login)
	}
	if p.BodyWeightKg != nil {
		t.Errorf("body weight = %v, want nil", *p.BodyWeightKg)
	}
}

// TestUserIDUnknown verifies an unknown login wraps ErrNotFound.
func TestUserIDUnknown(t *testing.T) {
	s := openTemp(t)
	if _, err := s.UserID(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestProfileMissing verifies a missing user yields nil without error.
func TestProfileMissing(t *testing.T) {
	s := openTemp(t)
	p, err := s.Profile(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("profile = %+v, want nil", p)
	}
}

// TestUpsertProfile verifies profile fields are stored and replaced.
func TestUpsertProfile(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	id := mustUser(t, s, "sam@example.com", "Sam")

	for _, p := range []models.Profile{
		{UserID: id, BodyWeightKg: ptr(80.5), TrainingGoal: "strength"},
		{UserID: id, BodyWeightKg: ptr(79.0), TrainingGoal: "hypertrophy"},
	} {
		if err := s.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile(%q): %v", p.TrainingGoal, err)
		}
	}

	p, err := s.Profile(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.BodyWeightKg == nil || *p.BodyWeightKg != 79.0 {
		t.Errorf("body weight = %v, want 79", p.BodyWeightKg)
	}
	if p.TrainingGoal != "hypertrophy" {
		t.Errorf("training goal = %q, want hypertrophy", p.TrainingGoal)
	}

	if err := s.UpsertProfile(ctx, models.Profile{UserID: id + 100}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

// TestSessionsRoundTrip verifies nested exercises, nullable fields, ordering and the since filter.
func TestSessionsRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	userID := mustUser(t, s, "sam@example.com", "Sam")
	other := mustUser(t, s, "kim@example.com", "Kim")

	day := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	pull := models.WorkoutSession{
		UserID: userID,
		Name:   "Pull",
		Date:   day,
		Exercises: []models.ExerciseEntry{
			{
				Name:             "Row",
				PrimaryMuscle:    ptr("Back"),
				SecondaryMuscles: []string{"biceps", "rear delts"},
				Sets: []models.SetEntry{
					{Weight: ptr(60.0), Reps: ptr(8)},
					{Reps: ptr(10)},
					{},
				},
			},
			{Name: "Stretch", SecondaryMuscles: []string{}},
		},
	}
	push := models.WorkoutSession{
		ID:     uuid.New(),
		UserID: userID,
		Date:   day.Add(-20 * time.Hour),
		Exercises: []models.ExerciseEntry{
			{Name: "Bench", PrimaryMuscle: ptr("Chest"), Sets: []models.SetEntry{{Weight: ptr(70.0)}}},
		},
	}
	old := models.WorkoutSession{UserID: userID, Date: day.AddDate(0, 0, -10)}
	foreign := models.WorkoutSession{UserID: other, Date: day}

	pullID, err := s.InsertSession(ctx, pull)
	if err != nil {
		t.Fatal(err)
	}
	if pullID == uuid.Nil {
		t.Error("generated id = nil UUID")
	}
	pushID, err := s.InsertSession(ctx, push)
	if err != nil {
		t.Fatal(err)
	}
	if pushID != push.ID {
		t.Errorf("push id = %v, want the given %v", pushID, push.ID)
	}
	for _, sess := range []models.WorkoutSession{old, foreign} {
		if _, err := s.InsertSession(ctx, sess); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentSessions(ctx, userID, day.AddDate(0, 0, -7))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].ID != pushID || got[1].ID != pullID {
		t.Errorf("order = %v, %v, want push then pull", got[0].ID, got[1].ID)
	}
	if !got[1].Date.Equal(day) {
		t.Errorf("date = %v, want %v", got[1].Date, day)
	}

	rows := got[1].Exercises
	if len(rows) != 2 {
		t.Fatalf("got %d exercises, want 2", len(rows))
	}
	if *rows[0].PrimaryMuscle != "Back" {
		t.Errorf("primary = %q, want Back", *rows[0].PrimaryMuscle)
	}
	if diff := cmp.Diff([]string{"biceps", "rear delts"}, rows[0].SecondaryMuscles); diff != "" {
		t.Errorf("secondary muscles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pull.Exercises[0].Sets, rows[0].Sets); diff != "" {
		t.Errorf("sets mismatch (-want +got):\n%s", diff)
	}
	if rows[1].PrimaryMuscle != nil || len(rows[1].SecondaryMuscles) != 0 || len(rows[1].Sets) != 0 {
		t.Errorf("empty exercise = %+v, want no primary, secondaries or sets", rows[1])
	}
}

// TestInsertSessionDuplicateRollsBack verifies a failed insert leaves nothing behind.
func TestInsertSessionDuplicateRollsBack(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	userID := mustUser(t, s, "sam@example.com", "Sam")

	day := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	sess := models.WorkoutSession{ID: uuid.New(), UserID: userID, Date: day,
		Exercises: []models.ExerciseEntry{{PrimaryMuscle: ptr("Quads"), Sets: []models.SetEntry{{}}}}}
	if _, err := s.InsertSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertSession(ctx, sess); err == nil {
		t.Fatal("duplicate insert succeeded, want error")
	}

	got, err := s.RecentSessions(ctx, userID, day.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Exercises) != 1 {
		t.Errorf("after rollback = %+v, want one session with one exercise", got)
	}
}
