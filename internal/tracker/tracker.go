// Package tracker owns the asynchronous side of recovery computation: fetching
// history for one identity, running the pure engine, keeping the last good
// result and exposing loading/refreshing state to callers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/recovery"
	"golang.org/x/sync/errgroup"
)

// ErrRefreshInFlight is returned when a fetch+compute pass is already running.
var ErrRefreshInFlight = errors.New("recovery refresh already in flight")

// Source is the data-access layer. *storage.DB and *localstore.Store satisfy it.
type Source interface {
	RecentSessions(ctx context.Context, userID int, since time.Time) ([]models.WorkoutSession, error)
	Profile(ctx context.Context, userID int) (*models.Profile, error)
}

// Catalog is the muscle configuration the tracker needs. *muscles.Table satisfies it.
type Catalog interface {
	recovery.Catalog
	GroupForBodyPart(part string) (string, bool)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now as the reference time of each pass.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker computes and caches recovery state for a single user.
type Tracker struct {
	src       Source
	catalog   Catalog
	constants recovery.Constants
	userID    int
	log       *slog.Logger
	now       func() time.Time

	inFlight   atomic.Bool
	loading    atomic.Bool
	refreshing atomic.Bool

	mu      sync.RWMutex
	result  *recovery.Result
	lastErr error
}

// New creates a Tracker for userID. Nothing is fetched until Load or Refresh.
func New(src Source, catalog Catalog, constants recovery.Constants, userID int, log *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		src:       src,
		catalog:   catalog,
		constants: constants,
		userID:    userID,
		log:       log.With("user_id", userID),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UserID returns the identity this tracker serves.
func (t *Tracker) UserID() int { return t.userID }

// Load runs the initial pass with the loading flag set.
func (t *Tracker) Load(ctx context.Context) error {
	return t.run(ctx, &t.loading)
}

// Refresh re-runs the whole pipeline with the refreshing flag set. It returns
// ErrRefreshInFlight without fetching if another pass is still running.
func (t *Tracker) Refresh(ctx context.Context) error {
	return t.run(ctx, &t.refreshing)
}

// Loading reports whether the initial pass is running.
func (t *Tracker) Loading() bool { return t.loading.Load() }

// Refreshing reports whether a manual refresh is running.
func (t *Tracker) Refreshing() bool { return t.refreshing.Load() }

func (t *Tracker) run(ctx context.Context, flag *atomic.Bool) error {
	if !t.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer t.inFlight.Store(false)

	flag.Store(true)
	defer flag.Store(false)

	start := time.Now()
	now := t.now()

	sessions, profile, err := t.fetch(ctx, now.Add(-t.constants.Lookback))
	if err != nil {
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		t.log.Error("recovery fetch failed", "error", err)
		return err
	}

	result := recovery.Recompute(now, sessions, profile, t.catalog, t.constants)

	t.mu.Lock()
	t.result = result
	t.lastErr = nil
	t.mu.Unlock()

	t.log.Debug("recovery computed",
		"sessions", len(sessions),
		"muscle_groups", result.Overview.TotalMuscleGroups,
		"fresh", result.Overview.FreshMuscleGroups,
		"duration", time.Since(start))
	return nil
}

func (t *Tracker) fetch(ctx context.Context, since time.Time) ([]models.WorkoutSession, *models.Profile, error) {
	var (
		sessions []models.WorkoutSession
		profile  *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = t.src.RecentSessions(gctx, t.userID, since)
		if err != nil {
			return fmt.Errorf("fetching sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = t.src.Profile(gctx, t.userID)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sessions, profile, nil
}

// Result returns the last successful computation, or nil if none has completed.
func (t *Tracker) Result() *recovery.Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

// Err returns the error of the most recent pass, or nil if it succeeded.
func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}

// Snapshot looks up a canonical muscle group.
func (t *Tracker) Snapshot(group string) (recovery.Snapshot, bool) {
	r := t.Result()
	if r == nil {
		return recovery.Snapshot{}, false
	}
	return r.Snapshot(group)
}

// SnapshotForBodyPart looks up the group a display body part belongs to.
func (t *Tracker) SnapshotForBodyPart(part string) (recovery.Snapshot, bool) {
	group, ok := t.catalog.GroupForBodyPart(part)
	if !ok {
		return recovery.Snapshot{}, false
	}
	return t.Snapshot(group)
}

// Overview returns the dashboard summary of the last computation.
func (t *Tracker) Overview() (recovery.Overview, bool) {
	r := t.Result()
	if r == nil {
		return recovery.Overview{}, false
	}
	return r.Overview, true
}
