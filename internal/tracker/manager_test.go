package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/muscles"
	"github.com/claude/bodymap/internal/recovery"
)

func newTestManager(src Source) *Manager {
	return NewManager(src, muscles.Default(), recovery.DefaultConstants(), discardLogger(),
		WithClock(func() time.Time { return testNow }))
}

func (m *Manager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trackers)
}

// TestManagerPerIdentity verifies each user gets an independent tracker loaded on first access.
func TestManagerPerIdentity(t *testing.T) {
	src := &fakeSource{
		sessions: map[int][]models.WorkoutSession{
			1: {chestSession(testNow.Add(-time.Hour), 10)},
		},
	}
	m := newTestManager(src)

	a := m.For(context.Background(), 1)
	b := m.For(context.Background(), 2)
	if a == b {
		t.Fatal("users 1 and 2 share a tracker")
	}
	if m.For(context.Background(), 1) != a {
		t.Error("second For(1) returned a different tracker")
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 (second For(1) must not reload)", n)
	}

	sa, _ := a.Snapshot("Chest")
	sb, _ := b.Snapshot("Chest")
	if sa.Status != recovery.StatusNotRecovered {
		t.Errorf("user 1 chest = %q, want %q", sa.Status, recovery.StatusNotRecovered)
	}
	if sb.Status != recovery.StatusUntrained {
		t.Errorf("user 2 chest = %q, want %q", sb.Status, recovery.StatusUntrained)
	}

	m.Forget(1)
	if m.For(context.Background(), 1) == a {
		t.Error("For after Forget returned the old tracker")
	}
}

// TestManagerCancelledRequestStillLoads verifies the initial load survives a
// cancelled request context.
func TestManagerCancelledRequestStillLoads(t *testing.T) {
	m := newTestManager(&fakeSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := m.For(ctx, 5)
	if tr.Result() == nil {
		t.Error("result = nil after cancelled first request")
	}
	if tr.Loading() {
		t.Error("Loading() = true after initial load")
	}
}

// TestManagerRefreshFirstAccessFetchesOnce verifies a refresh that creates the
// tracker reuses the initial load, and later refreshes fetch again.
func TestManagerRefreshFirstAccessFetchesOnce(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)

	tr, err := m.Refresh(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Result() == nil {
		t.Fatal("result = nil after first refresh")
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("fetches after first refresh = %d, want 1", n)
	}

	if _, err := m.Refresh(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("fetches after second refresh = %d, want 2", n)
	}
}

// TestManagerRefreshFirstAccessReportsLoadError verifies a failing initial load
// surfaces through the creating refresh.
func TestManagerRefreshFirstAccessReportsLoadError(t *testing.T) {
	boom := errors.New("db down")
	m := newTestManager(&fakeSource{sessionsErr: boom})

	if _, err := m.Refresh(context.Background(), 3); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// TestManagerRefreshIgnoresCancellation verifies a caller that goes away
// mid-request does not leave a cancellation error on the tracker.
func TestManagerRefreshIgnoresCancellation(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)
	m.For(context.Background(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr, err := m.Refresh(ctx, 1)
	if err != nil {
		t.Fatalf("Refresh err = %v, want nil", err)
	}
	if tr.Err() != nil {
		t.Errorf("Err() = %v, want nil", tr.Err())
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

// TestInitialLoadYieldsToRunningRefresh verifies that when a refresh claims a
// new tracker before its initial load starts, the loading flag is cleared
// instead of staying set forever.
func TestInitialLoadYieldsToRunningRefresh(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{gate: gate}
	m := newTestManager(src)

	tr := New(src, muscles.Default(), recovery.DefaultConstants(), 1, discardLogger(),
		WithClock(func() time.Time { return testNow }))
	tr.loading.Store(true)

	done := make(chan error, 1)
	go func() { done <- tr.Refresh(context.Background()) }()
	waitFor(t, func() bool { return src.calls.Load() == 1 })

	m.initialLoad(context.Background(), tr)
	if tr.Loading() {
		t.Error("Loading() = true after the initial load lost to a refresh")
	}
	if !tr.Refreshing() {
		t.Error("Refreshing() = false while the refresh is still running")
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if tr.Loading() || tr.Refreshing() {
		t.Errorf("flags = loading %v refreshing %v, want both false", tr.Loading(), tr.Refreshing())
	}
	if tr.Result() == nil {
		t.Error("result = nil after refresh")
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

// TestManagerEvict verifies idle trackers are dropped and running ones kept.
func TestManagerEvict(t *testing.T) {
	src := &fakeSource{}
	m := newTestManager(src)
	a := m.For(context.Background(), 1)

	if n := m.Evict(time.Now().Add(-time.Hour)); n != 0 {
		t.Errorf("Evict(past) = %d, want 0", n)
	}
	if n := m.Evict(time.Now().Add(time.Hour)); n != 1 {
		t.Errorf("Evict(future) = %d, want 1", n)
	}
	if m.For(context.Background(), 1) == a {
		t.Error("For after eviction returned the evicted tracker")
	}

	b := m.For(context.Background(), 1)
	gate := make(chan struct{})
	src.set(func(f *fakeSource) { f.gate = gate })
	done := make(chan error, 1)
	go func() { done <- b.Refresh(context.Background()) }()
	waitFor(t, b.Refreshing)

	if n := m.Evict(time.Now().Add(time.Hour)); n != 0 {
		t.Errorf("Evict with a running pass = %d, want 0", n)
	}
	if m.For(context.Background(), 1) != b {
		t.Error("running tracker was replaced")
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

// TestManagerEvictIdle verifies the background sweep drops idle trackers and
// stops when its context is cancelled.
func TestManagerEvictIdle(t *testing.T) {
	m := newTestManager(&fakeSource{})
	m.For(context.Background(), 1)
	m.For(context.Background(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		m.EvictIdle(ctx, 0, time.Millisecond)
		close(stopped)
	}()

	waitFor(t, func() bool { return m.size() == 0 })
	cancel()
	<-stopped
}
