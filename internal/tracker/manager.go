package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/bodymap/internal/recovery"
)

// Manager keeps one Tracker per identity so switching users always starts a
// fresh pipeline instead of showing another user's state. Trackers that have
// not been used for a while are dropped by EvictIdle.
type Manager struct {
	src       Source
	catalog   Catalog
	constants recovery.Constants
	log       *slog.Logger
	opts      []Option

	mu       sync.Mutex
	trackers map[int]*Tracker
	lastUsed map[int]time.Time
}

func NewManager(src Source, catalog Catalog, constants recovery.Constants, log *slog.Logger, opts ...Option) *Manager {
	return &Manager{
		src:       src,
		catalog:   catalog,
		constants: constants,
		log:       log,
		opts:      opts,
		trackers:  make(map[int]*Tracker),
		lastUsed:  make(map[int]time.Time),
	}
}

// For returns the tracker for userID. The first call for an identity runs the
// initial load before returning; concurrent callers see Loading() == true.
func (m *Manager) For(ctx context.Context, userID int) *Tracker {
	t, _ := m.acquire(ctx, userID)
	return t
}

// Refresh recomputes userID's recovery state. When the tracker did not exist
// yet, the initial load already fetched fresh data and is not repeated. The
// pass is detached from ctx cancellation so a disconnecting caller cannot
// leave a cancellation error behind as the tracker's last error.
func (m *Manager) Refresh(ctx context.Context, userID int) (*Tracker, error) {
	t, created := m.acquire(ctx, userID)
	if created {
		return t, t.Err()
	}
	return t, t.Refresh(context.WithoutCancel(ctx))
}

func (m *Manager) acquire(ctx context.Context, userID int) (*Tracker, bool) {
	m.mu.Lock()
	t, ok := m.trackers[userID]
	if !ok {
		t = New(m.src, m.catalog, m.constants, userID, m.log, m.opts...)
		t.loading.Store(true)
		m.trackers[userID] = t
	}
	m.lastUsed[userID] = time.Now()
	m.mu.Unlock()

	if !ok {
		m.initialLoad(ctx, t)
	}
	return t, !ok
}

// initialLoad runs the first pass. The load outlives a cancelled request so
// the next one finds a result.
func (m *Manager) initialLoad(ctx context.Context, t *Tracker) {
	err := t.Load(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, ErrRefreshInFlight):
		// A refresh claimed the tracker between creation and Load; it
		// delivers the first result, so the load is no longer pending.
		t.loading.Store(false)
	case err != nil:
		m.log.Warn("initial recovery load failed", "user_id", t.UserID(), "error", err)
	}
}

// Forget drops the tracker for userID.
func (m *Manager) Forget(userID int) {
	m.mu.Lock()
	delete(m.trackers, userID)
	delete(m.lastUsed, userID)
	m.mu.Unlock()
}

// Evict drops trackers last used before cutoff, except those with a pass
// still running. It returns how many were dropped.
func (m *Manager) Evict(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, used := range m.lastUsed {
		if !used.Before(cutoff) || m.trackers[id].inFlight.Load() {
			continue
		}
		delete(m.trackers, id)
		delete(m.lastUsed, id)
		n++
	}
	return n
}

// EvictIdle drops trackers unused for longer than idle, checking every
// interval, until ctx is done.
func (m *Manager) EvictIdle(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Evict(now.Add(-idle)); n > 0 {
				m.log.Debug("evicted idle recovery trackers", "count", n)
			}
		}
	}
}
