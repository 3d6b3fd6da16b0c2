package mcp

import (
	"context"

	"github.com/claude/bodymap/internal/tracker"
)

// DataSource abstracts where recovery state comes from. TrackerSource serves
// it in-process; HTTPClient fetches it from a remote bodymap server.
type DataSource interface {
	Recovery(ctx context.Context, userID int) (*tracker.Report, error)
	BodyMap(ctx context.Context, userID int) ([]tracker.BodyPartState, error)
	Refresh(ctx context.Context, userID int) (*tracker.Report, error)
}

// TrackerSource serves recovery state from the in-process tracker manager.
type TrackerSource struct {
	Trackers *tracker.Manager
	Catalog  tracker.BodyPartCatalog
}

// Compile-time checks: both implementations satisfy DataSource.
var (
	_ DataSource = (*TrackerSource)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

func (s *TrackerSource) Recovery(ctx context.Context, userID int) (*tracker.Report, error) {
	return s.Trackers.For(ctx, userID).Report(), nil
}

func (s *TrackerSource) BodyMap(ctx context.Context, userID int) ([]tracker.BodyPartState, error) {
	return tracker.BodyMap(s.Trackers.For(ctx, userID).Report(), s.Catalog), nil
}

// Refresh re-runs the pipeline. A refresh already in flight is reported as
// tracker.ErrRefreshInFlight.
func (s *TrackerSource) Refresh(ctx context.Context, userID int) (*tracker.Report, error) {
	t, err := s.Trackers.Refresh(ctx, userID)
	return t.Report(), err
}
