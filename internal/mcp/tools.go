package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/claude/bodymap/internal/recovery"
	"github.com/claude/bodymap/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetMuscleRecovery = mcp.NewTool("get_muscle_recovery",
	mcp.WithDescription("Recovery state per muscle group: status (not_recovered, recovering, recovered, untrained), recovery percentage, last training intensity and hours since it was trained."),
	mcp.WithString("muscle", mcp.Description("Canonical muscle group (e.g. 'Chest', 'Quads'). Omit to list every group.")),
)

var toolGetRecoveryOverview = mcp.NewTool("get_recovery_overview",
	mcp.WithDescription("Whole-body summary: days since the last workout, number of fresh muscle groups, groups still recovering, and the user's profile."),
)

var toolGetBodyMap = mcp.NewTool("get_body_map",
	mcp.WithDescription("Every body-map region with its muscle group, recovery percentage, display color and gradient step (1-6)."),
)

var toolRefreshRecovery = mcp.NewTool("refresh_recovery",
	mcp.WithDescription("Re-fetch training history and recompute recovery. Use after logging a workout."),
)

// --- Tool handlers ---

func (h *handlers) getMuscleRecovery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.Recovery(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_muscle_recovery", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if report.ComputedAt == nil {
		return mcp.NewToolResultError(unavailableMessage(report)), nil
	}

	muscle := strings.TrimSpace(req.GetString("muscle", ""))
	if muscle == "" {
		return jsonResult(report.Muscles)
	}

	snap, ok := findMuscle(report.Muscles, muscle)
	if !ok {
		return mcp.NewToolResultError("unknown muscle group " + muscle + "; known groups: " + strings.Join(groupNames(report.Muscles), ", ")), nil
	}
	return jsonResult(snap)
}

func (h *handlers) getRecoveryOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.Recovery(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_recovery_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if report.ComputedAt == nil {
		return mcp.NewToolResultError(unavailableMessage(report)), nil
	}

	var recovering, notRecovered []string
	for _, s := range report.Muscles {
		switch s.Status {
		case recovery.StatusNotRecovered:
			notRecovered = append(notRecovered, s.MuscleGroup)
		case recovery.StatusRecovering:
			recovering = append(recovering, s.MuscleGroup)
		}
	}

	return jsonResult(map[string]any{
		"computed_at":   report.ComputedAt,
		"overview":      report.Overview,
		"not_recovered": notRecovered,
		"recovering":    recovering,
		"profile":       report.Profile,
		"refreshing":    report.Refreshing,
	})
}

func (h *handlers) getBodyMap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.BodyMap(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_body_map", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if entries == nil {
		return mcp.NewToolResultError("recovery data not available yet"), nil
	}
	return jsonResult(entries)
}

func (h *handlers) refreshRecovery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.Refresh(ctx, UserIDFromContext(ctx))
	if errors.Is(err, tracker.ErrRefreshInFlight) {
		return mcp.NewToolResultError("a refresh is already running; try again shortly"), nil
	}
	if err != nil {
		h.log.Error("mcp refresh_recovery", "error", err)
		return mcp.NewToolResultError("refresh failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"computed_at": report.ComputedAt,
		"overview":    report.Overview,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func unavailableMessage(r *tracker.Report) string {
	if r.Error != "" {
		return "recovery data unavailable: " + r.Error
	}
	return "recovery data not available yet"
}

// findMuscle matches a group name case-insensitively.
func findMuscle(snaps []recovery.Snapshot, name string) (recovery.Snapshot, bool) {
	for _, s := range snaps {
		if strings.EqualFold(s.MuscleGroup, name) {
			return s, true
		}
	}
	return recovery.Snapshot{}, false
}

func groupNames(snaps []recovery.Snapshot) []string {
	names := make([]string, len(snaps))
	for i, s := range snaps {
		names[i] = s.MuscleGroup
	}
	sort.Strings(names)
	return names
}
