package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("bodymap", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("bodymap muscle recovery server. Reports how recovered each muscle group is based on the last 7 days of training. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetMuscleRecovery, Handler: h.getMuscleRecovery},
		server.ServerTool{Tool: toolGetRecoveryOverview, Handler: h.getRecoveryOverview},
		server.ServerTool{Tool: toolGetBodyMap, Handler: h.getBodyMap},
		server.ServerTool{Tool: toolRefreshRecovery, Handler: h.refreshRecovery},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecovery, Handler: h.recoveryResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}
