package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resRecovery = mcp.NewResource(
	"bodymap://recovery",
	"Muscle Recovery",
	mcp.WithResourceDescription("Current recovery report: every muscle group's snapshot, the overview and the user's profile"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recoveryResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report, err := h.ds.Recovery(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
