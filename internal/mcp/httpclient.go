package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/bodymap/internal/tracker"
)

// HTTPClient implements DataSource by calling the bodymap REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The remote
// server identifies the caller itself, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusError is a non-2xx response.
type statusError struct {
	path   string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &statusError{path: path, status: resp.StatusCode, body: body}
	}
	return body, nil
}

// Recovery fetches the full recovery report.
func (c *HTTPClient) Recovery(ctx context.Context, _ int) (*tracker.Report, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/recovery")
	if err != nil {
		return nil, err
	}
	var report tracker.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("httpclient: decode recovery: %w", err)
	}
	return &report, nil
}

// BodyMap fetches every body-map region. It returns nil without error while
// the server has no result yet.
func (c *HTTPClient) BodyMap(ctx context.Context, _ int) ([]tracker.BodyPartState, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/recovery/body-map")
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusServiceUnavailable {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []tracker.BodyPartState
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("httpclient: decode body map: %w", err)
	}
	return entries, nil
}

// Refresh triggers a recompute on the server. A 409 maps to tracker.ErrRefreshInFlight.
func (c *HTTPClient) Refresh(ctx context.Context, _ int) (*tracker.Report, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/recovery/refresh")
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusConflict:
			return nil, tracker.ErrRefreshInFlight
		case http.StatusBadGateway:
			var report tracker.Report
			if json.Unmarshal(body, &report) == nil && report.Error != "" {
				return &report, fmt.Errorf("httpclient: refresh failed: %s", report.Error)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	var report tracker.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("httpclient: decode refresh: %w", err)
	}
	return &report, nil
}
