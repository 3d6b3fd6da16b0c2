package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/bodymap/internal/models"
	"github.com/google/uuid"
)

// errPermanent marks a response that retrying cannot fix (4xx).
var errPermanent = errors.New("request rejected")

// Client sends sessions to the bodymap ingest endpoint over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the bodymap server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendSession POSTs one session and returns the ID the server stored it under.
// Network errors and 5xx responses are retried up to 3 times with exponential
// backoff; 4xx responses fail immediately.
func (c *Client) SendSession(ctx context.Context, s models.WorkoutSession) (uuid.UUID, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling session: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return uuid.Nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		id, err := c.post(ctx, data)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, errPermanent) {
			return uuid.Nil, err
		}
		lastErr = err
	}

	return uuid.Nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/sessions", bytes.NewReader(data))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return uuid.Nil, fmt.Errorf("%w (status %d): %s", errPermanent, resp.StatusCode, body)
	default:
		return uuid.Nil, fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return uuid.Nil, fmt.Errorf("%w: decoding response: %v", errPermanent, err)
	}
	return created.ID, nil
}
