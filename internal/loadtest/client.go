package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/skillmatch/internal/domain/types"
)

// Client calls the match service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with a per request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Match calls GET /match with token. Non 200 responses return the status
// and an error.
func (c *Client) Match(ctx context.Context, token string, limit int) (types.MatchResponse, int, error) {
	target := c.baseURL + "/match"
	if limit > 0 {
		target += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return types.MatchResponse{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return types.MatchResponse{}, 0, fmt.Errorf("match request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return types.MatchResponse{}, resp.StatusCode, fmt.Errorf("match request: status %d", resp.StatusCode)
	}

	var out types.MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.MatchResponse{}, resp.StatusCode, fmt.Errorf("decode match response: %w", err)
	}
	return out, resp.StatusCode, nil
}
