package simulation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// errBackpressure reports a 429 from the server.
var errBackpressure = errors.New("server applied backpressure")

// HTTPClient wraps http.Client with JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil. It returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

func (c *HTTPClient) clear(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/leaderboard", nil, nil)
	return err
}

// submit posts one score. A 429 is reported as errBackpressure so callers
// can retry with the same request id.
func (c *HTTPClient) submit(ctx context.Context, s Submission) (AckResponse, error) {
	var ack AckResponse
	status, err := c.do(ctx, http.MethodPost, "/scores", s, &ack)
	if status == http.StatusTooManyRequests {
		return ack, errBackpressure
	}
	return ack, err
}

func (c *HTTPClient) process(ctx context.Context) (int, error) {
	var res processResponse
	_, err := c.do(ctx, http.MethodPost, "/process", nil, &res)
	return res.Processed, err
}

func (c *HTTPClient) leaderboard(ctx context.Context) ([]Entry, error) {
	var board []Entry
	_, err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &board)
	return board, err
}

func (c *HTTPClient) rank(ctx context.Context, id string) (int, error) {
	var res rankResponse
	_, err := c.do(ctx, http.MethodGet, "/rank/"+id, nil, &res)
	return res.Rank, err
}
