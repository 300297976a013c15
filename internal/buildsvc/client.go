// Package buildsvc is a thin client for the package build service used by
// CI: submit a build, fetch its status, and poll until it reaches a terminal
// state. The client is deliberately simple — a fixed-interval poll loop with
// no retries and no concurrency.
package buildsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// State is the lifecycle state of a build as reported by the service.
type State string

// Build states.
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}

	return false
}

// SubmitRequest describes a package build submission.
type SubmitRequest struct {
	// Project is the build-service project to build into.
	Project string `json:"project"`
	// Package is the source package reference (URL or name).
	Package string `json:"package"`
	// Chroots are the target build environments.
	Chroots []string `json:"chroots,omitempty"`
}

// Build is the service's view of one build.
type Build struct {
	ID      int64  `json:"id"`
	State   State  `json:"state"`
	Project string `json:"project"`
	Package string `json:"package"`
}

// Client talks to the build-service HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the default HTTP client. Use this in tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the build service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("build service URL must not be empty")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Submit posts a build request and returns the created build.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*Build, error) {
	if req.Package == "" {
		return nil, fmt.Errorf("package reference must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding submit request: %w", err)
	}

	var build Build
	if err := c.do(ctx, http.MethodPost, "/api/builds", bytes.NewReader(body), &build); err != nil {
		return nil, fmt.Errorf("submitting build: %w", err)
	}

	return &build, nil
}

// Status fetches the current state of a build.
func (c *Client) Status(ctx context.Context, id int64) (*Build, error) {
	var build Build
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/builds/%d", id), nil, &build); err != nil {
		return nil, fmt.Errorf("fetching build %d: %w", id, err)
	}

	return &build, nil
}

// Wait polls the build at the given interval until it reaches a terminal
// state or ctx is done. Bound the wait with a context deadline.
func (c *Client) Wait(ctx context.Context, id int64, interval time.Duration) (*Build, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		build, err := c.Status(ctx, id)
		if err != nil {
			return nil, err
		}

		if build.State.Terminal() {
			return build, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for build %d: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do executes one request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("build service returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
