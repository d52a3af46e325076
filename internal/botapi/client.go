package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solana-volume-bot/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second
	MaxTimeout     = 30 * time.Second
)

// Client is an HTTP client for the remote bot-execution service.
//
// Every call is bounded by the client timeout. A failed call degrades the
// dependent feature at the call site; the client itself does not retry.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *observability.Metrics
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout, capped at MaxTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > MaxTimeout {
			d = MaxTimeout
		}
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithMetrics records per-endpoint request latency.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the bot service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bot service returned %d: %s", e.Code, e.Body)
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if c.metrics != nil {
		start := time.Now()
		defer func() {
			c.metrics.BotAPILatency.WithLabelValues(endpointLabel(path)).Observe(time.Since(start).Seconds())
		}()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// endpointLabel strips path parameters so the latency metric stays
// low-cardinality.
func endpointLabel(path string) string {
	for _, prefix := range []string{"/bot-progress", "/stop-bot", "/check-pool"} {
		if strings.HasPrefix(path, prefix+"/") {
			return prefix
		}
	}
	return path
}

// StartVolumeBot submits a campaign as a remote job.
func (c *Client) StartVolumeBot(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.do(ctx, http.MethodPost, "/run-volume-bot", req, &resp); err != nil {
		return nil, err
	}
	if resp.JobID == "" {
		return nil, fmt.Errorf("bot service accepted job but returned no job_id (status=%q)", resp.Status)
	}
	return &resp, nil
}

// JobProgress fetches the current progress snapshot for a job.
func (c *Client) JobProgress(ctx context.Context, jobID string) (*ProgressSnapshot, error) {
	var snap ProgressSnapshot
	if err := c.do(ctx, http.MethodGet, "/bot-progress/"+url.PathEscape(jobID), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// StopBot requests termination of a remote job.
func (c *Client) StopBot(ctx context.Context, jobID string) (*StopResponse, error) {
	var resp StopResponse
	if err := c.do(ctx, http.MethodPost, "/stop-bot/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckPool looks up the liquidity pool for a mint.
func (c *Client) CheckPool(ctx context.Context, mint string) (*PoolCheck, error) {
	var check PoolCheck
	if err := c.do(ctx, http.MethodGet, "/check-pool/"+url.PathEscape(mint), nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// TrendingPlatforms fetches the trending platform catalog. Callers fall back
// to DefaultPlatformCatalog when this fails.
func (c *Client) TrendingPlatforms(ctx context.Context) (*PlatformCatalog, error) {
	var catalog PlatformCatalog
	if err := c.do(ctx, http.MethodGet, "/trending/platforms", nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// MultiPlatformCosts fetches cost estimates for a trending selection.
func (c *Client) MultiPlatformCosts(ctx context.Context, req CostRequest) (*CostEstimate, error) {
	var est CostEstimate
	if err := c.do(ctx, http.MethodPost, "/trending/multi-platform-costs", req, &est); err != nil {
		return nil, err
	}
	return &est, nil
}
