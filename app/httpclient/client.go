package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBodySize = 10 << 20

var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Client performs outbound requests with a per-call timeout, a fixed
// User-Agent and per-host rate limiting. Every call gets its own deadline so
// one slow upstream cannot stall the others.
type Client struct {
	httpClient *http.Client
	limiter    *HostRateLimiter
	userAgent  string
	timeout    time.Duration
}

func New(httpClient *http.Client, limiter *HostRateLimiter, userAgent string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get fetches url and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	return c.do(req)
}

// PostJSON sends payload as a JSON body and discards a 2xx response.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if err := c.limiter.Wait(ctx, url); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
