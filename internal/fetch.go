package monitop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestError is returned for a non-2xx response. Its message is the raw response body.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return e.Body
}

// DecodeError is returned when a successful response does not hold valid JSON
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client talks to the monitoring backend's JSON API
type Client struct {
	base    *url.URL
	http    *http.Client
	metrics *Metrics
}

// NewClient creates a client for the backend at base. A zero timeout means requests never time out.
func NewClient(base *url.URL, timeout time.Duration, metrics *Metrics) *Client {
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: timeout},
		metrics: metrics,
	}
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() *url.URL {
	return c.base
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON performs a single cache-bypassing GET and decodes the body into out.
// There are no retries; the caller decides what to do with a failure.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.endpoint(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.FetchError(path, "transport")
		return fmt.Errorf("request %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.metrics.FetchError(path, "transport")
			return fmt.Errorf("failed to read error body from %s: %w", target, err)
		}
		c.metrics.FetchError(path, "status")
		return &RequestError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.FetchError(path, "decode")
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}
