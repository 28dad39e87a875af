package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// defaultTimeout caps a single HTTP request. Runtime archives are
	// large, so this is deliberately generous.
	defaultTimeout = 3 * time.Minute

	// defaultRetryMax is the number of retries per candidate URL.
	// Failing over to the next mirror is handled by Download itself.
	defaultRetryMax = 3
)

// errUnexpectedStatus is returned when a server answers with a non-200 code.
var errUnexpectedStatus = errors.New("unexpected http status")

// Client performs HTTP downloads and JSON fetches with per-URL retries.
// The zero value is not usable; construct instances with NewClient.
type Client struct {
	// retryable is the underlying HTTP client with backoff built in.
	retryable *retryablehttp.Client
	// userAgent is sent with every request when non-empty.
	userAgent string
}

// Option configures client behaviour.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client, allowing callers
// to supply custom transports or proxies.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.retryable.HTTPClient = h
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.retryable.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryMax sets how many times a single URL is retried before the
// next candidate is attempted.
func WithRetryMax(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retryable.RetryMax = retries
		}
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a download client with sane defaults.
func NewClient(opts ...Option) *Client {
	retryable := retryablehttp.NewClient()
	retryable.Logger = nil
	retryable.RetryMax = defaultRetryMax
	retryable.HTTPClient.Timeout = defaultTimeout

	client := &Client{retryable: retryable}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetJSON fetches the URL and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.retryable.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", rawURL, resp.Status, errUnexpectedStatus)
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}

	return nil
}
