package yggdrasil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	cache "github.com/patrickmn/go-cache"
)

// Default Mojang service hosts.
const (
	DefaultAuthHost    = "https://authserver.mojang.com"
	DefaultSessionHost = "https://sessionserver.mojang.com"
	DefaultAccountHost = "https://api.mojang.com"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultRetryMax = 2

	profileCacheTTL     = 5 * time.Minute
	profileCacheCleanup = 10 * time.Minute
)

// Client talks to the Yggdrasil authentication, session and account
// services. Construct instances with NewClient; the zero value is not
// usable.
type Client struct {
	// authHost serves /authenticate, /refresh, /validate and friends.
	authHost string
	// sessionHost serves profile and texture lookups.
	sessionHost string
	// accountHost serves name to UUID resolution.
	accountHost string
	// retryable is the underlying HTTP client with backoff built in.
	retryable *retryablehttp.Client
	// profiles caches lookup results, profile data moves rarely and
	// Mojang rate-limits these endpoints.
	profiles *cache.Cache
}

// Option configures client behaviour.
type Option func(*Client)

// WithAuthHost points the client at an alternate authentication
// service, for example an authlib-injector compatible one.
func WithAuthHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.authHost = host
		}
	}
}

// WithSessionHost points the client at an alternate session service.
func WithSessionHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.sessionHost = host
		}
	}
}

// WithAccountHost points the client at an alternate account service.
func WithAccountHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.accountHost = host
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
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

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retryable.RetryMax = retries
		}
	}
}

// NewClient creates a client for the official Mojang services unless
// options point it elsewhere.
func NewClient(opts ...Option) *Client {
	retryable := retryablehttp.NewClient()
	retryable.Logger = nil
	retryable.RetryMax = defaultRetryMax
	retryable.HTTPClient.Timeout = defaultTimeout

	client := &Client{
		authHost:    DefaultAuthHost,
		sessionHost: DefaultSessionHost,
		accountHost: DefaultAccountHost,
		retryable:   retryable,
		profiles:    cache.New(profileCacheTTL, profileCacheCleanup),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// post sends a JSON payload and decodes a JSON response into result.
// A nil result discards the body. Non-2xx responses come back as an
// *APIError.
func (c *Client) post(ctx context.Context, url string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json; charset=utf-8")

	return c.do(req, result)
}

// get fetches a JSON document into result.
func (c *Client) get(ctx context.Context, url string, result any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json; charset=utf-8")

	return c.do(req, result)
}

func (c *Client) do(req *retryablehttp.Request, result any) error {
	resp, err := c.retryable.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
