// Package httpclient executes the outbound calls synthesized by tools.
//
// It is a thin, synchronous wrapper over net/http with a configurable
// request timeout, an optional response cache for GETs, and exactly one
// internal retry on transient failure (network error or rate limit).
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// DefaultTimeout bounds one upstream request. The transport default alone
// is not enough: public data APIs are slow and a hung call blocks the whole
// reasoning turn.
const DefaultTimeout = 30 * time.Second

// DefaultRetryPause is the pause before the single transient retry.
const DefaultRetryPause = time.Second

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// UpstreamError describes a non-2xx upstream response.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, truncate(string(e.Body), 200))
}

// Unwrap classifies every upstream error under the shared taxonomy.
func (e *UpstreamError) Unwrap() error {
	return domain.ErrUpstreamFailure
}

// Client executes resolved requests.
type Client struct {
	httpClient *http.Client
	cache      ports.ResponseCache
	cacheTTL   time.Duration
	retryPause time.Duration
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithCache enables response caching for GET requests.
func WithCache(cache ports.ResponseCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRetryPause overrides the pause before the transient retry.
func WithRetryPause(pause time.Duration) Option {
	return func(c *Client) {
		c.retryPause = pause
	}
}

// WithLogger configures a logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport overrides the underlying round tripper. Used by tests to
// count or intercept outbound calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// New creates a Client with the default timeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retryPause: DefaultRetryPause,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes a resolved request and returns the response body.
//
// Transient failures (network error, HTTP 429) are retried once after a
// short pause. Non-2xx responses and unreadable bodies are reported as
// UpstreamError values wrapping domain.ErrUpstreamFailure.
func (c *Client) Do(ctx context.Context, req *domain.ResolvedRequest) ([]byte, error) {
	if c.cache != nil && strings.EqualFold(req.Method, http.MethodGet) {
		if body, err := c.cache.Get(ctx, req.URL); err == nil {
			c.logger.Debug("upstream cache hit", "url", req.URL)
			return body, nil
		}
	}

	body, err := c.execute(ctx, req)
	if err != nil && isTransient(err) {
		c.logger.Warn("transient upstream failure, retrying once", "url", req.URL, "err", err)
		select {
		case <-time.After(c.retryPause):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, ctx.Err())
		}
		body, err = c.execute(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil && strings.EqualFold(req.Method, http.MethodGet) {
		if cerr := c.cache.Set(ctx, req.URL, body, c.cacheTTL); cerr != nil {
			c.logger.Warn("response cache write failed", "url", req.URL, "err", cerr)
		}
	}

	return body, nil
}

func (c *Client) execute(ctx context.Context, req *domain.ResolvedRequest) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", domain.ErrUpstreamFailure, err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

// isTransient reports whether one retry is worth attempting.
func isTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode == http.StatusTooManyRequests
	}
	// Anything that never produced a status line is a network-level failure.
	return errors.Is(err, domain.ErrUpstreamFailure)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
