// Package endpoint implements the schema-less tool variant: a fixed HTTP
// endpoint queried with a static parameter set, where one parameter carries
// the caller's query text. No API description or request synthesis is
// involved; the raw response body is the observation.
package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/espalier/internal/httpclient"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
)

const (
	defaultQueryParam = "q"
	defaultMaxResult  = 8 << 10
)

// Tool performs a GET against a fixed endpoint for every invocation.
type Tool struct {
	name        string
	description string
	endpoint    string
	params      map[string]string
	queryParam  string
	credParam   string
	credential  string
	maxResult   int

	client *httpclient.Client
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Tool.
type Option func(*Tool)

// WithName sets the tool name used by the reasoning loop for selection.
func WithName(name string) Option {
	return func(t *Tool) { t.name = name }
}

// WithDescription sets the one-line description.
func WithDescription(desc string) Option {
	return func(t *Tool) { t.description = desc }
}

// WithParam adds a static query parameter sent on every invocation.
func WithParam(key, value string) Option {
	return func(t *Tool) { t.params[key] = value }
}

// WithQueryParam names the parameter that receives the caller's query text.
// Defaults to "q".
func WithQueryParam(name string) Option {
	return func(t *Tool) { t.queryParam = name }
}

// WithCredential sets the access-key parameter included on every request.
func WithCredential(param, value string) Option {
	return func(t *Tool) {
		t.credParam = param
		t.credential = value
	}
}

// WithMaxResultBytes caps the response text returned to the reasoning loop.
func WithMaxResultBytes(n int) Option {
	return func(t *Tool) { t.maxResult = n }
}

// WithHTTPClient injects the executor for outbound calls.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(t *Tool) { t.client = client }
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tool) { t.hooks = hooks }
}

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) { t.logger = logger }
}

// New creates a schema-less tool bound to endpoint.
func New(endpoint string, opts ...Option) *Tool {
	t := &Tool{
		endpoint:   endpoint,
		params:     map[string]string{},
		queryParam: defaultQueryParam,
		maxResult:  defaultMaxResult,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = httpclient.New(httpclient.WithLogger(t.logger))
	}
	if t.name == "" {
		t.name = "search"
	}
	if t.description == "" {
		t.description = "Look up current information from a search endpoint."
	}
	return t
}

// Name implements ports.Tool.
func (t *Tool) Name() string { return t.name }

// Description implements ports.Tool.
func (t *Tool) Description() string { return t.description }

// Invoke implements ports.Tool. The query text replaces the designated
// parameter; every failure is returned as a textual observation.
func (t *Tool) Invoke(ctx context.Context, query string) (string, error) {
	inv := domain.NewInvocation(t.name, query)
	t.fireToolCall(ctx, inv)

	result := t.invoke(ctx, inv, query)

	inv.Result = result
	t.fireToolReturn(ctx, inv)
	return result, nil
}

func (t *Tool) invoke(ctx context.Context, inv *domain.Invocation, query string) string {
	target, err := t.buildURL(query)
	if err != nil {
		return fmt.Sprintf("Could not build the request URL: %v", err)
	}
	inv.Request = &domain.ResolvedRequest{Method: "GET", URL: target}

	t.logger.Debug("executing endpoint request", "tool", t.name, "url", redactCredential(target, t.credential))
	body, err := t.client.Do(ctx, inv.Request)
	if err != nil {
		return fmt.Sprintf("The API call failed: %v", err)
	}
	inv.Response = string(body)

	return truncate(strings.TrimSpace(string(body)), t.maxResult)
}

func (t *Tool) buildURL(query string) (string, error) {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return "", err
	}

	values := u.Query()
	for k, v := range t.params {
		values.Set(k, v)
	}
	values.Set(t.queryParam, query)
	if t.credParam != "" {
		values.Set(t.credParam, t.credential)
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func (t *Tool) fireToolCall(ctx context.Context, inv *domain.Invocation) {
	if t.hooks.OnToolCall == nil {
		return
	}
	t.hooks.OnToolCall(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolCall, InvocationID: inv.ID},
		ToolName:  t.name,
		Query:     inv.Query,
	})
}

func (t *Tool) fireToolReturn(ctx context.Context, inv *domain.Invocation) {
	inv.Duration = time.Since(inv.StartedAt)
	if t.hooks.OnToolReturn == nil {
		return
	}
	t.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolReturn, InvocationID: inv.ID},
		ToolName:  t.name,
		Result:    inv.Result,
		Duration:  inv.Duration,
	})
}

func redactCredential(s, credential string) string {
	if credential == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(credential), "REDACTED")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
