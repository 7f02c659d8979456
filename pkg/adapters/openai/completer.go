// Package openai adapts the OpenAI chat completions API to ports.Completer.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/aretw0/espalier/pkg/domain"
)

const defaultModel = "gpt-4o-mini"

// Completer sends single-prompt completions to an OpenAI-compatible service.
// Azure deployments are reachable through WithBaseURL plus the deployment
// name as model.
type Completer struct {
	model       string
	maxTokens   int64
	temperature *float64

	client  sdk.Client
	options []option.RequestOption
}

// Option configures a Completer.
type Option func(*Completer)

// WithModel sets the model or deployment name.
func WithModel(model string) Option {
	return func(c *Completer) { c.model = model }
}

// WithAPIKey sets the API key. When absent the SDK falls back to the
// OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithAPIKey(key))
	}
}

// WithBaseURL points the client at a compatible service (Azure, a proxy,
// or a test server).
func WithBaseURL(url string) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithBaseURL(url))
	}
}

// WithMaxTokens caps the completion size.
func WithMaxTokens(n int64) Option {
	return func(c *Completer) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Completer) { c.temperature = &t }
}

// WithMaxRetries bounds the SDK's internal retry count.
func WithMaxRetries(n int) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithMaxRetries(n))
	}
}

// WithHTTPClient injects a custom transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithHTTPClient(client))
	}
}

// New creates a Completer.
func New(opts ...Option) *Completer {
	c := &Completer{model: defaultModel}
	for _, opt := range opts {
		opt(c)
	}
	c.client = sdk.NewClient(c.options...)
	return c
}

// Complete implements ports.Completer. Rate-limit responses map to
// domain.ErrRateLimited so callers can treat them as transient; every other
// failure maps to domain.ErrModelFailure.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	params := sdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = sdk.Int(c.maxTokens)
	}
	if c.temperature != nil {
		params.Temperature = sdk.Float(*c.temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrModelFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: completion timed out: %v", domain.ErrModelFailure, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
}
