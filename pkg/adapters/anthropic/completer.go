// Package anthropic adapts the Anthropic Messages API to ports.Completer.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/aretw0/espalier/pkg/domain"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Completer sends single-prompt completions to the Anthropic Messages API.
type Completer struct {
	model       string
	maxTokens   int64
	temperature *float64

	client  *sdk.Client
	options []option.RequestOption
}

// Option configures a Completer.
type Option func(*Completer)

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Completer) { c.model = model }
}

// WithAPIKey sets the API key. When absent the SDK falls back to the
// ANTHROPIC_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithAPIKey(key))
	}
}

// WithBaseURL points the client at a proxy or test server.
func WithBaseURL(url string) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithBaseURL(url))
	}
}

// WithMaxRetries bounds the SDK's internal retry count.
func WithMaxRetries(n int) Option {
	return func(c *Completer) {
		c.options = append(c.options, option.WithMaxRetries(n))
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

// New creates a Completer.
func New(opts ...Option) *Completer {
	c := &Completer{model: defaultModel, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(c)
	}
	client := sdk.NewClient(c.options...)
	c.client = &client
	return c
}

// Complete implements ports.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	body := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if c.temperature != nil {
		body.Temperature = param.NewOpt(*c.temperature)
	}

	msg, err := c.client.Messages.New(ctx, body)
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text content returned", domain.ErrModelFailure)
	}
	return b.String(), nil
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
