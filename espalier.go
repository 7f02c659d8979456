package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

const defaultMaxAttempts = 2

// Agent is the high-level entry point for the Espalier library. It holds the
// tool registry and runs the bounded retry around each reasoning turn.
type Agent struct {
	registry    *registry.Registry
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	maxAttempts int
	retryPause  time.Duration
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithLifecycleHooks registers observability hooks for dispatch retries.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) { a.hooks = hooks }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithMaxAttempts overrides the dispatch attempt bound.
func WithMaxAttempts(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRetryPause sets the pause between failed dispatch attempts.
func WithRetryPause(d time.Duration) Option {
	return func(a *Agent) { a.retryPause = d }
}

// New initializes an Agent with an empty tool registry.
func New(opts ...Option) *Agent {
	a := &Agent{
		registry:    registry.New(),
		logger:      logging.NewNop(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds a tool to the registry. A tool with the same name replaces
// the previous one.
func (a *Agent) Register(tool ports.Tool) {
	a.registry.Register(tool)
}

// Tools lists the registered tools in a stable order.
func (a *Agent) Tools() []domain.ToolInfo {
	return a.registry.List()
}

// Invoke runs a single tool attempt without the outer retry.
func (a *Agent) Invoke(ctx context.Context, tool, query string) (string, error) {
	return a.registry.Invoke(ctx, tool, query)
}

// Dispatch runs one reasoning turn with the bounded retry. Any error
// escaping the tool counts as a failed attempt, permanent-looking ones
// included. After the attempt bound the result is the fixed
// retries-exhausted text. Dispatch never returns an error: the reasoning
// loop consumes observations, not exceptions.
func (a *Agent) Dispatch(ctx context.Context, tool, query string) string {
	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if attempt > 1 && a.retryPause > 0 {
			select {
			case <-time.After(a.retryPause):
			case <-ctx.Done():
				return fmt.Sprintf("Error: %v", ctx.Err())
			}
		}

		result, err := a.registry.Invoke(ctx, tool, query)
		if err == nil {
			return result
		}
		lastErr = err

		a.logger.Warn("dispatch attempt failed", "tool", tool, "attempt", attempt, "err", err)
		a.fireRetry(ctx, tool, attempt, err)
	}

	a.logger.Error("dispatch gave up", "tool", tool, "attempts", a.maxAttempts, "err", lastErr)
	return domain.RetriesExhaustedMessage
}

func (a *Agent) fireRetry(ctx context.Context, tool string, attempt int, err error) {
	if a.hooks.OnRetry == nil {
		return
	}
	a.hooks.OnRetry(ctx, &domain.RetryEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRetry},
		ToolName:  tool,
		Attempt:   attempt,
		Reason:    err.Error(),
	})
}
