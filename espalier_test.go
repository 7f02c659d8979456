package espalier_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

type stubTool struct {
	name    string
	calls   atomic.Int32
	result  string
	err     error
	failFor int32 // fail the first N calls, then succeed
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }

func (s *stubTool) Invoke(ctx context.Context, query string) (string, error) {
	n := s.calls.Add(1)
	if s.err != nil && (s.failFor == 0 || n <= s.failFor) {
		return "", s.err
	}
	return s.result, nil
}

func TestAgent_Dispatch(t *testing.T) {
	tool := &stubTool{name: "covid_api", result: "the answer"}
	agent := espalier.New()
	agent.Register(tool)

	out := agent.Dispatch(context.Background(), "covid_api", "q")
	assert.Equal(t, "the answer", out)
	assert.EqualValues(t, 1, tool.calls.Load())
}

func TestAgent_DispatchRetryBound(t *testing.T) {
	tool := &stubTool{name: "flaky", err: fmt.Errorf("transient: %w", domain.ErrRateLimited)}
	agent := espalier.New()
	agent.Register(tool)

	out := agent.Dispatch(context.Background(), "flaky", "q")

	assert.Equal(t, "Error too many failed retries", out)
	assert.EqualValues(t, 2, tool.calls.Load(), "exactly two attempts before giving up")
}

func TestAgent_DispatchRecoversOnSecondAttempt(t *testing.T) {
	tool := &stubTool{
		name:    "flaky",
		err:     domain.ErrRateLimited,
		failFor: 1,
		result:  "recovered",
	}
	agent := espalier.New()
	agent.Register(tool)

	out := agent.Dispatch(context.Background(), "flaky", "q")
	assert.Equal(t, "recovered", out)
	assert.EqualValues(t, 2, tool.calls.Load())
}

func TestAgent_DispatchUnknownToolRetriesThenGivesUp(t *testing.T) {
	agent := espalier.New()

	// The retry policy is deliberately broad: even a permanent failure
	// like an unknown tool name burns through the attempt bound.
	out := agent.Dispatch(context.Background(), "nope", "q")
	assert.Equal(t, domain.RetriesExhaustedMessage, out)
}

func TestAgent_DispatchRetryHooks(t *testing.T) {
	tool := &stubTool{name: "flaky", err: domain.ErrRateLimited}

	var attempts []int
	agent := espalier.New(espalier.WithLifecycleHooks(domain.LifecycleHooks{
		OnRetry: func(_ context.Context, e *domain.RetryEvent) {
			attempts = append(attempts, e.Attempt)
		},
	}))
	agent.Register(tool)

	agent.Dispatch(context.Background(), "flaky", "q")
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestAgent_MaxAttemptsOption(t *testing.T) {
	tool := &stubTool{name: "flaky", err: domain.ErrRateLimited}
	agent := espalier.New(espalier.WithMaxAttempts(4))
	agent.Register(tool)

	agent.Dispatch(context.Background(), "flaky", "q")
	assert.EqualValues(t, 4, tool.calls.Load())
}

func TestAgent_Tools(t *testing.T) {
	agent := espalier.New()
	agent.Register(&stubTool{name: "zeta"})
	agent.Register(&stubTool{name: "alpha"})

	tools := agent.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.Equal(t, "zeta", tools[1].Name)
}
