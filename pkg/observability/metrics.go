// Package observability exposes dispatcher lifecycle events as Prometheus
// metrics. The collectors plug into domain.LifecycleHooks, so tools and the
// agent stay free of any metrics dependency.
package observability

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metrics holds the collectors for tool and model activity.
type Metrics struct {
	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	modelCalls      prometheus.Counter
	modelDuration   prometheus.Histogram
	promptTokens    prometheus.Histogram
	retries         *prometheus.CounterVec

	mu       sync.Mutex
	inFlight map[string]string // invocation ID -> tool name
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "tool_invocations_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "tool_duration_seconds",
			Help:      "Wall-clock duration of tool invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		modelCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "model_calls_total",
			Help:      "Completion model round trips.",
		}),
		modelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "model_duration_seconds",
			Help:      "Completion model round trip duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		promptTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "espalier",
			Name:      "model_prompt_tokens",
			Help:      "Estimated prompt size per completion call.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "dispatch_retries_total",
			Help:      "Failed dispatch attempts that triggered a retry.",
		}, []string{"tool"}),
		inFlight: map[string]string{},
	}
	reg.MustRegister(
		m.toolInvocations,
		m.toolDuration,
		m.modelCalls,
		m.modelDuration,
		m.promptTokens,
		m.retries,
	)
	return m
}

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToolCall:    m.onToolCall,
		OnToolReturn:  m.onToolReturn,
		OnModelCall:   m.onModelCall,
		OnModelReturn: m.onModelReturn,
		OnRetry:       m.onRetry,
	}
}

func (m *Metrics) onToolCall(_ context.Context, e *domain.ToolEvent) {
	m.mu.Lock()
	m.inFlight[e.InvocationID] = e.ToolName
	m.mu.Unlock()
}

func (m *Metrics) onToolReturn(_ context.Context, e *domain.ToolEvent) {
	m.mu.Lock()
	delete(m.inFlight, e.InvocationID)
	m.mu.Unlock()

	outcome := "ok"
	if e.IsError {
		outcome = "error"
	}
	m.toolInvocations.WithLabelValues(e.ToolName, outcome).Inc()
	m.toolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
}

func (m *Metrics) onModelCall(_ context.Context, e *domain.ModelEvent) {
	m.modelCalls.Inc()
	m.promptTokens.Observe(float64(e.PromptTokens))
}

func (m *Metrics) onModelReturn(_ context.Context, e *domain.ModelEvent) {
	m.modelDuration.Observe(e.Duration.Seconds())
}

func (m *Metrics) onRetry(_ context.Context, e *domain.RetryEvent) {
	m.retries.WithLabelValues(e.ToolName).Inc()
}

// ToolInvocations returns the invocation counter for a tool and outcome.
func (m *Metrics) ToolInvocations(tool, outcome string) prometheus.Counter {
	return m.toolInvocations.WithLabelValues(tool, outcome)
}

// Retries returns the retry counter for a tool.
func (m *Metrics) Retries(tool string) prometheus.Counter {
	return m.retries.WithLabelValues(tool)
}

// InFlight reports how many invocations have entered but not yet returned.
func (m *Metrics) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inFlight)
}
