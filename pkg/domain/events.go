package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventToolCall    EventType = "tool_call"
	EventToolReturn  EventType = "tool_return"
	EventModelCall   EventType = "model_call"
	EventModelReturn EventType = "model_return"
	EventRetry       EventType = "retry"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	InvocationID string    `json:"invocation_id,omitempty"`
}

// ToolEvent represents a tool invocation boundary crossing.
type ToolEvent struct {
	EventBase
	ToolName string        `json:"tool_name"`
	Query    string        `json:"query,omitempty"`
	Result   string        `json:"result,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ModelEvent represents a completion model round trip.
type ModelEvent struct {
	EventBase
	PromptTokens int           `json:"prompt_tokens,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	IsError      bool          `json:"is_error,omitempty"`
}

// RetryEvent represents one failed attempt inside the bounded turn retry.
type RetryEvent struct {
	EventBase
	ToolName string `json:"tool_name"`
	Attempt  int    `json:"attempt"`
	Reason   string `json:"reason"`
}

// LifecycleHooks defines callbacks for dispatcher observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnToolCall    func(context.Context, *ToolEvent)
	OnToolReturn  func(context.Context, *ToolEvent)
	OnModelCall   func(context.Context, *ModelEvent)
	OnModelReturn func(context.Context, *ModelEvent)
	OnRetry       func(context.Context, *RetryEvent)
}
