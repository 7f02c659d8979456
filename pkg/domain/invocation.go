package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolvedRequest is the concrete HTTP call synthesized from a reduced API
// description and a natural-language query.
type ResolvedRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Invocation records one tool dispatch from query to textual result.
// It is created per invocation, handed to lifecycle hooks, and discarded
// once the reasoning loop has consumed the result. It is never persisted.
type Invocation struct {
	ID        string           `json:"id"`
	Tool      string           `json:"tool"`
	Query     string           `json:"query"`
	Request   *ResolvedRequest `json:"request,omitempty"`
	Response  string           `json:"response,omitempty"`
	Result    string           `json:"result"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}

// NewInvocation creates an invocation record for the given tool and query.
func NewInvocation(tool, query string) *Invocation {
	return &Invocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		Query:     query,
		StartedAt: time.Now(),
	}
}
