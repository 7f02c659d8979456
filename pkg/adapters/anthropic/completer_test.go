package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/anthropic"
	"github.com/aretw0/espalier/pkg/domain"
)

func TestCompleter_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "the answer"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c := anthropic.New(
		anthropic.WithBaseURL(srv.URL),
		anthropic.WithAPIKey("test-key"),
		anthropic.WithModel("claude-3-5-haiku-latest"),
		anthropic.WithMaxTokens(256),
		anthropic.WithMaxRetries(0),
	)

	out, err := c.Complete(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)

	assert.Equal(t, "claude-3-5-haiku-latest", gotBody["model"])
	assert.EqualValues(t, 256, gotBody["max_tokens"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestCompleter_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer srv.Close()

	c := anthropic.New(
		anthropic.WithBaseURL(srv.URL),
		anthropic.WithAPIKey("test-key"),
		anthropic.WithMaxRetries(0),
	)

	_, err := c.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCompleter_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_2",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 1, "output_tokens": 0}
		}`))
	}))
	defer srv.Close()

	c := anthropic.New(
		anthropic.WithBaseURL(srv.URL),
		anthropic.WithAPIKey("test-key"),
		anthropic.WithMaxRetries(0),
	)

	_, err := c.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelFailure)
}
