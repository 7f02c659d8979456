package endpoint_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/tools/endpoint"
)

func TestTool_SubstitutesQueryAndCredential(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"results":["first hit"]}`))
	}))
	defer srv.Close()

	tool := endpoint.New(srv.URL+"/search",
		endpoint.WithParam("count", "5"),
		endpoint.WithParam("mkt", "en-US"),
		endpoint.WithCredential("subscription-key", "secret-key"),
	)

	result, err := tool.Invoke(context.Background(), "latest covid numbers")
	require.NoError(t, err)
	assert.Contains(t, result, "first hit")

	require.NotNil(t, got)
	q := got.URL.Query()
	assert.Equal(t, "latest covid numbers", q.Get("q"))
	assert.Equal(t, "5", q.Get("count"))
	assert.Equal(t, "en-US", q.Get("mkt"))
	assert.Equal(t, "secret-key", q.Get("subscription-key"),
		"credential parameter is always included")
}

func TestTool_CustomQueryParam(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	tool := endpoint.New(srv.URL, endpoint.WithQueryParam("text"))

	_, err := tool.Invoke(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.URL.Query().Get("text"))
	assert.Empty(t, got.URL.Query().Get("q"))
}

func TestTool_QueryOverridesStaticParam(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	tool := endpoint.New(srv.URL, endpoint.WithParam("q", "stale default"))

	_, err := tool.Invoke(context.Background(), "fresh question")
	require.NoError(t, err)
	assert.Equal(t, "fresh question", got.URL.Query().Get("q"))
}

func TestTool_UpstreamFailureBecomesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	tool := endpoint.New(srv.URL)

	result, err := tool.Invoke(context.Background(), "q")
	require.NoError(t, err, "failures are textual observations, not errors")
	assert.Contains(t, result, "The API call failed")
	assert.Contains(t, result, "403")
}

func TestTool_TruncatesLargeResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	tool := endpoint.New(srv.URL, endpoint.WithMaxResultBytes(100))

	result, err := tool.Invoke(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, result, 103) // 100 bytes plus the ellipsis
	assert.True(t, strings.HasSuffix(result, "..."))
}

func TestTool_Defaults(t *testing.T) {
	tool := endpoint.New("https://search.test")
	assert.Equal(t, "search", tool.Name())
	assert.NotEmpty(t, tool.Description())

	named := endpoint.New("https://search.test",
		endpoint.WithName("web_search"),
		endpoint.WithDescription("Search the web."),
	)
	assert.Equal(t, "web_search", named.Name())
	assert.Equal(t, "Search the web.", named.Description())
}
