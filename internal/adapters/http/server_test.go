package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aretw0/espalier/internal/adapters/http"
	"github.com/aretw0/espalier/pkg/domain"
)

type fakeDispatcher struct {
	lastTool  string
	lastQuery string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, tool, query string) string {
	f.lastTool = tool
	f.lastQuery = query
	if tool == "missing" {
		return "Error: tool not found"
	}
	return "the textual answer"
}

func (f *fakeDispatcher) Tools() []domain.ToolInfo {
	return []domain.ToolInfo{
		{Name: "covid_api", Description: "Query COVID-19 statistics."},
		{Name: "search", Description: "Look up current information."},
	}
}

func TestServer_Invoke(t *testing.T) {
	d := &fakeDispatcher{}
	srv := httptest.NewServer(httpadapter.NewHandler(d))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/invoke", "application/json",
		strings.NewReader(`{"tool": "covid_api", "query": "cases in Italy"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body httpadapter.InvokeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "the textual answer", body.Result)
	assert.Equal(t, "covid_api", d.lastTool)
	assert.Equal(t, "cases in Italy", d.lastQuery)
}

func TestServer_InvokeValidation(t *testing.T) {
	srv := httptest.NewServer(httpadapter.NewHandler(&fakeDispatcher{}))
	defer srv.Close()

	for name, payload := range map[string]string{
		"malformed json": `{"tool": `,
		"missing tool":   `{"query": "q"}`,
		"missing query":  `{"tool": "covid_api"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/invoke", "application/json", strings.NewReader(payload))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_ErrorsStayTextual(t *testing.T) {
	srv := httptest.NewServer(httpadapter.NewHandler(&fakeDispatcher{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/invoke", "application/json",
		strings.NewReader(`{"tool": "missing", "query": "q"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "tool failures are observations, not HTTP errors")

	var body httpadapter.InvokeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Result, "Error")
}

func TestServer_ListTools(t *testing.T) {
	srv := httptest.NewServer(httpadapter.NewHandler(&fakeDispatcher{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var tools []domain.ToolInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tools))
	require.Len(t, tools, 2)
	assert.Equal(t, "covid_api", tools[0].Name)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(httpadapter.NewHandler(&fakeDispatcher{}, httpadapter.WithMetrics(reg)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
