package openapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/httpclient"
	"github.com/aretw0/espalier/pkg/apispec"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/tools/openapi"
)

// scriptedCompleter replays canned responses and records every prompt.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", fmt.Errorf("scripted completer exhausted")
	}
	out := c.responses[0]
	c.responses = c.responses[1:]
	return out, nil
}

func (c *scriptedCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func (c *scriptedCompleter) prompt(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompts[i]
}

// countingTransport fails every request while counting them.
type countingTransport struct {
	mu    sync.Mutex
	count int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
	return nil, fmt.Errorf("network disabled in test")
}

func (t *countingTransport) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func covidReduced(server string) *apispec.Reduced {
	return &apispec.Reduced{
		Title:   "disease.sh",
		Servers: []string{server},
		Endpoints: []apispec.Operation{
			{
				Method:  "GET",
				Path:    "/v3/covid-19/countries/{country}",
				Summary: "Get COVID-19 totals for a specific country",
				Parameters: []apispec.Parameter{
					{Name: "country", In: "path", Required: true, Type: "string"},
				},
			},
		},
	}
}

func planFor(path, country string) string {
	return fmt.Sprintf("```json\n{\"method\": \"GET\", \"path\": %q, \"params\": {\"country\": %q}}\n```", path, country)
}

func TestTool_EndToEnd_CovidComparison(t *testing.T) {
	const fixture = `[{"country":"Argentina","tests":35716069},{"country":"USA","tests":1186431916}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/covid-19/countries/Argentina,USA", r.URL.Path)
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	completer := &scriptedCompleter{responses: []string{
		planFor("/v3/covid-19/countries/{country}", "Argentina,USA"),
		"Argentina has performed 35716069 tests, while USA has performed 1186431916 tests.",
	}}

	tool := openapi.New(covidReduced(srv.URL), completer, openapi.WithModel("gpt-4-32k"))

	answer, err := tool.Invoke(context.Background(), "amount of people tested in Argentina vs USA")
	require.NoError(t, err)

	assert.Contains(t, answer, "35716069")
	assert.Contains(t, answer, "1186431916")

	require.Equal(t, 2, completer.calls())
	assert.Contains(t, completer.prompt(0), "GET /v3/covid-19/countries/{country}",
		"synthesis prompt carries the reduced description")
	assert.Contains(t, completer.prompt(1), `"tests":35716069`,
		"summarization prompt carries the raw response")
}

func TestTool_DomainEnforcement(t *testing.T) {
	transport := &countingTransport{}
	completer := &scriptedCompleter{responses: []string{
		`{"method": "GET", "url": "https://y.test/v1/data"}`,
	}}

	tool := openapi.New(covidReduced("https://x.test"), completer,
		openapi.WithAllowList("https://x.test/"),
		openapi.WithHTTPClient(httpclient.New(httpclient.WithTransport(transport))),
	)

	result, err := tool.Invoke(context.Background(), "fetch data")
	require.NoError(t, err, "rejection is a textual observation, not an error")

	assert.Contains(t, result, "domain not allowed")
	assert.Contains(t, result, "https://y.test/v1/data")
	assert.Equal(t, 0, transport.calls(), "no network call may be made for a rejected host")
}

func TestTool_UnparseableModelOutput(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"I am not able to help with that."}}
	tool := openapi.New(covidReduced("https://x.test"), completer)

	result, err := tool.Invoke(context.Background(), "question")
	require.NoError(t, err)
	assert.Contains(t, result, "Could not turn the question into an API call")
}

func TestTool_UpstreamFailureBecomesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	completer := &scriptedCompleter{responses: []string{
		planFor("/v3/covid-19/countries/{country}", "Argentina"),
	}}
	tool := openapi.New(covidReduced(srv.URL), completer)

	result, err := tool.Invoke(context.Background(), "question")
	require.NoError(t, err)
	assert.Contains(t, result, "The API call failed")
	assert.Contains(t, result, "500")
}

func TestTool_RateLimitEscapesForOuterRetry(t *testing.T) {
	completer := &scriptedCompleter{err: fmt.Errorf("completion: %w", domain.ErrRateLimited)}
	tool := openapi.New(covidReduced("https://x.test"), completer)

	_, err := tool.Invoke(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestTool_ChunkedSummarization(t *testing.T) {
	// ~3600 estimated tokens of body against gpt-35-turbo (budget 4096)
	// forces the chunked strategy without needing dozens of chunks.
	bigBody := strings.Repeat(`{"cases":12} `, 1200)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bigBody))
	}))
	defer srv.Close()

	completer := &scriptedCompleter{responses: []string{
		planFor("/v3/covid-19/countries/{country}", "Italy"),
		"partial one", "partial two", "partial three", "partial four", "partial five",
		"partial six", "partial seven", "partial eight", "partial nine", "combined answer",
	}}

	tool := openapi.New(covidReduced(srv.URL), completer, openapi.WithModel("gpt-35-turbo"))

	answer, err := tool.Invoke(context.Background(), "cases in Italy")
	require.NoError(t, err)

	// 1 synthesis + at least 2 chunk summaries + 1 combine.
	assert.GreaterOrEqual(t, completer.calls(), 4)
	assert.Contains(t, completer.prompt(completer.calls()-1), "Part 1:",
		"final call combines the partial summaries")
	assert.NotEmpty(t, answer)
}

func TestTool_Hooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var events []domain.EventType
	var mu sync.Mutex
	record := func(e domain.EventType) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	completer := &scriptedCompleter{responses: []string{
		planFor("/v3/covid-19/countries/{country}", "Argentina"),
		"summary",
	}}
	tool := openapi.New(covidReduced(srv.URL), completer,
		openapi.WithHooks(domain.LifecycleHooks{
			OnToolCall:    func(_ context.Context, e *domain.ToolEvent) { record(e.Type) },
			OnToolReturn:  func(_ context.Context, e *domain.ToolEvent) { record(e.Type) },
			OnModelCall:   func(_ context.Context, e *domain.ModelEvent) { record(e.Type) },
			OnModelReturn: func(_ context.Context, e *domain.ModelEvent) { record(e.Type) },
		}),
	)

	_, err := tool.Invoke(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, []domain.EventType{
		domain.EventToolCall,
		domain.EventModelCall, domain.EventModelReturn,
		domain.EventModelCall, domain.EventModelReturn,
		domain.EventToolReturn,
	}, events)
}

func TestTool_NameAndDescriptionDefaults(t *testing.T) {
	tool := openapi.New(covidReduced("https://disease.sh"), &scriptedCompleter{})
	assert.Equal(t, "disease_sh_api", tool.Name())
	assert.NotEmpty(t, tool.Description())

	named := openapi.New(covidReduced("https://disease.sh"), &scriptedCompleter{},
		openapi.WithName("covid_api"),
		openapi.WithDescription("Query COVID-19 statistics."),
	)
	assert.Equal(t, "covid_api", named.Name())
	assert.Equal(t, "Query COVID-19 statistics.", named.Description())
}

func TestTool_ContextTimeoutPropagates(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		planFor("/v3/covid-19/countries/{country}", "Argentina"),
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tool := openapi.New(covidReduced(srv.URL), completer,
		openapi.WithHTTPClient(httpclient.New(httpclient.WithRetryPause(time.Millisecond))),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := tool.Invoke(ctx, "q")
	require.NoError(t, err)
	assert.Contains(t, result, "The API call failed")
}
