package openapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/espalier/internal/httpclient"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/apispec"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/tokens"
)

// defaultCompletionTokens is reserved for the model's answer when checking
// a payload against the context budget.
const defaultCompletionTokens = 1000

// Tool is the spec-guided variant: it answers natural-language questions by
// synthesizing and executing one HTTP call against a described API.
type Tool struct {
	name        string
	description string
	spec        *apispec.Reduced
	completer   ports.Completer
	client      *httpclient.Client
	allowList   []string
	model       string
	completion  int
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option configures the Tool.
type Option func(*Tool)

// WithName overrides the derived tool name.
func WithName(name string) Option {
	return func(t *Tool) { t.name = name }
}

// WithDescription overrides the derived one-line description.
func WithDescription(desc string) Option {
	return func(t *Tool) { t.description = desc }
}

// WithAllowList restricts synthesized requests to the given base URLs.
// Requests targeting any other host are rejected before execution.
func WithAllowList(urls ...string) Option {
	return func(t *Tool) { t.allowList = urls }
}

// WithHTTPClient injects the executor for outbound calls.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(t *Tool) { t.client = client }
}

// WithModel sets the model identifier used for context budget lookups.
func WithModel(model string) Option {
	return func(t *Tool) { t.model = model }
}

// WithCompletionTokens sets the completion reservation for budget checks.
func WithCompletionTokens(n int) Option {
	return func(t *Tool) { t.completion = n }
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tool) { t.hooks = hooks }
}

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) { t.logger = logger }
}

// New creates a spec-guided tool over a reduced description.
func New(spec *apispec.Reduced, completer ports.Completer, opts ...Option) *Tool {
	t := &Tool{
		spec:       spec,
		completer:  completer,
		completion: defaultCompletionTokens,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = httpclient.New(httpclient.WithLogger(t.logger))
	}
	if t.name == "" {
		t.name = deriveName(spec.Title)
	}
	if t.description == "" {
		t.description = deriveDescription(spec)
	}
	return t
}

// Name implements ports.Tool.
func (t *Tool) Name() string { return t.name }

// Description implements ports.Tool.
func (t *Tool) Description() string { return t.description }

// Invoke answers the query with one synthesized API call.
//
// Domain failures (unparseable plan, rejected host, dead upstream) become
// textual results; completion transport failures are returned as errors so
// the turn runner can retry them.
func (t *Tool) Invoke(ctx context.Context, query string) (string, error) {
	inv := domain.NewInvocation(t.name, query)
	t.fireToolCall(ctx, inv)

	result, err := t.invoke(ctx, inv, query)
	if err != nil {
		t.fireToolReturn(ctx, inv, err.Error(), true)
		return "", err
	}

	inv.Result = result
	t.fireToolReturn(ctx, inv, result, false)
	return result, nil
}

func (t *Tool) invoke(ctx context.Context, inv *domain.Invocation, query string) (string, error) {
	specText := t.spec.RenderPrompt()

	strategy := tokens.ChooseForModel(t.model,
		tokens.Estimate(synthesisInstructions),
		tokens.Estimate(specText)+tokens.Estimate(query),
		t.completion,
	)
	if strategy == tokens.StrategyMapReduce {
		// The reduced description itself cannot be chunked without losing
		// operations the model may need. Surface the condition instead of
		// silently truncating.
		return fmt.Sprintf("The API description is too large for model %q even after reduction; configure a larger-context model.", t.model), nil
	}

	output, err := t.complete(ctx, buildSynthesisPrompt(specText, query))
	if err != nil {
		return "", err
	}

	p, err := parsePlan(output)
	if err != nil {
		t.logger.Warn("request synthesis failed", "tool", t.name, "err", err)
		return fmt.Sprintf("Could not turn the question into an API call: %v", err), nil
	}

	var base string
	if len(t.spec.Servers) > 0 {
		base = t.spec.Servers[0]
	}
	req, err := buildRequest(base, p)
	if err != nil {
		return fmt.Sprintf("Could not build the API request: %v", err), nil
	}
	inv.Request = req

	if !hostAllowed(req.URL, t.allowList) {
		t.logger.Warn("request rejected by allow-list", "tool", t.name, "url", req.URL)
		return fmt.Sprintf("%v: request to %s is outside the allowed domains", domain.ErrDomainNotAllowed, req.URL), nil
	}

	t.logger.Debug("executing synthesized request", "method", req.Method, "url", req.URL)
	body, err := t.client.Do(ctx, req)
	if err != nil {
		return fmt.Sprintf("The API call failed: %v", err), nil
	}
	inv.Response = string(body)

	return t.summarize(ctx, query, string(body))
}

// summarize answers the query from the raw response, chunking when the
// response exceeds the model's context budget.
func (t *Tool) summarize(ctx context.Context, query, body string) (string, error) {
	promptTokens := tokens.Estimate(summaryInstructions) + tokens.Estimate(query)
	bodyTokens := tokens.Estimate(body)

	strategy := tokens.ChooseForModel(t.model, promptTokens, bodyTokens, t.completion)
	if strategy == tokens.StrategyStuff {
		return t.complete(ctx, buildSummaryPrompt(body, query))
	}

	budget := tokens.Budget(t.model)
	chunkBudget := budget/2 - promptTokens - t.completion
	if chunkBudget < 1 {
		chunkBudget = 1
	}

	t.logger.Debug("summarizing in chunks", "tool", t.name, "body_tokens", bodyTokens, "chunk_budget", chunkBudget)

	var partials []string
	for _, chunk := range chunkText(body, chunkBudget) {
		partial, err := t.complete(ctx, buildSummaryPrompt(chunk, query))
		if err != nil {
			return "", err
		}
		partials = append(partials, partial)
	}
	if len(partials) == 1 {
		return partials[0], nil
	}
	return t.complete(ctx, buildCombinePrompt(partials, query))
}

// complete calls the model with lifecycle hooks around the round trip.
func (t *Tool) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	t.fireModelCall(ctx, tokens.Estimate(prompt))

	output, err := t.completer.Complete(ctx, prompt)

	t.fireModelReturn(ctx, time.Since(start), err != nil)
	if err != nil {
		return "", err
	}
	return output, nil
}

// chunkText splits text into pieces of at most maxTokens estimated tokens,
// breaking at whitespace boundaries.
func chunkText(text string, maxTokens int) []string {
	var chunks []string
	var current strings.Builder
	count := 0

	for _, field := range strings.Fields(text) {
		n := tokens.Estimate(field)
		if count > 0 && count+n > maxTokens {
			chunks = append(chunks, current.String())
			current.Reset()
			count = 0
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(field)
		count += n
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (t *Tool) fireToolCall(ctx context.Context, inv *domain.Invocation) {
	if t.hooks.OnToolCall == nil {
		return
	}
	t.hooks.OnToolCall(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolCall, InvocationID: inv.ID},
		ToolName:  t.name,
		Query:     inv.Query,
	})
}

func (t *Tool) fireToolReturn(ctx context.Context, inv *domain.Invocation, result string, isErr bool) {
	inv.Duration = time.Since(inv.StartedAt)
	if t.hooks.OnToolReturn == nil {
		return
	}
	t.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolReturn, InvocationID: inv.ID},
		ToolName:  t.name,
		Result:    result,
		IsError:   isErr,
		Duration:  inv.Duration,
	})
}

func (t *Tool) fireModelCall(ctx context.Context, promptTokens int) {
	if t.hooks.OnModelCall == nil {
		return
	}
	t.hooks.OnModelCall(ctx, &domain.ModelEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventModelCall},
		PromptTokens: promptTokens,
	})
}

func (t *Tool) fireModelReturn(ctx context.Context, d time.Duration, isErr bool) {
	if t.hooks.OnModelReturn == nil {
		return
	}
	t.hooks.OnModelReturn(ctx, &domain.ModelEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventModelReturn},
		Duration:  d,
		IsError:   isErr,
	})
}

// deriveName turns a spec title into a stable tool identifier.
func deriveName(title string) string {
	if title == "" {
		return "api_tool"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "api_tool"
	}
	return name + "_api"
}

func deriveDescription(spec *apispec.Reduced) string {
	if spec.Description != "" {
		return spec.Description
	}
	if spec.Title != "" {
		return fmt.Sprintf("Answer questions using the %s API.", spec.Title)
	}
	return "Answer questions by calling a described HTTP API."
}
