package openapi

import (
	"fmt"
	"strings"
)

// synthesisInstructions asks the model for a request plan in a fenced JSON
// block. Keeping the shape flat (no nested schemas) makes the output cheap
// to parse and cheap in tokens.
const synthesisInstructions = `You translate a question into exactly one HTTP request against the API described below.

Respond with a single JSON object inside a fenced code block, and nothing else:

` + "```json" + `
{"method": "GET", "path": "/template/{name}", "params": {"name": "value"}, "query": {"key": "value"}, "headers": {}}
` + "```" + `

Rules:
- Pick exactly one operation from the description.
- "params" fills path template placeholders; "query" holds query-string values.
- When one path parameter should carry several values, join them with commas.
- Alternatively you may answer with {"method": "...", "url": "https://full.url/..."} when no templating is needed.`

// summaryInstructions turn a raw API response into an answer to the
// original question.
const summaryInstructions = `You are given the raw response of an API call made to answer a question.
Answer the question using only the data in the response. Quote the relevant figures.
If the response does not contain the answer, say so.`

// buildSynthesisPrompt combines the instructions, the rendered reduced
// description, and the question.
func buildSynthesisPrompt(specText, query string) string {
	var b strings.Builder
	b.WriteString(synthesisInstructions)
	b.WriteString("\n\nAPI description:\n")
	b.WriteString(specText)
	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	return b.String()
}

// buildSummaryPrompt combines the instructions, the response body, and the
// question.
func buildSummaryPrompt(body, query string) string {
	var b strings.Builder
	b.WriteString(summaryInstructions)
	b.WriteString("\n\nResponse:\n")
	b.WriteString(body)
	fmt.Fprintf(&b, "\n\nQuestion: %s\n", query)
	return b.String()
}

// buildCombinePrompt merges per-chunk summaries into one answer.
func buildCombinePrompt(partials []string, query string) string {
	var b strings.Builder
	b.WriteString(summaryInstructions)
	b.WriteString("\n\nResponse (combined from partial summaries):\n")
	for i, p := range partials {
		fmt.Fprintf(&b, "Part %d: %s\n", i+1, p)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	return b.String()
}
