/*
Package espalier turns described HTTP APIs into tools an LLM reasoning loop
can call. It reduces an OpenAPI description to the minimum a completion
model needs to synthesize a concrete request, executes that request, and
summarizes the response back into plain text.

# Concept

An external reasoning loop selects a tool by name, passes it a
natural-language query, and receives a textual observation. Espalier
supplies the tools: the spec-guided variant works from a reduced API
description and a completion model; the schema-less variant queries a
fixed endpoint. Every failure inside a tool becomes text, because the
loop's only recovery path is to read the observation and try something
else.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/espalier"
		openaiadapter "github.com/aretw0/espalier/pkg/adapters/openai"
		"github.com/aretw0/espalier/pkg/apispec"
		"github.com/aretw0/espalier/pkg/tools/openapi"
	)

	func main() {
		doc, _ := apispec.LoadFile("disease.sh.yaml")
		reduced, _ := apispec.Reduce(doc)

		completer := openaiadapter.New(openaiadapter.WithModel("gpt-4"))
		tool := openapi.New(reduced, completer,
			openapi.WithAllowList("https://disease.sh/"),
		)

		agent := espalier.New()
		agent.Register(tool)

		answer := agent.Dispatch(context.Background(), tool.Name(),
			"amount of people tested in Argentina vs USA")
		fmt.Println(answer)
	}

The pkg/ tree holds the reusable pieces: apispec (reduction), tokens
(budget policy), tools (the two variants), adapters (completion models,
caches, MCP), and ports (the interfaces between them).
*/
package espalier
