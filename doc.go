/*
Package diagen generates architecture diagrams from structured intents or natural-language requests, using an LLM provider to write Graphviz DOT and a bounded correction loop to make it parse.

It implements a "generate, validate, correct" pipeline: the provider drafts DOT source, a syntax validator judges it, and rejected drafts are sent back to the provider with the verbatim diagnostic until the source parses or the attempt budget runs out. Accepted source is handed to the Graphviz toolchain, which renders the final artifact.

# Concept

Diagen treats diagram generation as a small state machine with untrusted text in the middle. The structured intent (components, groups, relationships) is the contract; the generated DOT is never trusted until a validator accepts it, and the renderer is the final arbiter. This hexagonal architecture keeps the pipeline core free of provider, validator and storage specifics, so it can be embedded in any interface: CLI, HTTP server, or agent infrastructure.

# Key Features

  - Bounded correction loop: at most n+1 validation passes per run, every rejection diagnostic preserved in order.
  - Typed failures: schema violations, provider outages, exhausted budgets and render errors are distinct error types, not strings.
  - Hexagonal architecture: providers (Gemini, Ollama), validators (grammar or heuristic), stores (memory, file, Redis) plug in behind small interfaces.
  - Run history: terminal runs are recorded best-effort to a pluggable store for later inspection.

# Usage

Wire a Pipeline from the adapters you want and run an intent through it:

	package main

	import (
		"context"
		"log"

		"github.com/kenjpais/diagram-generator"
		"github.com/kenjpais/diagram-generator/pkg/adapters/graphviz"
		"github.com/kenjpais/diagram-generator/pkg/adapters/llm"
		"github.com/kenjpais/diagram-generator/pkg/domain"
	)

	func main() {
		client, err := llm.NewOllamaClient("http://localhost:11434", "llama3", 0)
		if err != nil {
			log.Fatal(err)
		}

		requestor, err := llm.NewRequestor(client)
		if err != nil {
			log.Fatal(err)
		}

		renderer, err := graphviz.NewRenderer()
		if err != nil {
			log.Fatal(err) // dot is not installed
		}

		validator := graphviz.NewTiered(graphviz.NewGrammarValidator(), graphviz.NewBasicValidator(), nil)

		pipe, err := diagen.New(requestor, validator, renderer)
		if err != nil {
			log.Fatal(err)
		}

		intent := domain.DiagramIntent{
			Type: domain.DiagramSystem,
			Components: []domain.Component{
				{ID: "web", Label: "Web Tier", Type: "service"},
				{ID: "db", Label: "Postgres", Type: "database"},
			},
			Relationships: []domain.Relationship{
				{Source: "web", Target: "db", Type: "data_flow"},
			},
		}

		result, err := pipe.Run(context.Background(), intent, domain.RenderJob{
			Dir:      "output",
			BaseName: "system_overview",
			Format:   domain.FormatSVG,
		})
		if err != nil {
			log.Fatal(err)
		}

		log.Printf("rendered %s in %d attempt(s)", result.ArtifactPath, result.Attempts)
	}

Free-form requests work the same way once an extractor is attached with
WithExtractor; see Pipeline.RunText.
*/
package diagen
