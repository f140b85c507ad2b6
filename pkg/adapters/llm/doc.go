/*
Package llm implements the generative-text collaborators on top of a small
provider-agnostic Client seam.

The Requestor (ports.CodeRequestor) and Extractor (ports.IntentExtractor)
render the embedded prompt templates, call a Client, and clean the raw
completion into DOT source or an intent document. Concrete clients exist for
Gemini (official genai SDK) and Ollama (JSON over HTTP); cross-cutting
concerns attach as Middleware, and a Registry gives configuration a closed
set of named providers to choose from.
*/
package llm
