// Package graphviz provides the syntax-checking and rendering adapters for
// Graphviz DOT source.
//
// Validation comes in two tiers. GrammarValidator parses the source with a
// real DOT grammar and reports the parser's own diagnostic. BasicValidator is
// a conservative recognizer used when the grammar tier is disabled: it only
// accepts a whitelisted slice of DOT, so whatever it passes the grammar tier
// would pass too. Tiered picks between them so callers depend on a single
// ports.SyntaxValidator.
//
// Renderer shells out to the dot binary to turn accepted source into an
// artifact, persisting both the source text and the rendered file under a
// caller-supplied base name.
package graphviz
