package graphviz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// BasicValidator is the fallback syntax tier. It recognizes a conservative
// slice of the DOT language: lowercase keywords, node statements, edge
// chains, attribute assignments, node/edge/graph defaults, and subgraph
// blocks. Anything it cannot fully recognize is rejected, so a Valid verdict
// from this tier holds under the grammar tier as well. The cost runs the
// other way: exotic but well-formed DOT (ports, HTML labels, uppercase
// keywords) is rejected, and the correction loop absorbs that.
type BasicValidator struct{}

// NewBasicValidator returns the fallback validator.
func NewBasicValidator() *BasicValidator {
	return &BasicValidator{}
}

// Validate runs the recognizer and reports the first defect found.
func (*BasicValidator) Validate(_ context.Context, source string) domain.Verdict {
	r := &dotRecognizer{input: source}
	if diag := r.graph(); diag != "" {
		return domain.Reject(diag)
	}
	return domain.Accept()
}

type dotTokenKind int

const (
	tokenEOF dotTokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenPunct // one of { } [ ] = , ;
	tokenEdge  // -> or --
	tokenBad   // text carries the diagnostic
)

type dotToken struct {
	kind dotTokenKind
	text string
}

// reservedWords may never appear where a name is expected. Matched
// case-insensitively because DOT keywords are.
var reservedWords = map[string]bool{
	"strict":   true,
	"graph":    true,
	"digraph":  true,
	"subgraph": true,
	"node":     true,
	"edge":     true,
}

func isPunct(t dotToken, p string) bool    { return t.kind == tokenPunct && t.text == p }
func isKeyword(t dotToken, kw string) bool { return t.kind == tokenIdent && t.text == kw }

// isName reports whether the token can stand for an ID: a quoted string, a
// numeral, or an identifier that is not a reserved word.
func isName(t dotToken) bool {
	switch t.kind {
	case tokenString, tokenNumber:
		return true
	case tokenIdent:
		return !reservedWords[strings.ToLower(t.text)]
	}
	return false
}

type dotRecognizer struct {
	input  string
	pos    int
	peeked *dotToken
	edgeOp string // "->" in a digraph, "--" in a graph
}

func (r *dotRecognizer) next() dotToken {
	if r.peeked != nil {
		tok := *r.peeked
		r.peeked = nil
		return tok
	}
	return r.lex()
}

func (r *dotRecognizer) peek() dotToken {
	if r.peeked == nil {
		tok := r.lex()
		r.peeked = &tok
	}
	return *r.peeked
}

// failAt prefers the lexer's own diagnostic over the grammar-level one.
func (r *dotRecognizer) failAt(tok dotToken, msg string) string {
	if tok.kind == tokenBad {
		return tok.text
	}
	return msg
}

// graph := [strict] (digraph|graph) [name] { body }
func (r *dotRecognizer) graph() string {
	tok := r.next()
	if isKeyword(tok, "strict") {
		tok = r.next()
	}
	switch {
	case isKeyword(tok, "digraph"):
		r.edgeOp = "->"
	case isKeyword(tok, "graph"):
		r.edgeOp = "--"
	default:
		return "Diagram must start with 'digraph' or 'graph' keyword"
	}

	tok = r.next()
	if isName(tok) {
		tok = r.next()
	}
	if !isPunct(tok, "{") {
		return r.failAt(tok, "Missing opening brace")
	}
	if diag := r.body(); diag != "" {
		return diag
	}

	tok = r.next()
	switch {
	case tok.kind == tokenEOF:
		return ""
	case isPunct(tok, "}"):
		return "Closing brace without matching opening brace"
	default:
		return r.failAt(tok, fmt.Sprintf("Unexpected %q after the closing brace", tok.text))
	}
}

// body consumes statements until the matching closing brace.
func (r *dotRecognizer) body() string {
	for {
		tok := r.next()
		switch {
		case tok.kind == tokenBad:
			return tok.text
		case tok.kind == tokenEOF:
			return "Unbalanced braces: the diagram body is never closed"
		case isPunct(tok, "}"):
			return ""
		case isPunct(tok, "{"):
			// Anonymous subgraph.
			if diag := r.body(); diag != "" {
				return diag
			}
		case isKeyword(tok, "subgraph"):
			nx := r.next()
			if isName(nx) {
				nx = r.next()
			}
			if !isPunct(nx, "{") {
				return r.failAt(nx, "Subgraph is missing its opening brace")
			}
			if diag := r.body(); diag != "" {
				return diag
			}
		case isKeyword(tok, "node"), isKeyword(tok, "edge"), isKeyword(tok, "graph"):
			if nx := r.next(); !isPunct(nx, "[") {
				return r.failAt(nx, fmt.Sprintf("Expected an attribute list after '%s'", tok.text))
			}
			if diag := r.attrLists(); diag != "" {
				return diag
			}
		case isName(tok):
			if diag := r.nodeOrEdge(); diag != "" {
				return diag
			}
		default:
			return fmt.Sprintf("Unrecognized statement starting at %q", tok.text)
		}

		if isPunct(r.peek(), ";") {
			r.next()
		}
	}
}

// nodeOrEdge finishes a statement whose first name is already consumed:
// an attribute assignment, a bare or attributed node, or an edge chain.
func (r *dotRecognizer) nodeOrEdge() string {
	if isPunct(r.peek(), "=") {
		r.next()
		if val := r.next(); !isName(val) {
			return r.failAt(val, "Attribute assignment is missing its value")
		}
		return ""
	}

	for r.peek().kind == tokenEdge {
		op := r.next()
		if op.text != r.edgeOp {
			return fmt.Sprintf("Edge operator '%s' is not valid in this graph type", op.text)
		}
		if target := r.next(); !isName(target) {
			return r.failAt(target, "Edge is missing its target")
		}
	}

	if isPunct(r.peek(), "[") {
		r.next()
		return r.attrLists()
	}
	return ""
}

// attrLists consumes one or more bracketed attribute lists; the first
// opening bracket is already consumed.
func (r *dotRecognizer) attrLists() string {
	for {
		if diag := r.attrList(); diag != "" {
			return diag
		}
		if !isPunct(r.peek(), "[") {
			return ""
		}
		r.next()
	}
}

// attrList := [ name=value ((,|;) name=value)* [,|;] ] ]
func (r *dotRecognizer) attrList() string {
	nx := r.next()
	if isPunct(nx, "]") {
		return ""
	}
	for {
		if !isName(nx) {
			return r.failAt(nx, "Attribute list entries must be name=value pairs")
		}
		if eq := r.next(); !isPunct(eq, "=") {
			return r.failAt(eq, "Attribute list entries must be name=value pairs")
		}
		if val := r.next(); !isName(val) {
			return r.failAt(val, "Attribute list entries must be name=value pairs")
		}

		sep := r.next()
		switch {
		case isPunct(sep, "]"):
			return ""
		case isPunct(sep, ",") || isPunct(sep, ";"):
			nx = r.next()
			if isPunct(nx, "]") {
				return ""
			}
		default:
			return r.failAt(sep, "Attribute list entries must be separated by ',' or ';'")
		}
	}
}

func (r *dotRecognizer) lex() dotToken {
	for {
		if r.pos >= len(r.input) {
			return dotToken{kind: tokenEOF}
		}
		c := r.input[r.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			r.pos++
			continue
		}
		if c == '#' || (c == '/' && r.pos+1 < len(r.input) && r.input[r.pos+1] == '/') {
			for r.pos < len(r.input) && r.input[r.pos] != '\n' {
				r.pos++
			}
			continue
		}
		if c == '/' && r.pos+1 < len(r.input) && r.input[r.pos+1] == '*' {
			end := strings.Index(r.input[r.pos+2:], "*/")
			if end < 0 {
				r.pos = len(r.input)
				return dotToken{kind: tokenBad, text: "Unterminated comment"}
			}
			r.pos += 2 + end + 2
			continue
		}
		break
	}

	c := r.input[r.pos]
	switch {
	case strings.IndexByte("{}[]=,;", c) >= 0:
		r.pos++
		return dotToken{kind: tokenPunct, text: string(c)}
	case c == '-':
		if r.pos+1 < len(r.input) && (r.input[r.pos+1] == '>' || r.input[r.pos+1] == '-') {
			op := r.input[r.pos : r.pos+2]
			r.pos += 2
			return dotToken{kind: tokenEdge, text: op}
		}
		return dotToken{kind: tokenBad, text: "Unrecognized token '-'"}
	case c == '"':
		return r.lexString()
	case c >= '0' && c <= '9':
		return r.lexNumber()
	case isIdentByte(c):
		return r.lexIdent()
	default:
		return dotToken{kind: tokenBad, text: fmt.Sprintf("Unrecognized character %q", rune(c))}
	}
}

func (r *dotRecognizer) lexString() dotToken {
	start := r.pos
	r.pos++ // opening quote
	escaped := false
	for r.pos < len(r.input) {
		c := r.input[r.pos]
		r.pos++
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			return dotToken{kind: tokenString, text: r.input[start:r.pos]}
		}
	}
	return dotToken{kind: tokenBad, text: "Unterminated quoted string"}
}

func (r *dotRecognizer) lexNumber() dotToken {
	start := r.pos
	for r.pos < len(r.input) && r.input[r.pos] >= '0' && r.input[r.pos] <= '9' {
		r.pos++
	}
	if r.pos < len(r.input) && r.input[r.pos] == '.' {
		r.pos++
		for r.pos < len(r.input) && r.input[r.pos] >= '0' && r.input[r.pos] <= '9' {
			r.pos++
		}
	}
	text := r.input[start:r.pos]
	if r.pos < len(r.input) && isIdentByte(r.input[r.pos]) {
		return dotToken{kind: tokenBad, text: fmt.Sprintf("Unrecognized token starting at %q", text)}
	}
	return dotToken{kind: tokenNumber, text: text}
}

func (r *dotRecognizer) lexIdent() dotToken {
	start := r.pos
	for r.pos < len(r.input) && (isIdentByte(r.input[r.pos]) || r.input[r.pos] >= '0' && r.input[r.pos] <= '9') {
		r.pos++
	}
	return dotToken{kind: tokenIdent, text: r.input[start:r.pos]}
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
