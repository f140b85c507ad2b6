package llm

import (
	"strings"
)

// Prefixes models like to put in front of code even when told not to.
var chattyPrefixes = []string{
	"Let's think step-by-step:",
	"Here's the graphviz code:",
	"Here is the graphviz code:",
	"Here's the corrected code:",
	"Here is the corrected code:",
	"Generated code:",
	"Corrected code:",
}

// ExtractDOT pulls Graphviz source out of a raw completion: fenced code
// blocks are unwrapped, chatty prefixes are stripped, and prose before the
// first graph keyword is dropped. The result is deliberately lenient: it
// is the syntax validator's job to reject bad source, and rejection is what
// feeds the correction loop. Only a completion with nothing left at all
// comes back empty.
func ExtractDOT(content string) string {
	code := unfence(content, "dot", "graphviz")

	for changed := true; changed; {
		changed = false
		for _, p := range chattyPrefixes {
			if strings.HasPrefix(code, p) {
				code = strings.TrimSpace(code[len(p):])
				changed = true
			}
		}
	}

	if idx := graphKeywordIndex(code); idx > 0 {
		code = code[idx:]
	}
	return strings.TrimSpace(code)
}

// ExtractJSON returns the outermost JSON object embedded in a completion,
// or "" when none can be found. Fenced blocks are unwrapped first; the scan
// respects string literals and escapes.
func ExtractJSON(content string) string {
	if block, ok := fencedBlock(strings.TrimSpace(content), "json"); ok {
		content = block
	} else if block, ok := fencedBlock(strings.TrimSpace(content), ""); ok {
		content = block
	}

	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth, inString, escaped := 0, false, false
	for i := start; i < len(content); i++ {
		c := content[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(content[start : i+1])
			}
		}
	}
	return ""
}

// unfence unwraps the first fenced code block, preferring blocks tagged
// with one of the given languages. Without any fence the trimmed content
// comes back unchanged.
func unfence(content string, langs ...string) string {
	content = strings.TrimSpace(content)
	for _, lang := range langs {
		if block, ok := fencedBlock(content, lang); ok {
			return block
		}
	}
	if block, ok := fencedBlock(content, ""); ok {
		return block
	}
	return content
}

// fencedBlock extracts the first ``` block. With lang == "" any tag
// matches and a non-code tag line is dropped.
func fencedBlock(content, lang string) (string, bool) {
	marker := "```" + lang
	start := strings.Index(content, marker)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(marker):]

	if lang != "" {
		// The tag must end the marker line, otherwise "dot" would match "dotted".
		if rest == "" || (rest[0] != '\n' && rest[0] != '\r' && rest[0] != ' ') {
			return "", false
		}
	} else if nl := strings.Index(rest, "\n"); nl >= 0 {
		first := strings.TrimSpace(rest[:nl])
		if first != "" && !startsLikeCode(first) {
			rest = rest[nl+1:]
		}
	}

	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

func startsLikeCode(line string) bool {
	for _, kw := range []string{"digraph", "graph", "strict", "{", "["} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// graphKeywordIndex finds the byte offset of the first line that starts a
// graph document, or -1.
func graphKeywordIndex(code string) int {
	offset := 0
	for _, line := range strings.SplitAfter(code, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		for _, kw := range []string{"digraph", "graph", "strict"} {
			if strings.HasPrefix(trimmed, kw) {
				return offset + (len(line) - len(trimmed))
			}
		}
		offset += len(line)
	}
	return -1
}

// excerpt shortens raw provider output for inclusion in error messages.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
