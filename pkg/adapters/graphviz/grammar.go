package graphviz

import (
	"context"
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// GrammarValidator is the precise syntax tier. It runs the source through a
// full DOT parser and surfaces the parser's error text as the diagnostic, so
// the correction prompt sees the same message a human would.
type GrammarValidator struct{}

// NewGrammarValidator returns the grammar-backed validator.
func NewGrammarValidator() *GrammarValidator {
	return &GrammarValidator{}
}

// Validate parses and analyses the source. The generated parser can panic on
// adversarial input; a panic is a rejection, not a crash.
func (*GrammarValidator) Validate(_ context.Context, source string) (verdict domain.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = domain.Reject(fmt.Sprintf("Validation error: %v", r))
		}
	}()

	if _, err := gographviz.Read([]byte(source)); err != nil {
		return domain.Reject(err.Error())
	}
	return domain.Accept()
}
