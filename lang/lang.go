// Package lang defines the reader and writer capabilities of the translation
// pipeline and the process-wide registry that resolves them by language name
// or file extension.
//
// A Reader parses source text in one language into the IR; a Writer
// serializes the IR back out as source in one language. Both are stateless
// and reentrant: a single instance may serve arbitrarily many concurrent
// translations. Built-in languages register a factory at package init (via
// RegisterBuiltinReader/RegisterBuiltinWriter from their init functions); the
// live lookup table is seeded from those factories exactly once, on the first
// lookup. Caller-supplied implementations join the same collection through
// RegisterReader/RegisterWriter, before or after that first lookup. Lookups
// return the first match, so duplicate names are permitted and the
// first-registered implementation wins.
package lang

import (
	"fmt"
	"strings"

	"github.com/jward/recast/ir"
)

// Reader parses source text in one specific language into the IR. Parse
// either returns a complete, valid Program or an error — never a partial
// tree. Any construct the IR cannot represent must fail with a *ParseError
// naming the construct and its location.
//
// Readers own precedence: source-level operator precedence and associativity
// are resolved into explicit Binary/Unary nesting at parse time.
type Reader interface {
	// Language returns the canonical language name, e.g. "typescript".
	Language() string
	// Extensions returns the file suffixes this reader claims, without the
	// leading dot, e.g. ["ts", "tsx"].
	Extensions() []string
	Parse(source string) (*ir.Program, error)
}

// Writer serializes a Program as source text in one specific language. Emit
// is total: the IR invariants guarantee every node is representable, so a
// writer always produces some valid target source, even if unidiomatic.
//
// Writers own re-parenthesization: correct bracketing is re-derived from the
// Binary/Unary nesting using the target language's own precedence table.
type Writer interface {
	Language() string
	// Extension returns the default file suffix for output, e.g. "lua".
	Extension() string
	Emit(p *ir.Program) string
}

// ParseError reports a source construct that violates the reader's grammar or
// has no IR representation. Line and Col are 1-based; zero means the location
// is unknown.
type ParseError struct {
	Language  string
	Construct string
	Line      int
	Col       int
	Msg       string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Language)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Col)
	}
	b.WriteString(": ")
	if e.Construct != "" {
		fmt.Fprintf(&b, "unsupported construct %q", e.Construct)
		if e.Msg != "" {
			b.WriteString(": ")
		}
	}
	b.WriteString(e.Msg)
	return b.String()
}
