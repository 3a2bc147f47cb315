package typescript

import (
	"fmt"
	"strings"

	"github.com/jward/recast/ir"
)

// Writer emits the IR as TypeScript source. Emit is total: every IR node has
// a rendering. Parenthesization is re-derived from the Binary/Unary nesting
// using the JavaScript precedence table below — parentheses are inserted only
// where omitting them would change how the target parses the expression.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

func (*Writer) Language() string { return languageName }

func (*Writer) Extension() string { return "ts" }

func (*Writer) Emit(p *ir.Program) string {
	e := &emitter{}
	for _, s := range p.Body {
		e.stmt(s)
	}
	return e.b.String()
}

// Precedence tiers, higher binds tighter. Context 0 never forces parens.
const (
	precAssign = 2
	precCond   = 3
	precOr     = 4
	precAnd    = 5
	precEq     = 6
	precRel    = 7
	precAdd    = 8
	precMul    = 9
	precUnary  = 10
	precCall   = 11
)

func binaryPrec(op string) int {
	switch op {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=":
		return precEq
	case "<", "<=", ">", ">=":
		return precRel
	case "+", "-":
		return precAdd
	case "*", "/", "%":
		return precMul
	}
	return precCall
}

type emitter struct {
	b      strings.Builder
	indent int
}

func (e *emitter) line(format string, args ...any) {
	e.b.WriteString(strings.Repeat("  ", e.indent))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) stmt(s ir.Stmt) {
	switch s := s.(type) {
	case *ir.ExprStmt:
		x := e.expr(s.X, 0)
		// A leading { or function keyword would parse as a block or
		// declaration; wrap so the statement stays an expression.
		switch s.X.(type) {
		case *ir.Object, *ir.FuncExpr:
			x = "(" + x + ")"
		}
		e.line("%s;", x)
	case *ir.Let:
		e.line("%s;", e.letClause(s))
	case *ir.Block:
		e.line("{")
		e.indented(s.Body)
		e.line("}")
	case *ir.If:
		e.ifChain(s)
	case *ir.While:
		e.line("while (%s) {", e.expr(s.Test, 0))
		e.body(s.Body)
		e.line("}")
	case *ir.For:
		var init, test, update string
		switch i := s.Init.(type) {
		case nil:
		case *ir.Let:
			init = e.letClause(i)
		case *ir.ExprStmt:
			init = e.expr(i.X, 0)
		default:
			// Arbitrary statements cannot appear in a for header; hoist by
			// desugaring to while.
			test := s.Test
			if test == nil {
				test = &ir.Literal{Value: ir.Boolean(true)}
			}
			e.line("{")
			e.indent++
			e.stmt(s.Init)
			e.stmt(&ir.While{Test: test, Body: forWhileBody(s)})
			e.indent--
			e.line("}")
			return
		}
		if s.Test != nil {
			test = e.expr(s.Test, 0)
		}
		if s.Update != nil {
			update = e.expr(s.Update, 0)
		}
		e.line("for (%s; %s; %s) {", init, test, update)
		e.body(s.Body)
		e.line("}")
	case *ir.ForIn:
		e.line("for (const %s of %s) {", s.Var, e.expr(s.Iterable, 0))
		e.body(s.Body)
		e.line("}")
	case *ir.Return:
		if s.Value == nil {
			e.line("return;")
		} else {
			e.line("return %s;", e.expr(s.Value, 0))
		}
	case *ir.Break:
		e.line("break;")
	case *ir.Continue:
		e.line("continue;")
	case *ir.TryCatch:
		e.line("try {")
		e.body(s.Body)
		if s.CatchBody != nil {
			if s.CatchParam != "" {
				e.line("} catch (%s) {", s.CatchParam)
			} else {
				e.line("} catch {")
			}
			e.body(s.CatchBody)
		}
		if s.FinallyBody != nil {
			e.line("} finally {")
			e.body(s.FinallyBody)
		}
		e.line("}")
	case *ir.FuncDecl:
		e.function(s.Fn)
	}
}

// forWhileBody appends the update expression to the loop body for the
// while-desugared rendering of a For.
func forWhileBody(s *ir.For) ir.Stmt {
	body := []ir.Stmt{s.Body}
	if b, ok := s.Body.(*ir.Block); ok {
		body = append([]ir.Stmt(nil), b.Body...)
	}
	if s.Update != nil {
		body = append(body, &ir.ExprStmt{X: s.Update})
	}
	return &ir.Block{Body: body}
}

func (e *emitter) letClause(s *ir.Let) string {
	kw := "let"
	if !s.Mutable && s.Init != nil {
		kw = "const"
	}
	if s.Init == nil {
		return fmt.Sprintf("%s %s", kw, s.Name)
	}
	return fmt.Sprintf("%s %s = %s", kw, s.Name, e.expr(s.Init, 0))
}

func (e *emitter) ifChain(s *ir.If) {
	e.line("if (%s) {", e.expr(s.Test, 0))
	e.body(s.Consequent)
	for {
		switch alt := s.Alternate.(type) {
		case nil:
			e.line("}")
			return
		case *ir.If:
			e.line("} else if (%s) {", e.expr(alt.Test, 0))
			e.body(alt.Consequent)
			s = alt
		default:
			e.line("} else {")
			e.body(alt)
			e.line("}")
			return
		}
	}
}

// body renders a control-flow body at one deeper indent. Block bodies are
// flattened (their braces come from the surrounding construct); any other
// statement renders as-is.
func (e *emitter) body(s ir.Stmt) {
	if b, ok := s.(*ir.Block); ok {
		e.indented(b.Body)
		return
	}
	e.indent++
	e.stmt(s)
	e.indent--
}

func (e *emitter) indented(body []ir.Stmt) {
	e.indent++
	for _, s := range body {
		e.stmt(s)
	}
	e.indent--
}

func (e *emitter) function(fn *ir.Function) {
	e.line("function %s(%s) {", fn.Name, strings.Join(fn.Params, ", "))
	e.indented(fn.Body)
	e.line("}")
}

// expr renders an expression. min is the loosest precedence the surrounding
// context tolerates without parentheses.
func (e *emitter) expr(x ir.Expr, min int) string {
	prec, s := e.exprPrec(x)
	if prec < min {
		return "(" + s + ")"
	}
	return s
}

func (e *emitter) exprPrec(x ir.Expr) (int, string) {
	switch x := x.(type) {
	case *ir.Literal:
		return precCall, literalString(x.Value)
	case *ir.Ident:
		return precCall, x.Name
	case *ir.Binary:
		p := binaryPrec(x.Op)
		// Left-associative: the right operand needs one tier tighter.
		return p, fmt.Sprintf("%s %s %s", e.expr(x.Left, p), x.Op, e.expr(x.Right, p+1))
	case *ir.Unary:
		operand := e.expr(x.X, precUnary)
		// "-" abutting an operand that renders with a leading "-" would lex
		// as the "--" punctuator.
		if x.Op == "-" && strings.HasPrefix(operand, "-") {
			operand = "(" + operand + ")"
		}
		return precUnary, x.Op + operand
	case *ir.Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a, precAssign)
		}
		return precCall, fmt.Sprintf("%s(%s)", e.expr(x.Callee, precCall), strings.Join(args, ", "))
	case *ir.Member:
		obj := e.expr(x.Object, precCall)
		if name, ok := staticProperty(x); ok && !x.Computed {
			return precCall, obj + "." + name
		}
		return precCall, fmt.Sprintf("%s[%s]", obj, e.expr(x.Property, 0))
	case *ir.Array:
		elems := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = e.expr(el, precAssign)
		}
		return precCall, "[" + strings.Join(elems, ", ") + "]"
	case *ir.Object:
		if len(x.Entries) == 0 {
			return precCall, "{}"
		}
		entries := make([]string, len(x.Entries))
		for i, ent := range x.Entries {
			entries[i] = fmt.Sprintf("%s: %s", objectKey(ent.Key), e.expr(ent.Value, precAssign))
		}
		return precCall, "{ " + strings.Join(entries, ", ") + " }"
	case *ir.FuncExpr:
		sub := &emitter{indent: e.indent}
		sub.function(x.Fn)
		return precAssign, strings.TrimSuffix(strings.TrimLeft(sub.b.String(), " "), "\n")
	case *ir.Conditional:
		return precCond, fmt.Sprintf("%s ? %s : %s",
			e.expr(x.Test, precCond+1), e.expr(x.Consequent, precAssign), e.expr(x.Alternate, precAssign))
	case *ir.Assign:
		return precAssign, fmt.Sprintf("%s = %s", e.expr(x.Target, precCall), e.expr(x.Value, precAssign))
	}
	return precCall, ""
}

func literalString(v ir.Value) string {
	switch v.Kind {
	case ir.NilValue:
		return "null"
	case ir.BoolValue:
		if v.Bool {
			return "true"
		}
		return "false"
	case ir.NumberValue:
		return v.NumberString()
	case ir.StringValue:
		return quoteString(v.Str)
	}
	return "null"
}

// staticProperty extracts a property name usable in dot position.
func staticProperty(m *ir.Member) (string, bool) {
	lit, ok := m.Property.(*ir.Literal)
	if !ok || lit.Value.Kind != ir.StringValue {
		return "", false
	}
	if !isIdentName(lit.Value.Str) {
		return "", false
	}
	return lit.Value.Str, true
}

func isIdentName(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func objectKey(key string) string {
	if isIdentName(key) {
		return key
	}
	return quoteString(key)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
