package lua

import (
	"fmt"
	"strings"

	"github.com/jward/recast/ir"
)

// Writer emits the IR as Lua source. Emit is total: constructs Lua lacks are
// rendered through fixed desugarings (pcall for try/catch, goto for
// continue, a do+while wrapper for non-canonical counted loops), so the
// output is always valid Lua even when unidiomatic.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

func (*Writer) Language() string { return languageName }

func (*Writer) Extension() string { return "lua" }

func (*Writer) Emit(p *ir.Program) string {
	e := &emitter{}
	for _, s := range p.Body {
		e.stmt(s)
	}
	return e.b.String()
}

// Lua precedence tiers, higher binds tighter. The ternary rendering
// "t and c or a" shares the or tier.
const (
	precOr    = 1
	precAnd   = 2
	precCmp   = 3
	precAdd   = 5
	precMul   = 6
	precUnary = 7
	precPost  = 9
)

func binaryPrec(op string) int {
	switch op {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=", "<", "<=", ">", ">=":
		return precCmp
	case "+", "-":
		return precAdd
	case "*", "/", "%":
		return precMul
	}
	return precPost
}

var luaBinaryOp = map[string]string{
	"&&": "and", "||": "or", "!=": "~=",
	"==": "==", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
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
		switch x := s.X.(type) {
		case *ir.Assign:
			e.line("%s = %s", e.expr(x.Target, precPost), e.expr(x.Value, 0))
		case *ir.Call:
			e.line("%s", e.expr(x, 0))
		default:
			// Lua statements are calls or assignments only; bind the value
			// to a throwaway local so the evaluation still happens.
			e.line("local _ = %s", e.expr(s.X, 0))
		}
	case *ir.Let:
		if s.Init == nil {
			e.line("local %s", s.Name)
		} else {
			e.line("local %s = %s", s.Name, e.expr(s.Init, 0))
		}
	case *ir.Block:
		e.line("do")
		e.indented(s.Body)
		e.line("end")
	case *ir.If:
		e.ifChain(s)
	case *ir.While:
		e.line("while %s do", e.expr(s.Test, 0))
		e.loopBody(s.Body, nil)
		e.line("end")
	case *ir.For:
		e.forStmt(s)
	case *ir.ForIn:
		e.line("for %s in %s do", s.Var, e.expr(s.Iterable, 0))
		e.loopBody(s.Body, nil)
		e.line("end")
	case *ir.Return:
		if s.Value == nil {
			e.line("return")
		} else {
			e.line("return %s", e.expr(s.Value, 0))
		}
	case *ir.Break:
		e.line("break")
	case *ir.Continue:
		e.line("goto continue")
	case *ir.TryCatch:
		e.tryCatch(s)
	case *ir.FuncDecl:
		e.function(s.Fn)
	}
}

func (e *emitter) ifChain(s *ir.If) {
	e.line("if %s then", e.expr(s.Test, 0))
	e.body(s.Consequent)
	for {
		switch alt := s.Alternate.(type) {
		case nil:
			e.line("end")
			return
		case *ir.If:
			e.line("elseif %s then", e.expr(alt.Test, 0))
			e.body(alt.Consequent)
			s = alt
		default:
			e.line("else")
			e.body(alt)
			e.line("end")
			return
		}
	}
}

// forStmt folds the canonical counted-loop triple back into a numeric for.
// Anything else becomes a while (do-wrapped when there is an init), with the
// update placed after a ::continue:: label so the reader can fold the shape
// back into a For.
func (e *emitter) forStmt(s *ir.For) {
	if v, from, to, step, ok := canonicalFor(s); ok {
		if lit, isLit := step.(*ir.Literal); isLit && lit.Value.Kind == ir.NumberValue && lit.Value.Num == 1 {
			e.line("for %s = %s, %s do", v, e.expr(from, 0), e.expr(to, 0))
		} else {
			e.line("for %s = %s, %s, %s do", v, e.expr(from, 0), e.expr(to, 0), e.expr(step, 0))
		}
		e.loopBody(s.Body, nil)
		e.line("end")
		return
	}

	test := s.Test
	if test == nil {
		test = &ir.Literal{Value: ir.Boolean(true)}
	}
	var update ir.Stmt
	if s.Update != nil {
		update = &ir.ExprStmt{X: s.Update}
	}
	if s.Init == nil {
		e.line("while %s do", e.expr(test, 0))
		e.loopBody(s.Body, update)
		e.line("end")
		return
	}
	e.line("do")
	e.indent++
	e.stmt(s.Init)
	e.line("while %s do", e.expr(test, 0))
	e.loopBody(s.Body, update)
	e.line("end")
	e.indent--
	e.line("end")
}

// canonicalFor matches the shape the numeric-for desugaring produces:
// init "local v = from", test "v <= to", update "v = v + step".
func canonicalFor(s *ir.For) (v string, from, to, step ir.Expr, ok bool) {
	let, ok := s.Init.(*ir.Let)
	if !ok || let.Init == nil {
		return "", nil, nil, nil, false
	}
	test, ok := s.Test.(*ir.Binary)
	if !ok || test.Op != "<=" {
		return "", nil, nil, nil, false
	}
	if id, isID := test.Left.(*ir.Ident); !isID || id.Name != let.Name {
		return "", nil, nil, nil, false
	}
	assign, ok := s.Update.(*ir.Assign)
	if !ok {
		return "", nil, nil, nil, false
	}
	if id, isID := assign.Target.(*ir.Ident); !isID || id.Name != let.Name {
		return "", nil, nil, nil, false
	}
	add, ok := assign.Value.(*ir.Binary)
	if !ok || add.Op != "+" {
		return "", nil, nil, nil, false
	}
	if id, isID := add.Left.(*ir.Ident); !isID || id.Name != let.Name {
		return "", nil, nil, nil, false
	}
	return let.Name, let.Init, test.Right, add.Right, true
}

func (e *emitter) tryCatch(s *ir.TryCatch) {
	param := s.CatchParam
	if param == "" {
		param = "_"
	}
	e.b.WriteString(strings.Repeat("  ", e.indent))
	fmt.Fprintf(&e.b, "local _ok, %s = pcall(function()\n", param)
	e.body(s.Body)
	e.line("end)")
	if s.CatchBody != nil {
		e.line("if not _ok then")
		e.body(s.CatchBody)
		e.line("end")
	}
	if s.FinallyBody != nil {
		if b, ok := s.FinallyBody.(*ir.Block); ok {
			for _, fs := range b.Body {
				e.stmt(fs)
			}
		} else {
			e.stmt(s.FinallyBody)
		}
	}
}

func (e *emitter) function(fn *ir.Function) {
	e.line("function %s(%s)", fn.Name, strings.Join(fn.Params, ", "))
	e.indented(fn.Body)
	e.line("end")
}

// body renders a control-flow body at one deeper indent, flattening Block
// (the delimiters come from the surrounding construct).
func (e *emitter) body(s ir.Stmt) {
	if b, ok := s.(*ir.Block); ok {
		e.indented(b.Body)
		return
	}
	e.indent++
	e.stmt(s)
	e.indent--
}

// loopBody renders a loop body, placing a ::continue:: label before the
// trailing update when the body contains a direct continue jump.
func (e *emitter) loopBody(s ir.Stmt, update ir.Stmt) {
	e.indent++
	stmts := []ir.Stmt{s}
	if b, ok := s.(*ir.Block); ok {
		stmts = b.Body
	}
	for _, st := range stmts {
		e.stmt(st)
	}
	if update != nil || hasDirectContinue(stmts) {
		e.line("::continue::")
	}
	if update != nil {
		e.stmt(update)
	}
	e.indent--
}

// hasDirectContinue reports whether any statement continues the current
// loop, without descending into nested loops or function bodies.
func hasDirectContinue(stmts []ir.Stmt) bool {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ir.Continue:
			return true
		case *ir.Block:
			if hasDirectContinue(s.Body) {
				return true
			}
		case *ir.If:
			if hasDirectContinue([]ir.Stmt{s.Consequent}) {
				return true
			}
			if s.Alternate != nil && hasDirectContinue([]ir.Stmt{s.Alternate}) {
				return true
			}
		case *ir.TryCatch:
			parts := []ir.Stmt{s.Body}
			if s.CatchBody != nil {
				parts = append(parts, s.CatchBody)
			}
			if s.FinallyBody != nil {
				parts = append(parts, s.FinallyBody)
			}
			if hasDirectContinue(parts) {
				return true
			}
		}
	}
	return false
}

func (e *emitter) indented(body []ir.Stmt) {
	e.indent++
	for _, s := range body {
		e.stmt(s)
	}
	e.indent--
}

// expr renders an expression; min is the loosest precedence the context
// tolerates without parentheses.
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
		return precPost, literalString(x.Value)
	case *ir.Ident:
		return precPost, x.Name
	case *ir.Binary:
		p := binaryPrec(x.Op)
		op := luaBinaryOp[x.Op]
		if op == "" {
			op = x.Op
		}
		left := e.expr(x.Left, p)
		// "(a and b) or c" must keep its parentheses, or the reader's
		// ternary folding would turn it into a Conditional.
		if x.Op == "||" {
			if l, isBin := x.Left.(*ir.Binary); isBin && l.Op == "&&" {
				left = "(" + left + ")"
			}
		}
		return p, fmt.Sprintf("%s %s %s", left, op, e.expr(x.Right, p+1))
	case *ir.Unary:
		if x.Op == "!" {
			return precUnary, "not " + e.expr(x.X, precUnary)
		}
		operand := e.expr(x.X, precUnary)
		// "-" abutting an operand that renders with a leading "-" would
		// start a comment.
		if x.Op == "-" && strings.HasPrefix(operand, "-") {
			operand = "(" + operand + ")"
		}
		return precUnary, x.Op + operand
	case *ir.Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.expr(a, 0)
		}
		return precPost, fmt.Sprintf("%s(%s)", e.expr(x.Callee, precPost), strings.Join(args, ", "))
	case *ir.Member:
		obj := e.expr(x.Object, precPost)
		if lit, ok := x.Property.(*ir.Literal); ok && lit.Value.Kind == ir.StringValue {
			if !x.Computed && isLuaName(lit.Value.Str) {
				return precPost, obj + "." + lit.Value.Str
			}
			return precPost, fmt.Sprintf("%s[%s]", obj, quoteString(lit.Value.Str))
		}
		return precPost, fmt.Sprintf("%s[%s]", obj, e.expr(x.Property, 0))
	case *ir.Array:
		elems := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = e.expr(el, 0)
		}
		return precPost, "{" + strings.Join(elems, ", ") + "}"
	case *ir.Object:
		entries := make([]string, len(x.Entries))
		for i, ent := range x.Entries {
			entries[i] = fmt.Sprintf("%s = %s", tableKey(ent.Key), e.expr(ent.Value, 0))
		}
		return precPost, "{" + strings.Join(entries, ", ") + "}"
	case *ir.FuncExpr:
		sub := &emitter{indent: e.indent}
		// Expression-position functions are always anonymous in Lua.
		sub.line("function(%s)", strings.Join(x.Fn.Params, ", "))
		sub.indented(x.Fn.Body)
		sub.b.WriteString(strings.Repeat("  ", sub.indent))
		sub.b.WriteString("end")
		return precPost, strings.TrimLeft(sub.b.String(), " ")
	case *ir.Conditional:
		// The and/or ternary idiom. Branch precedences keep the reparse
		// unambiguous: test and consequent may not contain bare and/or,
		// the alternate may not contain a bare or.
		return precOr, fmt.Sprintf("%s and %s or %s",
			e.expr(x.Test, precAnd+1), e.expr(x.Consequent, precAnd+1), e.expr(x.Alternate, precAnd))
	case *ir.Assign:
		// Expression-position assignment has no Lua form; route it through
		// an immediately invoked closure that performs the write.
		target := e.expr(x.Target, precPost)
		return precPost, fmt.Sprintf("(function() %s = %s return %s end)()",
			target, e.expr(x.Value, 0), target)
	}
	return precPost, ""
}

func literalString(v ir.Value) string {
	switch v.Kind {
	case ir.NilValue:
		return "nil"
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
	return "nil"
}

func isLuaName(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
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

func tableKey(key string) string {
	if isLuaName(key) {
		return key
	}
	return "[" + quoteString(key) + "]"
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
