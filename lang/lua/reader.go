// Package lua implements the Lua reader and writer.
//
// Lua's surface diverges from the IR in a few places, and both directions use
// fixed canonical mappings so the shapes survive a round trip: numeric for
// desugars to the C-style For triple (i = a; i <= b; i = i + step), any other
// For becomes a while with its update behind a ::continue:: label (do-wrapped
// when there is an init), the "X and Y or Z" idiom folds to a Conditional
// unless the inner and-expression was written parenthesized, ~=/and/or/not/..
// map onto the canonical IR operator set, the generated "goto continue"/
// "::continue::" pair stands in for the continue statement Lua lacks,
// try/catch lowers to a "local _ok, e = pcall(function() ... end)" call with
// an "if not _ok then" catch arm, and statement-position expressions bind to
// a throwaway "local _". The reader recognizes each generated shape and folds
// it back.
package lua

import (
	"fmt"

	"github.com/jward/recast/ir"
	"github.com/jward/recast/lang"
)

const languageName = "lua"

// maxDepth bounds recursion on adversarially nested input.
const maxDepth = 200

func init() {
	lang.RegisterBuiltinReader(func() lang.Reader { return NewReader() })
	lang.RegisterBuiltinWriter(func() lang.Writer { return NewWriter() })
}

// Reader parses Lua into the IR. Stateless across calls.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (*Reader) Language() string { return languageName }

func (*Reader) Extensions() []string { return []string{"lua"} }

func (*Reader) Parse(source string) (*ir.Program, error) {
	toks, err := newLexer(source).scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, paren: map[ir.Expr]bool{}}
	body, err := p.stmtsUntil(func() bool { return p.at(tokEOF, "") })
	if err != nil {
		return nil, err
	}
	return &ir.Program{Body: body}, nil
}

type parser struct {
	toks  []token
	pos   int
	depth int

	// paren marks expressions the source wrote inside parentheses. It exists
	// for one decision: "A and B or C" folds to a Conditional only when the
	// and-expression was not parenthesized, so "(a and b) or c" stays Binary.
	paren map[ir.Expr]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.Kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(kind tokenKind, text string) bool {
	t := p.peek()
	return t.Kind == kind && (text == "" || t.Text == text)
}

func (p *parser) atKeyword(text string) bool { return p.at(tokKeyword, text) }
func (p *parser) atPunct(text string) bool   { return p.at(tokPunct, text) }

func (p *parser) eat(kind tokenKind, text string) bool {
	if p.at(kind, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(text string) error {
	if !p.eat(tokKeyword, text) {
		t := p.peek()
		return p.errAt(t, "", fmt.Sprintf("expected %q, found %q", text, tokenText(t)))
	}
	return nil
}

func (p *parser) expectPunct(text string) error {
	if !p.eat(tokPunct, text) {
		t := p.peek()
		return p.errAt(t, "", fmt.Sprintf("expected %q, found %q", text, tokenText(t)))
	}
	return nil
}

func (p *parser) expectName() (token, error) {
	t := p.peek()
	if t.Kind != tokName {
		return token{}, p.errAt(t, "", fmt.Sprintf("expected name, found %q", tokenText(t)))
	}
	p.next()
	return t, nil
}

func (p *parser) errAt(t token, construct, msg string) error {
	return &lang.ParseError{
		Language:  languageName,
		Construct: construct,
		Line:      t.Line,
		Col:       t.Col,
		Msg:       msg,
	}
}

func tokenText(t token) string {
	if t.Kind == tokEOF {
		return "end of input"
	}
	return t.Text
}

func (p *parser) enter(t token) error {
	p.depth++
	if p.depth > maxDepth {
		return p.errAt(t, "nesting", fmt.Sprintf("nesting exceeds %d levels", maxDepth))
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// stmtsUntil parses statements until stop reports true. Bare semicolons and
// the generated ::continue:: label are skipped.
func (p *parser) stmtsUntil(stop func() bool) ([]ir.Stmt, error) {
	var body []ir.Stmt
	for {
		for p.eat(tokPunct, ";") || p.eatContinueLabel() {
		}
		if stop() {
			return body, nil
		}
		if p.at(tokEOF, "") {
			return nil, p.errAt(p.peek(), "", "unexpected end of input")
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
}

// eatContinueLabel consumes "::continue::", the label our writer pairs with
// "goto continue"; it carries no structure of its own.
func (p *parser) eatContinueLabel() bool {
	if p.atPunct("::") && p.toks[p.pos+1].Kind == tokName && p.toks[p.pos+1].Text == "continue" {
		p.next()
		p.next()
		if !p.eat(tokPunct, "::") {
			// Put the tokens back conceptually: a malformed label will be
			// reported by the statement parser.
			p.pos -= 2
			return false
		}
		return true
	}
	return false
}

func (p *parser) blockUntil(terminators ...string) ([]ir.Stmt, error) {
	return p.stmtsUntil(func() bool {
		for _, kw := range terminators {
			if p.atKeyword(kw) {
				return true
			}
		}
		return false
	})
}

// whileBody parses a while body up to "end", tracking where the generated
// ::continue:: label sits. The counted-loop lowering always places the label
// before the update, so a label followed by exactly one trailing expression
// statement folds back to a For with that statement as the update. A label
// with nothing after it is the plain continue target and carries no
// structure.
func (p *parser) whileBody() ([]ir.Stmt, ir.Expr, error) {
	var body []ir.Stmt
	labelAt := -1
	for {
		for skipping := true; skipping; {
			switch {
			case p.eat(tokPunct, ";"):
			case p.eatContinueLabel():
				labelAt = len(body)
			default:
				skipping = false
			}
		}
		if p.atKeyword("end") {
			break
		}
		if p.at(tokEOF, "") {
			return nil, nil, p.errAt(p.peek(), "", "unexpected end of input")
		}
		s, err := p.statement()
		if err != nil {
			return nil, nil, err
		}
		body = append(body, s)
	}
	if labelAt >= 0 && labelAt == len(body)-1 {
		if es, ok := body[labelAt].(*ir.ExprStmt); ok {
			return body[:labelAt], es.X, nil
		}
	}
	return body, nil, nil
}

func (p *parser) statement() (ir.Stmt, error) {
	t := p.peek()
	if err := p.enter(t); err != nil {
		return nil, err
	}
	defer p.leave()

	if t.Kind == tokKeyword {
		switch t.Text {
		case "local":
			return p.localStmt()
		case "function":
			p.next()
			fn, err := p.functionRest(true)
			if err != nil {
				return nil, err
			}
			return &ir.FuncDecl{Fn: fn}, nil
		case "if":
			return p.ifStmt()
		case "while":
			p.next()
			test, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectKeyword("do"); err != nil {
				return nil, err
			}
			body, update, err := p.whileBody()
			if err != nil {
				return nil, err
			}
			p.next() // end
			if update != nil {
				return &ir.For{Test: test, Update: update, Body: &ir.Block{Body: body}}, nil
			}
			return &ir.While{Test: test, Body: &ir.Block{Body: body}}, nil
		case "for":
			return p.forStmt()
		case "return":
			p.next()
			if p.atReturnEnd() {
				return &ir.Return{}, nil
			}
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			if p.atPunct(",") {
				return nil, p.errAt(p.peek(), "multiple return values", "")
			}
			return &ir.Return{Value: val}, nil
		case "break":
			p.next()
			return &ir.Break{}, nil
		case "do":
			p.next()
			body, err := p.blockUntil("end")
			if err != nil {
				return nil, err
			}
			p.next() // end
			// A do block holding exactly an init binding and a folded counted
			// loop is the hoisted-For lowering; fold the init back in.
			if len(body) == 2 {
				if f, ok := body[1].(*ir.For); ok && f.Init == nil {
					switch body[0].(type) {
					case *ir.Let, *ir.ExprStmt:
						f.Init = body[0]
						return f, nil
					}
				}
			}
			return &ir.Block{Body: body}, nil
		case "goto":
			p.next()
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			if name.Text != "continue" {
				return nil, p.errAt(name, "goto statement", "only the generated \"goto continue\" is supported")
			}
			return &ir.Continue{}, nil
		case "repeat":
			return nil, p.errAt(t, "repeat statement", "")
		}
		return nil, p.errAt(t, "", fmt.Sprintf("unexpected keyword %q", t.Text))
	}
	if p.atPunct("::") {
		return nil, p.errAt(t, "label", "only the generated \"::continue::\" label is supported")
	}
	return p.exprStatement()
}

func (p *parser) atReturnEnd() bool {
	return p.at(tokEOF, "") || p.atPunct(";") ||
		p.atKeyword("end") || p.atKeyword("else") || p.atKeyword("elseif") || p.atKeyword("until")
}

func (p *parser) localStmt() (ir.Stmt, error) {
	p.next()
	if p.atKeyword("function") {
		p.next()
		fn, err := p.functionRest(true)
		if err != nil {
			return nil, err
		}
		return &ir.FuncDecl{Fn: fn}, nil
	}
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if p.atPunct(",") {
		if name.Text == "_ok" {
			return p.pcallStmt()
		}
		return nil, p.errAt(p.peek(), "multiple assignment", "")
	}
	// Lua has no const/let split, so every local is a mutable binding.
	let := &ir.Let{Name: name.Text, Mutable: true}
	if p.eat(tokPunct, "=") {
		let.Init, err = p.expression()
		if err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			return nil, p.errAt(p.peek(), "multiple assignment", "")
		}
	}
	// The throwaway binding the writer uses for statement-position
	// expressions folds back to a plain expression statement.
	if let.Name == "_" && let.Init != nil {
		return &ir.ExprStmt{X: let.Init}, nil
	}
	return let, nil
}

// pcallStmt parses the protected-call lowering of try/catch, positioned just
// after "local _ok": "local _ok, <p> = pcall(function() ... end)" optionally
// followed by "if not _ok then ... end" for the catch arm. Anything else
// after "local _ok," is rejected like any other multiple assignment.
func (p *parser) pcallStmt() (ir.Stmt, error) {
	p.next() // ,
	param, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	if callee := p.peek(); callee.Kind != tokName || callee.Text != "pcall" {
		return nil, p.errAt(callee, "multiple assignment", "")
	}
	p.next()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.blockUntil("end")
	if err != nil {
		return nil, err
	}
	p.next() // end
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	tc := &ir.TryCatch{Body: &ir.Block{Body: body}}
	if p.atKeyword("if") && p.pos+3 < len(p.toks) &&
		p.toks[p.pos+1].Kind == tokKeyword && p.toks[p.pos+1].Text == "not" &&
		p.toks[p.pos+2].Kind == tokName && p.toks[p.pos+2].Text == "_ok" &&
		p.toks[p.pos+3].Kind == tokKeyword && p.toks[p.pos+3].Text == "then" {
		p.pos += 4
		catch, err := p.blockUntil("end")
		if err != nil {
			return nil, err
		}
		p.next() // end
		tc.CatchBody = &ir.Block{Body: catch}
		if param.Text != "_" {
			tc.CatchParam = param.Text
		}
	}
	return tc, nil
}

// functionRest parses everything after the function keyword. Named
// declarations take a single plain name: dotted and method names have no IR
// form and are rejected.
func (p *parser) functionRest(named bool) (*ir.Function, error) {
	fn := &ir.Function{}
	if named {
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if p.atPunct(".") || p.atPunct(":") {
			return nil, p.errAt(p.peek(), "method definition", "")
		}
		fn.Name = name.Text
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	fn.Params = params
	body, err := p.blockUntil("end")
	if err != nil {
		return nil, err
	}
	p.next() // end
	fn.Body = body
	return fn, nil
}

func (p *parser) paramList() ([]string, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.atPunct(")") {
		if p.atPunct(".") || p.atPunct("..") {
			return nil, p.errAt(p.peek(), "varargs", "")
		}
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		params = append(params, name.Text)
		if !p.eat(tokPunct, ",") {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) ifStmt() (ir.Stmt, error) {
	p.next() // if or elseif
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	cons, err := p.blockUntil("end", "else", "elseif")
	if err != nil {
		return nil, err
	}
	stmt := &ir.If{Test: test, Consequent: &ir.Block{Body: cons}}
	switch {
	case p.atKeyword("elseif"):
		// elseif chains become nested If nodes in the alternate slot, the
		// same shape a brace language's "else if" produces.
		alt, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
		return stmt, nil
	case p.eat(tokKeyword, "else"):
		alt, err := p.blockUntil("end")
		if err != nil {
			return nil, err
		}
		p.next() // end
		stmt.Alternate = &ir.Block{Body: alt}
		return stmt, nil
	default:
		p.next() // end
		return stmt, nil
	}
}

func (p *parser) forStmt() (ir.Stmt, error) {
	p.next()
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if p.atPunct(",") {
		return nil, p.errAt(p.peek(), "multiple loop variables", "")
	}

	if p.eat(tokPunct, "=") {
		// Numeric for desugars to the canonical C-style triple; the writer
		// recognizes the same shape and folds it back.
		from, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		to, err := p.expression()
		if err != nil {
			return nil, err
		}
		var step ir.Expr = &ir.Literal{Value: ir.Number(1)}
		if p.eat(tokPunct, ",") {
			step, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectKeyword("do"); err != nil {
			return nil, err
		}
		body, err := p.blockUntil("end")
		if err != nil {
			return nil, err
		}
		p.next() // end
		v := name.Text
		return &ir.For{
			Init: &ir.Let{Name: v, Init: from, Mutable: true},
			Test: &ir.Binary{Left: &ir.Ident{Name: v}, Op: "<=", Right: to},
			Update: &ir.Assign{
				Target: &ir.Ident{Name: v},
				Value:  &ir.Binary{Left: &ir.Ident{Name: v}, Op: "+", Right: step},
			},
			Body: &ir.Block{Body: body},
		}, nil
	}

	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.atPunct(",") {
		return nil, p.errAt(p.peek(), "multiple iterator expressions", "")
	}
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.blockUntil("end")
	if err != nil {
		return nil, err
	}
	p.next() // end
	return &ir.ForIn{Var: name.Text, Iterable: iterable, Body: &ir.Block{Body: body}}, nil
}

// exprStatement parses a statement that begins with an expression: an
// assignment or a call. Lua permits nothing else in statement position.
func (p *parser) exprStatement() (ir.Stmt, error) {
	t := p.peek()
	expr, err := p.suffixedExpr()
	if err != nil {
		return nil, err
	}
	if p.atPunct(",") {
		return nil, p.errAt(p.peek(), "multiple assignment", "")
	}
	if p.eat(tokPunct, "=") {
		switch expr.(type) {
		case *ir.Ident, *ir.Member:
		default:
			return nil, p.errAt(t, "", "invalid assignment target")
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			return nil, p.errAt(p.peek(), "multiple assignment", "")
		}
		return &ir.ExprStmt{X: &ir.Assign{Target: expr, Value: value}}, nil
	}
	if _, ok := expr.(*ir.Call); !ok {
		return nil, p.errAt(t, "", "expression is not a statement")
	}
	return &ir.ExprStmt{X: expr}, nil
}

// Expression parsing, lowest tier first.

func (p *parser) expression() (ir.Expr, error) {
	t := p.peek()
	if err := p.enter(t); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.orExpr()
}

func (p *parser) orExpr() (ir.Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.eat(tokKeyword, "or") {
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		// The and/or ternary idiom folds back to a Conditional, unless the
		// and-expression was parenthesized to mean plain boolean logic.
		if b, ok := left.(*ir.Binary); ok && b.Op == "&&" && !p.paren[left] {
			left = &ir.Conditional{Test: b.Left, Consequent: b.Right, Alternate: right}
			continue
		}
		left = &ir.Binary{Left: left, Op: "||", Right: right}
	}
	return left, nil
}

func (p *parser) andExpr() (ir.Expr, error) {
	left, err := p.comparisonExpr()
	if err != nil {
		return nil, err
	}
	for p.eat(tokKeyword, "and") {
		right, err := p.comparisonExpr()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: "&&", Right: right}
	}
	return left, nil
}

var comparisonOps = map[string]string{
	"==": "==", "~=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

func (p *parser) comparisonExpr() (ir.Expr, error) {
	left, err := p.concatExpr()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		op, ok := comparisonOps[t.Text]
		if t.Kind != tokPunct || !ok {
			return left, nil
		}
		p.next()
		right, err := p.concatExpr()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *parser) concatExpr() (ir.Expr, error) {
	left, err := p.additiveExpr()
	if err != nil {
		return nil, err
	}
	if !p.eat(tokPunct, "..") {
		return left, nil
	}
	// Right-associative; .. maps onto the IR's overloaded "+".
	right, err := p.concatExpr()
	if err != nil {
		return nil, err
	}
	return &ir.Binary{Left: left, Op: "+", Right: right}, nil
}

func (p *parser) additiveExpr() (ir.Expr, error) {
	left, err := p.multiplicativeExpr()
	if err != nil {
		return nil, err
	}
	for p.atPunct("+") || p.atPunct("-") {
		op := p.next().Text
		right, err := p.multiplicativeExpr()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicativeExpr() (ir.Expr, error) {
	left, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		op := p.next().Text
		right, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) unaryExpr() (ir.Expr, error) {
	t := p.peek()
	switch {
	case p.atKeyword("not"):
		p.next()
		x, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Op: "!", X: x}, nil
	case p.atPunct("-"):
		p.next()
		x, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Op: "-", X: x}, nil
	case p.atPunct("#"):
		return nil, p.errAt(t, "length operator", "")
	}
	return p.powExpr()
}

func (p *parser) powExpr() (ir.Expr, error) {
	left, err := p.suffixedExpr()
	if err != nil {
		return nil, err
	}
	if p.atPunct("^") {
		return nil, p.errAt(p.peek(), "exponentiation operator", "")
	}
	return left, nil
}

// suffixedExpr parses a primary expression followed by member, index, and
// call suffixes.
func (p *parser) suffixedExpr() (ir.Expr, error) {
	expr, err := p.primaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atPunct("."):
			p.next()
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			// Dot access normalizes to a string-literal property, matching
			// the brace-language readers.
			expr = &ir.Member{
				Object:   expr,
				Property: &ir.Literal{Value: ir.String(name.Text)},
			}
		case p.atPunct("["):
			p.next()
			prop, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ir.Member{Object: expr, Property: prop, Computed: true}
		case p.atPunct("("):
			p.next()
			var args []ir.Expr
			for !p.atPunct(")") {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.eat(tokPunct, ",") {
					break
				}
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			expr = &ir.Call{Callee: expr, Args: args}
		case p.atPunct(":"):
			return nil, p.errAt(p.peek(), "method call", "")
		default:
			return expr, nil
		}
	}
}

func (p *parser) primaryExpr() (ir.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case tokNumber:
		p.next()
		n, err := parseNumber(t.Text)
		if err != nil {
			return nil, p.errAt(t, "", fmt.Sprintf("invalid number literal %q", t.Text))
		}
		return &ir.Literal{Value: ir.Number(n)}, nil
	case tokString:
		p.next()
		return &ir.Literal{Value: ir.String(t.Str)}, nil
	case tokName:
		p.next()
		return &ir.Ident{Name: t.Text}, nil
	case tokKeyword:
		switch t.Text {
		case "nil":
			p.next()
			return &ir.Literal{Value: ir.Nil()}, nil
		case "true", "false":
			p.next()
			return &ir.Literal{Value: ir.Boolean(t.Text == "true")}, nil
		case "function":
			p.next()
			fn, err := p.functionRest(false)
			if err != nil {
				return nil, err
			}
			return &ir.FuncExpr{Fn: fn}, nil
		}
		return nil, p.errAt(t, "", fmt.Sprintf("unexpected keyword %q", t.Text))
	case tokPunct:
		switch t.Text {
		case "(":
			p.next()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			p.paren[expr] = true
			return expr, nil
		case "{":
			return p.tableConstructor()
		}
	}
	return nil, p.errAt(t, "", fmt.Sprintf("unexpected token %q", tokenText(t)))
}

// tableConstructor maps {a = 1, ...} to an Object and {1, 2, ...} to an
// Array. The two styles cannot mix, and bracketed keys must be string
// literals — anything else has no IR form.
func (p *parser) tableConstructor() (ir.Expr, error) {
	open := p.peek()
	p.next()
	var (
		entries []ir.ObjectEntry
		elems   []ir.Expr
	)
	for !p.atPunct("}") {
		switch {
		case p.peek().Kind == tokName && p.toks[p.pos+1].Kind == tokPunct && p.toks[p.pos+1].Text == "=":
			key := p.next()
			p.next() // =
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ir.ObjectEntry{Key: key.Text, Value: value})
		case p.atPunct("["):
			p.next()
			key := p.peek()
			if key.Kind != tokString {
				return nil, p.errAt(key, "computed table key", "only string-literal keys are supported")
			}
			p.next()
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			if err := p.expectPunct("="); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ir.ObjectEntry{Key: key.Str, Value: value})
		default:
			elem, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if !p.eat(tokPunct, ",") && !p.eat(tokPunct, ";") {
			break
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if len(entries) > 0 && len(elems) > 0 {
		return nil, p.errAt(open, "mixed table constructor", "")
	}
	if len(elems) > 0 {
		return &ir.Array{Elems: elems}, nil
	}
	return &ir.Object{Entries: entries}, nil
}
