// Package typescript implements the TypeScript/JavaScript-subset reader and
// writer. The reader is a recursive-descent parser that resolves operator
// precedence into explicit Binary/Unary nesting; the writer re-derives
// parenthesization from that nesting using the JavaScript precedence table.
package typescript

import (
	"fmt"

	"github.com/jward/recast/ir"
	"github.com/jward/recast/lang"
)

const languageName = "typescript"

// maxDepth bounds statement/expression recursion so adversarially nested
// input fails with a ParseError instead of exhausting the stack.
const maxDepth = 200

func init() {
	lang.RegisterBuiltinReader(func() lang.Reader { return NewReader() })
	lang.RegisterBuiltinWriter(func() lang.Writer { return NewWriter() })
}

// Reader parses the TypeScript/JavaScript subset into the IR. Stateless
// across calls; one instance serves concurrent translations.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (*Reader) Language() string { return languageName }

func (*Reader) Extensions() []string { return []string{"ts", "tsx", "js", "jsx"} }

func (*Reader) Parse(source string) (*ir.Program, error) {
	toks, err := newLexer(source).scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &ir.Program{}
	for !p.at(tokEOF, "") {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}

type parser struct {
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.Kind != tokEOF {
		p.pos++
	}
	return t
}

// at reports whether the current token has the given kind and, when text is
// non-empty, the given text.
func (p *parser) at(kind tokenKind, text string) bool {
	t := p.peek()
	return t.Kind == kind && (text == "" || t.Text == text)
}

func (p *parser) atPunct(text string) bool   { return p.at(tokPunct, text) }
func (p *parser) atKeyword(text string) bool { return p.at(tokKeyword, text) }

// eat consumes the current token when it matches.
func (p *parser) eat(kind tokenKind, text string) bool {
	if p.at(kind, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectPunct(text string) error {
	if !p.eat(tokPunct, text) {
		t := p.peek()
		return p.errAt(t, "", fmt.Sprintf("expected %q, found %q", text, tokenText(t)))
	}
	return nil
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

// unsupported names constructs the subset cannot represent. Failing here,
// rather than skipping, keeps the "complete tree or error" invariant.
var unsupported = map[string]string{
	"class": "class declaration", "new": "new expression",
	"async": "async function", "await": "await expression",
	"yield": "yield expression", "import": "import declaration",
	"export": "export declaration", "switch": "switch statement",
	"do": "do-while statement", "throw": "throw statement",
	"delete": "delete expression", "typeof": "typeof expression",
	"instanceof": "instanceof expression", "void": "void expression",
	"this": "this expression",
}

func (p *parser) statement() (ir.Stmt, error) {
	t := p.peek()
	if err := p.enter(t); err != nil {
		return nil, err
	}
	defer p.leave()

	if t.Kind == tokKeyword {
		if construct, ok := unsupported[t.Text]; ok {
			return nil, p.errAt(t, construct, "")
		}
		switch t.Text {
		case "let", "const", "var":
			return p.letStmt()
		case "if":
			return p.ifStmt()
		case "while":
			return p.whileStmt()
		case "for":
			return p.forStmt()
		case "return":
			p.next()
			if p.atPunct(";") || p.atPunct("}") || p.at(tokEOF, "") {
				p.eat(tokPunct, ";")
				return &ir.Return{}, nil
			}
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			p.eat(tokPunct, ";")
			return &ir.Return{Value: val}, nil
		case "break":
			p.next()
			p.eat(tokPunct, ";")
			return &ir.Break{}, nil
		case "continue":
			p.next()
			p.eat(tokPunct, ";")
			return &ir.Continue{}, nil
		case "try":
			return p.tryStmt()
		case "function":
			p.next()
			fn, err := p.function(true)
			if err != nil {
				return nil, err
			}
			return &ir.FuncDecl{Fn: fn}, nil
		}
	}
	if p.atPunct("{") {
		return p.block()
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.eat(tokPunct, ";")
	return &ir.ExprStmt{X: expr}, nil
}

func (p *parser) letStmt() (ir.Stmt, error) {
	kw := p.next()
	mutable := kw.Text != "const"
	name := p.peek()
	if name.Kind != tokIdent {
		return nil, p.errAt(name, "", fmt.Sprintf("expected variable name, found %q", tokenText(name)))
	}
	p.next()
	// Type annotations are accepted and dropped: they are surface-only in
	// this subset and have no IR representation that changes meaning.
	if p.eat(tokPunct, ":") {
		if err := p.skipTypeAnnotation(); err != nil {
			return nil, err
		}
	}
	var init ir.Expr
	if p.eat(tokPunct, "=") {
		var err error
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.eat(tokPunct, ";")
	return &ir.Let{Name: name.Text, Init: init, Mutable: mutable}, nil
}

// skipTypeAnnotation consumes a simple type annotation: an identifier or
// keyword optionally followed by [] suffixes. Anything richer is rejected.
func (p *parser) skipTypeAnnotation() error {
	t := p.peek()
	if t.Kind != tokIdent && t.Kind != tokKeyword {
		return p.errAt(t, "type annotation", "only simple type annotations are supported")
	}
	p.next()
	for p.atPunct("[") {
		p.next()
		if err := p.expectPunct("]"); err != nil {
			return err
		}
	}
	return nil
}

// block parses { ... } into an ir.Block.
func (p *parser) block() (ir.Stmt, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var body []ir.Stmt
	for !p.atPunct("}") {
		if p.at(tokEOF, "") {
			return nil, p.errAt(p.peek(), "", "unexpected end of input in block")
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	p.next()
	return &ir.Block{Body: body}, nil
}

// bodyStmt parses a statement used as a control-flow body and normalizes it
// to a Block, so brace-delimited and keyword-delimited sources agree on
// structure. else-if chains stay bare If nodes.
func (p *parser) bodyStmt() (ir.Stmt, error) {
	if p.atPunct("{") {
		return p.block()
	}
	s, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ir.Block{Body: []ir.Stmt{s}}, nil
}

func (p *parser) ifStmt() (ir.Stmt, error) {
	p.next()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	cons, err := p.bodyStmt()
	if err != nil {
		return nil, err
	}
	var alt ir.Stmt
	if p.eat(tokKeyword, "else") {
		if p.atKeyword("if") {
			alt, err = p.ifStmt()
		} else {
			alt, err = p.bodyStmt()
		}
		if err != nil {
			return nil, err
		}
	}
	return &ir.If{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (p *parser) whileStmt() (ir.Stmt, error) {
	p.next()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.bodyStmt()
	if err != nil {
		return nil, err
	}
	return &ir.While{Test: test, Body: body}, nil
}

func (p *parser) forStmt() (ir.Stmt, error) {
	p.next()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	// for (let x of xs) / for (const k in obj) — both map to ForIn;
	// iteration order differences are the host language's concern.
	if p.atKeyword("let") || p.atKeyword("const") || p.atKeyword("var") {
		if name := p.toks[p.pos+1]; name.Kind == tokIdent {
			if sep := p.toks[p.pos+2]; sep.Kind == tokKeyword && (sep.Text == "of" || sep.Text == "in") {
				p.next()
				p.next()
				p.next()
				iterable, err := p.expression()
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct(")"); err != nil {
					return nil, err
				}
				body, err := p.bodyStmt()
				if err != nil {
					return nil, err
				}
				return &ir.ForIn{Var: name.Text, Iterable: iterable, Body: body}, nil
			}
		}
	}

	// C-style counted loop. Each of init/test/update may be empty.
	var init ir.Stmt
	if p.atPunct(";") {
		p.next()
	} else if p.atKeyword("let") || p.atKeyword("const") || p.atKeyword("var") {
		s, err := p.letStmt() // consumes the separating ";"
		if err != nil {
			return nil, err
		}
		init = s
	} else {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		init = &ir.ExprStmt{X: expr}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}

	var test ir.Expr
	if !p.atPunct(";") {
		var err error
		test, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	var update ir.Expr
	if !p.atPunct(")") {
		var err error
		update, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.bodyStmt()
	if err != nil {
		return nil, err
	}
	return &ir.For{Init: init, Test: test, Update: update, Body: body}, nil
}

func (p *parser) tryStmt() (ir.Stmt, error) {
	p.next()
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	tc := &ir.TryCatch{Body: body}
	if p.eat(tokKeyword, "catch") {
		if p.eat(tokPunct, "(") {
			name := p.peek()
			if name.Kind != tokIdent {
				return nil, p.errAt(name, "", "expected catch parameter name")
			}
			p.next()
			tc.CatchParam = name.Text
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		tc.CatchBody, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	if p.eat(tokKeyword, "finally") {
		tc.FinallyBody, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	if tc.CatchBody == nil && tc.FinallyBody == nil {
		return nil, p.errAt(p.peek(), "", "try statement requires catch or finally")
	}
	return tc, nil
}

// function parses "( params ) { body }" after the function keyword, with an
// optional leading name. When named is true and no name is present, the
// declaration is rejected (statement-position functions must be named).
func (p *parser) function(named bool) (*ir.Function, error) {
	fn := &ir.Function{}
	if t := p.peek(); t.Kind == tokIdent {
		fn.Name = t.Text
		p.next()
	} else if named {
		return nil, p.errAt(t, "", "expected function name")
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	fn.Params = params
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn.Body = body.(*ir.Block).Body
	return fn, nil
}

func (p *parser) paramList() ([]string, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.atPunct(")") {
		t := p.peek()
		if t.Kind != tokIdent {
			return nil, p.errAt(t, "", fmt.Sprintf("expected parameter name, found %q", tokenText(t)))
		}
		p.next()
		if p.eat(tokPunct, ":") {
			if err := p.skipTypeAnnotation(); err != nil {
				return nil, err
			}
		}
		params = append(params, t.Text)
		if !p.eat(tokPunct, ",") {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}

// Expression parsing: one level per precedence tier, lowest first. Chained
// same-tier operators nest left-associatively.

func (p *parser) expression() (ir.Expr, error) {
	t := p.peek()
	if err := p.enter(t); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.assignExpr()
}

func (p *parser) assignExpr() (ir.Expr, error) {
	left, err := p.conditionalExpr()
	if err != nil {
		return nil, err
	}
	if p.atPunct("=") {
		t := p.peek()
		switch left.(type) {
		case *ir.Ident, *ir.Member:
		default:
			return nil, p.errAt(t, "", "invalid assignment target")
		}
		p.next()
		value, err := p.expression() // right-associative
		if err != nil {
			return nil, err
		}
		return &ir.Assign{Target: left, Value: value}, nil
	}
	return left, nil
}

func (p *parser) conditionalExpr() (ir.Expr, error) {
	test, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if !p.eat(tokPunct, "?") {
		return test, nil
	}
	cons, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	alt, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ir.Conditional{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (p *parser) orExpr() (ir.Expr, error) {
	return p.binaryLevel([]string{"||"}, p.andExpr)
}

func (p *parser) andExpr() (ir.Expr, error) {
	return p.binaryLevel([]string{"&&"}, p.equalityExpr)
}

func (p *parser) equalityExpr() (ir.Expr, error) {
	// === and !== normalize to == and != — the strictness distinction has no
	// cross-language meaning in the subset.
	left, err := p.relationalExpr()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.atPunct("==") || p.atPunct("==="):
			op = "=="
		case p.atPunct("!=") || p.atPunct("!=="):
			op = "!="
		default:
			return left, nil
		}
		p.next()
		right, err := p.relationalExpr()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *parser) relationalExpr() (ir.Expr, error) {
	return p.binaryLevel([]string{"<", "<=", ">", ">="}, p.additiveExpr)
}

func (p *parser) additiveExpr() (ir.Expr, error) {
	return p.binaryLevel([]string{"+", "-"}, p.multiplicativeExpr)
}

func (p *parser) multiplicativeExpr() (ir.Expr, error) {
	return p.binaryLevel([]string{"*", "/", "%"}, p.unaryExpr)
}

func (p *parser) binaryLevel(ops []string, operand func() (ir.Expr, error)) (ir.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.atPunct(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ir.Binary{Left: left, Op: matched, Right: right}
	}
}

func (p *parser) unaryExpr() (ir.Expr, error) {
	if p.atPunct("!") || p.atPunct("-") {
		t := p.next()
		if err := p.enter(t); err != nil {
			return nil, err
		}
		defer p.leave()
		x, err := p.unaryExpr()
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Op: t.Text, X: x}, nil
	}
	return p.postfixExpr()
}

func (p *parser) postfixExpr() (ir.Expr, error) {
	expr, err := p.primaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
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
		case p.atPunct("."):
			p.next()
			name := p.peek()
			if name.Kind != tokIdent && name.Kind != tokKeyword {
				return nil, p.errAt(name, "", "expected property name after \".\"")
			}
			p.next()
			// Dot access normalizes to a string-literal property so obj.foo
			// and obj["foo"] compare structurally equal.
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
		case p.atPunct("++") || p.atPunct("--"):
			// i++ and i-- are sugar for the explicit assignment form, which
			// is what keyword-delimited targets can express.
			t := p.next()
			switch expr.(type) {
			case *ir.Ident, *ir.Member:
			default:
				return nil, p.errAt(t, "", "invalid increment target")
			}
			op := "+"
			if t.Text == "--" {
				op = "-"
			}
			expr = &ir.Assign{
				Target: expr,
				Value: &ir.Binary{
					Left:  expr,
					Op:    op,
					Right: &ir.Literal{Value: ir.Number(1)},
				},
			}
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
	case tokIdent:
		// An identifier may open an arrow function: x => ...
		if p.toks[p.pos+1].Kind == tokPunct && p.toks[p.pos+1].Text == "=>" {
			p.next()
			p.next()
			return p.arrowBody([]string{t.Text})
		}
		p.next()
		return &ir.Ident{Name: t.Text}, nil
	case tokKeyword:
		if construct, ok := unsupported[t.Text]; ok {
			return nil, p.errAt(t, construct, "")
		}
		switch t.Text {
		case "true", "false":
			p.next()
			return &ir.Literal{Value: ir.Boolean(t.Text == "true")}, nil
		case "null":
			p.next()
			return &ir.Literal{Value: ir.Nil()}, nil
		case "function":
			p.next()
			fn, err := p.function(false)
			if err != nil {
				return nil, err
			}
			return &ir.FuncExpr{Fn: fn}, nil
		}
		return nil, p.errAt(t, "", fmt.Sprintf("unexpected keyword %q", t.Text))
	case tokPunct:
		switch t.Text {
		case "(":
			if p.isArrowAhead() {
				params, err := p.paramList()
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct("=>"); err != nil {
					return nil, err
				}
				return p.arrowBody(params)
			}
			p.next()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return expr, nil
		case "[":
			return p.arrayLiteral()
		case "{":
			return p.objectLiteral()
		}
	}
	return nil, p.errAt(t, "", fmt.Sprintf("unexpected token %q", tokenText(t)))
}

// isArrowAhead reports whether the parenthesized group starting at the
// current "(" is followed by "=>", i.e. is an arrow function parameter list.
func (p *parser) isArrowAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == tokEOF {
			return false
		}
		if t.Kind != tokPunct {
			continue
		}
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				next := p.toks[i+1]
				return next.Kind == tokPunct && next.Text == "=>"
			}
		}
	}
	return false
}

// arrowBody parses the body after "=>": either a block or a bare expression,
// which becomes a single-return body.
func (p *parser) arrowBody(params []string) (ir.Expr, error) {
	fn := &ir.Function{Params: params}
	if p.atPunct("{") {
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		fn.Body = body.(*ir.Block).Body
		return &ir.FuncExpr{Fn: fn}, nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	fn.Body = []ir.Stmt{&ir.Return{Value: expr}}
	return &ir.FuncExpr{Fn: fn}, nil
}

func (p *parser) arrayLiteral() (ir.Expr, error) {
	p.next()
	arr := &ir.Array{}
	for !p.atPunct("]") {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, elem)
		if !p.eat(tokPunct, ",") {
			break
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) objectLiteral() (ir.Expr, error) {
	p.next()
	obj := &ir.Object{}
	for !p.atPunct("}") {
		t := p.peek()
		var key string
		switch t.Kind {
		case tokIdent, tokKeyword:
			key = t.Text
		case tokString:
			key = t.Str
		case tokNumber:
			key = t.Text
		default:
			return nil, p.errAt(t, "", fmt.Sprintf("expected object key, found %q", tokenText(t)))
		}
		p.next()
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, ir.ObjectEntry{Key: key, Value: value})
		if !p.eat(tokPunct, ",") {
			break
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return obj, nil
}
