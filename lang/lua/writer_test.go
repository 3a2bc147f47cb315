package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/recast/ir"
)

func emit(t *testing.T, p *ir.Program) string {
	t.Helper()
	return NewWriter().Emit(p)
}

// reparse round-trips emitted source through the reader, proving the output is
// valid Lua and structure-preserving.
func reparse(t *testing.T, p *ir.Program) *ir.Program {
	t.Helper()
	out := emit(t, p)
	back, err := NewReader().Parse(out)
	require.NoError(t, err, "emitted source must reparse:\n%s", out)
	return back
}

func ident(n string) *ir.Ident { return &ir.Ident{Name: n} }
func num(n float64) *ir.Literal {
	return &ir.Literal{Value: ir.Number(n)}
}

func callStmt(name string, args ...ir.Expr) ir.Stmt {
	return &ir.ExprStmt{X: &ir.Call{Callee: ident(name), Args: args}}
}

func TestEmit_CanonicalForFoldsToNumericFor(t *testing.T) {
	t.Parallel()

	counted := func(step ir.Expr) *ir.For {
		return &ir.For{
			Init: &ir.Let{Name: "i", Init: num(1), Mutable: true},
			Test: &ir.Binary{Left: ident("i"), Op: "<=", Right: num(10)},
			Update: &ir.Assign{
				Target: ident("i"),
				Value:  &ir.Binary{Left: ident("i"), Op: "+", Right: step},
			},
			Body: &ir.Block{Body: []ir.Stmt{callStmt("f", ident("i"))}},
		}
	}

	p := &ir.Program{Body: []ir.Stmt{counted(num(1))}}
	assert.Equal(t, "for i = 1, 10 do\n  f(i)\nend\n", emit(t, p), "step 1 is omitted")
	assert.True(t, ir.Equal(p, reparse(t, p)))

	p = &ir.Program{Body: []ir.Stmt{counted(num(2))}}
	assert.Equal(t, "for i = 1, 10, 2 do\n  f(i)\nend\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_NonCanonicalForDesugarsToWhile(t *testing.T) {
	t.Parallel()

	// "<" instead of "<=" does not match the numeric-for shape. The update
	// goes behind the ::continue:: label so the reader can fold the loop
	// back into a For.
	p := &ir.Program{Body: []ir.Stmt{&ir.For{
		Init: &ir.Let{Name: "i", Init: num(0), Mutable: true},
		Test: &ir.Binary{Left: ident("i"), Op: "<", Right: num(10)},
		Update: &ir.Assign{
			Target: ident("i"),
			Value:  &ir.Binary{Left: ident("i"), Op: "+", Right: num(1)},
		},
		Body: &ir.Block{Body: []ir.Stmt{callStmt("f", ident("i"))}},
	}}}

	want := "do\n  local i = 0\n  while i < 10 do\n    f(i)\n    ::continue::\n    i = i + 1\n  end\nend\n"
	assert.Equal(t, want, emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_ForWithoutInitSkipsDoWrapper(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.For{
		Test: &ir.Binary{Left: ident("i"), Op: "<", Right: num(10)},
		Update: &ir.Assign{
			Target: ident("i"),
			Value:  &ir.Binary{Left: ident("i"), Op: "+", Right: num(1)},
		},
		Body: &ir.Block{Body: []ir.Stmt{callStmt("f", ident("i"))}},
	}}}

	want := "while i < 10 do\n  f(i)\n  ::continue::\n  i = i + 1\nend\n"
	assert.Equal(t, want, emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_ContinueUsesGotoLabelPair(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.While{
		Test: ident("cond"),
		Body: &ir.Block{Body: []ir.Stmt{
			&ir.If{
				Test:       ident("skip"),
				Consequent: &ir.Block{Body: []ir.Stmt{&ir.Continue{}}},
			},
			callStmt("f"),
		}},
	}}}

	want := "while cond do\n  if skip then\n    goto continue\n  end\n  f()\n  ::continue::\nend\n"
	assert.Equal(t, want, emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)), "label is absorbed on reparse")
}

func TestEmit_NoLabelWithoutContinue(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.While{
		Test: ident("cond"),
		Body: &ir.Block{Body: []ir.Stmt{callStmt("f")}},
	}}}
	assert.Equal(t, "while cond do\n  f()\nend\n", emit(t, p))
}

func TestEmit_ConditionalAsAndOr(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "v",
		Init: &ir.Conditional{Test: ident("a"), Consequent: ident("b"), Alternate: ident("c")},
	}}}
	assert.Equal(t, "local v = a and b or c\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_BooleanOrOverAndKeepsParens(t *testing.T) {
	t.Parallel()

	// Binary{||} with an and-left must parenthesize, or the reader would fold
	// the output back into a Conditional.
	p := &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "v",
		Init: &ir.Binary{
			Left:  &ir.Binary{Left: ident("a"), Op: "&&", Right: ident("b")},
			Op:    "||",
			Right: ident("c"),
		},
	}}}
	assert.Equal(t, "local v = (a and b) or c\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_OperatorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x    ir.Expr
		want string
	}{
		{"inequality", &ir.Binary{Left: ident("a"), Op: "!=", Right: ident("b")}, "a ~= b"},
		{"negation", &ir.Unary{Op: "!", X: ident("a")}, "not a"},
		{"nil literal", &ir.Literal{Value: ir.Nil()}, "nil"},
		{
			"parens from shape",
			&ir.Binary{
				Left:  &ir.Binary{Left: ident("a"), Op: "+", Right: ident("b")},
				Op:    "*",
				Right: ident("c"),
			},
			"(a + b) * c",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &ir.Program{Body: []ir.Stmt{&ir.Let{Name: "v", Init: tt.x}}}
			assert.Equal(t, "local v = "+tt.want+"\n", emit(t, p))
		})
	}
}

func TestEmit_TryCatchUsesPcall(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.TryCatch{
		Body:       &ir.Block{Body: []ir.Stmt{callStmt("f")}},
		CatchParam: "err",
		CatchBody:  &ir.Block{Body: []ir.Stmt{callStmt("g", ident("err"))}},
	}}}

	want := "local _ok, err = pcall(function()\n  f()\nend)\nif not _ok then\n  g(err)\nend\n"
	assert.Equal(t, want, emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)), "pcall shape folds back to try/catch")
}

func TestEmit_FinallyInlinedAfterPcall(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.TryCatch{
		Body:        &ir.Block{Body: []ir.Stmt{callStmt("f")}},
		FinallyBody: &ir.Block{Body: []ir.Stmt{callStmt("h")}},
	}}}

	want := "local _ok, _ = pcall(function()\n  f()\nend)\nh()\n"
	assert.Equal(t, want, emit(t, p))
}

func TestEmit_Tables(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{
		&ir.Let{Name: "o", Init: &ir.Object{Entries: []ir.ObjectEntry{
			{Key: "a", Value: num(1)},
			{Key: "b c", Value: num(2)},
		}}},
		&ir.Let{Name: "l", Init: &ir.Array{Elems: []ir.Expr{num(1), num(2)}}},
	}}
	want := `local o = {a = 1, ["b c"] = 2}` + "\n" + "local l = {1, 2}\n"
	assert.Equal(t, want, emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_ExpressionStatementFallback(t *testing.T) {
	t.Parallel()

	// Lua statements are calls and assignments; anything else binds to a
	// throwaway local so evaluation still happens.
	p := &ir.Program{Body: []ir.Stmt{
		&ir.ExprStmt{X: &ir.Binary{Left: ident("a"), Op: "+", Right: ident("b")}},
	}}
	assert.Equal(t, "local _ = a + b\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)), "throwaway binding folds back")
}

func TestEmit_NestedNegationSeparated(t *testing.T) {
	t.Parallel()

	// "--x" would start a comment; the inner negation must parenthesize.
	p := &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "y",
		Init: &ir.Unary{Op: "-", X: &ir.Unary{Op: "-", X: ident("x")}},
	}}}
	assert.Equal(t, "local y = -(-x)\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))

	p = &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "z",
		Init: &ir.Unary{Op: "-", X: num(-1)},
	}}}
	assert.Equal(t, "local z = -(-1)\n", emit(t, p), "negative literal operand separates too")
}

func TestEmit_AssignInExpressionPosition(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "v",
		Init: &ir.Assign{Target: ident("x"), Value: num(1)},
	}}}
	assert.Equal(t, "local v = (function() x = 1 return x end)()\n", emit(t, p))
}

func TestEmit_FunctionDeclaration(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.FuncDecl{Fn: &ir.Function{
		Name:   "add",
		Params: []string{"a", "b"},
		Body:   []ir.Stmt{&ir.Return{Value: &ir.Binary{Left: ident("a"), Op: "+", Right: ident("b")}}},
	}}}}
	assert.Equal(t, "function add(a, b)\n  return a + b\nend\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}

func TestEmit_ClosureExpression(t *testing.T) {
	t.Parallel()

	p := &ir.Program{Body: []ir.Stmt{&ir.Let{
		Name: "f",
		Init: &ir.FuncExpr{Fn: &ir.Function{
			Params: []string{"x"},
			Body:   []ir.Stmt{&ir.Return{Value: ident("x")}},
		}},
	}}}
	assert.Equal(t, "local f = function(x)\n  return x\nend\n", emit(t, p))
	assert.True(t, ir.Equal(p, reparse(t, p)))
}
