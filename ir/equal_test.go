package ir

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(n float64) *Literal  { return &Literal{Value: Number(n)} }
func str(s string) *Literal   { return &Literal{Value: String(s)} }
func ident(n string) *Ident   { return &Ident{Name: n} }
func prog(body ...Stmt) *Program { return &Program{Body: body} }

func TestEqual_IgnoresMutableHint(t *testing.T) {
	t.Parallel()

	a := prog(&Let{Name: "x", Init: num(42), Mutable: false})
	b := prog(&Let{Name: "x", Init: num(42), Mutable: true})

	assert.True(t, Equal(a, b))
	// The hint is still carried on the node itself.
	assert.False(t, reflect.DeepEqual(a, b))
}

func TestEqual_IgnoresComputedHint(t *testing.T) {
	t.Parallel()

	dot := &Member{Object: ident("obj"), Property: str("foo"), Computed: false}
	bracket := &Member{Object: ident("obj"), Property: str("foo"), Computed: true}

	assert.True(t, EqualExpr(dot, bracket))
	assert.False(t, reflect.DeepEqual(dot, bracket))
}

func TestEqual_CoreFieldsAreCompared(t *testing.T) {
	t.Parallel()

	base := func() *Program {
		return prog(
			&Let{Name: "x", Init: &Binary{Left: num(1), Op: "+", Right: num(2)}},
			&ExprStmt{X: &Call{Callee: ident("print"), Args: []Expr{ident("x")}}},
		)
	}

	tests := []struct {
		name   string
		mutate func(*Program)
	}{
		{"binding name", func(p *Program) { p.Body[0].(*Let).Name = "y" }},
		{"operator", func(p *Program) { p.Body[0].(*Let).Init.(*Binary).Op = "-" }},
		{"literal value", func(p *Program) { p.Body[0].(*Let).Init.(*Binary).Left = num(9) }},
		{"callee", func(p *Program) { p.Body[1].(*ExprStmt).X.(*Call).Callee = ident("log") }},
		{"argument count", func(p *Program) { p.Body[1].(*ExprStmt).X.(*Call).Args = nil }},
		{"statement dropped", func(p *Program) { p.Body = p.Body[:1] }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := base(), base()
			require.True(t, Equal(a, b))
			tt.mutate(b)
			assert.False(t, Equal(a, b), "mutation should break equality")
		})
	}
}

func TestEqual_StatementOrderMatters(t *testing.T) {
	t.Parallel()

	a := prog(&Let{Name: "x", Init: num(1)}, &Let{Name: "y", Init: num(2)})
	b := prog(&Let{Name: "y", Init: num(2)}, &Let{Name: "x", Init: num(1)})

	assert.False(t, Equal(a, b))
}

func TestEqual_DifferentVariantsNeverEqual(t *testing.T) {
	t.Parallel()

	assert.False(t, EqualStmt(&Break{}, &Continue{}))
	assert.False(t, EqualExpr(ident("x"), str("x")))
	assert.False(t, EqualStmt(&Block{}, &ExprStmt{X: ident("x")}))
}

func TestEqual_NilHandling(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal(prog(), prog()))
	assert.True(t, EqualStmt(&Return{}, &Return{}))
	assert.False(t, EqualStmt(&Return{}, &Return{Value: num(1)}))
	assert.True(t, EqualStmt(
		&If{Test: ident("c"), Consequent: &Block{}},
		&If{Test: ident("c"), Consequent: &Block{}},
	))
	assert.False(t, EqualStmt(
		&If{Test: ident("c"), Consequent: &Block{}},
		&If{Test: ident("c"), Consequent: &Block{}, Alternate: &Block{}},
	))
}

func TestEqual_Functions(t *testing.T) {
	t.Parallel()

	fn := func(params ...string) *Function {
		return &Function{
			Name:   "add",
			Params: params,
			Body:   []Stmt{&Return{Value: &Binary{Left: ident("a"), Op: "+", Right: ident("b")}}},
		}
	}

	assert.True(t, EqualStmt(&FuncDecl{Fn: fn("a", "b")}, &FuncDecl{Fn: fn("a", "b")}))
	assert.False(t, EqualStmt(&FuncDecl{Fn: fn("a", "b")}, &FuncDecl{Fn: fn("a")}), "param list")

	renamed := fn("a", "b")
	renamed.Name = "sum"
	assert.False(t, EqualStmt(&FuncDecl{Fn: fn("a", "b")}, &FuncDecl{Fn: renamed}), "function name")

	// A closure and a declaration of the same function are different nodes.
	assert.False(t, EqualExpr(&FuncExpr{Fn: fn("a", "b")}, ident("add")))
}

func TestEqual_ObjectEntryOrder(t *testing.T) {
	t.Parallel()

	ab := &Object{Entries: []ObjectEntry{{Key: "a", Value: num(1)}, {Key: "b", Value: num(2)}}}
	ba := &Object{Entries: []ObjectEntry{{Key: "b", Value: num(2)}, {Key: "a", Value: num(1)}}}

	assert.True(t, EqualExpr(ab, ab))
	assert.False(t, EqualExpr(ab, ba), "object entries compare positionally")
}

func TestEqual_ValueKinds(t *testing.T) {
	t.Parallel()

	// Same payload field, different kind.
	assert.False(t, EqualExpr(&Literal{Value: Nil()}, &Literal{Value: Boolean(false)}))
	assert.False(t, EqualExpr(&Literal{Value: Number(0)}, &Literal{Value: String("")}))
	assert.True(t, EqualExpr(&Literal{Value: Boolean(true)}, &Literal{Value: Boolean(true)}))
}

func TestNumberString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{42, "42"},
		{0, "0"},
		{3.14, "3.14"},
		{-1.5, "-1.5"},
		{1000000, "1000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in).NumberString())
	}
}

func TestEqual_IsEquivalenceRelation(t *testing.T) {
	t.Parallel()

	// Three trees equal under Equal but distinct under DeepEqual, so the
	// relation laws are exercised across hint-varying representatives.
	build := func(mutable, computed bool) *Program {
		return prog(
			&Let{Name: "x", Mutable: mutable, Init: &Binary{
				Left:  &Member{Object: ident("obj"), Property: str("foo"), Computed: computed},
				Op:    "+",
				Right: num(1),
			}},
			&If{
				Test:       &Unary{Op: "!", X: ident("done")},
				Consequent: &Block{Body: []Stmt{&ExprStmt{X: &Call{Callee: ident("f"), Args: []Expr{ident("x")}}}}},
			},
		)
	}
	a := build(false, false)
	b := build(true, false)
	c := build(true, true)

	// Reflexive.
	assert.True(t, Equal(a, a))

	// Symmetric.
	require.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))
	require.False(t, reflect.DeepEqual(a, b))

	// Transitive.
	require.True(t, Equal(b, c))
	assert.True(t, Equal(a, c))

	// Inequality is symmetric too.
	d := build(false, false)
	d.Body[0].(*Let).Name = "y"
	assert.False(t, Equal(a, d))
	assert.False(t, Equal(d, a))
}
