// Package ir defines the language-agnostic intermediate representation shared
// by every reader and writer: a Program is an ordered list of statements,
// statements and expressions are closed tagged variants, and a handful of
// fields are "surface hints" that record source-language syntax without
// carrying semantic weight.
//
// A Program is created by exactly one reader call and consumed by exactly one
// writer call. Nothing in this package mutates a tree after construction, and
// readers must never produce a partial tree: every node is one of the variants
// below, with no opaque escape hatch.
package ir

import "strconv"

// Program is a single translation unit: an ordered sequence of top-level
// statements. It has no identity beyond its statement list.
type Program struct {
	Body []Stmt
}

// Stmt is the closed set of statement variants. The marker method keeps the
// set closed to this package.
type Stmt interface {
	stmtNode()
}

// Expr is the closed set of expression variants.
type Expr interface {
	exprNode()
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr
}

// Let is a variable binding. Init is nil when the binding has no initializer.
//
// Mutable is a surface hint: it records whether the source language marked the
// binding reassignable (let/var vs const). Lua has no such distinction, so
// structural equality ignores it.
type Let struct {
	Name    string
	Init    Expr
	Mutable bool
}

// Block is a nested statement sequence with no semantics beyond sequencing.
type Block struct {
	Body []Stmt
}

// If is a conditional. Alternate is nil when there is no else branch.
type If struct {
	Test       Expr
	Consequent Stmt
	Alternate  Stmt
}

// While is a pre-tested loop.
type While struct {
	Test Expr
	Body Stmt
}

// For is a C-style counted loop. Init, Test, and Update may each be nil.
type For struct {
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

// ForIn iterates a single variable over a collection.
type ForIn struct {
	Var      string
	Iterable Expr
	Body     Stmt
}

// Return exits the enclosing function. Value is nil for a bare return.
type Return struct {
	Value Expr
}

// Break and Continue are leaf control-transfer statements.
type Break struct{}
type Continue struct{}

// TryCatch is a protected block. CatchBody nil means no catch clause (the
// param is then empty), FinallyBody nil means no finally clause. CatchParam
// may be empty even when a catch body is present.
type TryCatch struct {
	Body        Stmt
	CatchParam  string
	CatchBody   Stmt
	FinallyBody Stmt
}

// FuncDecl is a named function declared in statement position.
type FuncDecl struct {
	Fn *Function
}

func (*ExprStmt) stmtNode() {}
func (*Let) stmtNode()      {}
func (*Block) stmtNode()    {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*For) stmtNode()      {}
func (*ForIn) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*TryCatch) stmtNode() {}
func (*FuncDecl) stmtNode() {}

// Literal is a constant value.
type Literal struct {
	Value Value
}

// Ident is a bare identifier reference. The IR performs no scope resolution;
// identifiers are plain strings.
type Ident struct {
	Name string
}

// Binary is an infix operation. Readers resolve source precedence and
// associativity into the nesting of Binary/Unary nodes; the IR carries no
// precedence metadata of its own.
type Binary struct {
	Left  Expr
	Op    string
	Right Expr
}

// Unary is a prefix operation.
type Unary struct {
	Op string
	X  Expr
}

// Call invokes a callee with positional arguments.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Member is a property access.
//
// Computed is a surface hint: obj.foo and obj["foo"] denote the same access
// when the property is a string literal, and readers normalize dot access to
// a string-literal Property so the two forms compare structurally equal. For
// dynamic access (obj[x]) Property is the index expression and Computed is
// true.
type Member struct {
	Object   Expr
	Property Expr
	Computed bool
}

// Array is an ordered element list.
type Array struct {
	Elems []Expr
}

// Object is an ordered key/value list. Entry order is significant: emitted
// printing order is observable, so structural equality compares entries
// positionally.
type Object struct {
	Entries []ObjectEntry
}

// ObjectEntry is one key/value pair of an object literal.
type ObjectEntry struct {
	Key   string
	Value Expr
}

// FuncExpr is a function in expression position (closure/lambda). The
// function may still be named.
type FuncExpr struct {
	Fn *Function
}

// Conditional is a ternary expression.
type Conditional struct {
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

// Assign writes Value to Target and yields the value.
type Assign struct {
	Target Expr
	Value  Expr
}

func (*Literal) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Call) exprNode()        {}
func (*Member) exprNode()      {}
func (*Array) exprNode()       {}
func (*Object) exprNode()      {}
func (*FuncExpr) exprNode()    {}
func (*Conditional) exprNode() {}
func (*Assign) exprNode()      {}

// Function is a parameterized statement list. Name is empty for anonymous
// functions (closures).
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// ValueKind discriminates Value.
type ValueKind int

const (
	NilValue ValueKind = iota
	BoolValue
	NumberValue
	StringValue
)

// Value is a literal constant. Exactly one payload field is meaningful,
// selected by Kind.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
	Str  string
}

func Nil() Value            { return Value{Kind: NilValue} }
func Boolean(b bool) Value  { return Value{Kind: BoolValue, Bool: b} }
func Number(n float64) Value { return Value{Kind: NumberValue, Num: n} }
func String(s string) Value { return Value{Kind: StringValue, Str: s} }

// NumberString renders a numeric value the way both target languages print
// numbers: integral values without a trailing ".0", everything else in the
// shortest form that round-trips.
func (v Value) NumberString() string {
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}
