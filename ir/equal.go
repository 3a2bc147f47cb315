package ir

// Structural equality over IR trees. Two trees are equal iff they carry the
// same variant at every position and all core fields match; the surface hint
// fields (Let.Mutable, Member.Computed) are ignored entirely. The relation is
// a true equivalence and strictly weaker than reflect.DeepEqual.
//
// Implemented as explicit per-variant comparisons rather than reflection so
// that exactly the documented hint fields are excluded; the tests in
// equal_test.go pin each hint field both ways (ignored here, visible under
// full equality) to catch drift if new hints are added.

// Equal reports whether two programs are structurally equal.
func Equal(a, b *Program) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalStmts(a.Body, b.Body)
}

// EqualStmt reports whether two statements are structurally equal.
func EqualStmt(a, b Stmt) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *ExprStmt:
		y, ok := b.(*ExprStmt)
		return ok && EqualExpr(x.X, y.X)
	case *Let:
		// Mutable is a surface hint and deliberately not compared.
		y, ok := b.(*Let)
		return ok && x.Name == y.Name && EqualExpr(x.Init, y.Init)
	case *Block:
		y, ok := b.(*Block)
		return ok && equalStmts(x.Body, y.Body)
	case *If:
		y, ok := b.(*If)
		return ok && EqualExpr(x.Test, y.Test) &&
			EqualStmt(x.Consequent, y.Consequent) &&
			EqualStmt(x.Alternate, y.Alternate)
	case *While:
		y, ok := b.(*While)
		return ok && EqualExpr(x.Test, y.Test) && EqualStmt(x.Body, y.Body)
	case *For:
		y, ok := b.(*For)
		return ok && EqualStmt(x.Init, y.Init) &&
			EqualExpr(x.Test, y.Test) &&
			EqualExpr(x.Update, y.Update) &&
			EqualStmt(x.Body, y.Body)
	case *ForIn:
		y, ok := b.(*ForIn)
		return ok && x.Var == y.Var &&
			EqualExpr(x.Iterable, y.Iterable) &&
			EqualStmt(x.Body, y.Body)
	case *Return:
		y, ok := b.(*Return)
		return ok && EqualExpr(x.Value, y.Value)
	case *Break:
		_, ok := b.(*Break)
		return ok
	case *Continue:
		_, ok := b.(*Continue)
		return ok
	case *TryCatch:
		y, ok := b.(*TryCatch)
		return ok && EqualStmt(x.Body, y.Body) &&
			x.CatchParam == y.CatchParam &&
			EqualStmt(x.CatchBody, y.CatchBody) &&
			EqualStmt(x.FinallyBody, y.FinallyBody)
	case *FuncDecl:
		y, ok := b.(*FuncDecl)
		return ok && equalFunction(x.Fn, y.Fn)
	}
	return false
}

// EqualExpr reports whether two expressions are structurally equal.
func EqualExpr(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && equalValue(x.Value, y.Value)
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op &&
			EqualExpr(x.Left, y.Left) && EqualExpr(x.Right, y.Right)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && EqualExpr(x.X, y.X)
	case *Call:
		y, ok := b.(*Call)
		if !ok || !EqualExpr(x.Callee, y.Callee) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !EqualExpr(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Member:
		// Computed is a surface hint and deliberately not compared.
		y, ok := b.(*Member)
		return ok && EqualExpr(x.Object, y.Object) &&
			EqualExpr(x.Property, y.Property)
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !EqualExpr(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Object:
		// Order-sensitive: printing order is observable.
		y, ok := b.(*Object)
		if !ok || len(x.Entries) != len(y.Entries) {
			return false
		}
		for i := range x.Entries {
			if x.Entries[i].Key != y.Entries[i].Key ||
				!EqualExpr(x.Entries[i].Value, y.Entries[i].Value) {
				return false
			}
		}
		return true
	case *FuncExpr:
		y, ok := b.(*FuncExpr)
		return ok && equalFunction(x.Fn, y.Fn)
	case *Conditional:
		y, ok := b.(*Conditional)
		return ok && EqualExpr(x.Test, y.Test) &&
			EqualExpr(x.Consequent, y.Consequent) &&
			EqualExpr(x.Alternate, y.Alternate)
	case *Assign:
		y, ok := b.(*Assign)
		return ok && EqualExpr(x.Target, y.Target) && EqualExpr(x.Value, y.Value)
	}
	return false
}

func equalStmts(a, b []Stmt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualStmt(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalFunction(a, b *Function) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return equalStmts(a.Body, b.Body)
}

func equalValue(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case BoolValue:
		return a.Bool == b.Bool
	case NumberValue:
		return a.Num == b.Num
	case StringValue:
		return a.Str == b.Str
	}
	return true // NilValue
}
