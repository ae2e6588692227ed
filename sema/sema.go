package sema

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/reltable-lang/reltablec"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/scope"
	"github.com/reltable-lang/reltablec/types"
)

// T traces with key 'reltable.sema'.
func T() tracing.Trace {
	return tracing.Select("reltable.sema")
}

// Analyze walks prog under a fresh scope.Tree, annotating every
// ast.Expr's type, attaching captured-variable sets to every function/
// lambda node, and collecting Diagnostics. It never aborts on an error;
// the driver decides what to do with a non-empty Diagnostic list.
//
// src is the original source text: Diagnostics carry a line/column (spec
// §7), but ast nodes only carry byte-offset Spans, so the pass converts
// lazily, only when it actually emits an error.
func Analyze(prog *ast.Program, src []byte) []Diagnostic {
	a := &analyzer{tree: scope.NewTree(), src: src}
	a.visitStmts(prog.Stmts)
	return a.diags
}

type analyzer struct {
	tree  *scope.Tree
	src   []byte
	diags []Diagnostic
}

// posOf converts a node's span-start byte offset into a 1-based
// line/column pair for diagnostics.
func (a *analyzer) posOf(n ast.Node) reltable.Position {
	offset := int(n.Span().From())
	line, col := 1, 1
	for i := 0; i < offset && i < len(a.src); i++ {
		if a.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return reltable.Position{Line: line, Column: col}
}

func (a *analyzer) errorf(n ast.Node, format string, args ...interface{}) {
	d := Diagnostic{Pos: a.posOf(n), Message: fmt.Sprintf(format, args...)}
	a.diags = append(a.diags, d)
	T().Errorf("%s", d)
}

func (a *analyzer) visitStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		a.visitStmt(s)
	}
}

// visitBlock enters a fresh non-boundary scope, visits b's statements,
// and exits (spec §4.D "Block").
func (a *analyzer) visitBlock(b *ast.Block) {
	a.tree.Push("block", false)
	a.visitStmts(b.Stmts)
	a.tree.Pop()
}

func (a *analyzer) visitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.FuncDecl:
		a.visitFuncDecl(n)
	case *ast.Block:
		a.visitBlock(n)
	case *ast.IfStmt:
		a.visitIfStmt(n)
	case *ast.ForStmt:
		a.visitForStmt(n)
	case *ast.SwitchStmt:
		a.visitSwitchStmt(n)
	case *ast.ReturnStmt:
		a.visitReturnStmt(n)
	case *ast.BreakStmt:
		// Nothing to check semantically; codegen's loop stack catches a
		// break outside a loop as an internal-compiler-error (spec §7).
	case *ast.AssignStmt:
		a.visitAssignStmt(n)
	case *ast.ExprStmt:
		a.visitExpr(n.Expr)
	case *ast.CreateTableStmt:
		a.visitCreateTableStmt(n)
	case *ast.AddColumnStmt:
		a.visitAddColumnStmt(n)
	case *ast.AddRowStmt:
		a.visitAddRowStmt(n)
	default:
		panic(fmt.Sprintf("sema: unhandled statement type %T", s))
	}
}

// visitFuncDecl implements spec §4.D's function-declaration contract:
// define the name before descending, enter a function-boundary scope,
// define parameters, visit the body directly under that scope (not a
// further nested block scope), attach the resulting captures.
func (a *analyzer) visitFuncDecl(n *ast.FuncDecl) {
	a.tree.Current().Define(scope.NewSymbol(n.Name, types.FUNCTION, n))
	fnScope := a.tree.Push(n.Name, true)
	for _, param := range n.Params {
		fnScope.Define(scope.NewSymbol(param.Name, param.Type, n))
	}
	a.visitStmts(n.Body.Stmts)
	a.tree.Pop()
	n.CapturedVars = fnScope.CapturedVars()
}

// visitLambda mirrors visitFuncDecl but is anonymous and is itself typed
// (spec §4.D: "identical to function declaration except anonymous").
func (a *analyzer) visitLambda(n *ast.Lambda) {
	n.SetType(types.FUNCTION)
	fnScope := a.tree.Push("lambda", true)
	for _, param := range n.Params {
		fnScope.Define(scope.NewSymbol(param.Name, param.Type, n))
	}
	switch body := n.Body.(type) {
	case *ast.Block:
		a.visitStmts(body.Stmts)
	case ast.Expr:
		a.visitExpr(body)
	default:
		panic(fmt.Sprintf("sema: lambda body has unexpected type %T", n.Body))
	}
	a.tree.Pop()
	n.CapturedVars = fnScope.CapturedVars()
}

func (a *analyzer) visitIfStmt(n *ast.IfStmt) {
	for _, c := range n.Conds {
		a.visitExpr(c)
	}
	for _, b := range n.Bodies {
		a.visitBlock(b)
	}
	if n.Else != nil {
		a.visitBlock(n.Else)
	}
}

// visitForStmt implements spec §4.D: visit the bounds, enter a single
// non-boundary scope, define the iterator as INT, visit the body's
// statements directly under that same scope (the for-loop's scope IS
// the body's scope; there is no additional nested Block scope).
func (a *analyzer) visitForStmt(n *ast.ForStmt) {
	a.visitExpr(n.Low)
	a.visitExpr(n.High)
	s := a.tree.Push("for", false)
	s.Define(scope.NewSymbol(n.Iter, types.INT, n))
	a.visitStmts(n.Body.Stmts)
	a.tree.Pop()
}

func (a *analyzer) visitSwitchStmt(n *ast.SwitchStmt) {
	if n.Scrutinee != nil {
		a.visitExpr(n.Scrutinee)
	}
	for _, c := range n.Cases {
		for _, ce := range c.Exprs {
			a.visitExpr(ce.Low)
			if ce.High != nil {
				a.visitExpr(ce.High)
			}
		}
		a.visitBlock(c.Body)
	}
	if n.Default != nil {
		a.visitBlock(n.Default)
	}
}

func (a *analyzer) visitReturnStmt(n *ast.ReturnStmt) {
	if !a.tree.InFunction() {
		a.errorf(n, "'return' statement outside of function")
	}
	if n.Expr != nil {
		a.visitExpr(n.Expr)
	}
}

// visitAssignStmt implements spec §4.D: visit the expression, inferring
// its type; define id in the current scope if unresolved, else update
// the resolved symbol's type (last-write typing). Resolving through an
// enclosing function boundary here also records the capture, matching
// the Resolve algorithm's side effect for every other identifier use.
func (a *analyzer) visitAssignStmt(n *ast.AssignStmt) {
	t := a.visitExpr(n.Expr)
	if sym, _ := a.tree.Current().Resolve(n.Name); sym != nil {
		sym.Type = t
		return
	}
	a.tree.Current().Define(scope.NewSymbol(n.Name, t, n))
}

// visitCreateTableStmt implements spec §4.D: defines the binding name
// (if present) as TABLE, visits the name expression.
func (a *analyzer) visitCreateTableStmt(n *ast.CreateTableStmt) {
	if n.Name != "" {
		a.tree.Current().Define(scope.NewSymbol(n.Name, types.TABLE, n))
	}
	a.visitExpr(n.NameExpr)
}

func (a *analyzer) visitAddColumnStmt(n *ast.AddColumnStmt) {
	a.visitExpr(n.Table)
	a.visitExpr(n.Name)
}

func (a *analyzer) visitAddRowStmt(n *ast.AddRowStmt) {
	a.visitExpr(n.Table)
}

// visitExpr dispatches on concrete expression type, sets the node's
// inferred type via SetType, and returns that type for callers (e.g.
// assignment) that need it directly.
func (a *analyzer) visitExpr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Identifier:
		return a.visitIdentifier(n)
	case *ast.IntLit:
		n.SetType(types.INT)
		return types.INT
	case *ast.DecimalLit:
		n.SetType(types.DECIMAL)
		return types.DECIMAL
	case *ast.StringLit:
		n.SetType(types.STRING)
		return types.STRING
	case *ast.BoolLit:
		n.SetType(types.BOOL)
		return types.BOOL
	case *ast.Binary:
		return a.visitBinary(n)
	case *ast.Logical:
		a.visitExpr(n.Left)
		a.visitExpr(n.Right)
		n.SetType(types.BOOL)
		return types.BOOL
	case *ast.Unary:
		return a.visitUnary(n)
	case *ast.Call:
		a.visitExpr(n.Callee)
		for _, arg := range n.Args {
			a.visitExpr(arg)
		}
		n.SetType(types.ANY)
		return types.ANY
	case *ast.Member:
		a.visitExpr(n.Target)
		n.SetType(types.ANY)
		return types.ANY
	case *ast.Index:
		a.visitExpr(n.Target)
		a.visitExpr(n.Index)
		n.SetType(types.ANY)
		return types.ANY
	case *ast.Lambda:
		a.visitLambda(n)
		return types.FUNCTION
	case *ast.SelectExpr:
		return a.visitSelectExpr(n)
	default:
		panic(fmt.Sprintf("sema: unhandled expression type %T", e))
	}
}

// visitIdentifier implements spec §4.D: resolve; missing yields an
// "Undefined variable" diagnostic and types as ANY.
func (a *analyzer) visitIdentifier(n *ast.Identifier) types.Type {
	sym, _ := a.tree.Current().Resolve(n.Name)
	if sym == nil {
		a.errorf(n, "Undefined variable '%s'", n.Name)
		n.SetType(types.ANY)
		return types.ANY
	}
	n.SetType(sym.Type)
	return sym.Type
}

// visitBinary implements spec §4.D: "+" types STRING if either operand
// is STRING (concatenation), else INT; every comparison operator types
// BOOL.
func (a *analyzer) visitBinary(n *ast.Binary) types.Type {
	lt := a.visitExpr(n.Left)
	rt := a.visitExpr(n.Right)
	var t types.Type
	switch n.Op {
	case "+":
		if lt == types.STRING || rt == types.STRING {
			t = types.STRING
		} else {
			t = types.INT
		}
	case "==", "!=", "<", "<=", ">", ">=":
		t = types.BOOL
	default:
		t = types.INT
	}
	n.SetType(t)
	return t
}

// visitUnary types "not" as BOOL and numeric negation as its operand's
// type (INT or DECIMAL); neither case is explicit in spec §4.D, which
// only fixes binary operators, so this follows the same "typed by
// operator semantics" principle.
func (a *analyzer) visitUnary(n *ast.Unary) types.Type {
	ot := a.visitExpr(n.Expr)
	var t types.Type
	if n.Op == "not" {
		t = types.BOOL
	} else {
		t = ot
	}
	n.SetType(t)
	return t
}

// visitSelectExpr implements spec §4.D: the source must type TABLE or
// ANY, else error "Selection source must be a table"; result is TABLE;
// the optional where/order clauses are visited regardless (order is
// parsed and visited but never lowered by codegen, per SPEC_FULL.md's
// supplemented feature #3).
func (a *analyzer) visitSelectExpr(n *ast.SelectExpr) types.Type {
	st := a.visitExpr(n.Source)
	if st != types.TABLE && st != types.ANY {
		a.errorf(n, "Selection source must be a table")
	}
	if n.Where != nil {
		a.visitExpr(n.Where)
	}
	if n.Order != nil {
		a.visitExpr(n.Order)
	}
	n.SetType(types.TABLE)
	return types.TABLE
}
