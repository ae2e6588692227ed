package sema_test

import (
	"testing"

	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/parser"
	"github.com/reltable-lang/reltablec/sema"
	"github.com/reltable-lang/reltablec/types"
)

func analyze(t *testing.T, src string) (*ast.Program, []sema.Diagnostic) {
	t.Helper()
	prog, err := parser.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog, sema.Analyze(prog, []byte(src))
}

func TestUndefinedVariable(t *testing.T) {
	_, diags := analyze(t, `print(missing)`)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	want := "Undefined variable 'missing'"
	if diags[0].Message != want {
		t.Errorf("message = %q, want %q", diags[0].Message, want)
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	_, diags := analyze(t, `return 1`)
	if len(diags) != 1 || diags[0].Message != "'return' statement outside of function" {
		t.Fatalf("diags = %v, want a single outside-function error", diags)
	}
}

func TestReturnInsideFunctionIsFine(t *testing.T) {
	_, diags := analyze(t, `func f() { return 1 }`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
}

func TestSelectionSourceMustBeTable(t *testing.T) {
	_, diags := analyze(t, `x = 5; y = x select where (row) => row.age >= 18`)
	if len(diags) != 1 || diags[0].Message != "Selection source must be a table" {
		t.Fatalf("diags = %v, want a single selection-source error", diags)
	}
}

func TestSelectionSourceTableIsFine(t *testing.T) {
	_, diags := analyze(t, `create_table t, "people"
result = t select where (row) => row.age >= 18`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
}

// S3: x = 10; f = (y) => y + x — f's lambda must capture x.
func TestLambdaCapturesOuterVariable(t *testing.T) {
	prog, diags := analyze(t, `x = 10; f = (y) => y + x`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	assign := prog.Stmts[1].(*ast.AssignStmt)
	lam := assign.Expr.(*ast.Lambda)
	if len(lam.CapturedVars) != 1 || lam.CapturedVars[0].Name != "x" {
		t.Fatalf("lam.CapturedVars = %#v, want [x]", lam.CapturedVars)
	}
}

// S2: func inc(n) { return n + 1 } — no captures, n resolves locally.
func TestFuncDeclNoCaptureForOwnParam(t *testing.T) {
	prog, diags := analyze(t, `func inc(n) { return n + 1 }`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	fn := prog.Stmts[0].(*ast.FuncDecl)
	if len(fn.CapturedVars) != 0 {
		t.Errorf("fn.CapturedVars = %#v, want none", fn.CapturedVars)
	}
}

// Nested function boundaries must each record the capture on the path
// from use-site up to (not including) the defining scope (spec §4.C).
func TestNestedFunctionBoundariesEachCapture(t *testing.T) {
	prog, diags := analyze(t, `
x = 1
func outer() {
	func inner() {
		return x
	}
}
`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	outer := prog.Stmts[1].(*ast.FuncDecl)
	if len(outer.CapturedVars) != 1 || outer.CapturedVars[0].Name != "x" {
		t.Fatalf("outer.CapturedVars = %#v, want [x]", outer.CapturedVars)
	}
	inner := outer.Body.Stmts[0].(*ast.FuncDecl)
	if len(inner.CapturedVars) != 1 || inner.CapturedVars[0].Name != "x" {
		t.Fatalf("inner.CapturedVars = %#v, want [x]", inner.CapturedVars)
	}
}

func TestArithmeticPlusTypesStringOnConcat(t *testing.T) {
	prog, diags := analyze(t, `x = "a" + "b"`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	assign := prog.Stmts[0].(*ast.AssignStmt)
	bin := assign.Expr.(*ast.Binary)
	if bin.Type() != types.STRING {
		t.Errorf("bin.Type() = %v, want STRING", bin.Type())
	}
}

func TestArithmeticPlusTypesIntOtherwise(t *testing.T) {
	prog, diags := analyze(t, `x = 1 + 2`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	assign := prog.Stmts[0].(*ast.AssignStmt)
	bin := assign.Expr.(*ast.Binary)
	if bin.Type() != types.INT {
		t.Errorf("bin.Type() = %v, want INT", bin.Type())
	}
}

func TestComparisonTypesBool(t *testing.T) {
	prog, diags := analyze(t, `x = 1 < 2`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	assign := prog.Stmts[0].(*ast.AssignStmt)
	bin := assign.Expr.(*ast.Binary)
	if bin.Type() != types.BOOL {
		t.Errorf("bin.Type() = %v, want BOOL", bin.Type())
	}
}

func TestForLoopIteratorIsTypedIntWithinBody(t *testing.T) {
	_, diags := analyze(t, `for i in 1..3 { print(i) }`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
}

func TestAssignmentRetypesOnLastWrite(t *testing.T) {
	prog, diags := analyze(t, `x = 1
x = "now a string"
print(x)`)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	printCall := prog.Stmts[2].(*ast.ExprStmt).Expr.(*ast.Call)
	arg := printCall.Args[0].(*ast.Identifier)
	if arg.Type() != types.STRING {
		t.Errorf("arg.Type() = %v, want STRING (last-write typing)", arg.Type())
	}
}
