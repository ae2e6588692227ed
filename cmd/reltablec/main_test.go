package main

import (
	"strings"
	"testing"

	"github.com/reltable-lang/reltablec/parser"
	"github.com/reltable-lang/reltablec/sema"
)

// compile runs the full driver pipeline (parse -> analyze -> generate)
// without touching the filesystem or cobra, mirroring runCompile's body.
func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diags := sema.Analyze(prog, []byte(src)); len(diags) != 0 {
		t.Fatalf("Analyze diags = %v, want none", diags)
	}
	ir, err := generate(prog)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	return ir
}

func requireContains(t *testing.T, ir, substr string) {
	t.Helper()
	if !strings.Contains(ir, substr) {
		t.Errorf("IR missing %q\n--- full IR ---\n%s", substr, ir)
	}
}

// S1: x = 5; print(x)
func TestCompileS1Assignment(t *testing.T) {
	ir := compile(t, `x = 5; print(x)`)
	requireContains(t, ir, "alloca i32")
	requireContains(t, ir, "store i32 5,")
	requireContains(t, ir, "call void @rt_write_int(i32")
	requireContains(t, ir, "ret i32 0")
}

// S2: func inc(n) { return n + 1 } print(inc(41))
func TestCompileS2FuncDecl(t *testing.T) {
	ir := compile(t, `func inc(n) { return n + 1 } print(inc(41))`)
	requireContains(t, ir, "define i32 @fn_inc_")
	requireContains(t, ir, "add i32")
	requireContains(t, ir, "call void @rt_write_int(i32")
}

// S3: a lambda capturing an outer variable, called both before and after
// the outer variable is reassigned — the closure snapshots x at
// construction time (spec §4.E step 4), so both calls lower identically.
func TestCompileS3LambdaCapture(t *testing.T) {
	ir := compile(t, `x = 10
f = (y) => y + x
print(f(5))
x = 100
print(f(5))`)
	requireContains(t, ir, "define i32 @fn_lambda_")
	requireContains(t, ir, "call void @rt_write_int(i32")
}

// S4: for i in 1..3 { print(i) }
func TestCompileS4ForLoop(t *testing.T) {
	ir := compile(t, `for i in 1..3 { print(i) }`)
	requireContains(t, ir, "for.cond")
	requireContains(t, ir, "for.body")
	requireContains(t, ir, "for.end")
	requireContains(t, ir, "icmp sle i32")
}

// S5: switch v { case 1 to 3: print("small") case 5: print("five") default: print("other") }
func TestCompileS5SwitchStmt(t *testing.T) {
	for _, v := range []string{"2", "5", "4"} {
		ir := compile(t, `v = `+v+`
switch v { case 1 to 3: print("small") case 5: print("five") default: print("other") }`)
		requireContains(t, ir, "case.check")
		requireContains(t, ir, "icmp sge i32")
		requireContains(t, ir, "icmp eq i32")
		requireContains(t, ir, "call void @rt_write_string(i8*")
	}
}

// S6: create_table/add_column/add_row/select where.
func TestCompileS6TableScenario(t *testing.T) {
	ir := compile(t, `create_table t, "people"
add_column t, "age", int
add_row t
result = t select where (row) => row.age >= 18`)
	requireContains(t, ir, "call i8* @rt_create_table(i8*")
	requireContains(t, ir, "call void @rt_add_column(")
	requireContains(t, ir, "call void @rt_add_row(")
	requireContains(t, ir, "call i8* @rt_table_select(")
}

func TestCompileEmitTypesAnnotatesStore(t *testing.T) {
	old := flagEmitTypes
	flagEmitTypes = true
	defer func() { flagEmitTypes = old }()
	ir := compile(t, `x = 5`)
	requireContains(t, ir, "; type: int")
}

// A top-level break passes sema (it does no loop-nesting check, per its
// own comment: "codegen's loop stack catches a break outside a loop as
// an internal-compiler-error") but panics in codegen. generate must
// recover that panic and return it as a plain error, not crash the
// driver.
func TestGenerateRecoversInternalCompilerError(t *testing.T) {
	prog, err := parser.Parse("test", []byte(`break`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diags := sema.Analyze(prog, []byte(`break`)); len(diags) != 0 {
		t.Fatalf("Analyze diags = %v, want none (break-outside-loop is a codegen-level ICE)", diags)
	}
	if _, err := generate(prog); err == nil {
		t.Error("generate() err = nil, want an internal-compiler-error for a top-level break")
	}
}
