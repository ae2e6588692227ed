package codegen_test

import (
	"strings"
	"testing"

	"github.com/reltable-lang/reltablec/codegen"
	"github.com/reltable-lang/reltablec/parser"
	"github.com/reltable-lang/reltablec/sema"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse("test", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diags := sema.Analyze(prog, []byte(src)); len(diags) != 0 {
		t.Fatalf("Analyze produced diagnostics: %v", diags)
	}
	return codegen.NewGenerator().Generate(prog)
}

func requireContains(t *testing.T, ir, substr string) {
	t.Helper()
	if !strings.Contains(ir, substr) {
		t.Errorf("IR missing %q\n--- full IR ---\n%s", substr, ir)
	}
}

// S1: x = 5; print(x) — every declared runtime symbol, main's entry
// block, a terminator, and print dispatching straight to rt_write_int
// rather than through a (nonexistent) closure value for "print".
func TestGenerateS1Assignment(t *testing.T) {
	ir := generate(t, `x = 5; print(x)`)
	requireContains(t, ir, "declare i8* @rt_create_table(i8*)")
	requireContains(t, ir, "declare i8* @malloc(i64)")
	requireContains(t, ir, "define i32 @main() {")
	requireContains(t, ir, "entry:")
	requireContains(t, ir, "alloca i32")
	requireContains(t, ir, "store i32 5,")
	requireContains(t, ir, "call void @rt_write_int(i32")
	requireContains(t, ir, "ret i32 0")
}

// print dispatches by argument type: a string literal goes to
// rt_write_string, a bool expression to rt_write_bool.
func TestGeneratePrintDispatchesByArgType(t *testing.T) {
	ir := generate(t, `print("hi")
print(1 < 2)`)
	requireContains(t, ir, "call void @rt_write_string(i8*")
	requireContains(t, ir, "call void @rt_write_bool(i1")
}

// S2: a function declaration produces its own closure-building function
// plus a closure value stored under the declared name.
func TestGenerateS2FuncDecl(t *testing.T) {
	ir := generate(t, `func inc(n) { return n + 1 } print(inc(41))`)
	requireContains(t, ir, "define i32 @fn_inc_")
	requireContains(t, ir, "insertvalue")
	requireContains(t, ir, "extractvalue")
	requireContains(t, ir, "= add i32")
}

// S3: a lambda capturing an outer variable mallocs an environment,
// stores the captured value into it, and the generated function takes
// the environment pointer as its first parameter.
func TestGenerateS3LambdaCapture(t *testing.T) {
	ir := generate(t, `x = 10
f = (y) => y + x
print(f(5))`)
	requireContains(t, ir, "call i8* @malloc(")
	requireContains(t, ir, "define i32 @fn_lambda_")
	requireContains(t, ir, "(i8* %env, i32 %p0)")
	requireContains(t, ir, "getelementptr")
}

// S4: a table with columns and rows exercises create_table/add_column/
// add_row and member-access through rt_get_int.
func TestGenerateS4TableOps(t *testing.T) {
	ir := generate(t, `create_table t, "people"
add_column t, "age", int
add_row t
result = t select where (row) => row.age >= 18`)
	requireContains(t, ir, "call i8* @rt_create_table(")
	requireContains(t, ir, "call void @rt_add_column(")
	requireContains(t, ir, "call void @rt_add_row(")
	requireContains(t, ir, "call i32 @rt_get_int(i8*")
	requireContains(t, ir, "call i8* @rt_table_select(")
}

// A select-where predicate's single parameter is a row handle, not an
// i32: rt_table_select invokes it with a row value, and row.age's
// member access calls rt_get_int with that same value, so the
// predicate's declaration, its function-pointer bitcast type, and the
// rt_get_int call must all agree on i8*.
func TestGenerateSelectPredicateParamIsRowHandle(t *testing.T) {
	ir := generate(t, `create_table t, "people"
add_column t, "age", int
add_row t
result = t select where (row) => row.age >= 18`)
	requireContains(t, ir, "(i8* %env, i8* %p0)")
	requireContains(t, ir, "bitcast (i32 (i8*, i8*)* @fn_select_")
	requireContains(t, ir, "call i32 @rt_get_int(i8*")
}

// An if/elif/else chain shares one `if.end` and emits a then/next pair
// per condition. Each label is "<base>.<counter>" with one module-wide
// counter: if.end takes 1, then the then/next pairs take 2-3 and 4-5.
func TestGenerateIfChain(t *testing.T) {
	ir := generate(t, `x = 1
if x == 1 {
	print(1)
} else if x == 2 {
	print(2)
} else {
	print(3)
}`)
	requireContains(t, ir, "if.then.0.2:")
	requireContains(t, ir, "if.next.0.3:")
	requireContains(t, ir, "if.then.1.4:")
	requireContains(t, ir, "if.end")
}

// A for loop hoists its iterator alloca to the entry block and wires a
// cond/body/end triple with a signed <= compare.
func TestGenerateForLoop(t *testing.T) {
	ir := generate(t, `for i in 1..3 { print(i) }`)
	requireContains(t, ir, "for.cond")
	requireContains(t, ir, "for.body")
	requireContains(t, ir, "for.end")
	requireContains(t, ir, "icmp sle i32")
}

// A switch with a ranged case and a default produces an OR-folded
// range compare and falls through to the default when nothing matches.
func TestGenerateSwitchRangeCase(t *testing.T) {
	ir := generate(t, `x = 5
switch x {
case 1 to 3:
	print(1)
default:
	print(0)
}`)
	requireContains(t, ir, "case.check")
	requireContains(t, ir, "icmp sge i32")
	requireContains(t, ir, "icmp sle i32")
	requireContains(t, ir, "case.body")
	requireContains(t, ir, "switch.end")
}

// A condition-only switch (nil scrutinee) never emits a case compare
// and runs straight to its default, matching ast.SwitchStmt's doc
// comment that a nil scrutinee always produces a false compare.
func TestGenerateSwitchNilScrutineeSkipsCases(t *testing.T) {
	ir := generate(t, `switch {
default:
	print(1)
}`)
	requireContains(t, ir, "switch.end")
	if strings.Contains(ir, "case.check") {
		t.Errorf("nil-scrutinee switch should never emit a case.check block\n%s", ir)
	}
}

// break inside a for loop branches to the loop's end label rather than
// falling through to the increment/condition re-check.
func TestGenerateBreakTargetsLoopEnd(t *testing.T) {
	ir := generate(t, `for i in 1..10 {
if i == 5 {
	break
}
}`)
	requireContains(t, ir, "br label %for.end")
}

// String literals are interned once per distinct value and referenced
// by a constant getelementptr expression.
func TestGenerateInternedStringDeduplicated(t *testing.T) {
	ir := generate(t, `print("hello")
print("hello")`)
	if n := strings.Count(ir, "internal constant"); n != 1 {
		t.Errorf("got %d interned string globals, want 1 (dedup by literal value)\n%s", n, ir)
	}
}

// Arithmetic "+" always lowers as an integer add, even when both
// operands are STRING-typed by the semantic pass — no string
// concatenation is ever actually emitted.
func TestGenerateArithmeticPlusNeverConcatenates(t *testing.T) {
	ir := generate(t, `x = "a" + "b"`)
	requireContains(t, ir, "= add i32")
	if strings.Contains(ir, "concat") {
		t.Errorf("plus on strings must never lower as concatenation\n%s", ir)
	}
}
