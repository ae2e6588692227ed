/*
Package codegen lowers a semantically-analyzed RelTable parse tree to
SSA-form textual LL-IR (spec §4.E): a scope stack of stack-allocation
slots threaded alongside an IR builder positioned inside the current
function's current basic block.

The generator emits plain text rather than building an in-memory
instruction graph through a library, matching the hand-rolled
`g.emit(...)` style of other_examples' LLVM backend rather than binding
a cgo-based LLVM library: no pack example builds LL-IR text without
either cgo or a from-scratch emitter, and cgo would make this module
unbuildable on a plain `go build`.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package codegen

import (
	"fmt"
	"strings"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"

	"github.com/reltable-lang/reltablec/abi"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/types"
)

// T traces with key 'reltable.codegen'.
func T() tracing.Trace {
	return tracing.Select("reltable.codegen")
}

// Value is an operand: either an SSA register ("%t3"), a literal
// constant ("3", "true"), or a constant expression (an inline
// `getelementptr` into an interned string global), paired with its
// LL-IR type.
type Value struct {
	Name string
	Type types.IRType
}

// Operand renders v as it appears in an instruction's argument list,
// e.g. "i32 %t3".
func (v Value) Operand() string {
	return fmt.Sprintf("%s %s", v.Type, v.Name)
}

// slot is a named stack location: the pointer returned by `alloca` plus
// the type of the value it holds.
type slot struct {
	Ptr  Value
	Elem types.IRType
}

// frame is one level of the codegen scope stack (spec §4.E: "a scope
// stack of maps name -> (storage_pointer, ir_type)"). Frames chain to a
// parent within a single function body (If/For/Switch nest a frame the
// same way the semantic pass nests a scope.Scope); a freshly generated
// function/lambda body starts a root frame with no parent, since the
// semantic pass has already resolved every name it can see to either a
// parameter or a captured variable.
type frame struct {
	parent *frame
	vars   map[string]slot
}

func newFrame(parent *frame) *frame {
	return &frame{parent: parent, vars: make(map[string]slot)}
}

func (f *frame) define(name string, ptr Value, elem types.IRType) {
	f.vars[name] = slot{Ptr: ptr, Elem: elem}
}

func (f *frame) resolve(name string) (slot, bool) {
	if s, ok := f.vars[name]; ok {
		return s, true
	}
	if f.parent != nil {
		return f.parent.resolve(name)
	}
	return slot{}, false
}

// block is one basic block of the function currently being generated.
type block struct {
	label      string
	lines      []string
	terminated bool
}

// function accumulates the text of one LL-IR function definition while
// it is being built: its header, its entry-block-hoisted allocas, and
// its basic blocks in emission order.
type function struct {
	header  string
	allocas []string
	blocks  []*block
	cur     *block
}

// render assembles fn's full LL-IR text, inserting the hoisted allocas
// immediately after the entry label (spec §4.E: "all stack allocations
// for a function are emitted in its entry block").
func (fn *function) render() string {
	var b strings.Builder
	b.WriteString(fn.header)
	b.WriteString("\n")
	for i, blk := range fn.blocks {
		fmt.Fprintf(&b, "%s:\n", blk.label)
		if i == 0 {
			for _, a := range fn.allocas {
				b.WriteString(a)
				b.WriteString("\n")
			}
		}
		for _, l := range blk.lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// Generator holds all state for a single compilation: the string
// constant cache, the completed-function list, and the live
// function/frame/loop stacks for the function currently being lowered.
type Generator struct {
	globals   strings.Builder
	functions []string

	strings map[string]Value // literal value -> interned constant GEP expression

	tempCount  int
	labelCount int
	funcCount  int

	curFn     *function
	fnStack   []*function
	curFrame  *frame
	loopStack []string // active loop "end" labels, innermost last

	// AnnotateTypes, when set before Generate runs, appends a trailing
	// `; type: <Type>` comment to every assignment's store instruction
	// (driver flag `--emit-types`, SPEC_FULL.md's configuration section).
	AnnotateTypes bool
}

// NewGenerator returns a Generator ready to lower a single Program.
func NewGenerator() *Generator {
	return &Generator{strings: make(map[string]Value)}
}

// Generate lowers prog (already walked by sema.Analyze) to a complete
// LL-IR module: runtime declarations, interned string globals, every
// generated function, and a `main` wrapping prog's top-level statements
// (spec §4.E "Program").
func (g *Generator) Generate(prog *ast.Program) string {
	g.pushFunc("define i32 @main() {")
	g.curFrame = newFrame(nil)
	g.newBlock("entry")

	g.lowerStmts(prog.Stmts)

	if !g.curFn.cur.terminated {
		g.emitTerm("  ret i32 0")
	}
	g.popFunc()

	var out strings.Builder
	out.WriteString("; runtime ABI (spec 4.B)\n")
	for _, f := range abi.All() {
		out.WriteString(declareLine(f))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	if g.globals.Len() > 0 {
		out.WriteString("; interned string constants\n")
		out.WriteString(g.globals.String())
		out.WriteString("\n")
	}
	for _, fn := range g.functions {
		out.WriteString(fn)
		out.WriteString("\n")
	}
	return out.String()
}

func declareLine(f abi.Func) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("declare %s @%s(%s) ; %s", f.Result, f.Name, strings.Join(params, ", "), f.Comment)
}

// --- low-level emission helpers -----------------------------------------

func (g *Generator) pushFunc(header string) {
	if g.curFn != nil {
		g.fnStack = append(g.fnStack, g.curFn)
	}
	g.curFn = &function{header: header}
}

// popFunc finishes the current function, appends its rendered text to
// the completed-function list, and restores the enclosing function (if
// any) as current — mirroring spec §4.E closure step 10 ("restore the
// saved builder").
func (g *Generator) popFunc() {
	g.functions = append(g.functions, g.curFn.render())
	if n := len(g.fnStack); n > 0 {
		g.curFn = g.fnStack[n-1]
		g.fnStack = g.fnStack[:n-1]
	} else {
		g.curFn = nil
	}
}

func (g *Generator) pushFrame() { g.curFrame = newFrame(g.curFrame) }
func (g *Generator) popFrame()  { g.curFrame = g.curFrame.parent }

func (g *Generator) newBlock(label string) *block {
	b := &block{label: label}
	g.curFn.blocks = append(g.curFn.blocks, b)
	g.curFn.cur = b
	return b
}

// emit appends a non-terminating instruction line to the current block.
func (g *Generator) emit(format string, args ...interface{}) {
	g.curFn.cur.lines = append(g.curFn.cur.lines, "  "+fmt.Sprintf(format, args...))
}

// emitTerm appends a terminator and marks the current block closed;
// every basic block must end with exactly one terminator (spec §4.E).
func (g *Generator) emitTerm(format string, args ...interface{}) {
	if g.curFn.cur.terminated {
		return
	}
	g.emit(format, args...)
	g.curFn.cur.terminated = true
}

func (g *Generator) terminated() bool { return g.curFn.cur.terminated }

func (g *Generator) nextTemp() string {
	g.tempCount++
	return fmt.Sprintf("%%t%d", g.tempCount)
}

// label returns a block name unique across the whole module, built from
// a descriptive base (spec §4.E's "then.i"/"next.i"/"case.check" etc.)
// plus a monotonic suffix so nested constructs never collide.
func (g *Generator) label(base string) string {
	g.labelCount++
	return fmt.Sprintf("%s.%d", base, g.labelCount)
}

// funcName returns a unique LL-IR function name derived from a RelTable
// source name (FuncDecl), "lambda" (Lambda expression) or "select" (a
// table-select where-predicate).
func (g *Generator) funcName(base string) string {
	g.funcCount++
	return fmt.Sprintf("fn_%s_%d", sanitize(base), g.funcCount)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// alloca emits a stack-allocation into the current function's entry
// block (hoisted regardless of the live block when called) and returns
// the resulting pointer value.
func (g *Generator) alloca(name string, elem types.IRType) Value {
	ptr := Value{Name: "%" + name, Type: elem + "*"}
	g.curFn.allocas = append(g.curFn.allocas, fmt.Sprintf("  %s = alloca %s", ptr.Name, elem))
	return ptr
}

// internString caches s as a null-terminated UTF-8 global byte array,
// keyed by literal value so each distinct literal is emitted once, and
// returns a constant `getelementptr` expression referencing its first
// byte as an i8* (spec §4.E "Literal").
func (g *Generator) internString(s string) Value {
	if v, ok := g.strings[s]; ok {
		return v
	}
	enc := append([]byte(s), 0)
	n := len(enc)
	h, err := structhash.Hash(struct{ Lit string }{Lit: s}, 1)
	if err != nil {
		panic(err) // structhash.Hash never errors on a plain struct of strings
	}
	name := fmt.Sprintf("@.str.%s", h[:12])
	fmt.Fprintf(&g.globals, "%s = internal constant [%d x i8] c\"%s\"\n", name, n, escapeIR(enc))
	expr := fmt.Sprintf("getelementptr inbounds ([%d x i8], [%d x i8]* %s, i32 0, i32 0)", n, n, name)
	v := Value{Name: expr, Type: types.BytePtr}
	g.strings[s] = v
	return v
}

// escapeIR renders raw bytes in LLVM's `c"..."` string-constant escape
// convention: every byte as \xx hex, printable ASCII kept literal is not
// required by the format, so this always emits the two-hex-digit form
// for simplicity and to avoid quoting edge cases.
func escapeIR(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		fmt.Fprintf(&sb, "\\%02X", c)
	}
	return sb.String()
}
