package codegen

import (
	"fmt"
	"strings"

	"github.com/reltable-lang/reltablec/abi"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/scope"
	"github.com/reltable-lang/reltablec/types"
)

// buildClosure implements spec §4.E's closure-lowering algorithm
// (steps 1-11), shared by FuncDecl and Lambda: it builds a heap
// environment for the node's captured variables in the *enclosing*
// function, then generates an entirely separate LL-IR function for the
// body and returns the resulting `{ i8*, i8* }` closure value.
func (g *Generator) buildClosure(baseName string, params []ast.Param, body ast.Node, captured []scope.CapturedVar) Value {
	// Step 1: resolve each captured name to its current slot in the
	// *enclosing* (caller's) frame, before pushing anything new.
	capturedSlots := make([]slot, len(captured))
	for i, cv := range captured {
		s, ok := g.curFrame.resolve(cv.Name)
		if !ok {
			panic(fmt.Sprintf("codegen: captured variable '%s' has no slot in the enclosing scope (internal compiler error)", cv.Name))
		}
		capturedSlots[i] = s
	}

	// Step 2: the anonymous environment struct type, fields in the
	// capture list's fixed (insertion) order.
	envType := envStructType(capturedSlots)

	// Step 3: size the struct via the GEP-on-null-pointer idiom and
	// malloc that many bytes.
	sizeReg := g.nextTemp()
	g.emit("%s = getelementptr %s, %s* null, i32 1", sizeReg, envType, envType)
	sizeInt := g.nextTemp()
	g.emit("%s = ptrtoint %s* %s to i64", sizeInt, envType, sizeReg)
	envRaw := g.nextTemp()
	g.emit("%s = call %s @%s(i64 %s)", envRaw, abi.Malloc.Result, abi.Malloc.Name, sizeInt)
	envTyped := g.nextTemp()
	g.emit("%s = bitcast i8* %s to %s*", envTyped, envRaw, envType)

	// Step 4: store each captured value, freshly loaded from its
	// enclosing slot, into the corresponding environment field.
	for i, s := range capturedSlots {
		loaded := g.nextTemp()
		g.emit("%s = load %s, %s", loaded, s.Elem, s.Ptr.Operand())
		fieldPtr := g.nextTemp()
		g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 %d", fieldPtr, envType, envType, envTyped, i)
		g.emit("store %s %s, %s* %s", s.Elem, loaded, s.Elem, fieldPtr)
	}

	// Step 5: save the current builder/frame and declare the new
	// function. The first parameter is always the environment byte
	// pointer; every source parameter is i32 (spec §4.E "Parameter-type
	// convention"), except a select-predicate's single row parameter,
	// which carries a row handle (see paramIRTypes).
	paramTypes := paramIRTypes(baseName, params)
	name := g.funcName(baseName)
	header := fmt.Sprintf("define i32 @%s(i8* %%env%s) {", name, paramDecls(paramTypes))
	g.pushFunc(header)
	g.newBlock("entry")

	// Step 6: fresh code-generator scope, with no parent — by the time
	// codegen runs, sema has already resolved every identifier in the
	// body to either a parameter or a listed capture, so nothing
	// outside that set should ever resolve here.
	outerFrame := g.curFrame
	g.curFrame = newFrame(nil)

	// Step 7: if captures exist, cast env to the struct-pointer type and
	// copy each field into a fresh local slot so the body has ordinary
	// read/write access.
	if len(captured) > 0 {
		envArgTyped := g.nextTemp()
		g.emit("%s = bitcast i8* %%env to %s*", envArgTyped, envType)
		for i, cv := range captured {
			elem := capturedSlots[i].Elem
			fieldPtr := g.nextTemp()
			g.emit("%s = getelementptr %s, %s* %s, i32 0, i32 %d", fieldPtr, envType, envType, envArgTyped, i)
			val := g.nextTemp()
			g.emit("%s = load %s, %s* %s", val, elem, elem, fieldPtr)
			localPtr := g.alloca("captured_"+cv.Name, elem)
			g.emit("store %s %s, %s", elem, val, localPtr.Operand())
			g.curFrame.define(cv.Name, localPtr, elem)
		}
	}

	// Step 8: bind each parameter to a fresh local slot.
	for i, p := range params {
		argName := fmt.Sprintf("%%p%d", i)
		elem := paramTypes[i]
		ptr := g.alloca(p.Name, elem)
		g.emit("store %s %s, %s", elem, argName, ptr.Operand())
		g.curFrame.define(p.Name, ptr, elem)
	}

	// Step 9: lower the body.
	switch b := body.(type) {
	case *ast.Block:
		g.lowerStmts(b.Stmts)
		if !g.terminated() {
			g.emitTerm("ret i32 0")
		}
	case ast.Expr:
		v := g.lowerExpr(b)
		v = g.widenToI32(v)
		g.emitTerm("ret %s", v.Operand())
	default:
		panic(fmt.Sprintf("codegen: function/lambda body has unexpected type %T", body))
	}

	// Step 10: exit the scope, restore the saved builder/frame.
	g.curFrame = outerFrame
	g.popFunc()

	// Step 11: build the closure constant: function pointer (bitcast to
	// byte pointer) in field 0, raw environment pointer in field 1. The
	// bitcast source type is the function's types-only signature — a
	// types.IRType rendering, never paramDecls' "%pN"-named declarations,
	// which are only legal in a function *definition* header (step 5).
	fnType := types.ClosureFuncTypeFor(paramTypes)
	c0 := g.nextTemp()
	g.emit("%s = insertvalue %s undef, i8* bitcast (%s* @%s to i8*), 0", c0, types.Closure, fnType, name)
	c1 := g.nextTemp()
	g.emit("%s = insertvalue %s %s, i8* %s, 1", c1, types.Closure, c0, envRaw)
	return Value{Name: c1, Type: types.Closure}
}

// envStructType renders the anonymous LL-IR struct type for a closure's
// captured fields, in their fixed capture-list order (spec §4.E step 2).
func envStructType(captured []slot) string {
	if len(captured) == 0 {
		return "{}"
	}
	fields := make([]string, len(captured))
	for i, s := range captured {
		fields[i] = string(s.Elem)
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

// paramDecls renders ", i32 %p0, i8* %p1, ..." for a parameter-type
// list, the trailing part of a lowered function's LL-IR *definition*
// signature after the leading environment byte-pointer. Only valid in
// a function header, where named arguments are legal; a function
// *type* (e.g. a bitcast target) must use types.ClosureFuncTypeFor
// instead, since a type position cannot carry SSA names like "%p0".
func paramDecls(paramTypes []types.IRType) string {
	var b strings.Builder
	for i, t := range paramTypes {
		fmt.Fprintf(&b, ", %s %%p%d", t, i)
	}
	return b.String()
}

// paramIRTypes resolves each parameter's IR type for a generated
// function/lambda body. Every parameter is i32 (spec §4.E's "Parameter-
// type convention"), except a standalone single-parameter lambda built
// as a table-select predicate (baseName "select"): rt_table_select
// invokes it with a row handle, not an int, matching
// original_source/compiler/codegen.py's _generate_lambda special-casing
// `char_ptr` for a one-parameter lambda.
func paramIRTypes(baseName string, params []ast.Param) []types.IRType {
	pt := make([]types.IRType, len(params))
	for i := range pt {
		pt[i] = types.I32
	}
	if baseName == "select" && len(pt) == 1 {
		pt[0] = types.RowHandle
	}
	return pt
}
