package codegen

import (
	"fmt"

	"github.com/reltable-lang/reltablec/abi"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/types"
)

func (g *Generator) lowerExpr(e ast.Expr) Value {
	switch n := e.(type) {
	case *ast.Identifier:
		return g.lowerIdentifier(n)
	case *ast.IntLit:
		return Value{Name: fmt.Sprintf("%d", n.Value), Type: types.I32}
	case *ast.DecimalLit:
		return Value{Name: fmt.Sprintf("%g", n.Value), Type: types.Double}
	case *ast.StringLit:
		return g.internString(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return Value{Name: "true", Type: types.I1}
		}
		return Value{Name: "false", Type: types.I1}
	case *ast.Binary:
		return g.lowerBinary(n)
	case *ast.Logical:
		return g.lowerLogical(n)
	case *ast.Unary:
		return g.lowerUnary(n)
	case *ast.Call:
		return g.lowerCall(n)
	case *ast.Member:
		return g.lowerMember(n)
	case *ast.Index:
		// spec §9 / original's visitPrimaryIndex yields no value; never
		// reachable from a well-typed program (sema types it ANY but
		// nothing actually indexes into a RelTable value yet).
		panic("codegen: index expressions are parsed but not lowered (spec §9)")
	case *ast.Lambda:
		return g.buildClosure("lambda", n.Params, n.Body, n.CapturedVars)
	case *ast.SelectExpr:
		return g.lowerSelectExpr(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled expression type %T", e))
	}
}

// lowerIdentifier implements spec §4.E's "Identifier read": load from
// the slot found by walking the frame chain; a miss is an internal
// compiler error since sema has already guaranteed every identifier
// resolves.
func (g *Generator) lowerIdentifier(n *ast.Identifier) Value {
	s, ok := g.curFrame.resolve(n.Name)
	if !ok {
		panic(fmt.Sprintf("codegen: identifier '%s' has no slot (internal compiler error)", n.Name))
	}
	reg := g.nextTemp()
	g.emit("%s = load %s, %s", reg, s.Elem, s.Ptr.Operand())
	return Value{Name: reg, Type: s.Elem}
}

// lowerBinary implements spec §4.E's binary-operator lowering.
//
// Arithmetic "+" always lowers as an integer add, even when the
// semantic pass typed the expression STRING (SPEC_FULL.md supplemented
// feature #1: the original codegen never special-cased string
// concatenation despite semantic.py typing it STRING — this keeps that
// behavior for parity rather than silently fixing it).
func (g *Generator) lowerBinary(n *ast.Binary) Value {
	l := g.lowerExpr(n.Left)
	r := g.lowerExpr(n.Right)
	switch n.Op {
	case "+":
		reg := g.nextTemp()
		g.emit("%s = add i32 %s, %s", reg, l.Name, r.Name)
		return Value{Name: reg, Type: types.I32}
	case "-":
		reg := g.nextTemp()
		g.emit("%s = sub i32 %s, %s", reg, l.Name, r.Name)
		return Value{Name: reg, Type: types.I32}
	case "*":
		reg := g.nextTemp()
		g.emit("%s = mul i32 %s, %s", reg, l.Name, r.Name)
		return Value{Name: reg, Type: types.I32}
	case "/":
		reg := g.nextTemp()
		g.emit("%s = sdiv i32 %s, %s", reg, l.Name, r.Name)
		return Value{Name: reg, Type: types.I32}
	case "==", "!=", "<", "<=", ">", ">=":
		reg := g.nextTemp()
		g.emit("%s = icmp %s i32 %s, %s", reg, icmpPred(n.Op), l.Name, r.Name)
		return Value{Name: reg, Type: types.I1}
	default:
		panic(fmt.Sprintf("codegen: unhandled binary operator %q", n.Op))
	}
}

func icmpPred(op string) string {
	switch op {
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		return "slt"
	case "<=":
		return "sle"
	case ">":
		return "sgt"
	case ">=":
		return "sge"
	default:
		panic(fmt.Sprintf("codegen: unhandled comparison operator %q", op))
	}
}

// lowerLogical implements spec §4.E's "Logical and/or": bitwise on i1
// operands (short-circuit is permitted but not required, and is not
// implemented here, matching the original's unconditional eager
// evaluation of both sides).
func (g *Generator) lowerLogical(n *ast.Logical) Value {
	l := g.lowerExpr(n.Left)
	r := g.lowerExpr(n.Right)
	reg := g.nextTemp()
	switch n.Op {
	case "and":
		g.emit("%s = and i1 %s, %s", reg, l.Name, r.Name)
	case "or":
		g.emit("%s = or i1 %s, %s", reg, l.Name, r.Name)
	default:
		panic(fmt.Sprintf("codegen: unhandled logical operator %q", n.Op))
	}
	return Value{Name: reg, Type: types.I1}
}

// lowerUnary lowers `not` as a bitwise-not on i1, and numeric negation
// per the operand's own IR type (neither is pinned down by spec §4.E,
// which only fixes binary operators; this follows the same
// typed-by-operator-semantics principle sema.visitUnary uses).
func (g *Generator) lowerUnary(n *ast.Unary) Value {
	v := g.lowerExpr(n.Expr)
	reg := g.nextTemp()
	switch n.Op {
	case "not":
		g.emit("%s = xor i1 %s, true", reg, v.Name)
		return Value{Name: reg, Type: types.I1}
	case "-":
		if v.Type == types.Double {
			g.emit("%s = fsub double 0.0, %s", reg, v.Name)
		} else {
			g.emit("%s = sub i32 0, %s", reg, v.Name)
		}
		return Value{Name: reg, Type: v.Type}
	default:
		panic(fmt.Sprintf("codegen: unhandled unary operator %q", n.Op))
	}
}

// lowerCall implements spec §4.E's call-expression lowering: extract
// the closure's function/environment pointers, bitcast the function
// pointer to a signature built from the lowered arguments' own IR types,
// and invoke it with the environment prepended to the lowered arguments.
// The signature is `i32 (i8*, i32, ..., i32)` when every argument is an
// i32; a non-i32 argument (an i1, i8* or double) is passed with its own
// type and is not widened to i32.
//
// `print`/`write` are pre-populated as FUNCTION symbols in the global
// scope (spec §4.C) but, like the original compiler.py, are never
// actually given a closure value anywhere in codegen — calling either
// by name dispatches straight to the matching rt_write_* primitive by
// the argument's own IR type, rather than through a closure the
// identifier never resolves to.
func (g *Generator) lowerCall(n *ast.Call) Value {
	if id, ok := n.Callee.(*ast.Identifier); ok && (id.Name == "print" || id.Name == "write") {
		if _, shadowed := g.curFrame.resolve(id.Name); !shadowed {
			return g.lowerBuiltinWrite(n)
		}
	}

	closure := g.lowerExpr(n.Callee)
	fptr := g.nextTemp()
	g.emit("%s = extractvalue %s %s, 0", fptr, types.Closure, closure.Name)
	envptr := g.nextTemp()
	g.emit("%s = extractvalue %s %s, 1", envptr, types.Closure, closure.Name)

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.lowerExpr(a)
	}

	argTypes := make([]types.IRType, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	fnType := types.ClosureFuncTypeFor(argTypes)
	casted := g.nextTemp()
	g.emit("%s = bitcast i8* %s to %s*", casted, fptr, fnType)

	operands := make([]string, 0, len(args)+1)
	operands = append(operands, Value{Name: envptr, Type: types.BytePtr}.Operand())
	for _, a := range args {
		operands = append(operands, a.Operand())
	}
	result := g.nextTemp()
	g.emit("%s = call i32 %s(%s)", result, casted, joinOperands(operands))
	return Value{Name: result, Type: types.I32}
}

// lowerBuiltinWrite dispatches a `print`/`write` call to the runtime
// write primitive matching its single argument's IR type.
func (g *Generator) lowerBuiltinWrite(n *ast.Call) Value {
	if len(n.Args) != 1 {
		panic(fmt.Sprintf("codegen: print/write takes exactly one argument, got %d", len(n.Args)))
	}
	arg := g.lowerExpr(n.Args[0])
	var fn abi.Func
	switch arg.Type {
	case types.BytePtr:
		fn = abi.WriteString
	case types.I1:
		fn = abi.WriteBool
	default:
		fn = abi.WriteInt
	}
	g.emit("call %s @%s(%s)", fn.Result, fn.Name, arg.Operand())
	return Value{Name: "undef", Type: types.VoidType}
}

func joinOperands(operands []string) string {
	out := ""
	for i, o := range operands {
		if i > 0 {
			out += ", "
		}
		out += o
	}
	return out
}

// lowerMember implements spec §4.E's "Member access `row.field`": the
// field name is interned as a constant string. Hard-wired to
// rt_get_int — rt_get_string exists in the runtime ABI but is never
// called from any lowering rule, exactly mirroring the original's
// runtime_link.py declaring both while codegen.py only ever emits the
// integer accessor (SPEC_FULL.md supplemented feature #2).
func (g *Generator) lowerMember(n *ast.Member) Value {
	row := g.lowerExpr(n.Target)
	field := g.internString(n.Field)
	reg := g.nextTemp()
	g.emit("%s = call %s @%s(%s, %s)", reg, abi.GetInt.Result, abi.GetInt.Name, row.Operand(), field.Operand())
	return Value{Name: reg, Type: types.I32}
}

// lowerSelectExpr implements spec §4.E's table-select lowering. The
// `order` clause is parsed and semantically visited (SPEC_FULL.md
// supplemented feature #3) but never lowered here, matching spec.md's
// explicit statement that it is "parsed but not lowered".
//
// The where-predicate is built directly via buildClosure with baseName
// "select" rather than through the generic Lambda case in lowerExpr,
// so its single parameter is typed as a row handle instead of i32 (see
// paramIRTypes): rt_table_select invokes the predicate itself, passing
// it a row value, never through lowerCall's uniform int-parameter
// closure-call convention.
func (g *Generator) lowerSelectExpr(n *ast.SelectExpr) Value {
	tbl := g.lowerExpr(n.Source)
	var closure Value
	if n.Where != nil {
		lam := n.Where.(*ast.Lambda)
		closure = g.buildClosure("select", lam.Params, lam.Body, lam.CapturedVars)
	} else {
		closure = Value{Name: "undef", Type: types.Closure}
	}
	reg := g.nextTemp()
	g.emit("%s = call %s @%s(%s, %s)", reg, abi.TableSelect.Result, abi.TableSelect.Name, tbl.Operand(), closure.Operand())
	return Value{Name: reg, Type: types.TableHandle}
}
