package codegen

import (
	"fmt"

	"github.com/reltable-lang/reltablec/abi"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/types"
)

func (g *Generator) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if g.terminated() {
			// A terminator (return/break) already closed this block;
			// the remaining statements in the same source block are
			// unreachable, matching the original's block.is_terminated
			// guards at every lowering site instead of checking here.
			return
		}
		g.lowerStmt(s)
	}
}

func (g *Generator) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.FuncDecl:
		g.lowerFuncDecl(n)
	case *ast.Block:
		g.pushFrame()
		g.lowerStmts(n.Stmts)
		g.popFrame()
	case *ast.IfStmt:
		g.lowerIfStmt(n)
	case *ast.ForStmt:
		g.lowerForStmt(n)
	case *ast.SwitchStmt:
		g.lowerSwitchStmt(n)
	case *ast.ReturnStmt:
		g.lowerReturnStmt(n)
	case *ast.BreakStmt:
		g.lowerBreakStmt(n)
	case *ast.AssignStmt:
		g.lowerAssignStmt(n)
	case *ast.ExprStmt:
		g.lowerExpr(n.Expr)
	case *ast.CreateTableStmt:
		g.lowerCreateTableStmt(n)
	case *ast.AddColumnStmt:
		g.lowerAddColumnStmt(n)
	case *ast.AddRowStmt:
		g.lowerAddRowStmt(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled statement type %T", s))
	}
}

// lowerAssignStmt implements spec §4.E's assignment rule: if the name
// has no slot visible in the current frame chain, allocate one (hoisted
// to the entry block) sized to the expression's IR type and bind it in
// the *current* frame — so a name first assigned inside an if/for/
// switch body is itself scoped there, exactly as the semantic pass
// scopes it (spec §4.D), even though its backing alloca always lives in
// the entry block.
func (g *Generator) lowerAssignStmt(n *ast.AssignStmt) {
	val := g.lowerExpr(n.Expr)
	comment := ""
	if g.AnnotateTypes {
		comment = fmt.Sprintf(" ; type: %s", n.Expr.Type())
	}
	if s, ok := g.curFrame.resolve(n.Name); ok {
		g.emit("store %s, %s%s", val.Operand(), s.Ptr.Operand(), comment)
		return
	}
	ptr := g.alloca(n.Name, val.Type)
	g.curFrame.define(n.Name, ptr, val.Type)
	g.emit("store %s, %s%s", val.Operand(), ptr.Operand(), comment)
}

// lowerIfStmt implements spec §4.E's if-chain lowering verbatim: one
// shared `if.end`, and for each condition a `then.i`/`next.i` pair. The
// conditional branch for condition i is emitted into whatever block is
// current when that condition is lowered — the block in which the if
// statement begins for i==0, else the previous iteration's `next.i-1`
// block.
func (g *Generator) lowerIfStmt(n *ast.IfStmt) {
	end := g.label("if.end")
	for i, cond := range n.Conds {
		cv := g.lowerExpr(cond)
		then := g.label(fmt.Sprintf("if.then.%d", i))
		next := g.label(fmt.Sprintf("if.next.%d", i))
		g.emitTerm("br i1 %s, label %%%s, label %%%s", cv.Name, then, next)

		g.newBlock(then)
		g.pushFrame()
		g.lowerStmts(n.Bodies[i].Stmts)
		g.popFrame()
		if !g.terminated() {
			g.emitTerm("br label %%%s", end)
		}
		g.newBlock(next)
	}
	if n.Else != nil {
		g.pushFrame()
		g.lowerStmts(n.Else.Stmts)
		g.popFrame()
	}
	if !g.terminated() {
		g.emitTerm("br label %%%s", end)
	}
	g.newBlock(end)
}

// lowerForStmt implements spec §4.E's counted-loop lowering: an
// entry-hoisted iterator slot, `for.cond`/`for.body`/`for.end` blocks,
// and a loop-stack entry for `break` to target.
func (g *Generator) lowerForStmt(n *ast.ForStmt) {
	low := g.lowerExpr(n.Low)
	high := g.lowerExpr(n.High)
	iterPtr := g.alloca(n.Iter, types.I32)
	g.emit("store %s, %s", low.Operand(), iterPtr.Operand())

	cond := g.label("for.cond")
	body := g.label("for.body")
	end := g.label("for.end")

	g.emitTerm("br label %%%s", cond)
	g.newBlock(cond)
	cur := g.nextTemp()
	g.emit("%s = load %s, %s", cur, types.I32, iterPtr.Operand())
	cmp := g.nextTemp()
	g.emit("%s = icmp sle %s %s, %s", cmp, types.I32, cur, high.Name)
	g.emitTerm("br i1 %s, label %%%s, label %%%s", cmp, body, end)

	g.newBlock(body)
	g.loopStack = append(g.loopStack, end)
	g.pushFrame()
	g.curFrame.define(n.Iter, iterPtr, types.I32)
	g.lowerStmts(n.Body.Stmts)
	g.popFrame()
	g.loopStack = g.loopStack[:len(g.loopStack)-1]

	if !g.terminated() {
		loaded := g.nextTemp()
		g.emit("%s = load %s, %s", loaded, types.I32, iterPtr.Operand())
		incr := g.nextTemp()
		g.emit("%s = add %s %s, 1", incr, types.I32, loaded)
		g.emit("store i32 %s, %s", incr, iterPtr.Operand())
		g.emitTerm("br label %%%s", cond)
	}
	g.newBlock(end)
}

// lowerSwitchStmt implements spec §4.E's switch lowering: per-case
// `case.check`/`case.body`/`case.next`, OR-folding each case's
// comma-separated expression list (a single value becomes an equality
// compare, `lo to hi` becomes a signed range compare), no fallthrough.
func (g *Generator) lowerSwitchStmt(n *ast.SwitchStmt) {
	// A nil scrutinee (a condition-only switch) always produces a false
	// compare (ast.SwitchStmt's own doc comment): every case is
	// unreachable and only the default, if any, ever runs.
	if n.Scrutinee == nil {
		end := g.label("switch.end")
		if n.Default != nil {
			g.pushFrame()
			g.lowerStmts(n.Default.Stmts)
			g.popFrame()
		}
		if !g.terminated() {
			g.emitTerm("br label %%%s", end)
		}
		g.newBlock(end)
		return
	}

	scrutinee := g.lowerExpr(n.Scrutinee)
	end := g.label("switch.end")

	for _, c := range n.Cases {
		check := g.label("case.check")
		body := g.label("case.body")
		g.emitTerm("br label %%%s", check)
		g.newBlock(check)

		matchAcc := "false"
		for _, ce := range c.Exprs {
			lo := g.lowerExpr(ce.Low)
			var m string
			if ce.High != nil {
				hi := g.lowerExpr(ce.High)
				geReg := g.nextTemp()
				g.emit("%s = icmp sge %s %s, %s", geReg, types.I32, scrutinee.Name, lo.Name)
				leReg := g.nextTemp()
				g.emit("%s = icmp sle %s %s, %s", leReg, types.I32, scrutinee.Name, hi.Name)
				andReg := g.nextTemp()
				g.emit("%s = and i1 %s, %s", andReg, geReg, leReg)
				m = andReg
			} else {
				eqReg := g.nextTemp()
				g.emit("%s = icmp eq %s %s, %s", eqReg, types.I32, scrutinee.Name, lo.Name)
				m = eqReg
			}
			orReg := g.nextTemp()
			g.emit("%s = or i1 %s, %s", orReg, matchAcc, m)
			matchAcc = orReg
		}
		caseNext := g.label("case.next")
		g.emitTerm("br i1 %s, label %%%s, label %%%s", matchAcc, body, caseNext)

		g.newBlock(body)
		g.pushFrame()
		g.lowerStmts(c.Body.Stmts)
		g.popFrame()
		if !g.terminated() {
			g.emitTerm("br label %%%s", end)
		}
		g.newBlock(caseNext)
	}

	if n.Default != nil {
		g.pushFrame()
		g.lowerStmts(n.Default.Stmts)
		g.popFrame()
	}
	if !g.terminated() {
		g.emitTerm("br label %%%s", end)
	}
	g.newBlock(end)
}

// lowerReturnStmt widens a bool result to i32 (spec §4.E "Return").
func (g *Generator) lowerReturnStmt(n *ast.ReturnStmt) {
	if n.Expr == nil {
		g.emitTerm("ret i32 0")
		return
	}
	v := g.lowerExpr(n.Expr)
	v = g.widenToI32(v)
	g.emitTerm("ret %s", v.Operand())
}

func (g *Generator) lowerBreakStmt(_ *ast.BreakStmt) {
	if len(g.loopStack) == 0 {
		panic("codegen: break outside of loop (internal compiler error — sema should have caught this)")
	}
	g.emitTerm("br label %%%s", g.loopStack[len(g.loopStack)-1])
}

// lowerFuncDecl builds the closure (spec §4.E's closure lowering), then
// allocates a named slot in the *enclosing* function's entry block,
// storing the closure value and binding the name so the function is
// callable from within that scope (spec §4.E, final paragraph before
// "Parameter-type convention").
func (g *Generator) lowerFuncDecl(n *ast.FuncDecl) {
	closure := g.buildClosure(n.Name, n.Params, n.Body, n.CapturedVars)
	ptr := g.alloca(n.Name, types.Closure)
	g.curFrame.define(n.Name, ptr, types.Closure)
	g.emit("store %s, %s", closure.Operand(), ptr.Operand())
}

func (g *Generator) lowerCreateTableStmt(n *ast.CreateTableStmt) {
	name := g.lowerExpr(n.NameExpr)
	result := g.nextTemp()
	g.emit("%s = call %s @%s(%s)", result, abi.CreateTable.Result, abi.CreateTable.Name, name.Operand())
	handle := Value{Name: result, Type: types.TableHandle}
	if n.Name != "" {
		ptr := g.alloca(n.Name, types.TableHandle)
		g.curFrame.define(n.Name, ptr, types.TableHandle)
		g.emit("store %s, %s", handle.Operand(), ptr.Operand())
	}
}

func (g *Generator) lowerAddColumnStmt(n *ast.AddColumnStmt) {
	tbl := g.lowerExpr(n.Table)
	name := g.lowerExpr(n.Name)
	typeConst := g.internString(n.TypeTag)
	g.emit("call %s @%s(%s, %s, %s)", abi.AddColumn.Result, abi.AddColumn.Name, tbl.Operand(), name.Operand(), typeConst.Operand())
}

func (g *Generator) lowerAddRowStmt(n *ast.AddRowStmt) {
	tbl := g.lowerExpr(n.Table)
	g.emit("call %s @%s(%s)", abi.AddRow.Result, abi.AddRow.Name, tbl.Operand())
}

// widenToI32 implements the i1->i32 zero-extend every return/closure-
// body-result site performs (spec §4.E steps 9 and "Return").
func (g *Generator) widenToI32(v Value) Value {
	if v.Type != types.I1 {
		return v
	}
	reg := g.nextTemp()
	g.emit("%s = zext i1 %s to i32", reg, v.Name)
	return Value{Name: reg, Type: types.I32}
}

