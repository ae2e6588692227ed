/*
Package ast defines RelTable's parse-tree node types: the boundary
contract the lexer/parser (out of scope per spec §1) produce and the
semantic pass/code generator (spec §4.D/§4.E) consume.

Parse nodes are created by the parser and are immutable thereafter,
except for the CapturedVars field semantic analysis attaches to
function/lambda nodes and the type slot it fills in on every expression
node (Lambda included).

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package ast

import (
	"github.com/reltable-lang/reltablec/scope"
	"github.com/reltable-lang/reltablec/types"

	"github.com/reltable-lang/reltablec"
)

// Node is the common interface of every parse-tree node: it carries the
// source span the node covers.
type Node interface {
	Span() reltable.Span
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. Expressions additionally carry a type
// slot filled in by semantic analysis (spec §4.D); it is ANY until then.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

// base embeds a span and implements Node for every concrete node type.
type base struct {
	span reltable.Span
}

func (b base) Span() reltable.Span { return b.span }

// SetSpan closes a node's span once the parser has consumed its last
// token; promoted to every concrete node type through the base/typed
// embedding.
func (b *base) SetSpan(span reltable.Span) { b.span = span }

// typed embeds base plus a mutable type slot, implementing Expr's type
// accessors for every concrete expression node type.
type typed struct {
	base
	typ types.Type
}

func (t typed) Type() types.Type     { return t.typ }
func (t *typed) SetType(ty types.Type) { t.typ = ty }

// NewBase/NewTyped are constructors used by the parser when building
// nodes, keeping the span-plumbing in one place.
func NewBase(span reltable.Span) base { return base{span: span} }
func NewTyped(span reltable.Span) typed {
	return typed{base: base{span: span}, typ: types.ANY}
}

// --- Program & declarations -------------------------------------------

// Program is the root of a RelTable parse tree: a sequence of top-level
// statements, visited under the global scope (spec §4.D).
type Program struct {
	base
	Stmts []Stmt
}

// Param is a function/lambda formal parameter: a name plus an optional
// declared type (ANY if omitted, per spec §4.D).
type Param struct {
	Name string
	Type types.Type
}

// FuncDecl is `func name(params) { block }` (spec §4.D/§4.E).
//
// CapturedVars is populated by semantic analysis once the function's
// body has been fully visited; it is nil until then.
type FuncDecl struct {
	base
	Name         string
	Params       []Param
	Body         *Block
	CapturedVars []scope.CapturedVar
}

// Lambda is an anonymous function expression: either `(params) => expr`
// or `(params) => { block }`. Exactly like FuncDecl except anonymous and
// usable as a value (spec §4.D: "identical to function declaration
// except anonymous").
//
// Body is either a *Block or an Expr (the grammar allows an expression
// body for single-expression lambdas, e.g. `(y) => y + x`).
type Lambda struct {
	typed
	Params       []Param
	Body         Node
	CapturedVars []scope.CapturedVar
}

// --- Statements ---------------------------------------------------------

// Block is `{ stmt* }`, a non-function-boundary scope (spec §4.D).
type Block struct {
	base
	Stmts []Stmt
}

// IfStmt is a chain `if c0 {b0} else if c1 {b1} ... else {be}`. Conds[i]
// pairs with Bodies[i]; Else is nil if no trailing else clause exists.
type IfStmt struct {
	base
	Conds  []Expr
	Bodies []*Block
	Else   *Block
}

// ForStmt is `for id in low..high { body }` (spec §4.D/§4.E).
type ForStmt struct {
	base
	Iter string
	Low  Expr
	High Expr
	Body *Block
}

// CaseExpr is one value or range inside a switch case's comma-separated
// expression list: either a single Low value, or `Low to High`
// (High non-nil).
type CaseExpr struct {
	Low  Expr
	High Expr // nil for a single-value case expression
}

// SwitchCase is one `case <caseExprList>: stmt*` arm.
type SwitchCase struct {
	Exprs []CaseExpr
	Body  *Block
}

// SwitchStmt is `switch [scrutinee] { case ... default: ... }`
// (spec §4.D/§4.E). Scrutinee may be nil (a condition-only switch is
// accepted by the grammar but not exercised by spec §8's scenarios;
// codegen treats a nil scrutinee as always producing a false compare).
type SwitchStmt struct {
	base
	Scrutinee Expr
	Cases     []SwitchCase
	Default   *Block // nil if no default case
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	base
	Expr Expr // nil for a bare `return`
}

// BreakStmt is `break`.
type BreakStmt struct {
	base
}

// AssignStmt is `id = expr` (spec §4.D: defines id if unresolved,
// otherwise updates its resolved symbol's type).
type AssignStmt struct {
	base
	Name string
	Expr Expr
}

// ExprStmt wraps an expression used in statement position (a bare call,
// e.g. `print(x)`).
type ExprStmt struct {
	base
	Expr Expr
}

// CreateTableStmt is `create_table name, expr` — spec §4.D/§4.E.
// The parser always sets Name; sema and codegen skip the binding when
// Name is the empty string.
type CreateTableStmt struct {
	base
	Name     string
	NameExpr Expr
}

// AddColumnStmt is `add_column tbl, name, type`.
type AddColumnStmt struct {
	base
	Table   Expr
	Name    Expr
	TypeTag string
}

// AddRowStmt is `add_row tbl`.
type AddRowStmt struct {
	base
	Table Expr
}

func (*Program) stmtNode()         {}
func (*Block) stmtNode()           {}
func (*FuncDecl) stmtNode()        {}
func (*IfStmt) stmtNode()          {}
func (*ForStmt) stmtNode()         {}
func (*SwitchStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()      {}
func (*ExprStmt) stmtNode()        {}
func (*CreateTableStmt) stmtNode() {}
func (*AddColumnStmt) stmtNode()   {}
func (*AddRowStmt) stmtNode()      {}

// --- Expressions ----------------------------------------------------------

// Identifier is a bare name reference.
type Identifier struct {
	typed
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	typed
	Value int32
}

// DecimalLit is a decimal (floating point) literal.
type DecimalLit struct {
	typed
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	typed
	Value string
}

// BoolLit is a boolean literal.
type BoolLit struct {
	typed
	Value bool
}

// Binary is an arithmetic or comparison expression: `+ - * / == != < <= > >=`.
type Binary struct {
	typed
	Op    string
	Left  Expr
	Right Expr
}

// Logical is `and`/`or`.
type Logical struct {
	typed
	Op    string
	Left  Expr
	Right Expr
}

// Unary is `not expr`.
type Unary struct {
	typed
	Op   string
	Expr Expr
}

// Call is `callee(args...)`.
type Call struct {
	typed
	Callee Expr
	Args   []Expr
}

// Member is `target.field`.
type Member struct {
	typed
	Target Expr
	Field  string
}

// Index is `target[index]` — parsed, type ANY, never lowered (spec §9:
// "visitPrimaryIndex" yields no value in the original).
type Index struct {
	typed
	Target Expr
	Index  Expr
}

// SelectExpr is `source select where <pred> [order <expr>]` (spec §4.D/
// §4.E, `order` per SPEC_FULL.md's supplemented feature #3).
type SelectExpr struct {
	typed
	Source Expr
	Where  Expr // nil if no where-clause; otherwise a *Lambda
	Order  Expr // nil if no order-clause; parsed, never lowered
}

func (*Identifier) exprNode()  {}
func (*IntLit) exprNode()      {}
func (*DecimalLit) exprNode()  {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*Binary) exprNode()      {}
func (*Logical) exprNode()     {}
func (*Unary) exprNode()       {}
func (*Call) exprNode()        {}
func (*Member) exprNode()      {}
func (*Index) exprNode()       {}
func (*SelectExpr) exprNode()  {}
func (*Lambda) exprNode()      {}
