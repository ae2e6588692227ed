package parser

import (
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/lexer"
	"github.com/reltable-lang/reltablec/types"
)

func (p *parser) parseProgram() *ast.Program {
	start := p.mark()
	prog := &ast.Program{}
	p.skipSemis()
	for !p.at(lexer.EOF) {
		prog.Stmts = append(prog.Stmts, p.parseStmt())
		p.skipSemis()
	}
	prog.SetSpan(p.since(start))
	return prog
}

func (p *parser) parseBlock() *ast.Block {
	start := p.mark()
	p.expect(lexer.LBRACE)
	b := &ast.Block{}
	p.skipSemis()
	for !p.at(lexer.RBRACE) {
		b.Stmts = append(b.Stmts, p.parseStmt())
		p.skipSemis()
	}
	p.expect(lexer.RBRACE)
	b.SetSpan(p.since(start))
	return b
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case lexer.FUNC:
		return p.parseFuncDecl()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		start := p.mark()
		p.expect(lexer.BREAK)
		stmt := &ast.BreakStmt{}
		stmt.SetSpan(p.since(start))
		return stmt
	case lexer.CREATE_TABLE:
		return p.parseCreateTableStmt()
	case lexer.ADD_COLUMN:
		return p.parseAddColumnStmt()
	case lexer.ADD_ROW:
		return p.parseAddRowStmt()
	case lexer.IDENT:
		// Disambiguate `id = expr` (assignment) from a bare expression
		// statement (e.g. a call) by checking the token after IDENT.
		if p.isAssignAhead() {
			return p.parseAssignStmt()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

// isAssignAhead reports whether the current IDENT token begins a plain
// assignment (IDENT '='), using the parser's second token of lookahead.
// `ident(...)`, `ident.field`, `ident[i]` and other expression statements
// starting with an identifier all fail this check and fall through to
// parseExprStmt.
func (p *parser) isAssignAhead() bool {
	return p.peekKind() == lexer.ASSIGN
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	start := p.mark()
	p.expect(lexer.FUNC)
	name := p.expect(lexer.IDENT).Text
	params := p.parseParamList()
	body := p.parseBlock()
	decl := &ast.FuncDecl{Name: name, Params: params, Body: body}
	decl.SetSpan(p.since(start))
	return decl
}

func (p *parser) parseParamList() []ast.Param {
	p.expect(lexer.LPAREN)
	var params []ast.Param
	for !p.at(lexer.RPAREN) {
		if len(params) > 0 {
			p.expect(lexer.COMMA)
		}
		name := p.expect(lexer.IDENT).Text
		typ := types.ANY
		if p.accept(lexer.COLON) {
			typ = types.ParseTypeTag(p.expect(lexer.IDENT).Text)
		}
		params = append(params, ast.Param{Name: name, Type: typ})
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	start := p.mark()
	p.expect(lexer.IF)
	stmt := &ast.IfStmt{}
	stmt.Conds = append(stmt.Conds, p.parseExpr())
	stmt.Bodies = append(stmt.Bodies, p.parseBlock())
	for p.at(lexer.ELSE) {
		p.expect(lexer.ELSE)
		if p.accept(lexer.IF) {
			stmt.Conds = append(stmt.Conds, p.parseExpr())
			stmt.Bodies = append(stmt.Bodies, p.parseBlock())
			continue
		}
		stmt.Else = p.parseBlock()
		break
	}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseForStmt() *ast.ForStmt {
	start := p.mark()
	p.expect(lexer.FOR)
	iter := p.expect(lexer.IDENT).Text
	p.expect(lexer.IN)
	low := p.parseExpr()
	p.expect(lexer.DOTDOT)
	high := p.parseExpr()
	body := p.parseBlock()
	stmt := &ast.ForStmt{Iter: iter, Low: low, High: high, Body: body}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseSwitchStmt() *ast.SwitchStmt {
	start := p.mark()
	p.expect(lexer.SWITCH)
	stmt := &ast.SwitchStmt{}
	if !p.at(lexer.LBRACE) {
		stmt.Scrutinee = p.parseExpr()
	}
	p.expect(lexer.LBRACE)
	p.skipSemis()
	for p.at(lexer.CASE) {
		stmt.Cases = append(stmt.Cases, p.parseSwitchCase())
		p.skipSemis()
	}
	if p.accept(lexer.DEFAULT) {
		p.expect(lexer.COLON)
		stmt.Default = p.parseCaseBody()
	}
	p.expect(lexer.RBRACE)
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseSwitchCase() ast.SwitchCase {
	p.expect(lexer.CASE)
	var exprs []ast.CaseExpr
	for {
		low := p.parseExpr()
		ce := ast.CaseExpr{Low: low}
		if p.accept(lexer.TO) {
			ce.High = p.parseExpr()
		}
		exprs = append(exprs, ce)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.COLON)
	body := p.parseCaseBody()
	return ast.SwitchCase{Exprs: exprs, Body: body}
}

// parseCaseBody parses the statements belonging to one case/default arm,
// stopping at the next `case`, `default`, or the switch's closing brace.
// Case bodies are not explicitly braced (spec §8 S5's grammar), so this
// mirrors parseBlock without consuming delimiting braces.
func (p *parser) parseCaseBody() *ast.Block {
	start := p.mark()
	b := &ast.Block{}
	p.skipSemis()
	for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) {
		b.Stmts = append(b.Stmts, p.parseStmt())
		p.skipSemis()
	}
	b.SetSpan(p.since(start))
	return b
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.mark()
	p.expect(lexer.RETURN)
	stmt := &ast.ReturnStmt{}
	if !p.atStmtEnd() {
		stmt.Expr = p.parseExpr()
	}
	stmt.SetSpan(p.since(start))
	return stmt
}

// atStmtEnd reports whether the lookahead token could only begin a new
// statement/close a block, meaning the previous construct (e.g. a bare
// `return`) has no trailing expression.
func (p *parser) atStmtEnd() bool {
	switch p.tok.Kind {
	case lexer.SEMI, lexer.RBRACE, lexer.EOF, lexer.CASE, lexer.DEFAULT:
		return true
	default:
		return false
	}
}

func (p *parser) parseAssignStmt() *ast.AssignStmt {
	start := p.mark()
	name := p.expect(lexer.IDENT).Text
	p.expect(lexer.ASSIGN)
	expr := p.parseExpr()
	stmt := &ast.AssignStmt{Name: name, Expr: expr}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	start := p.mark()
	expr := p.parseExpr()
	stmt := &ast.ExprStmt{Expr: expr}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseCreateTableStmt() *ast.CreateTableStmt {
	start := p.mark()
	p.expect(lexer.CREATE_TABLE)
	name := p.expect(lexer.IDENT).Text
	p.expect(lexer.COMMA)
	nameExpr := p.parseExpr()
	stmt := &ast.CreateTableStmt{Name: name, NameExpr: nameExpr}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseAddColumnStmt() *ast.AddColumnStmt {
	start := p.mark()
	p.expect(lexer.ADD_COLUMN)
	tbl := p.parseExpr()
	p.expect(lexer.COMMA)
	name := p.parseExpr()
	p.expect(lexer.COMMA)
	typeTag := p.expect(lexer.IDENT).Text
	stmt := &ast.AddColumnStmt{Table: tbl, Name: name, TypeTag: typeTag}
	stmt.SetSpan(p.since(start))
	return stmt
}

func (p *parser) parseAddRowStmt() *ast.AddRowStmt {
	start := p.mark()
	p.expect(lexer.ADD_ROW)
	tbl := p.parseExpr()
	stmt := &ast.AddRowStmt{Table: tbl}
	stmt.SetSpan(p.since(start))
	return stmt
}
