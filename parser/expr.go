package parser

import (
	"github.com/reltable-lang/reltablec"
	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/lexer"
)

// parseExpr is the entry point of the precedence-climbing expression
// grammar: or > and > equality > relational > additive > multiplicative
// > unary > postfix > primary.
func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(lexer.OR) {
		start := left.Span()
		p.expect(lexer.OR)
		right := p.parseAnd()
		e := &ast.Logical{Op: "or", Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(lexer.AND) {
		start := left.Span()
		p.expect(lexer.AND)
		right := p.parseEquality()
		e := &ast.Logical{Op: "and", Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.at(lexer.EQ) || p.at(lexer.NE) {
		start := left.Span()
		op := p.opText()
		p.consume()
		right := p.parseRelational()
		e := &ast.Binary{Op: op, Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.at(lexer.LT) || p.at(lexer.LE) || p.at(lexer.GT) || p.at(lexer.GE) {
		start := left.Span()
		op := p.opText()
		p.consume()
		right := p.parseAdditive()
		e := &ast.Binary{Op: op, Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		start := left.Span()
		op := p.opText()
		p.consume()
		right := p.parseMultiplicative()
		e := &ast.Binary{Op: op, Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(lexer.STAR) || p.at(lexer.SLASH) {
		start := left.Span()
		op := p.opText()
		p.consume()
		right := p.parseUnary()
		e := &ast.Binary{Op: op, Left: left, Right: right}
		e.SetSpan(start.Extend(p.prev.Sp))
		left = e
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.at(lexer.NOT) || p.at(lexer.MINUS) {
		start := p.mark()
		op := p.opText()
		p.consume()
		operand := p.parseUnary()
		e := &ast.Unary{Op: op, Expr: operand}
		e.SetSpan(p.since(start))
		return e
	}
	return p.parsePostfix()
}

// opText returns the lexeme text of the current token, used to label
// Binary/Unary/Logical nodes; the lexer's literal rules already carry
// the exact operator spelling.
func (p *parser) opText() string {
	return p.tok.Text
}

func (p *parser) parsePostfix() ast.Expr {
	start := p.mark()
	e := p.parsePrimary()
	for {
		switch {
		case p.at(lexer.LPAREN):
			p.expect(lexer.LPAREN)
			var args []ast.Expr
			for !p.at(lexer.RPAREN) {
				if len(args) > 0 {
					p.expect(lexer.COMMA)
				}
				args = append(args, p.parseExpr())
			}
			p.expect(lexer.RPAREN)
			call := &ast.Call{Callee: e, Args: args}
			call.SetSpan(p.since(start))
			e = call
		case p.at(lexer.DOT):
			p.expect(lexer.DOT)
			field := p.expect(lexer.IDENT).Text
			m := &ast.Member{Target: e, Field: field}
			m.SetSpan(p.since(start))
			e = m
		case p.at(lexer.LBRACK):
			p.expect(lexer.LBRACK)
			idx := p.parseExpr()
			p.expect(lexer.RBRACK)
			ix := &ast.Index{Target: e, Index: idx}
			ix.SetSpan(p.since(start))
			e = ix
		case p.at(lexer.SELECT):
			e = p.parseSelectExpr(start, e)
		default:
			return e
		}
	}
}

// parseSelectExpr parses the `select where <lambda> [order <expr>]`
// suffix of `source select where <pred> [order <expr>]` (spec §4.D/§4.E;
// `order` per SPEC_FULL.md's supplemented feature #3: parsed but never
// lowered by codegen).
func (p *parser) parseSelectExpr(start reltable.Span, source ast.Expr) ast.Expr {
	p.expect(lexer.SELECT)
	sel := &ast.SelectExpr{Source: source}
	if p.accept(lexer.WHERE) {
		sel.Where = p.parseLambda()
	}
	if p.accept(lexer.ORDER) {
		sel.Order = p.parseExpr()
	}
	sel.SetSpan(p.since(start))
	return sel
}

func (p *parser) parsePrimary() ast.Expr {
	start := p.mark()
	switch p.tok.Kind {
	case lexer.INT:
		v := p.tok.Val.(int32)
		p.expect(lexer.INT)
		lit := &ast.IntLit{Value: v}
		lit.SetSpan(p.since(start))
		return lit
	case lexer.DECIMAL:
		v := p.tok.Val.(float64)
		p.expect(lexer.DECIMAL)
		lit := &ast.DecimalLit{Value: v}
		lit.SetSpan(p.since(start))
		return lit
	case lexer.STRING:
		v := p.tok.Val.(string)
		p.expect(lexer.STRING)
		lit := &ast.StringLit{Value: v}
		lit.SetSpan(p.since(start))
		return lit
	case lexer.BOOL:
		v := p.tok.Val.(bool)
		p.expect(lexer.BOOL)
		lit := &ast.BoolLit{Value: v}
		lit.SetSpan(p.since(start))
		return lit
	case lexer.LPAREN:
		return p.parseParenOrLambda(start)
	case lexer.IDENT:
		if p.peekKind() == lexer.ARROW {
			return p.parseBareLambda(start)
		}
		name := p.expect(lexer.IDENT).Text
		id := &ast.Identifier{Name: name}
		id.SetSpan(p.since(start))
		return id
	default:
		p.fail("unexpected token %s %q in expression", lexer.TypeName(p.tok.Kind), p.tok.Text)
		return nil // unreachable, fail panics
	}
}

// parseParenOrLambda disambiguates "(" <expr> ")" from a lambda
// parameter list "(" params ")" "=>" body by scanning ahead to the
// matching close paren and checking what follows it.
func (p *parser) parseParenOrLambda(start reltable.Span) ast.Expr {
	if p.peekAt(p.matchingParen()+1) == lexer.ARROW {
		return p.parseLambda()
	}
	p.expect(lexer.LPAREN)
	inner := p.parseExpr()
	p.expect(lexer.RPAREN)
	return inner
}

// parseLambda parses `(params) => body` or a bare single-param
// `ident => body`, where body is a block or a single expression.
func (p *parser) parseLambda() ast.Expr {
	start := p.mark()
	if p.at(lexer.IDENT) && p.peekKind() == lexer.ARROW {
		return p.parseBareLambda(start)
	}
	params := p.parseParamList()
	p.expect(lexer.ARROW)
	body := p.parseLambdaBody()
	lam := &ast.Lambda{Params: params, Body: body}
	lam.SetSpan(p.since(start))
	return lam
}

func (p *parser) parseBareLambda(start reltable.Span) ast.Expr {
	name := p.expect(lexer.IDENT).Text
	p.expect(lexer.ARROW)
	body := p.parseLambdaBody()
	lam := &ast.Lambda{Params: []ast.Param{{Name: name}}, Body: body}
	lam.SetSpan(p.since(start))
	return lam
}

func (p *parser) parseLambdaBody() ast.Node {
	if p.at(lexer.LBRACE) {
		return p.parseBlock()
	}
	return p.parseExpr()
}
