package parser

import (
	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/lexer"
)

// Precedence climbs: OR/XOR/EQV/IMP < AND < NOT < comparisons < +/- <
// * / \ MOD < unary - < ^, matching QBasic's operator precedence.

func (p *Parser) Expression() ast.Expr { return p.orExpr() }

func (p *Parser) orExpr() ast.Expr {
	left := p.andExpr()
	for p.checkKeyword("OR") || p.checkKeyword("XOR") || p.checkKeyword("EQV") || p.checkKeyword("IMP") {
		op := p.advance()
		right := p.andExpr()
		left = &ast.Binary{Op: op.Lexeme, Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) andExpr() ast.Expr {
	left := p.notExpr()
	for p.checkKeyword("AND") {
		op := p.advance()
		right := p.notExpr()
		left = &ast.Binary{Op: "AND", Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) notExpr() ast.Expr {
	if p.checkKeyword("NOT") {
		op := p.advance()
		operand := p.notExpr()
		n := &ast.Unary{Op: "NOT", Operand: operand}
		setExprPos(n, op)
		return n
	}
	return p.comparison()
}

func (p *Parser) comparison() ast.Expr {
	left := p.addSub()
	for p.isCompareOp() {
		op := p.advance()
		right := p.addSub()
		left = &ast.Binary{Op: op.Lexeme, Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) isCompareOp() bool {
	switch p.cur().Type {
	case lexer.Eq, lexer.Lt, lexer.Gt, lexer.Le, lexer.Ge, lexer.Ne:
		return true
	}
	return false
}

func (p *Parser) addSub() ast.Expr {
	left := p.mulDiv()
	for p.check(lexer.Plus) || p.check(lexer.Minus) {
		op := p.advance()
		right := p.mulDiv()
		left = &ast.Binary{Op: op.Lexeme, Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) mulDiv() ast.Expr {
	left := p.intDivMod()
	for p.check(lexer.Star) || p.check(lexer.Slash) {
		op := p.advance()
		right := p.intDivMod()
		left = &ast.Binary{Op: op.Lexeme, Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) intDivMod() ast.Expr {
	left := p.unary()
	for p.check(lexer.Backslash) || p.checkKeyword("MOD") {
		op := p.advance()
		right := p.unary()
		left = &ast.Binary{Op: op.Lexeme, Left: left, Right: right}
		setExprPos(left, op)
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.check(lexer.Minus) {
		op := p.advance()
		operand := p.unary()
		n := &ast.Unary{Op: "-", Operand: operand}
		setExprPos(n, op)
		return n
	}
	if p.check(lexer.Plus) {
		p.advance()
		return p.unary()
	}
	return p.power()
}

func (p *Parser) power() ast.Expr {
	left := p.postfix()
	if p.check(lexer.Caret) {
		op := p.advance()
		right := p.unary()
		b := &ast.Binary{Op: "^", Left: left, Right: right}
		setExprPos(b, op)
		return b
	}
	return left
}

// postfix handles trailing .field and (args) applications on a
// primary expression, left-associatively.
func (p *Parser) postfix() ast.Expr {
	e := p.primary()
	for {
		if p.check(lexer.Dot) {
			dot := p.advance()
			field := p.expect(lexer.Ident, "field name")
			e = &ast.Property{Object: e, Field: field.Lexeme}
			setExprPos(e, dot)
			continue
		}
		if p.check(lexer.LParen) {
			lp := p.advance()
			var args []ast.Expr
			if !p.check(lexer.RParen) {
				args = append(args, p.Expression())
				for p.match(lexer.Comma) {
					args = append(args, p.Expression())
				}
			}
			p.expect(lexer.RParen, ")")
			e = &ast.IndexOrCall{Callee: e, Args: args}
			setExprPos(e, lp)
			continue
		}
		break
	}
	return e
}

func (p *Parser) primary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.Number:
		p.advance()
		lit := &ast.Literal{Value: p.number(tok), IsStr: false}
		setExprPos(lit, tok)
		return lit
	case lexer.String:
		p.advance()
		lit := &ast.Literal{Value: tok.Lexeme, IsStr: true}
		setExprPos(lit, tok)
		return lit
	case lexer.Ident:
		p.advance()
		n := &ast.Name{Bare: tok.Lexeme, Qualifier: tok.Qualifier}
		setExprPos(n, tok)
		return n
	case lexer.LParen:
		p.advance()
		inner := p.Expression()
		p.expect(lexer.RParen, ")")
		paren := &ast.Paren{Inner: inner}
		setExprPos(paren, tok)
		return paren
	case lexer.Keyword:
		switch tok.Lexeme {
		case "NOT":
			return p.notExpr()
		}
	}
	p.errorf(tok.At, "expected expression, got %q", tok.Lexeme)
	lit := &ast.Literal{Value: int64(0), IsStr: false}
	setExprPos(lit, tok)
	p.advance()
	return lit
}

// setExprPos back-fills the position on a freshly built node, since
// every constructor above writes the fields directly rather than going
// through a constructor function.
func setExprPos(e ast.Expr, tok lexer.Token) {
	switch n := e.(type) {
	case *ast.Literal:
		n.At = tok.At
	case *ast.Name:
		n.At = tok.At
	case *ast.Paren:
		n.At = tok.At
	case *ast.Binary:
		n.At = tok.At
	case *ast.Unary:
		n.At = tok.At
	case *ast.Property:
		n.At = tok.At
	case *ast.IndexOrCall:
		n.At = tok.At
	}
}
