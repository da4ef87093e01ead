package parser

import (
	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/lexer"
)

// compoundStatement parses a block. Declarations before the first
// statement go to Decls; later ones are kept in order among the
// statements. A function body reuses the parameter scope, so it passes
// newScope false.
func (p *Parser) compoundStatement(newScope bool) ast.NodeID {
	line := p.expect(lexer.TokenLBrace).Line
	if newScope {
		p.tab.OpenScope()
	}
	decls := p.tree.NewSequence(line)
	stmts := p.tree.NewSequence(line)
	inDecls := true
	for !p.curIs(lexer.TokenRBrace) && !p.curIs(lexer.TokenEOF) {
		p.protect(false, func() {
			// a statement keyword closes the declaration list
			if p.cur().Type.IsFirstOfStatement() || !p.isDeclStart() {
				inDecls = false
				p.tree.Append(stmts, p.statement())
				return
			}
			d := p.declaration(false)
			if inDecls {
				p.tree.Append(decls, d)
			} else {
				p.tree.Append(stmts, d)
			}
		})
	}
	if newScope {
		p.tab.CloseScope()
	}
	p.expect(lexer.TokenRBrace)
	return p.tree.NewCompoundStmt(line, decls, stmts)
}

func (p *Parser) statement() ast.NodeID {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenLBrace:
		return p.compoundStatement(true)
	case lexer.TokenSemicolon:
		p.next()
		return p.tree.NewExprStmt(tok.Line, 0)
	case lexer.TokenIdent:
		if p.peek(1).Type == lexer.TokenColon {
			p.next()
			p.next()
			return p.tree.NewLabelStmt(tok.Line, p.ident(tok), p.statement())
		}
	case lexer.TokenCase:
		p.next()
		x := p.conditional()
		p.expect(lexer.TokenColon)
		return p.tree.NewCaseLabel(tok.Line, x, p.statement())
	case lexer.TokenDefault:
		p.next()
		p.expect(lexer.TokenColon)
		return p.tree.NewDefaultLabel(tok.Line, p.statement())
	case lexer.TokenIf:
		p.next()
		cond := p.parenExpression()
		then := p.statement()
		var els ast.NodeID
		if p.curIs(lexer.TokenElse) {
			p.next()
			els = p.statement()
		}
		return p.tree.NewIfStmt(tok.Line, cond, then, els)
	case lexer.TokenSwitch:
		p.next()
		x := p.parenExpression()
		return p.tree.NewSwitchStmt(tok.Line, x, p.statement())
	case lexer.TokenWhile:
		p.next()
		cond := p.parenExpression()
		return p.tree.NewLoop(tok.Line, ast.KindWhileStmt, cond, p.statement())
	case lexer.TokenDo:
		p.next()
		body := p.statement()
		p.expect(lexer.TokenWhile)
		cond := p.parenExpression()
		p.expect(lexer.TokenSemicolon)
		return p.tree.NewLoop(tok.Line, ast.KindDoStmt, cond, body)
	case lexer.TokenFor:
		return p.forStatement()
	case lexer.TokenGoto:
		p.next()
		label := p.expect(lexer.TokenIdent)
		p.expect(lexer.TokenSemicolon)
		return p.tree.NewGotoStmt(tok.Line, p.ident(label))
	case lexer.TokenBreak, lexer.TokenContinue:
		p.next()
		p.expect(lexer.TokenSemicolon)
		if tok.Type == lexer.TokenBreak {
			return p.tree.NewBranch(tok.Line, ast.KindBreakStmt)
		}
		return p.tree.NewBranch(tok.Line, ast.KindContinueStmt)
	case lexer.TokenReturn:
		p.next()
		var x ast.NodeID
		if !p.curIs(lexer.TokenSemicolon) {
			x = p.expression()
		}
		p.expect(lexer.TokenSemicolon)
		return p.tree.NewReturnStmt(tok.Line, x)
	case lexer.TokenAsm:
		return p.asmStatement()
	}

	x := p.expression()
	p.expect(lexer.TokenSemicolon)
	return p.tree.NewExprStmt(tok.Line, x)
}

func (p *Parser) parenExpression() ast.NodeID {
	p.expect(lexer.TokenLParen)
	x := p.expression()
	p.expect(lexer.TokenRParen)
	return x
}

func (p *Parser) forStatement() ast.NodeID {
	line := p.expect(lexer.TokenFor).Line
	p.expect(lexer.TokenLParen)
	var init, cond, step ast.NodeID
	if !p.curIs(lexer.TokenSemicolon) {
		init = p.expression()
	}
	p.expect(lexer.TokenSemicolon)
	if !p.curIs(lexer.TokenSemicolon) {
		cond = p.expression()
	}
	p.expect(lexer.TokenSemicolon)
	if !p.curIs(lexer.TokenRParen) {
		step = p.expression()
	}
	p.expect(lexer.TokenRParen)
	return p.tree.NewForStmt(line, init, cond, step, p.statement())
}

// asmStatement parses asm [volatile] ("template" : outputs : inputs :
// clobbers); keeping only the template.
func (p *Parser) asmStatement() ast.NodeID {
	line := p.expect(lexer.TokenAsm).Line
	for p.curIs(lexer.TokenVolatile) || p.curIs(lexer.TokenInline) || p.curIs(lexer.TokenGoto) {
		p.next()
	}
	p.expect(lexer.TokenLParen)
	data := p.expect(lexer.TokenString).Literal
	for depth := 1; depth > 0; {
		switch p.cur().Type {
		case lexer.TokenEOF:
			p.errorf(p.cur(), "expected '%s'", lexer.TokenRParen)
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
		}
		p.next()
	}
	p.expect(lexer.TokenSemicolon)
	return p.tree.NewAsmStmt(line, data)
}
