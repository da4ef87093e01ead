package parser

import (
	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/lexer"
)

// expression parses a comma expression
func (p *Parser) expression() ast.NodeID {
	x := p.assignment()
	for p.curIs(lexer.TokenComma) {
		line := p.cur().Line
		p.next()
		x = p.tree.NewBinary(line, ast.KindCompoundExpr, x, p.assignment())
	}
	return x
}

var compoundAssign = map[lexer.TokenType]ast.Kind{
	lexer.TokenPlusAssign:    ast.KindPlusExpr,
	lexer.TokenMinusAssign:   ast.KindMinusExpr,
	lexer.TokenStarAssign:    ast.KindMultExpr,
	lexer.TokenSlashAssign:   ast.KindTruncDivExpr,
	lexer.TokenPercentAssign: ast.KindTruncModExpr,
	lexer.TokenAndAssign:     ast.KindBitAndExpr,
	lexer.TokenOrAssign:      ast.KindBitIorExpr,
	lexer.TokenXorAssign:     ast.KindBitXorExpr,
	lexer.TokenShlAssign:     ast.KindLShiftExpr,
	lexer.TokenShrAssign:     ast.KindRShiftExpr,
}

// assignment parses an assignment expression. a op= b becomes
// a = a op b with both uses of a sharing one subtree.
func (p *Parser) assignment() ast.NodeID {
	x := p.conditional()
	tok := p.cur()
	if tok.Type == lexer.TokenAssign {
		p.next()
		return p.tree.NewBinary(tok.Line, ast.KindAssignExpr, x, p.assignment())
	}
	if op, ok := compoundAssign[tok.Type]; ok {
		p.next()
		rhs := p.tree.NewBinary(tok.Line, op, x, p.assignment())
		return p.tree.NewBinary(tok.Line, ast.KindAssignExpr, x, rhs)
	}
	return x
}

func (p *Parser) conditional() ast.NodeID {
	cond := p.binary(0)
	if !p.curIs(lexer.TokenQuestion) {
		return cond
	}
	line := p.cur().Line
	p.next()
	then := p.expression()
	p.expect(lexer.TokenColon)
	return p.tree.NewCondExpr(line, cond, then, p.conditional())
}

// binaryLevels lists the binary operators from the loosest binding
// (logical or) to the tightest (multiplicative).
var binaryLevels = []map[lexer.TokenType]ast.Kind{
	{lexer.TokenOr: ast.KindLogOrExpr},
	{lexer.TokenAnd: ast.KindLogAndExpr},
	{lexer.TokenPipe: ast.KindBitIorExpr},
	{lexer.TokenCaret: ast.KindBitXorExpr},
	{lexer.TokenAmpersand: ast.KindBitAndExpr},
	{lexer.TokenEq: ast.KindEqExpr, lexer.TokenNe: ast.KindNeExpr},
	{
		lexer.TokenLt: ast.KindLtExpr, lexer.TokenLe: ast.KindLeExpr,
		lexer.TokenGt: ast.KindGtExpr, lexer.TokenGe: ast.KindGeExpr,
	},
	{lexer.TokenShl: ast.KindLShiftExpr, lexer.TokenShr: ast.KindRShiftExpr},
	{lexer.TokenPlus: ast.KindPlusExpr, lexer.TokenMinus: ast.KindMinusExpr},
	{
		lexer.TokenStar: ast.KindMultExpr, lexer.TokenSlash: ast.KindTruncDivExpr,
		lexer.TokenPercent: ast.KindTruncModExpr,
	},
}

// binary parses the left-associative operators of one precedence level
func (p *Parser) binary(level int) ast.NodeID {
	if level == len(binaryLevels) {
		return p.cast()
	}
	x := p.binary(level + 1)
	for {
		kind, ok := binaryLevels[level][p.cur().Type]
		if !ok {
			return x
		}
		line := p.cur().Line
		p.next()
		x = p.tree.NewBinary(line, kind, x, p.binary(level+1))
	}
}

// cast parses a cast expression. '(' followed by a type name starts a
// cast; anything else is a parenthesized expression.
func (p *Parser) cast() ast.NodeID {
	if !p.curIs(lexer.TokenLParen) || !p.isTypeStart(p.peek(1)) {
		return p.unary()
	}
	line := p.cur().Line
	p.next()
	typ := p.typeName()
	p.expect(lexer.TokenRParen)
	if p.curIs(lexer.TokenLBrace) {
		// compound literal
		return p.tree.NewCastExpr(line, typ, p.initializer())
	}
	return p.tree.NewCastExpr(line, typ, p.cast())
}

var prefixOps = map[lexer.TokenType]ast.Kind{
	lexer.TokenMinus:     ast.KindNegateExpr,
	lexer.TokenTilde:     ast.KindBitNotExpr,
	lexer.TokenNot:       ast.KindLogNotExpr,
	lexer.TokenAmpersand: ast.KindAddrExpr,
}

func (p *Parser) unary() ast.NodeID {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenIncrement, lexer.TokenDecrement:
		p.next()
		kind := ast.KindPreincrementExpr
		if tok.Type == lexer.TokenDecrement {
			kind = ast.KindPredecrementExpr
		}
		return p.tree.NewUnary(tok.Line, kind, p.unary())
	case lexer.TokenStar:
		p.next()
		return p.tree.NewIndirectRef(tok.Line, p.cast(), 0)
	case lexer.TokenPlus:
		p.next()
		return p.cast()
	case lexer.TokenMinus, lexer.TokenTilde, lexer.TokenNot, lexer.TokenAmpersand:
		p.next()
		return p.tree.NewUnary(tok.Line, prefixOps[tok.Type], p.cast())
	case lexer.TokenSizeof:
		p.next()
		if p.curIs(lexer.TokenLParen) && p.isTypeStart(p.peek(1)) {
			p.next()
			typ := p.typeName()
			p.expect(lexer.TokenRParen)
			return p.tree.NewUnary(tok.Line, ast.KindSizeofExpr, typ)
		}
		return p.tree.NewUnary(tok.Line, ast.KindSizeofExpr, p.unary())
	case lexer.TokenAlignof:
		p.next()
		p.expect(lexer.TokenLParen)
		typ := p.typeName()
		p.expect(lexer.TokenRParen)
		return p.tree.NewUnary(tok.Line, ast.KindAlignofExpr, typ)
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.NodeID {
	x := p.primary()
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokenLBracket:
			p.next()
			index := p.expression()
			p.expect(lexer.TokenRBracket)
			x = p.tree.NewArrayRef(tok.Line, x, index)
		case lexer.TokenLParen:
			p.next()
			args := p.tree.NewSequence(tok.Line)
			for !p.curIs(lexer.TokenRParen) {
				p.tree.Append(args, p.assignment())
				if !p.curIs(lexer.TokenComma) {
					break
				}
				p.next()
			}
			p.expect(lexer.TokenRParen)
			x = p.tree.NewCallExpr(tok.Line, x, args)
		case lexer.TokenDot:
			p.next()
			member := p.expect(lexer.TokenIdent)
			x = p.tree.NewStructRef(tok.Line, x, p.ident(member))
		case lexer.TokenArrow:
			p.next()
			field := p.expect(lexer.TokenIdent)
			x = p.tree.NewIndirectRef(tok.Line, x, p.ident(field))
		case lexer.TokenIncrement:
			p.next()
			x = p.tree.NewUnary(tok.Line, ast.KindPostincrementExpr, x)
		case lexer.TokenDecrement:
			p.next()
			x = p.tree.NewUnary(tok.Line, ast.KindPostdecrementExpr, x)
		default:
			return x
		}
	}
}

func (p *Parser) primary() ast.NodeID {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenIdent, lexer.TokenFunc:
		p.next()
		return p.ident(tok)
	case lexer.TokenInt:
		p.next()
		return p.tree.NewIntegerConst(tok.Line, tok.IntValue)
	case lexer.TokenReal:
		p.next()
		return p.tree.NewRealConst(tok.Line, tok.FloatValue)
	case lexer.TokenCharLit:
		p.next()
		return p.tree.NewCharConst(tok.Line, tok.IntValue)
	case lexer.TokenString:
		p.next()
		return p.tree.NewStringConst(tok.Line, tok.Literal)
	case lexer.TokenLParen:
		p.next()
		x := p.expression()
		p.expect(lexer.TokenRParen)
		return x
	case lexer.TokenGeneric:
		return p.genericSelection()
	}
	p.errorf(tok, "expected expression")
	return 0
}

// genericSelection parses _Generic(expr, type: expr, ..., default: expr).
// The selection is not evaluated; an empty expression stands in for it.
func (p *Parser) genericSelection() ast.NodeID {
	line := p.expect(lexer.TokenGeneric).Line
	p.expect(lexer.TokenLParen)
	p.discard(p.assignment())
	for p.curIs(lexer.TokenComma) {
		p.next()
		if p.curIs(lexer.TokenDefault) {
			p.next()
		} else if p.isTypeStart(p.cur()) {
			p.discard(p.typeName())
		} else {
			p.errorf(p.cur(), "expected type specifier or default")
		}
		p.expect(lexer.TokenColon)
		p.discard(p.assignment())
	}
	p.expect(lexer.TokenRParen)
	return p.tree.NewNopExpr(line)
}
