// Package parser implements a recursive descent parser for C. It builds an
// ast.Tree and keeps a symbol table to tell typedef names from other
// identifiers while parsing.
package parser

import (
	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/diag"
	"github.com/raymyers/cformat/pkg/lexer"
	"github.com/raymyers/cformat/pkg/symtab"
)

// DefaultMaxErrors is the number of syntax errors after which parsing stops
const DefaultMaxErrors = 10

// Parser parses C source code into an AST
type Parser struct {
	l    *lexer.Lexer
	toks *ring
	tree *ast.Tree
	tab  *symtab.Table

	errors       diag.List
	syntaxErrors int
	maxErrors    int
}

// Option configures a Parser
type Option func(*Parser)

// WithMaxErrors stops parsing after n syntax errors. Zero means no limit.
func WithMaxErrors(n int) Option {
	return func(p *Parser) {
		p.maxErrors = n
	}
}

// WithStopOnFirstError stops parsing at the first syntax error
func WithStopOnFirstError() Option {
	return WithMaxErrors(1)
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer, opts ...Option) *Parser {
	p := &Parser{
		l:         l,
		toks:      newRing(l),
		tree:      ast.New(),
		tab:       symtab.New(),
		maxErrors: DefaultMaxErrors,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Errors returns the diagnostics collected so far, in source order once
// ParseTranslationUnit has returned.
func (p *Parser) Errors() diag.List {
	return p.errors
}

// SymbolTable returns the table the parser uses to recognize typedef names
func (p *Parser) SymbolTable() *symtab.Table {
	return p.tab
}

// ParseTranslationUnit parses the whole input, then runs the declare pass
// over the result.
func (p *Parser) ParseTranslationUnit() *ast.File {
	root := p.tree.NewSequence(p.cur().Line)
	p.tree.Retain(root)
	p.tab.OpenScope()

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bailout); !ok {
					panic(r)
				}
			}
		}()
		for !p.curIs(lexer.TokenEOF) {
			p.protect(true, func() {
				p.tree.Append(root, p.externalDeclaration())
			})
		}
	}()

	p.errors.Append(p.l.Errors())
	syms := symtab.New()
	p.errors.Append(ast.Declare(p.tree, syms, root))
	p.errors.Sort()

	return &ast.File{
		Tree:    p.tree,
		Root:    root,
		Scope:   syms.FileScope(),
		Symbols: syms,
	}
}

// bailout unwinds the parser to the nearest recovery point
type bailout struct{}

func (p *Parser) cur() lexer.Token {
	return p.toks.peek(0)
}

// peek returns the token k positions after the current one, k in 1..3
func (p *Parser) peek(k int) lexer.Token {
	return p.toks.peek(k)
}

func (p *Parser) next() {
	p.toks.advance()
}

func (p *Parser) curIs(t lexer.TokenType) bool {
	return p.cur().Type == t
}

// expect consumes a token of type t or fails with a syntax error
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.cur()
	if tok.Type != t {
		p.errorf(tok, "expected '%s'", t)
	}
	p.next()
	return tok
}

// errorf records a syntax error at tok and unwinds to the nearest
// recovery point.
func (p *Parser) errorf(tok lexer.Token, format string, args ...any) {
	p.errors.Errorf(diag.Syntax, tok.Line, tok.Column, format, args...)
	p.syntaxErrors++
	panic(bailout{})
}

func (p *Parser) tooManyErrors() bool {
	return p.maxErrors > 0 && p.syntaxErrors >= p.maxErrors
}

// protect runs f and recovers from a syntax error inside it: the scope
// is restored and the input skipped to a point where parsing can resume.
// Once the error limit is reached the bailout is passed on.
func (p *Parser) protect(top bool, f func()) {
	scope := p.tab.TopScope()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok || p.tooManyErrors() {
			panic(r)
		}
		p.tab.SetTopScope(scope)
		p.sync(top)
	}()
	f()
}

// sync skips to the end of the current statement. Inside a block a '}'
// is left for the block to close; at file level it is consumed.
func (p *Parser) sync(top bool) {
	for {
		switch p.cur().Type {
		case lexer.TokenEOF:
			return
		case lexer.TokenSemicolon:
			p.next()
			return
		case lexer.TokenRBrace:
			if top {
				p.next()
			}
			return
		}
		p.next()
	}
}

// insert registers a name in the parser's table. Collisions are left to
// the declare pass to report.
func (p *Parser) insert(name string, kind symtab.ObjectKind) {
	p.tab.Insert(name, kind, p.tab.NoType)
}

func (p *Parser) ident(tok lexer.Token) ast.NodeID {
	return p.tree.NewIdent(tok.Line, tok.Literal)
}

// skipParens consumes a balanced parenthesized group
func (p *Parser) skipParens() {
	p.expect(lexer.TokenLParen)
	for depth := 1; depth > 0; p.next() {
		switch p.cur().Type {
		case lexer.TokenEOF:
			p.errorf(p.cur(), "expected '%s'", lexer.TokenRParen)
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
		}
	}
}

// skipExtensions consumes __attribute__((...)) and __asm("...") clauses
func (p *Parser) skipExtensions() {
	for p.curIs(lexer.TokenAttribute) || p.curIs(lexer.TokenAsmExt) {
		p.next()
		p.skipParens()
	}
}

// discard frees a subtree that was parsed but is not kept. Nodes already
// held elsewhere, such as built-in types, are left alone.
func (p *Parser) discard(id ast.NodeID) {
	if p.tree.RefCount(id) == 0 {
		p.tree.Release(id)
	}
}
