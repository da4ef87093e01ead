package parser

import (
	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/lexer"
	"github.com/raymyers/cformat/pkg/symtab"
)

// declSpec is the result of parsing declaration specifiers. The base
// type node is shared by every declarator of the declaration.
type declSpec struct {
	base  ast.NodeID
	flags ast.Flags
	line  int
}

func (s declSpec) isTypedef() bool {
	return s.flags&ast.FlagTypedef != 0
}

// declFlags are the flags a declaration node keeps
func (s declSpec) declFlags() ast.Flags {
	return s.flags &^ ast.FlagTypedef
}

var storageFlags = map[lexer.TokenType]ast.Flags{
	lexer.TokenTypedef:  ast.FlagTypedef,
	lexer.TokenExtern:   ast.FlagExtern,
	lexer.TokenStatic:   ast.FlagStatic,
	lexer.TokenAuto:     ast.FlagAuto,
	lexer.TokenRegister: ast.FlagRegister,
	lexer.TokenInline:   ast.FlagInline,
	lexer.TokenConst:    ast.FlagConst,
	lexer.TokenVolatile: ast.FlagVolatile,
}

// isDeclStart reports whether the current token begins a declaration
func (p *Parser) isDeclStart() bool {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenNoreturn, lexer.TokenAttribute, lexer.TokenAsmExt,
		lexer.TokenAlignas, lexer.TokenThreadLocal, lexer.TokenStaticAssert,
		lexer.TokenComplex, lexer.TokenImaginary, lexer.TokenBool,
		lexer.TokenAtomic, lexer.TokenNullable:
		return true
	case lexer.TokenIdent:
		return p.tab.IsTypeName(tok.Literal) && p.peek(1).Type != lexer.TokenColon
	}
	return tok.Type.IsFirstOfDeclaration()
}

// isTypeStart reports whether tok begins a type name
func (p *Parser) isTypeStart(tok lexer.Token) bool {
	if tok.Type == lexer.TokenIdent {
		return p.tab.IsTypeName(tok.Literal)
	}
	return tok.Type.IsBuiltinTypeSpecifier() || tok.Type.IsTypeQualifier() ||
		tok.Type == lexer.TokenComplex
}

// externalDeclaration parses a function definition or a declaration at
// file level.
func (p *Parser) externalDeclaration() ast.NodeID {
	switch {
	case p.curIs(lexer.TokenSemicolon):
		p.next()
		return 0
	case p.curIs(lexer.TokenStaticAssert):
		p.staticAssert()
		return 0
	case p.curIs(lexer.TokenAsm):
		// file-level asm("...");
		return p.asmStatement()
	case !p.isDeclStart() && !p.curIs(lexer.TokenIdent):
		p.errorf(p.cur(), "expected declaration")
	}
	return p.declaration(true)
}

// declaration parses declaration specifiers followed by a declarator
// list. At file level a function declarator followed by '{' starts a
// function definition instead.
func (p *Parser) declaration(top bool) ast.NodeID {
	if p.curIs(lexer.TokenStaticAssert) {
		p.staticAssert()
		return 0
	}
	spec := p.declSpecifiers()
	if p.curIs(lexer.TokenSemicolon) {
		p.next()
		if k := p.tree.Kind(spec.base); k == ast.KindStructType || k == ast.KindUnionType || k == ast.KindEnumeralType {
			return spec.base
		}
		return 0
	}

	build, name, params := p.declarator(declNamed)
	typ := build(spec.base)
	if top && !spec.isTypedef() && p.tree.Kind(typ) == ast.KindFunctionType && p.curIs(lexer.TokenLBrace) {
		return p.functionDefinition(spec, typ, name, params)
	}

	decls := p.tree.NewSequence(spec.line)
	for {
		p.tree.Append(decls, p.initDeclarator(spec, typ, name))
		if !p.curIs(lexer.TokenComma) {
			break
		}
		p.next()
		build, name, _ = p.declarator(declNamed)
		typ = build(spec.base)
	}
	p.expect(lexer.TokenSemicolon)
	return decls
}

// initDeclarator builds the node for one declarator of a declaration
func (p *Parser) initDeclarator(spec declSpec, typ ast.NodeID, name lexer.Token) ast.NodeID {
	var id ast.NodeID
	switch {
	case spec.isTypedef():
		id = p.tree.NewTypeDecl(name.Line, p.ident(name), typ)
		p.insert(name.Literal, symtab.TypeName)
	case p.tree.Kind(typ) == ast.KindFunctionType:
		id = p.functionDecl(name, typ, 0)
		p.insert(name.Literal, symtab.Func)
	default:
		var init ast.NodeID
		if p.curIs(lexer.TokenAssign) {
			p.next()
			init = p.initializer()
		}
		id = p.tree.NewVarDecl(name.Line, typ, p.ident(name), init)
		p.insert(name.Literal, symtab.Var)
	}
	p.tree.Node(id).SetFlags(spec.declFlags())
	return id
}

// functionDecl turns a function type into a FunctionDecl. The function
// type node itself is released.
func (p *Parser) functionDecl(name lexer.Token, typ, body ast.NodeID) ast.NodeID {
	p.tree.Retain(typ)
	ft := p.tree.Node(typ).(*ast.FunctionType)
	id := p.tree.NewFunctionDecl(name.Line, ft.Result, p.ident(name), ft.Params, body, ft.Variadic)
	p.tree.Release(typ)
	return id
}

func (p *Parser) functionDefinition(spec declSpec, typ ast.NodeID, name lexer.Token, params *symtab.Scope) ast.NodeID {
	p.insert(name.Literal, symtab.Func)

	// the body shares the scope holding the parameters
	outer := p.tab.TopScope()
	if params != nil {
		p.tab.SetTopScope(params)
	} else {
		p.tab.OpenScope()
	}
	body := p.compoundStatement(false)
	p.tab.SetTopScope(outer)

	id := p.functionDecl(name, typ, body)
	p.tree.Node(id).SetFlags(spec.declFlags())
	return id
}

// declSpecifiers parses storage classes, qualifiers and type specifiers.
// Without any type specifier the type is int.
func (p *Parser) declSpecifiers() declSpec {
	spec := declSpec{line: p.cur().Line}
	var words []lexer.TokenType

loop:
	for {
		tok := p.cur()
		switch {
		case storageFlags[tok.Type] != 0:
			spec.flags |= storageFlags[tok.Type]
			p.next()
		case tok.Type == lexer.TokenAtomic:
			p.next()
			if p.curIs(lexer.TokenLParen) {
				p.next()
				spec.base = p.typeName()
				p.expect(lexer.TokenRParen)
			}
		case tok.Type.IsTypeQualifier(), tok.Type == lexer.TokenNoreturn,
			tok.Type == lexer.TokenThreadLocal, tok.Type == lexer.TokenComplex,
			tok.Type == lexer.TokenImaginary:
			p.next()
		case tok.Type == lexer.TokenAttribute, tok.Type == lexer.TokenAsmExt:
			p.skipExtensions()
		case tok.Type == lexer.TokenAlignas:
			p.next()
			p.skipParens()
		case tok.Type == lexer.TokenStruct, tok.Type == lexer.TokenUnion:
			spec.base = p.recordSpecifier()
		case tok.Type == lexer.TokenEnum:
			spec.base = p.enumSpecifier()
		case tok.Type.IsBuiltinTypeSpecifier():
			words = append(words, tok.Type)
			p.next()
		case tok.Type == lexer.TokenIdent && spec.base == 0 && len(words) == 0 &&
			p.tab.IsTypeName(tok.Literal):
			spec.base = p.tree.NewTypedefName(tok.Line, tok.Literal)
			p.next()
		default:
			break loop
		}
	}

	if spec.base == 0 {
		spec.base = p.tree.Builtin(builtinName(words))
	}
	return spec
}

// builtinName combines type specifier keywords into the canonical name
// of a built-in type: "unsigned long int" gives "unsigned long".
func builtinName(words []lexer.TokenType) string {
	count := make(map[lexer.TokenType]int)
	for _, w := range words {
		count[w]++
	}
	unsigned := count[lexer.TokenUnsigned] > 0
	switch {
	case count[lexer.TokenVoid] > 0:
		return "void"
	case count[lexer.TokenBool] > 0:
		return "_Bool"
	case count[lexer.TokenFloat] > 0:
		return "float"
	case count[lexer.TokenDouble] > 0:
		if count[lexer.TokenLong] > 0 {
			return "long double"
		}
		return "double"
	case count[lexer.TokenChar] > 0:
		if unsigned {
			return "unsigned char"
		}
		if count[lexer.TokenSigned] > 0 {
			return "signed char"
		}
		return "char"
	case count[lexer.TokenShort] > 0:
		if unsigned {
			return "unsigned short"
		}
		return "short"
	case count[lexer.TokenLong] > 1:
		if unsigned {
			return "unsigned long long"
		}
		return "long long"
	case count[lexer.TokenLong] == 1:
		if unsigned {
			return "unsigned long"
		}
		return "long"
	case unsigned:
		return "unsigned"
	}
	return "int"
}

func (p *Parser) recordSpecifier() ast.NodeID {
	tok := p.cur()
	kind := ast.KindStructType
	if tok.Type == lexer.TokenUnion {
		kind = ast.KindUnionType
	}
	p.next()
	p.skipExtensions()

	var name, body ast.NodeID
	if p.curIs(lexer.TokenIdent) {
		name = p.ident(p.cur())
		p.next()
	}
	if p.curIs(lexer.TokenLBrace) {
		body = p.tree.NewSequence(p.cur().Line)
		p.next()
		for !p.curIs(lexer.TokenRBrace) && !p.curIs(lexer.TokenEOF) {
			p.tree.Append(body, p.structDeclaration())
		}
		p.expect(lexer.TokenRBrace)
	} else if name == 0 {
		p.errorf(p.cur(), "expected '%s'", lexer.TokenLBrace)
	}
	p.skipExtensions()
	return p.tree.NewRecordType(tok.Line, kind, name, body)
}

// structDeclaration parses one member declaration of a struct or union
// body. A member without declarator is an anonymous struct or union.
func (p *Parser) structDeclaration() ast.NodeID {
	if p.curIs(lexer.TokenStaticAssert) {
		p.staticAssert()
		return 0
	}
	spec := p.declSpecifiers()
	if p.curIs(lexer.TokenSemicolon) {
		p.next()
		return p.tree.NewFieldDecl(spec.line, spec.base, 0, 0)
	}

	fields := p.tree.NewSequence(spec.line)
	for {
		line := p.cur().Line
		typ := spec.base
		var name, bits ast.NodeID
		if !p.curIs(lexer.TokenColon) {
			build, tok, _ := p.declarator(declNamed)
			typ = build(spec.base)
			name = p.ident(tok)
			line = tok.Line
		}
		if p.curIs(lexer.TokenColon) {
			p.next()
			bits = p.conditional()
		}
		id := p.tree.NewFieldDecl(line, typ, name, bits)
		p.tree.Node(id).SetFlags(spec.declFlags())
		p.tree.Append(fields, id)
		if !p.curIs(lexer.TokenComma) {
			break
		}
		p.next()
	}
	p.expect(lexer.TokenSemicolon)
	return fields
}

func (p *Parser) enumSpecifier() ast.NodeID {
	line := p.expect(lexer.TokenEnum).Line
	p.skipExtensions()

	var name, body ast.NodeID
	if p.curIs(lexer.TokenIdent) {
		name = p.ident(p.cur())
		p.next()
	}
	if p.curIs(lexer.TokenLBrace) {
		body = p.tree.NewSequence(p.cur().Line)
		p.next()
		for !p.curIs(lexer.TokenRBrace) {
			tok := p.expect(lexer.TokenIdent)
			var value ast.NodeID
			if p.curIs(lexer.TokenAssign) {
				p.next()
				value = p.conditional()
			}
			p.tree.Append(body, p.tree.NewEnumerator(tok.Line, p.ident(tok), value))
			p.insert(tok.Literal, symtab.Const)
			if !p.curIs(lexer.TokenComma) {
				break
			}
			p.next()
		}
		p.expect(lexer.TokenRBrace)
	} else if name == 0 {
		p.errorf(p.cur(), "expected '%s'", lexer.TokenLBrace)
	}
	return p.tree.NewRecordType(line, ast.KindEnumeralType, name, body)
}

// declMode tells the declarator parser whether a name is required,
// forbidden (type names) or optional (parameters).
type declMode int

const (
	declNamed declMode = iota
	declAbstract
	declEither
)

// typeBuilder wraps a base type in the derivations of a declarator
type typeBuilder func(base ast.NodeID) ast.NodeID

// pointerLevel is one '*' of a declarator with its qualifiers
type pointerLevel struct {
	line  int
	flags ast.Flags
}

// declarator parses pointers, the name or a parenthesized inner
// declarator, then array and parameter-list suffixes. It returns a
// builder applying them to a base type so that each declarator of a list
// derives its own type from the shared specifier. params is the scope
// of the parameter list that directly follows the name, if any.
func (p *Parser) declarator(mode declMode) (build typeBuilder, name lexer.Token, params *symtab.Scope) {
	var pointers []pointerLevel
	for p.curIs(lexer.TokenStar) {
		level := pointerLevel{line: p.cur().Line}
		p.next()
		for p.cur().Type.IsTypeQualifier() {
			// restrict, _Atomic and _Nullable are not kept
			if p.curIs(lexer.TokenConst) || p.curIs(lexer.TokenVolatile) {
				level.flags |= storageFlags[p.cur().Type]
			}
			p.next()
		}
		pointers = append(pointers, level)
	}

	var inner typeBuilder
	switch {
	case p.curIs(lexer.TokenIdent) && mode != declAbstract:
		name = p.cur()
		p.next()
	case p.curIs(lexer.TokenLParen) && p.nestedDeclarator(mode):
		p.next()
		inner, name, params = p.declarator(mode)
		p.expect(lexer.TokenRParen)
	case mode == declNamed:
		p.errorf(p.cur(), "expected '%s'", lexer.TokenIdent)
	}
	atName := inner == nil && name.Type == lexer.TokenIdent

	var suffixes []typeBuilder
suffixLoop:
	for {
		line := p.cur().Line
		switch {
		case p.curIs(lexer.TokenLBracket):
			p.next()
			for p.cur().Type.IsTypeQualifier() || p.curIs(lexer.TokenStatic) {
				p.next()
			}
			var size ast.NodeID
			if !p.curIs(lexer.TokenRBracket) {
				size = p.assignment()
			}
			p.expect(lexer.TokenRBracket)
			suffixes = append(suffixes, func(elem ast.NodeID) ast.NodeID {
				if size == 0 {
					// int a[] is a pointer
					return p.tree.NewPointerType(line, elem)
				}
				return p.tree.NewArrayType(line, elem, size)
			})
		case p.curIs(lexer.TokenLParen):
			p.next()
			seq, variadic, scope := p.parameterList()
			if atName && params == nil {
				params = scope
			}
			suffixes = append(suffixes, func(result ast.NodeID) ast.NodeID {
				return p.tree.NewFunctionType(line, result, seq, variadic)
			})
		default:
			break suffixLoop
		}
	}
	p.skipExtensions()

	build = func(base ast.NodeID) ast.NodeID {
		typ := base
		for _, level := range pointers {
			typ = p.tree.NewPointerType(level.line, typ)
			if level.flags != 0 {
				p.tree.Node(typ).SetFlags(level.flags)
			}
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			typ = suffixes[i](typ)
		}
		if inner != nil {
			typ = inner(typ)
		}
		return typ
	}
	return build, name, params
}

// nestedDeclarator decides whether the '(' at the current token opens a
// parenthesized declarator, as in (*fp)(int), rather than a parameter list.
func (p *Parser) nestedDeclarator(mode declMode) bool {
	if mode == declNamed {
		return true
	}
	next := p.peek(1)
	switch next.Type {
	case lexer.TokenStar, lexer.TokenLParen:
		return true
	case lexer.TokenIdent:
		return mode == declEither && !p.tab.IsTypeName(next.Literal)
	}
	return false
}

// parameterList parses the parameters after '(' up to and including ')'.
// The parameters are entered into a scope of their own, which is closed
// again and returned so a function body can reopen it.
func (p *Parser) parameterList() (seq ast.NodeID, variadic bool, scope *symtab.Scope) {
	seq = p.tree.NewSequence(p.cur().Line)
	p.tab.OpenScope()
	for !p.curIs(lexer.TokenRParen) {
		if p.curIs(lexer.TokenEllipsis) {
			p.next()
			variadic = true
			break
		}
		spec := p.declSpecifiers()
		build, name, _ := p.declarator(declEither)
		var nameID ast.NodeID
		line := spec.line
		if name.Type == lexer.TokenIdent {
			nameID = p.ident(name)
			line = name.Line
			p.insert(name.Literal, symtab.Param)
		}
		id := p.tree.NewParmDecl(line, build(spec.base), nameID)
		p.tree.Node(id).SetFlags(spec.declFlags())
		p.tree.Append(seq, id)
		if !p.curIs(lexer.TokenComma) {
			break
		}
		p.next()
	}
	scope = p.tab.TopScope()
	p.tab.CloseScope()
	p.expect(lexer.TokenRParen)
	return seq, variadic, scope
}

// typeName parses a type as written in casts, sizeof and _Alignof.
// Qualifiers are dropped.
func (p *Parser) typeName() ast.NodeID {
	spec := p.declSpecifiers()
	build, _, _ := p.declarator(declAbstract)
	return build(spec.base)
}

// initializer parses an assignment expression or a braced list. Designators
// are accepted and dropped.
func (p *Parser) initializer() ast.NodeID {
	if !p.curIs(lexer.TokenLBrace) {
		return p.assignment()
	}
	list := p.tree.NewSequence(p.cur().Line)
	p.next()
	for !p.curIs(lexer.TokenRBrace) {
		if p.designator() {
			p.expect(lexer.TokenAssign)
		}
		p.tree.Append(list, p.initializer())
		if !p.curIs(lexer.TokenComma) {
			break
		}
		p.next()
	}
	p.expect(lexer.TokenRBrace)
	return list
}

// designator skips .member and [index] designators
func (p *Parser) designator() bool {
	seen := false
	for {
		switch {
		case p.curIs(lexer.TokenDot):
			p.next()
			p.expect(lexer.TokenIdent)
		case p.curIs(lexer.TokenLBracket):
			p.next()
			p.discard(p.conditional())
			p.expect(lexer.TokenRBracket)
		default:
			return seen
		}
		seen = true
	}
}

// staticAssert consumes _Static_assert(expr, "msg");
func (p *Parser) staticAssert() {
	p.expect(lexer.TokenStaticAssert)
	p.skipParens()
	p.expect(lexer.TokenSemicolon)
}
