// Package lexer turns C source text into tokens
package lexer

import (
	"github.com/raymyers/cformat/pkg/diag"
)

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
	errors  diag.List
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns the lexical errors found so far
func (l *Lexer) Errors() diag.List {
	return l.errors
}

func (l *Lexer) readChar() {
	if l.readPos > len(l.input) {
		return // stays at EOF
	}
	if l.readPos == len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	return l.peekCharAt(0)
}

// peekCharAt looks n characters past the next one
func (l *Lexer) peekCharAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) errorf(line int, format string, args ...any) {
	l.errors.Errorf(diag.Lexical, line, l.column, format, args...)
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	tok := Token{Line: l.line, Column: l.column}

	if l.atEOF() {
		tok.Type = TokenEOF
		return tok
	}

	switch l.ch {
	case '+':
		tok = l.either(tok, TokenPlus, '+', TokenIncrement, '=', TokenPlusAssign)
	case '-':
		switch l.peekChar() {
		case '>':
			tok = l.multi(tok, TokenArrow, 2)
		default:
			tok = l.either(tok, TokenMinus, '-', TokenDecrement, '=', TokenMinusAssign)
		}
	case '*':
		tok = l.either(tok, TokenStar, '=', TokenStarAssign, 0, 0)
	case '/':
		tok = l.either(tok, TokenSlash, '=', TokenSlashAssign, 0, 0)
	case '%':
		tok = l.either(tok, TokenPercent, '=', TokenPercentAssign, 0, 0)
	case '=':
		tok = l.either(tok, TokenAssign, '=', TokenEq, 0, 0)
	case '!':
		tok = l.either(tok, TokenNot, '=', TokenNe, 0, 0)
	case '^':
		tok = l.either(tok, TokenCaret, '=', TokenXorAssign, 0, 0)
	case '&':
		tok = l.either(tok, TokenAmpersand, '&', TokenAnd, '=', TokenAndAssign)
	case '|':
		tok = l.either(tok, TokenPipe, '|', TokenOr, '=', TokenOrAssign)
	case '<':
		if l.peekChar() == '<' {
			if l.peekCharAt(1) == '=' {
				tok = l.multi(tok, TokenShlAssign, 3)
			} else {
				tok = l.multi(tok, TokenShl, 2)
			}
		} else {
			tok = l.either(tok, TokenLt, '=', TokenLe, 0, 0)
		}
	case '>':
		if l.peekChar() == '>' {
			if l.peekCharAt(1) == '=' {
				tok = l.multi(tok, TokenShrAssign, 3)
			} else {
				tok = l.multi(tok, TokenShr, 2)
			}
		} else {
			tok = l.either(tok, TokenGt, '=', TokenGe, 0, 0)
		}
	case '.':
		if l.peekChar() == '.' {
			if l.peekCharAt(1) == '.' {
				tok = l.multi(tok, TokenEllipsis, 3)
			} else {
				tok = l.multi(tok, TokenIllegal, 2)
			}
		} else {
			tok = l.newToken(TokenDot, l.ch)
		}
	case '~':
		tok = l.newToken(TokenTilde, l.ch)
	case '?':
		tok = l.newToken(TokenQuestion, l.ch)
	case ':':
		tok = l.newToken(TokenColon, l.ch)
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '{':
		tok = l.newToken(TokenLBrace, l.ch)
	case '}':
		tok = l.newToken(TokenRBrace, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case '"':
		tok.Type = TokenString
		tok.Literal = l.readString()
		return tok
	case '\'':
		tok.Type = TokenCharLit
		tok.Literal, tok.IntValue = l.readCharLit()
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber(tok)
		}
		tok = l.newToken(TokenIllegal, l.ch)
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// either builds a one or two character operator: single alone, or two1/two2
// when the next character is c1/c2.
func (l *Lexer) either(tok Token, single TokenType, c1 byte, two1 TokenType, c2 byte, two2 TokenType) Token {
	next := l.peekChar()
	switch {
	case c1 != 0 && next == c1:
		return l.multi(tok, two1, 2)
	case c2 != 0 && next == c2:
		return l.multi(tok, two2, 2)
	}
	tok.Type = single
	tok.Literal = string(l.ch)
	return tok
}

// multi consumes an n character operator except for its last character,
// which NextToken consumes.
func (l *Lexer) multi(tok Token, typ TokenType, n int) Token {
	start := l.pos
	for i := 1; i < n; i++ {
		l.readChar()
	}
	tok.Type = typ
	tok.Literal = l.input[start : l.pos+1]
	return tok
}

// skipTrivia skips whitespace, comments and preprocessor lines
func (l *Lexer) skipTrivia() {
	for {
		l.skipWhitespace()
		switch {
		case l.ch == '#':
			l.skipLine()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLine()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f' {
		l.readChar()
	}
}

func (l *Lexer) skipLine() {
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
}

// skipBlockComment skips a comment; an inner "/*" opens a nested comment
func (l *Lexer) skipBlockComment() {
	line := l.line
	depth := 0
	for !l.atEOF() {
		switch {
		case l.ch == '/' && l.peekChar() == '*':
			depth++
			l.readChar()
		case l.ch == '*' && l.peekChar() == '/':
			depth--
			l.readChar()
			if depth == 0 {
				l.readChar()
				return
			}
		}
		l.readChar()
	}
	l.errorf(line, "unterminated comment")
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber reads a decimal or hexadecimal integer, or a real constant
// made of an integer part and a fraction. Values wrap silently on overflow.
func (l *Lexer) readNumber(tok Token) Token {
	pos := l.pos
	tok.Type = TokenInt

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		var v int64
		for isHexDigit(l.ch) {
			v = v*16 + int64(hexValue(l.ch))
			l.readChar()
		}
		tok.IntValue = v
		l.skipIntSuffix()
		tok.Literal = l.input[pos:l.pos]
		return tok
	}

	var v int64
	for isDigit(l.ch) {
		v = v*10 + int64(l.ch-'0')
		l.readChar()
	}
	tok.IntValue = v

	if l.ch == '.' {
		l.readChar()
		var mantissa int64
		divisor := 1.0
		for isDigit(l.ch) {
			mantissa = mantissa*10 + int64(l.ch-'0')
			divisor *= 10
			l.readChar()
		}
		tok.Type = TokenReal
		tok.FloatValue = float64(v) + float64(mantissa)/divisor
		if l.ch == 'f' || l.ch == 'F' || l.ch == 'l' || l.ch == 'L' {
			l.readChar()
		}
	} else {
		l.skipIntSuffix()
	}

	tok.Literal = l.input[pos:l.pos]
	return tok
}

func (l *Lexer) skipIntSuffix() {
	for l.ch == 'u' || l.ch == 'U' || l.ch == 'l' || l.ch == 'L' {
		l.readChar()
	}
}

// readString reads a string literal and every literal that follows it
// separated only by whitespace. The result is the raw text between the
// quotes, escapes left as written.
func (l *Lexer) readString() string {
	var buf []byte
	for {
		buf = append(buf, l.readQuoted()...)
		l.skipWhitespace()
		if l.ch != '"' {
			return string(buf)
		}
	}
}

func (l *Lexer) readQuoted() string {
	line := l.line
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != '"' && !l.atEOF() {
		if l.ch == '\\' {
			l.readChar() // skip escape char
		}
		l.readChar()
	}
	if l.atEOF() {
		l.errorf(line, "unterminated string constant")
		return l.input[pos:]
	}
	str := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return str
}

// readCharLit reads a character constant and returns its text and value
func (l *Lexer) readCharLit() (string, int64) {
	l.readChar() // consume '
	pos := l.pos
	var v int64

	if l.ch == '\\' {
		l.readChar()
		switch l.ch {
		case '0':
			v = 0
		case 'b':
			v = 8
		case 't':
			v = 9
		case 'n':
			v = 10
		case 'v':
			v = 11
		case 'f':
			v = 12
		case 'r':
			v = 13
		case '\'':
			v = 39
		case '\\':
			v = 92
		default:
			l.errorf(l.line, "invalid character constant")
		}
		l.readChar()
	} else {
		v = int64(l.ch)
		l.readChar()
	}

	if l.ch != '\'' {
		l.errorf(l.line, "character expected")
		for l.ch != '\'' && !l.atEOF() {
			l.readChar()
		}
	}
	lit := l.input[pos:l.pos]
	l.readChar() // consume closing '
	return lit, v
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func hexValue(ch byte) byte {
	switch {
	case isDigit(ch):
		return ch - '0'
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10
	}
	return ch - 'A' + 10
}
