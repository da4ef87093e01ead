package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent   // main, foo, x
	TokenInt     // 42, 0x2A
	TokenReal    // 3.14
	TokenCharLit // 'a'
	TokenString  // "hello"

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenPercent   // %
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !
	TokenAmpersand // &
	TokenPipe      // |
	TokenCaret     // ^
	TokenTilde     // ~
	TokenShl       // <<
	TokenShr       // >>
	TokenQuestion  // ?
	TokenColon     // :

	// Compound assignment operators
	TokenPlusAssign    // +=
	TokenMinusAssign   // -=
	TokenStarAssign    // *=
	TokenSlashAssign   // /=
	TokenPercentAssign // %=
	TokenAndAssign     // &=
	TokenOrAssign      // |=
	TokenXorAssign     // ^=
	TokenShlAssign     // <<=
	TokenShrAssign     // >>=

	// Increment/decrement
	TokenIncrement // ++
	TokenDecrement // --

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
	TokenArrow     // ->
	TokenEllipsis  // ...

	keywordBegin
	TokenElse
	TokenSizeof

	// Keywords that may start a declaration
	declarationBegin
	TokenAuto
	TokenChar
	TokenConst
	TokenDouble
	TokenEnum
	TokenExtern
	TokenFloat
	TokenInline
	TokenInt_
	TokenLong
	TokenRegister
	TokenRestrict
	TokenShort
	TokenSigned
	TokenStatic
	TokenStruct
	TokenTypedef
	TokenUnion
	TokenUnsigned
	TokenVoid
	TokenVolatile
	declarationEnd

	// Keywords that may start a statement
	statementBegin
	TokenAsm
	TokenBreak
	TokenCase
	TokenContinue
	TokenDefault
	TokenDo
	TokenFor
	TokenGoto
	TokenIf
	TokenReturn
	TokenSwitch
	TokenWhile
	statementEnd

	// C11
	TokenAlignas
	TokenAlignof
	TokenAtomic
	TokenBool
	TokenComplex
	TokenGeneric
	TokenImaginary
	TokenNoreturn
	TokenStaticAssert
	TokenThreadLocal
	TokenFunc

	// GCC extensions
	TokenAttribute
	TokenAsmExt
	TokenNullable

	keywordEnd
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "end of file",
	TokenIllegal: "unknown",
	TokenIdent:   "identifier",
	TokenInt:     "integer constant",
	TokenReal:    "float constant",
	TokenCharLit: "character constant",
	TokenString:  "string constant",

	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenEq:            "==",
	TokenNe:            "!=",
	TokenLt:            "<",
	TokenLe:            "<=",
	TokenGt:            ">",
	TokenGe:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenAmpersand:     "&",
	TokenPipe:          "|",
	TokenCaret:         "^",
	TokenTilde:         "~",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenQuestion:      "?",
	TokenColon:         ":",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenAndAssign:     "&=",
	TokenOrAssign:      "|=",
	TokenXorAssign:     "^=",
	TokenShlAssign:     "<<=",
	TokenShrAssign:     ">>=",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenArrow:         "->",
	TokenEllipsis:      "...",
}

func init() {
	for word, tok := range keywords {
		tokenNames[tok] = word
	}
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is a reserved word
func (t TokenType) IsKeyword() bool {
	return t > keywordBegin && t < keywordEnd
}

// IsFirstOfDeclaration reports whether t is one of the reserved words
// that begin a declaration (auto, char, const, ..., volatile).
func (t TokenType) IsFirstOfDeclaration() bool {
	return t > declarationBegin && t < declarationEnd
}

// IsFirstOfStatement reports whether t is one of the reserved words that
// can only begin a statement (asm, break, case, ..., while).
func (t TokenType) IsFirstOfStatement() bool {
	return t > statementBegin && t < statementEnd
}

// IsTypeQualifier reports const, volatile, restrict, _Atomic and _Nullable
func (t TokenType) IsTypeQualifier() bool {
	switch t {
	case TokenConst, TokenVolatile, TokenRestrict, TokenAtomic, TokenNullable:
		return true
	}
	return false
}

// IsBuiltinTypeSpecifier reports the keywords that begin a type
// specifier. Typedef names are identifiers and are resolved by the parser.
func (t TokenType) IsBuiltinTypeSpecifier() bool {
	switch t {
	case TokenChar, TokenDouble, TokenEnum, TokenFloat, TokenInt_, TokenLong,
		TokenShort, TokenSigned, TokenStruct, TokenUnion, TokenUnsigned,
		TokenVoid, TokenBool:
		return true
	}
	return false
}

// Token represents a lexical token. IntValue holds the value of integer
// and character constants, FloatValue the value of real constants.
type Token struct {
	Type       TokenType
	Literal    string
	IntValue   int64
	FloatValue float64
	Line       int
	Column     int
}

// keywords maps reserved words to token types
var keywords = map[string]TokenType{
	"auto":     TokenAuto,
	"char":     TokenChar,
	"const":    TokenConst,
	"double":   TokenDouble,
	"else":     TokenElse,
	"enum":     TokenEnum,
	"extern":   TokenExtern,
	"float":    TokenFloat,
	"inline":   TokenInline,
	"int":      TokenInt_,
	"long":     TokenLong,
	"register": TokenRegister,
	"restrict": TokenRestrict,
	"short":    TokenShort,
	"signed":   TokenSigned,
	"sizeof":   TokenSizeof,
	"static":   TokenStatic,
	"struct":   TokenStruct,
	"typedef":  TokenTypedef,
	"union":    TokenUnion,
	"unsigned": TokenUnsigned,
	"void":     TokenVoid,
	"volatile": TokenVolatile,

	"asm":      TokenAsm,
	"break":    TokenBreak,
	"case":     TokenCase,
	"continue": TokenContinue,
	"default":  TokenDefault,
	"do":       TokenDo,
	"for":      TokenFor,
	"goto":     TokenGoto,
	"if":       TokenIf,
	"return":   TokenReturn,
	"switch":   TokenSwitch,
	"while":    TokenWhile,

	"_Alignas":       TokenAlignas,
	"_Alignof":       TokenAlignof,
	"_Atomic":        TokenAtomic,
	"_Bool":          TokenBool,
	"_Complex":       TokenComplex,
	"_Generic":       TokenGeneric,
	"_Imaginary":     TokenImaginary,
	"_Noreturn":      TokenNoreturn,
	"_Static_assert": TokenStaticAssert,
	"_Thread_local":  TokenThreadLocal,
	"__func__":       TokenFunc,

	"__attribute__": TokenAttribute,
	"__asm":         TokenAsmExt,
	"_Nullable":     TokenNullable,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}
