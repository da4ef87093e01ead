// Package ast defines the syntax tree produced by the parser. Nodes live in
// a Tree and are addressed by NodeID; a subtree may be shared by several
// parents and is freed when the last of them lets go of it.
package ast

import (
	"github.com/raymyers/cformat/pkg/symtab"
)

// NodeID addresses a node inside its Tree. The zero value means "absent".
type NodeID int32

// Kind tags every node
type Kind int

const (
	KindInvalid Kind = iota
	KindIdent
	KindSequence

	// Constants
	KindIntegerConst
	KindRealConst
	KindStringConst
	KindCharConst

	// Declarations
	KindFunctionDecl
	KindTypeDecl
	KindVarDecl
	KindParmDecl
	KindFieldDecl
	KindEnumerator

	// Statements
	KindAsmStmt
	KindBreakStmt
	KindCaseLabel
	KindDefaultLabel
	KindCompoundStmt
	KindContinueStmt
	KindDoStmt
	KindExprStmt
	KindForStmt
	KindGotoStmt
	KindIfStmt
	KindLabelStmt
	KindReturnStmt
	KindSwitchStmt
	KindWhileStmt

	// Unary expressions
	KindSizeofExpr
	KindAlignofExpr
	KindCastExpr
	KindNegateExpr
	KindBitNotExpr
	KindLogNotExpr
	KindPredecrementExpr
	KindPreincrementExpr
	KindPostdecrementExpr
	KindPostincrementExpr
	KindAddrExpr
	KindIndirectRef
	KindNopExpr

	// Binary expressions
	KindLShiftExpr
	KindRShiftExpr
	KindBitIorExpr
	KindBitXorExpr
	KindBitAndExpr
	KindLogAndExpr
	KindLogOrExpr
	KindPlusExpr
	KindMinusExpr
	KindMultExpr
	KindTruncDivExpr
	KindTruncModExpr
	KindLtExpr
	KindLeExpr
	KindGtExpr
	KindGeExpr
	KindEqExpr
	KindNeExpr
	KindAssignExpr
	KindCompoundExpr

	// Other expressions
	KindArrayRef
	KindStructRef
	KindCondExpr
	KindCallExpr

	// Types
	KindVoidType
	KindIntegralType
	KindRealType
	KindBoolType
	KindEnumeralType
	KindPointerType
	KindFunctionType
	KindArrayType
	KindStructType
	KindUnionType
	KindTypedefName
)

var kindNames = [...]string{
	KindInvalid:           "Invalid",
	KindIdent:             "Ident",
	KindSequence:          "Sequence",
	KindIntegerConst:      "IntegerConst",
	KindRealConst:         "RealConst",
	KindStringConst:       "StringConst",
	KindCharConst:         "CharConst",
	KindFunctionDecl:      "FunctionDecl",
	KindTypeDecl:          "TypeDecl",
	KindVarDecl:           "VarDecl",
	KindParmDecl:          "ParmDecl",
	KindFieldDecl:         "FieldDecl",
	KindEnumerator:        "Enumerator",
	KindAsmStmt:           "AsmStmt",
	KindBreakStmt:         "BreakStmt",
	KindCaseLabel:         "CaseLabel",
	KindDefaultLabel:      "DefaultLabel",
	KindCompoundStmt:      "CompoundStmt",
	KindContinueStmt:      "ContinueStmt",
	KindDoStmt:            "DoStmt",
	KindExprStmt:          "ExprStmt",
	KindForStmt:           "ForStmt",
	KindGotoStmt:          "GotoStmt",
	KindIfStmt:            "IfStmt",
	KindLabelStmt:         "LabelStmt",
	KindReturnStmt:        "ReturnStmt",
	KindSwitchStmt:        "SwitchStmt",
	KindWhileStmt:         "WhileStmt",
	KindSizeofExpr:        "SizeofExpr",
	KindAlignofExpr:       "AlignofExpr",
	KindCastExpr:          "CastExpr",
	KindNegateExpr:        "NegateExpr",
	KindBitNotExpr:        "BitNotExpr",
	KindLogNotExpr:        "LogNotExpr",
	KindPredecrementExpr:  "PredecrementExpr",
	KindPreincrementExpr:  "PreincrementExpr",
	KindPostdecrementExpr: "PostdecrementExpr",
	KindPostincrementExpr: "PostincrementExpr",
	KindAddrExpr:          "AddrExpr",
	KindIndirectRef:       "IndirectRef",
	KindNopExpr:           "NopExpr",
	KindLShiftExpr:        "LShiftExpr",
	KindRShiftExpr:        "RShiftExpr",
	KindBitIorExpr:        "BitIorExpr",
	KindBitXorExpr:        "BitXorExpr",
	KindBitAndExpr:        "BitAndExpr",
	KindLogAndExpr:        "LogAndExpr",
	KindLogOrExpr:         "LogOrExpr",
	KindPlusExpr:          "PlusExpr",
	KindMinusExpr:         "MinusExpr",
	KindMultExpr:          "MultExpr",
	KindTruncDivExpr:      "TruncDivExpr",
	KindTruncModExpr:      "TruncModExpr",
	KindLtExpr:            "LtExpr",
	KindLeExpr:            "LeExpr",
	KindGtExpr:            "GtExpr",
	KindGeExpr:            "GeExpr",
	KindEqExpr:            "EqExpr",
	KindNeExpr:            "NeExpr",
	KindAssignExpr:        "AssignExpr",
	KindCompoundExpr:      "CompoundExpr",
	KindArrayRef:          "ArrayRef",
	KindStructRef:         "StructRef",
	KindCondExpr:          "CondExpr",
	KindCallExpr:          "CallExpr",
	KindVoidType:          "VoidType",
	KindIntegralType:      "IntegralType",
	KindRealType:          "RealType",
	KindBoolType:          "BoolType",
	KindEnumeralType:      "EnumeralType",
	KindPointerType:       "PointerType",
	KindFunctionType:      "FunctionType",
	KindArrayType:         "ArrayType",
	KindStructType:        "StructType",
	KindUnionType:         "UnionType",
	KindTypedefName:       "TypedefName",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// IsType reports the type node kinds
func (k Kind) IsType() bool {
	return k >= KindVoidType && k <= KindTypedefName
}

// IsBinary reports the two-operand expression kinds
func (k Kind) IsBinary() bool {
	return k >= KindLShiftExpr && k <= KindCompoundExpr
}

// IsUnary reports the one-operand expression kinds handled by Unary
func (k Kind) IsUnary() bool {
	switch k {
	case KindSizeofExpr, KindAlignofExpr, KindNegateExpr, KindBitNotExpr,
		KindLogNotExpr, KindPredecrementExpr, KindPreincrementExpr,
		KindPostdecrementExpr, KindPostincrementExpr, KindAddrExpr:
		return true
	}
	return false
}

// Flags carries storage class and qualifiers of a declaration
type Flags uint

const (
	FlagTypedef  Flags = 0x1
	FlagExtern   Flags = 0x2
	FlagStatic   Flags = 0x4
	FlagAuto     Flags = 0x8
	FlagRegister Flags = 0x10
	FlagConst    Flags = 0x20
	FlagVolatile Flags = 0x40
	FlagInline   Flags = 0x80
)

// Node is implemented by every node type of this package
type Node interface {
	Kind() Kind
	Line() int
	Flags() Flags
	SetFlags(Flags)
	// children returns the child slots in source order
	children() []*NodeID
}

type nodeBase struct {
	kind  Kind
	line  int
	flags Flags
}

func (b *nodeBase) Kind() Kind { return b.kind }
func (b *nodeBase) Line() int { return b.line }
func (b *nodeBase) Flags() Flags { return b.flags }
func (b *nodeBase) SetFlags(f Flags) { b.flags = f }
func (b *nodeBase) children() []*NodeID { return nil }

// Ident is an identifier
type Ident struct {
	nodeBase
	Name string
}

type IntegerConst struct {
	nodeBase
	Value int64
}

type RealConst struct {
	nodeBase
	Value float64
}

// StringConst holds the raw text between the quotes
type StringConst struct {
	nodeBase
	Value string
}

type CharConst struct {
	nodeBase
	Value int64
}

// Sequence is an ordered list of nodes: translation units, parameter,
// argument, member, enumerator, initializer and declarator lists.
type Sequence struct {
	nodeBase
	Elems []NodeID
	Scope *symtab.Scope
}

func (s *Sequence) children() []*NodeID {
	out := make([]*NodeID, len(s.Elems))
	for i := range s.Elems {
		out[i] = &s.Elems[i]
	}
	return out
}

// FunctionDecl is a function definition or prototype. Type is the result
// type, Params a Sequence of ParmDecl. Body is absent for prototypes.
type FunctionDecl struct {
	nodeBase
	Type     NodeID
	Name     NodeID
	Params   NodeID
	Body     NodeID
	Variadic bool
	Scope    *symtab.Scope
}

func (n *FunctionDecl) children() []*NodeID {
	return []*NodeID{&n.Type, &n.Name, &n.Params, &n.Body}
}

// IsForward reports a prototype without a body
func (n *FunctionDecl) IsForward() bool { return n.Body == 0 }

// TypeDecl is a typedef: Name names Body
type TypeDecl struct {
	nodeBase
	Name NodeID
	Body NodeID
}

func (n *TypeDecl) children() []*NodeID { return []*NodeID{&n.Body, &n.Name} }

type VarDecl struct {
	nodeBase
	Type NodeID
	Name NodeID
	Init NodeID
}

func (n *VarDecl) children() []*NodeID { return []*NodeID{&n.Type, &n.Name, &n.Init} }

// ParmDecl is a function parameter; Name is absent in abstract declarators
type ParmDecl struct {
	nodeBase
	Type NodeID
	Name NodeID
}

func (n *ParmDecl) children() []*NodeID { return []*NodeID{&n.Type, &n.Name} }

// FieldDecl is a struct or union member. Bits is the bit-field width.
type FieldDecl struct {
	nodeBase
	Type NodeID
	Name NodeID
	Bits NodeID
}

func (n *FieldDecl) children() []*NodeID { return []*NodeID{&n.Type, &n.Name, &n.Bits} }

// Enumerator is one constant of an enum body
type Enumerator struct {
	nodeBase
	Name  NodeID
	Value NodeID
}

func (n *Enumerator) children() []*NodeID { return []*NodeID{&n.Name, &n.Value} }

// AsmStmt keeps the template string of an asm statement
type AsmStmt struct {
	nodeBase
	Data string
}

// BranchStmt is break or continue
type BranchStmt struct {
	nodeBase
}

type CaseLabel struct {
	nodeBase
	Expr NodeID
	Stmt NodeID
}

func (n *CaseLabel) children() []*NodeID { return []*NodeID{&n.Expr, &n.Stmt} }

type DefaultLabel struct {
	nodeBase
	Stmt NodeID
}

func (n *DefaultLabel) children() []*NodeID { return []*NodeID{&n.Stmt} }

// CompoundStmt is a block. Decls and Stmts are Sequences.
type CompoundStmt struct {
	nodeBase
	Decls NodeID
	Stmts NodeID
	Scope *symtab.Scope
}

func (n *CompoundStmt) children() []*NodeID { return []*NodeID{&n.Decls, &n.Stmts} }

// LoopStmt is a while or do statement
type LoopStmt struct {
	nodeBase
	Cond NodeID
	Body NodeID
}

func (n *LoopStmt) children() []*NodeID {
	if n.kind == KindDoStmt {
		return []*NodeID{&n.Body, &n.Cond}
	}
	return []*NodeID{&n.Cond, &n.Body}
}

type ForStmt struct {
	nodeBase
	Init NodeID
	Cond NodeID
	Step NodeID
	Body NodeID
}

func (n *ForStmt) children() []*NodeID {
	return []*NodeID{&n.Init, &n.Cond, &n.Step, &n.Body}
}

type ExprStmt struct {
	nodeBase
	X NodeID
}

func (n *ExprStmt) children() []*NodeID { return []*NodeID{&n.X} }

type GotoStmt struct {
	nodeBase
	Label NodeID
}

func (n *GotoStmt) children() []*NodeID { return []*NodeID{&n.Label} }

type IfStmt struct {
	nodeBase
	Cond NodeID
	Then NodeID
	Else NodeID
}

func (n *IfStmt) children() []*NodeID { return []*NodeID{&n.Cond, &n.Then, &n.Else} }

type LabelStmt struct {
	nodeBase
	Label NodeID
	Stmt  NodeID
}

func (n *LabelStmt) children() []*NodeID { return []*NodeID{&n.Label, &n.Stmt} }

type ReturnStmt struct {
	nodeBase
	X NodeID
}

func (n *ReturnStmt) children() []*NodeID { return []*NodeID{&n.X} }

type SwitchStmt struct {
	nodeBase
	X    NodeID
	Body NodeID
}

func (n *SwitchStmt) children() []*NodeID { return []*NodeID{&n.X, &n.Body} }

// Unary is a one-operand expression. For sizeof and _Alignof X may be a
// type node.
type Unary struct {
	nodeBase
	X NodeID
}

func (n *Unary) children() []*NodeID { return []*NodeID{&n.X} }

type CastExpr struct {
	nodeBase
	Type NodeID
	X    NodeID
}

func (n *CastExpr) children() []*NodeID { return []*NodeID{&n.Type, &n.X} }

// IndirectRef is *X, or X->Field when Field is present
type IndirectRef struct {
	nodeBase
	X     NodeID
	Field NodeID
}

func (n *IndirectRef) children() []*NodeID { return []*NodeID{&n.X, &n.Field} }

// NopExpr stands for an empty expression
type NopExpr struct {
	nodeBase
}

// Binary is a two-operand expression, the operator given by its kind
type Binary struct {
	nodeBase
	X NodeID
	Y NodeID
}

func (n *Binary) children() []*NodeID { return []*NodeID{&n.X, &n.Y} }

type ArrayRef struct {
	nodeBase
	X     NodeID
	Index NodeID
}

func (n *ArrayRef) children() []*NodeID { return []*NodeID{&n.X, &n.Index} }

// StructRef is X.Member
type StructRef struct {
	nodeBase
	X      NodeID
	Member NodeID
}

func (n *StructRef) children() []*NodeID { return []*NodeID{&n.X, &n.Member} }

type CondExpr struct {
	nodeBase
	Cond NodeID
	Then NodeID
	Else NodeID
}

func (n *CondExpr) children() []*NodeID { return []*NodeID{&n.Cond, &n.Then, &n.Else} }

// CallExpr applies Fun to Args, a Sequence
type CallExpr struct {
	nodeBase
	Fun  NodeID
	Args NodeID
}

func (n *CallExpr) children() []*NodeID { return []*NodeID{&n.Fun, &n.Args} }

type VoidType struct {
	nodeBase
}

type BoolType struct {
	nodeBase
}

// IntegralType is one of the built-in integer types
type IntegralType struct {
	nodeBase
	Name   string
	Size   int
	Signed bool
}

type RealType struct {
	nodeBase
	Name   string
	Size   int
	Double bool
}

type PointerType struct {
	nodeBase
	Base NodeID
}

func (n *PointerType) children() []*NodeID { return []*NodeID{&n.Base} }

// FunctionType is the type of a function or the target of a function
// pointer. Params is a Sequence of ParmDecl.
type FunctionType struct {
	nodeBase
	Result   NodeID
	Params   NodeID
	Variadic bool
}

func (n *FunctionType) children() []*NodeID { return []*NodeID{&n.Result, &n.Params} }

// ArrayType has an optional size expression
type ArrayType struct {
	nodeBase
	Elem NodeID
	Size NodeID
}

func (n *ArrayType) children() []*NodeID { return []*NodeID{&n.Elem, &n.Size} }

// RecordType is a struct, union or enum specifier. Name is the optional
// tag, Body the optional member (or enumerator) Sequence.
type RecordType struct {
	nodeBase
	Name NodeID
	Body NodeID
}

func (n *RecordType) children() []*NodeID { return []*NodeID{&n.Name, &n.Body} }

// TypedefName refers to a type introduced by typedef
type TypedefName struct {
	nodeBase
	Name string
}
