package ast

import (
	"fmt"
)

type slot struct {
	node Node
	refs int
}

// Tree owns every node of one translation unit. A node is retained once
// for each parent slot that holds it; releasing the last reference frees
// the node and releases its children in turn.
type Tree struct {
	slots    []slot
	builtins map[string]NodeID
	live     int
}

// New returns an empty tree
func New() *Tree {
	return &Tree{
		slots:    make([]slot, 1, 256), // slot 0 is the absent node
		builtins: make(map[string]NodeID),
	}
}

func (t *Tree) add(n Node) NodeID {
	t.slots = append(t.slots, slot{node: n})
	t.live++
	return NodeID(len(t.slots) - 1)
}

// Node returns the node for id, or nil if id is absent or freed
func (t *Tree) Node(id NodeID) Node {
	if id <= 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id].node
}

// Kind returns the kind of id, KindInvalid for absent nodes
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind()
	}
	return KindInvalid
}

// Live reports whether id names a node that has not been freed
func (t *Tree) Live(id NodeID) bool {
	return t.Node(id) != nil
}

// LiveCount returns the number of nodes not yet freed
func (t *Tree) LiveCount() int {
	return t.live
}

// RefCount returns the number of references held on id
func (t *Tree) RefCount(id NodeID) int {
	if !t.Live(id) {
		return 0
	}
	return t.slots[id].refs
}

// Retain adds a reference to id
func (t *Tree) Retain(id NodeID) {
	if t.Live(id) {
		t.slots[id].refs++
	}
}

// Release drops a reference to id. A node left without references is
// freed together with every child it was the last holder of.
func (t *Tree) Release(id NodeID) {
	if !t.Live(id) {
		return
	}
	s := &t.slots[id]
	s.refs--
	if s.refs > 0 {
		return
	}
	n := s.node
	s.node = nil
	s.refs = 0
	t.live--
	for _, c := range n.children() {
		t.Release(*c)
	}
}

// Set stores v into a parent slot, retaining v and releasing the node the
// slot held before.
func (t *Tree) Set(field *NodeID, v NodeID) {
	t.Retain(v)
	old := *field
	*field = v
	t.Release(old)
}

// Children returns the present children of id in source order
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for _, c := range n.children() {
		if *c != 0 {
			out = append(out, *c)
		}
	}
	return out
}

// NewSequence builds a sequence from elems. Absent elements are skipped
// and sequences are spliced.
func (t *Tree) NewSequence(line int, elems ...NodeID) NodeID {
	id := t.add(&Sequence{nodeBase: nodeBase{kind: KindSequence, line: line}})
	for _, e := range elems {
		t.Append(id, e)
	}
	return id
}

// Append adds n to the end of seq. When n is itself a sequence its
// elements are spliced into seq and n is released.
func (t *Tree) Append(seq, n NodeID) {
	s, ok := t.Node(seq).(*Sequence)
	if !ok {
		panic(fmt.Sprintf("ast: append to %s", t.Kind(seq)))
	}
	if n == 0 || n == seq {
		return
	}
	if inner, ok := t.Node(n).(*Sequence); ok {
		t.Retain(n)
		for _, e := range inner.Elems {
			if e != 0 {
				t.Retain(e)
				s.Elems = append(s.Elems, e)
			}
		}
		t.Release(n)
		return
	}
	t.Retain(n)
	s.Elems = append(s.Elems, n)
}

// Elems returns the elements of a sequence, nil for anything else
func (t *Tree) Elems(seq NodeID) []NodeID {
	if s, ok := t.Node(seq).(*Sequence); ok {
		return s.Elems
	}
	return nil
}

// Name returns the identifier text of an Ident node
func (t *Tree) Name(id NodeID) string {
	if n, ok := t.Node(id).(*Ident); ok {
		return n.Name
	}
	return ""
}

// Leaf constructors

func (t *Tree) NewIdent(line int, name string) NodeID {
	return t.add(&Ident{nodeBase: nodeBase{kind: KindIdent, line: line}, Name: name})
}

func (t *Tree) NewIntegerConst(line int, v int64) NodeID {
	return t.add(&IntegerConst{nodeBase: nodeBase{kind: KindIntegerConst, line: line}, Value: v})
}

func (t *Tree) NewRealConst(line int, v float64) NodeID {
	return t.add(&RealConst{nodeBase: nodeBase{kind: KindRealConst, line: line}, Value: v})
}

func (t *Tree) NewStringConst(line int, v string) NodeID {
	return t.add(&StringConst{nodeBase: nodeBase{kind: KindStringConst, line: line}, Value: v})
}

func (t *Tree) NewCharConst(line int, v int64) NodeID {
	return t.add(&CharConst{nodeBase: nodeBase{kind: KindCharConst, line: line}, Value: v})
}

// Declarations

func (t *Tree) NewFunctionDecl(line int, typ, name, params, body NodeID, variadic bool) NodeID {
	n := &FunctionDecl{nodeBase: nodeBase{kind: KindFunctionDecl, line: line}, Variadic: variadic}
	t.Set(&n.Type, typ)
	t.Set(&n.Name, name)
	t.Set(&n.Params, params)
	t.Set(&n.Body, body)
	return t.add(n)
}

func (t *Tree) NewTypeDecl(line int, name, body NodeID) NodeID {
	n := &TypeDecl{nodeBase: nodeBase{kind: KindTypeDecl, line: line}}
	t.Set(&n.Name, name)
	t.Set(&n.Body, body)
	return t.add(n)
}

func (t *Tree) NewVarDecl(line int, typ, name, init NodeID) NodeID {
	n := &VarDecl{nodeBase: nodeBase{kind: KindVarDecl, line: line}}
	t.Set(&n.Type, typ)
	t.Set(&n.Name, name)
	t.Set(&n.Init, init)
	return t.add(n)
}

func (t *Tree) NewParmDecl(line int, typ, name NodeID) NodeID {
	n := &ParmDecl{nodeBase: nodeBase{kind: KindParmDecl, line: line}}
	t.Set(&n.Type, typ)
	t.Set(&n.Name, name)
	return t.add(n)
}

func (t *Tree) NewFieldDecl(line int, typ, name, bits NodeID) NodeID {
	n := &FieldDecl{nodeBase: nodeBase{kind: KindFieldDecl, line: line}}
	t.Set(&n.Type, typ)
	t.Set(&n.Name, name)
	t.Set(&n.Bits, bits)
	return t.add(n)
}

func (t *Tree) NewEnumerator(line int, name, value NodeID) NodeID {
	n := &Enumerator{nodeBase: nodeBase{kind: KindEnumerator, line: line}}
	t.Set(&n.Name, name)
	t.Set(&n.Value, value)
	return t.add(n)
}

// Statements

func (t *Tree) NewAsmStmt(line int, data string) NodeID {
	return t.add(&AsmStmt{nodeBase: nodeBase{kind: KindAsmStmt, line: line}, Data: data})
}

// NewBranch builds a break or continue statement
func (t *Tree) NewBranch(line int, kind Kind) NodeID {
	if kind != KindBreakStmt && kind != KindContinueStmt {
		panic(fmt.Sprintf("ast: %s is not a branch", kind))
	}
	return t.add(&BranchStmt{nodeBase: nodeBase{kind: kind, line: line}})
}

func (t *Tree) NewCaseLabel(line int, expr, stmt NodeID) NodeID {
	n := &CaseLabel{nodeBase: nodeBase{kind: KindCaseLabel, line: line}}
	t.Set(&n.Expr, expr)
	t.Set(&n.Stmt, stmt)
	return t.add(n)
}

func (t *Tree) NewDefaultLabel(line int, stmt NodeID) NodeID {
	n := &DefaultLabel{nodeBase: nodeBase{kind: KindDefaultLabel, line: line}}
	t.Set(&n.Stmt, stmt)
	return t.add(n)
}

func (t *Tree) NewCompoundStmt(line int, decls, stmts NodeID) NodeID {
	n := &CompoundStmt{nodeBase: nodeBase{kind: KindCompoundStmt, line: line}}
	t.Set(&n.Decls, decls)
	t.Set(&n.Stmts, stmts)
	return t.add(n)
}

// NewLoop builds a while or do statement
func (t *Tree) NewLoop(line int, kind Kind, cond, body NodeID) NodeID {
	if kind != KindWhileStmt && kind != KindDoStmt {
		panic(fmt.Sprintf("ast: %s is not a loop", kind))
	}
	n := &LoopStmt{nodeBase: nodeBase{kind: kind, line: line}}
	t.Set(&n.Cond, cond)
	t.Set(&n.Body, body)
	return t.add(n)
}

func (t *Tree) NewForStmt(line int, init, cond, step, body NodeID) NodeID {
	n := &ForStmt{nodeBase: nodeBase{kind: KindForStmt, line: line}}
	t.Set(&n.Init, init)
	t.Set(&n.Cond, cond)
	t.Set(&n.Step, step)
	t.Set(&n.Body, body)
	return t.add(n)
}

func (t *Tree) NewExprStmt(line int, x NodeID) NodeID {
	n := &ExprStmt{nodeBase: nodeBase{kind: KindExprStmt, line: line}}
	t.Set(&n.X, x)
	return t.add(n)
}

func (t *Tree) NewGotoStmt(line int, label NodeID) NodeID {
	n := &GotoStmt{nodeBase: nodeBase{kind: KindGotoStmt, line: line}}
	t.Set(&n.Label, label)
	return t.add(n)
}

func (t *Tree) NewIfStmt(line int, cond, then, els NodeID) NodeID {
	n := &IfStmt{nodeBase: nodeBase{kind: KindIfStmt, line: line}}
	t.Set(&n.Cond, cond)
	t.Set(&n.Then, then)
	t.Set(&n.Else, els)
	return t.add(n)
}

func (t *Tree) NewLabelStmt(line int, label, stmt NodeID) NodeID {
	n := &LabelStmt{nodeBase: nodeBase{kind: KindLabelStmt, line: line}}
	t.Set(&n.Label, label)
	t.Set(&n.Stmt, stmt)
	return t.add(n)
}

func (t *Tree) NewReturnStmt(line int, x NodeID) NodeID {
	n := &ReturnStmt{nodeBase: nodeBase{kind: KindReturnStmt, line: line}}
	t.Set(&n.X, x)
	return t.add(n)
}

func (t *Tree) NewSwitchStmt(line int, x, body NodeID) NodeID {
	n := &SwitchStmt{nodeBase: nodeBase{kind: KindSwitchStmt, line: line}}
	t.Set(&n.X, x)
	t.Set(&n.Body, body)
	return t.add(n)
}

// Expressions

// NewUnary builds a one-operand expression of the given kind
func (t *Tree) NewUnary(line int, kind Kind, x NodeID) NodeID {
	if !kind.IsUnary() {
		panic(fmt.Sprintf("ast: %s is not a unary expression", kind))
	}
	n := &Unary{nodeBase: nodeBase{kind: kind, line: line}}
	t.Set(&n.X, x)
	return t.add(n)
}

// NewBinary builds a two-operand expression of the given kind
func (t *Tree) NewBinary(line int, kind Kind, x, y NodeID) NodeID {
	if !kind.IsBinary() {
		panic(fmt.Sprintf("ast: %s is not a binary expression", kind))
	}
	n := &Binary{nodeBase: nodeBase{kind: kind, line: line}}
	t.Set(&n.X, x)
	t.Set(&n.Y, y)
	return t.add(n)
}

func (t *Tree) NewCastExpr(line int, typ, x NodeID) NodeID {
	n := &CastExpr{nodeBase: nodeBase{kind: KindCastExpr, line: line}}
	t.Set(&n.Type, typ)
	t.Set(&n.X, x)
	return t.add(n)
}

func (t *Tree) NewIndirectRef(line int, x, field NodeID) NodeID {
	n := &IndirectRef{nodeBase: nodeBase{kind: KindIndirectRef, line: line}}
	t.Set(&n.X, x)
	t.Set(&n.Field, field)
	return t.add(n)
}

func (t *Tree) NewNopExpr(line int) NodeID {
	return t.add(&NopExpr{nodeBase: nodeBase{kind: KindNopExpr, line: line}})
}

func (t *Tree) NewArrayRef(line int, x, index NodeID) NodeID {
	n := &ArrayRef{nodeBase: nodeBase{kind: KindArrayRef, line: line}}
	t.Set(&n.X, x)
	t.Set(&n.Index, index)
	return t.add(n)
}

func (t *Tree) NewStructRef(line int, x, member NodeID) NodeID {
	n := &StructRef{nodeBase: nodeBase{kind: KindStructRef, line: line}}
	t.Set(&n.X, x)
	t.Set(&n.Member, member)
	return t.add(n)
}

func (t *Tree) NewCondExpr(line int, cond, then, els NodeID) NodeID {
	n := &CondExpr{nodeBase: nodeBase{kind: KindCondExpr, line: line}}
	t.Set(&n.Cond, cond)
	t.Set(&n.Then, then)
	t.Set(&n.Else, els)
	return t.add(n)
}

func (t *Tree) NewCallExpr(line int, fun, args NodeID) NodeID {
	n := &CallExpr{nodeBase: nodeBase{kind: KindCallExpr, line: line}}
	t.Set(&n.Fun, fun)
	t.Set(&n.Args, args)
	return t.add(n)
}

// Types

func (t *Tree) NewPointerType(line int, base NodeID) NodeID {
	n := &PointerType{nodeBase: nodeBase{kind: KindPointerType, line: line}}
	t.Set(&n.Base, base)
	return t.add(n)
}

func (t *Tree) NewFunctionType(line int, result, params NodeID, variadic bool) NodeID {
	n := &FunctionType{nodeBase: nodeBase{kind: KindFunctionType, line: line}, Variadic: variadic}
	t.Set(&n.Result, result)
	t.Set(&n.Params, params)
	return t.add(n)
}

func (t *Tree) NewArrayType(line int, elem, size NodeID) NodeID {
	n := &ArrayType{nodeBase: nodeBase{kind: KindArrayType, line: line}}
	t.Set(&n.Elem, elem)
	t.Set(&n.Size, size)
	return t.add(n)
}

// NewRecordType builds a struct, union or enum specifier
func (t *Tree) NewRecordType(line int, kind Kind, name, body NodeID) NodeID {
	switch kind {
	case KindStructType, KindUnionType, KindEnumeralType:
	default:
		panic(fmt.Sprintf("ast: %s is not a record type", kind))
	}
	n := &RecordType{nodeBase: nodeBase{kind: kind, line: line}}
	t.Set(&n.Name, name)
	t.Set(&n.Body, body)
	return t.add(n)
}

func (t *Tree) NewTypedefName(line int, name string) NodeID {
	return t.add(&TypedefName{nodeBase: nodeBase{kind: KindTypedefName, line: line}, Name: name})
}

// builtinSpecs lists the shared type nodes by their canonical spelling
var builtinSpecs = map[string]struct {
	kind   Kind
	size   int
	signed bool
}{
	"void":               {KindVoidType, 0, false},
	"_Bool":              {KindBoolType, 1, false},
	"char":               {KindIntegralType, 1, true},
	"signed char":        {KindIntegralType, 1, true},
	"unsigned char":      {KindIntegralType, 1, false},
	"short":              {KindIntegralType, 2, true},
	"unsigned short":     {KindIntegralType, 2, false},
	"int":                {KindIntegralType, 4, true},
	"unsigned":           {KindIntegralType, 4, false},
	"long":               {KindIntegralType, 8, true},
	"unsigned long":      {KindIntegralType, 8, false},
	"long long":          {KindIntegralType, 8, true},
	"unsigned long long": {KindIntegralType, 8, false},
	"float":              {KindRealType, 4, false},
	"double":             {KindRealType, 8, true},
	"long double":        {KindRealType, 8, true},
}

// Builtin returns the shared node for a built-in type given by its
// canonical spelling ("int", "unsigned long", ...). The node is created on
// first use and held by the tree for its whole life.
func (t *Tree) Builtin(name string) NodeID {
	if id, ok := t.builtins[name]; ok {
		return id
	}
	spec, ok := builtinSpecs[name]
	if !ok {
		panic(fmt.Sprintf("ast: unknown builtin type %q", name))
	}
	var n Node
	switch spec.kind {
	case KindVoidType:
		n = &VoidType{nodeBase: nodeBase{kind: KindVoidType}}
	case KindBoolType:
		n = &BoolType{nodeBase: nodeBase{kind: KindBoolType}}
	case KindIntegralType:
		n = &IntegralType{nodeBase: nodeBase{kind: KindIntegralType}, Name: name, Size: spec.size, Signed: spec.signed}
	case KindRealType:
		n = &RealType{nodeBase: nodeBase{kind: KindRealType}, Name: name, Size: spec.size, Double: spec.signed}
	}
	id := t.add(n)
	t.Retain(id)
	t.builtins[name] = id
	return id
}

// IsBuiltin reports whether id is one of the shared built-in type nodes
func (t *Tree) IsBuiltin(id NodeID) bool {
	switch n := t.Node(id).(type) {
	case *VoidType, *BoolType:
		return true
	case *IntegralType:
		return t.builtins[n.Name] == id
	case *RealType:
		return t.builtins[n.Name] == id
	}
	return false
}
