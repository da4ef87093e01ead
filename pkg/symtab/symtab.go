// Package symtab implements the scope chain and type registry used while
// parsing C.
package symtab

import (
	"modernc.org/mathutil"
)

// MaxNameLen is the longest name an object keeps. Longer names are cut.
const MaxNameLen = 255

// ObjectKind classifies a named entity
type ObjectKind int

const (
	Const ObjectKind = iota
	Var
	StaticVar
	TypeName
	Func
	Param
	Label
	Ptr
)

func (k ObjectKind) String() string {
	names := []string{"const", "var", "static", "type", "func", "param", "label", "pointer"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Object is a named entity in a scope
type Object struct {
	Name  string
	Kind  ObjectKind
	Type  *Type
	Value int // enumerator value
	Level int

	// Functions only
	NumParams int
	Locals    *Object // parameters followed by locals

	Next *Object
}

// Scope holds the objects declared at one nesting level
type Scope struct {
	Outer     *Scope
	Locals    *Object
	NumVars   int
	NumParams int
	Size      int
}

// Objects returns the members of s in declaration order
func (s *Scope) Objects() []*Object {
	var out []*Object
	for o := s.Locals; o != nil; o = o.Next {
		out = append(out, o)
	}
	return out
}

func (s *Scope) lookup(name string) *Object {
	for o := s.Locals; o != nil; o = o.Next {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// AggregateSize sums the member sizes of a struct scope, or takes the
// largest member for a union. Tags and enumerators declared inside the
// body do not count.
func (s *Scope) AggregateSize(union bool) int {
	size := 0
	for o := s.Locals; o != nil; o = o.Next {
		if o.Type == nil || o.Kind != Var {
			continue
		}
		if union {
			size = mathutil.Max(size, o.Type.Size)
		} else {
			size += o.Type.Size
		}
	}
	return size
}

// Table is the symbol table: a stack of scopes plus the built-in types
type Table struct {
	top    *Scope
	global *Scope
	file   *Scope
	level  int

	CharType     *Type
	ShortType    *Type
	IntType      *Type
	UnsignedType *Type
	LongType     *Type
	FloatType    *Type
	DoubleType   *Type
	VoidType     *Type
	BoolType     *Type
	NullType     *Type
	NoType       *Type

	// NoObj is returned by failed lookups and rejected inserts
	NoObj *Object
}

// New returns a table at level -1 holding the built-in type names
func New() *Table {
	tab := &Table{level: -1}
	tab.top = &Scope{}
	tab.global = tab.top

	tab.CharType = &Type{Kind: Char, Size: 1, Signed: true}
	tab.ShortType = &Type{Kind: Short, Size: 2, Signed: true}
	tab.IntType = &Type{Kind: Int, Size: 4, Signed: true}
	tab.UnsignedType = &Type{Kind: Unsigned, Size: 4}
	tab.LongType = &Type{Kind: Long, Size: 4, Signed: true}
	tab.FloatType = &Type{Kind: Float, Size: 4}
	tab.DoubleType = &Type{Kind: Double, Size: 8}
	tab.VoidType = &Type{Kind: Void, Size: 4}
	tab.BoolType = &Type{Kind: Bool, Size: 1}

	tab.NoType = &Type{Kind: None}
	tab.Insert("NOTYPE", TypeName, tab.NoType)
	tab.NullType = &Type{Kind: Pointer, Size: 4}
	tab.NoObj = &Object{Name: "noObj", Kind: Var, Type: tab.NoType}
	tab.Insert("__builtin_va_list", TypeName, tab.NoType)
	return tab
}

// NewType allocates a type of the given kind
func (tab *Table) NewType(kind TypeKind) *Type {
	return &Type{Kind: kind}
}

// NewPointer returns a pointer to base
func (tab *Table) NewPointer(base *Type) *Type {
	return &Type{Kind: Pointer, Base: base, Size: 4}
}

// NewArray returns an array of length elements. The size saturates
// instead of overflowing.
func (tab *Table) NewArray(elem *Type, length int) *Type {
	t := &Type{Kind: Array, Elem: elem, Length: length}
	if elem != nil && length > 0 {
		if elem.Size > 0 && length > mathutil.MaxInt/elem.Size {
			t.Size = mathutil.MaxInt
		} else {
			t.Size = elem.Size * length
		}
	}
	return t
}

// Insert adds an object to the innermost scope. It returns NoObj when the
// scope already holds the name.
func (tab *Table) Insert(name string, kind ObjectKind, typ *Type) *Object {
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	if tab.top.lookup(name) != nil {
		return tab.NoObj
	}

	obj := &Object{Name: name, Kind: kind, Type: typ, Level: tab.level}
	switch kind {
	case Var:
		tab.top.NumVars++
	case Param:
		tab.top.NumParams++
	}

	if tab.top.Locals == nil {
		tab.top.Locals = obj
		return obj
	}
	last := tab.top.Locals
	for last.Next != nil {
		last = last.Next
	}
	last.Next = obj
	return obj
}

// Find searches the scope chain from the innermost scope outwards
func (tab *Table) Find(name string) *Object {
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	for s := tab.top; s != nil; s = s.Outer {
		if o := s.lookup(name); o != nil {
			return o
		}
	}
	return tab.NoObj
}

// FindLocal searches the innermost scope only
func (tab *Table) FindLocal(name string) *Object {
	if o := tab.top.lookup(name); o != nil {
		return o
	}
	return tab.NoObj
}

// IsTypeName reports whether name currently resolves to a type object
func (tab *Table) IsTypeName(name string) bool {
	obj := tab.Find(name)
	return obj != tab.NoObj && obj.Kind == TypeName
}

// OpenScope pushes a new innermost scope
func (tab *Table) OpenScope() {
	tab.top = &Scope{Outer: tab.top}
	tab.level++
	if tab.level == 0 {
		tab.file = tab.top
	}
}

// CloseScope pops the innermost scope
func (tab *Table) CloseScope() {
	if tab.top.Outer == nil {
		return
	}
	tab.top = tab.top.Outer
	tab.level--
}

// Level returns the nesting depth: -1 before any scope is opened, 0 for
// file scope.
func (tab *Table) Level() int {
	return tab.level
}

func (tab *Table) TopScope() *Scope {
	return tab.top
}

// SetTopScope makes s the innermost scope. The level is recomputed from
// the chain length.
func (tab *Table) SetTopScope(s *Scope) {
	tab.top = s
	level := -1
	for p := s; p != tab.global && p != nil; p = p.Outer {
		level++
	}
	tab.level = level
}

// FileScope returns the level 0 scope, or nil before it is opened
func (tab *Table) FileScope() *Scope {
	return tab.file
}
