package symtab

import (
	"fmt"
	"strings"
)

// TypeKind classifies a Type
type TypeKind int

const (
	None TypeKind = iota
	Char
	Short
	Int
	Unsigned
	Long
	Float
	Double
	Void
	Array
	Struct
	Union
	Bool
	Pointer
	Enum
	Function
)

func (k TypeKind) String() string {
	names := []string{"none", "char", "short", "int", "unsigned", "long", "float",
		"double", "void", "array", "struct", "union", "_Bool", "pointer", "enum", "function"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Type describes a resolved C type. Built-in types are shared per Table and
// compared by identity.
type Type struct {
	Kind      TypeKind
	Elem      *Type   // array element type
	Base      *Type   // pointed-to type
	Func      *Type   // result type of a function type
	Fields    *Object // first member of a struct or union
	NumFields int
	Length    int // array element count
	Size      int
	Signed    bool
	Tag       string // struct, union or enum tag
}

// Members returns the fields of a struct or union in declaration order
func (t *Type) Members() []*Object {
	var out []*Object
	for f := t.Fields; f != nil; f = f.Next {
		if f.Kind == Var {
			out = append(out, f)
		}
	}
	return out
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Pointer:
		if t.Base == nil {
			return "pointer"
		}
		if t.Base.Kind == Function {
			return t.Base.String()
		}
		return t.Base.String() + " *"
	case Array:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Length)
	case Function:
		return fmt.Sprintf("%s (*)()", t.Func)
	case Struct, Union, Enum:
		if t.Tag != "" {
			return t.Kind.String() + " " + t.Tag
		}
		var sb strings.Builder
		sb.WriteString(t.Kind.String())
		sb.WriteString(" {")
		for i, f := range t.Members() {
			if i > 0 {
				sb.WriteString(";")
			}
			sb.WriteString(" ")
			sb.WriteString(f.Name)
		}
		sb.WriteString(" }")
		return sb.String()
	case Unsigned:
		return "unsigned int"
	}
	return t.Kind.String()
}

// IsIntegral reports char, short, int, unsigned and long
func (tab *Table) IsIntegral(t *Type) bool {
	return t == tab.CharType || t == tab.IntType || t == tab.UnsignedType ||
		t == tab.ShortType || t == tab.LongType
}

// IsReal reports float and double
func (tab *Table) IsReal(t *Type) bool {
	return t == tab.FloatType || t == tab.DoubleType
}

func (tab *Table) IsArithmetic(t *Type) bool {
	return tab.IsIntegral(t) || tab.IsReal(t)
}

func (tab *Table) IsPointer(t *Type) bool {
	return t != nil && t.Kind == Pointer
}

func (tab *Table) IsScalar(t *Type) bool {
	return tab.IsPointer(t) || tab.IsArithmetic(t)
}

// IsFunctionPointer reports a pointer whose base is a function type
func (tab *Table) IsFunctionPointer(t *Type) bool {
	return tab.IsPointer(t) && t.Base != nil && t.Base.Kind == Function
}

// EqualFunctionPointerTypes compares function pointers by result type only.
// Parameter lists are not compared.
func (tab *Table) EqualFunctionPointerTypes(a, b *Type) bool {
	return tab.IsFunctionPointer(a) && tab.IsFunctionPointer(b) &&
		a.Base.Func == b.Base.Func
}

// EqualBasePointerTypes reports two pointers to the identical type
func (tab *Table) EqualBasePointerTypes(a, b *Type) bool {
	return tab.IsPointer(a) && tab.IsPointer(b) && a.Base == b.Base
}

// isUntypedPointer reports a pointer whose base is NoType
func (tab *Table) isUntypedPointer(t *Type) bool {
	return tab.IsPointer(t) && t.Base == tab.NoType
}

// Compatible reports whether a and b may meet in a comparison or an
// arithmetic expression. Integers mix freely with each other and with
// pointers; pointers are compatible when their bases are.
func (tab *Table) Compatible(a, b *Type) bool {
	switch {
	case a == b:
		return true
	case tab.IsIntegral(a) && tab.IsIntegral(b):
		return true
	case tab.IsIntegral(a) && tab.IsPointer(b), tab.IsIntegral(b) && tab.IsPointer(a):
		return true
	case tab.IsPointer(a) && tab.isUntypedPointer(b), tab.IsPointer(b) && tab.isUntypedPointer(a):
		return true
	case tab.IsPointer(a) && tab.IsPointer(b):
		return tab.Compatible(a.Base, b.Base)
	}
	return false
}

// Assignable reports whether a value of type b may be stored in an object
// of type a.
func (tab *Table) Assignable(a, b *Type) bool {
	switch {
	case tab.IsArithmetic(a) && tab.IsArithmetic(b):
		return true
	case tab.IsPointer(a) && tab.isUntypedPointer(b), tab.IsPointer(b) && tab.isUntypedPointer(a):
		return true
	}
	return tab.EqualBasePointerTypes(a, b)
}

// Convertible reports whether a cast from b to a is allowed. Every cast is
// accepted.
func (tab *Table) Convertible(a, b *Type) bool {
	return true
}
