package ast

import (
	"github.com/raymyers/cformat/pkg/diag"
	"github.com/raymyers/cformat/pkg/symtab"
)

// File is a parsed translation unit
type File struct {
	Tree *Tree
	Root NodeID // Sequence of external declarations

	// Scope is the file scope built by the declare pass, Symbols its table
	Scope   *symtab.Scope
	Symbols *symtab.Table
}

type declarer struct {
	t    *Tree
	tab  *symtab.Table
	errs diag.List

	// resolved aggregates, so a specifier shared by several declarators
	// is entered once
	records map[NodeID]*symtab.Type
	defined map[*symtab.Object]bool
}

// Declare enters every declaration under root into tab, resolving type
// nodes to symtab types. A file scope is opened if tab has none.
func Declare(t *Tree, tab *symtab.Table, root NodeID) diag.List {
	d := &declarer{
		t:       t,
		tab:     tab,
		records: make(map[NodeID]*symtab.Type),
		defined: make(map[*symtab.Object]bool),
	}
	if tab.Level() < 0 {
		tab.OpenScope()
	}
	for _, e := range t.Elems(root) {
		d.visit(e)
	}
	return d.errs
}

// ResolveType maps a type node to a symtab type using the names visible
// in tab. Unknown tags and typedef names yield NoType and a diagnostic.
func ResolveType(t *Tree, tab *symtab.Table, id NodeID) (*symtab.Type, diag.List) {
	d := &declarer{
		t:       t,
		tab:     tab,
		records: make(map[NodeID]*symtab.Type),
		defined: make(map[*symtab.Object]bool),
	}
	typ := d.resolve(id, false)
	return typ, d.errs
}

func (d *declarer) errorf(id NodeID, format string, args ...any) {
	d.errs.Errorf(diag.Semantic, d.line(id), 0, format, args...)
}

func (d *declarer) warnf(id NodeID, format string, args ...any) {
	d.errs.Warnf(diag.Semantic, d.line(id), 0, format, args...)
}

func (d *declarer) line(id NodeID) int {
	if n := d.t.Node(id); n != nil {
		return n.Line()
	}
	return 0
}

func (d *declarer) visit(id NodeID) {
	switch n := d.t.Node(id).(type) {
	case nil:
	case *TypeDecl:
		d.typeDecl(id, n)
	case *VarDecl:
		d.varDecl(id, n)
	case *FunctionDecl:
		d.function(id, n)
	case *CompoundStmt:
		d.tab.OpenScope()
		d.block(n)
		d.tab.CloseScope()
	case *CastExpr:
		d.resolve(n.Type, false)
		d.visit(n.X)
	case *Unary:
		if d.t.Kind(n.X).IsType() {
			d.resolve(n.X, false)
			return
		}
		d.visit(n.X)
	case *RecordType:
		// a bare "struct S;" introduces the tag
		d.resolve(id, true)
	default:
		for _, c := range d.t.Children(id) {
			d.visit(c)
		}
	}
}

// block declares the contents of a compound statement in the current scope
func (d *declarer) block(n *CompoundStmt) {
	for _, e := range d.t.Elems(n.Decls) {
		d.visit(e)
	}
	for _, s := range d.t.Elems(n.Stmts) {
		d.visit(s)
	}
	n.Scope = d.tab.TopScope()
}

func (d *declarer) typeDecl(id NodeID, n *TypeDecl) {
	typ := d.resolve(n.Body, true)
	name := d.t.Name(n.Name)
	if d.tab.FindLocal(name) != d.tab.NoObj {
		d.errorf(id, "type name '%s' already exists", name)
		return
	}
	d.tab.Insert(name, symtab.TypeName, typ)
}

func (d *declarer) varDecl(id NodeID, n *VarDecl) {
	// an extern object may have a type completed elsewhere
	typ := d.resolve(n.Type, n.Flags()&FlagExtern != 0)
	kind := symtab.Var
	if n.Flags()&FlagStatic != 0 {
		kind = symtab.StaticVar
	}
	name := d.t.Name(n.Name)
	if d.tab.Insert(name, kind, typ) == d.tab.NoObj {
		d.warnf(id, "'%s' already declared", name)
	}
	d.visit(n.Init)
}

func (d *declarer) function(id NodeID, n *FunctionDecl) {
	result := d.resolve(n.Type, false)
	ftype := &symtab.Type{Kind: symtab.Function, Func: result, Size: 4}
	name := d.t.Name(n.Name)

	obj := d.tab.FindLocal(name)
	switch {
	case obj == d.tab.NoObj:
		obj = d.tab.Insert(name, symtab.Func, ftype)
	case obj.Kind != symtab.Func:
		d.warnf(id, "'%s' already declared", name)
		obj = &symtab.Object{Name: name, Kind: symtab.Func, Type: ftype}
	case d.defined[obj] && !n.IsForward():
		d.warnf(id, "function '%s' already defined", name)
	}

	d.tab.OpenScope()
	params := 0
	for _, p := range d.t.Elems(n.Params) {
		pd, ok := d.t.Node(p).(*ParmDecl)
		if !ok {
			continue
		}
		ptype := d.resolve(pd.Type, false)
		pname := d.t.Name(pd.Name)
		if pname == "" {
			continue
		}
		if d.tab.Insert(pname, symtab.Param, ptype) == d.tab.NoObj {
			d.warnf(p, "'%s' already declared", pname)
			continue
		}
		params++
	}
	if body, ok := d.t.Node(n.Body).(*CompoundStmt); ok {
		// parameters and the outermost block share one scope
		d.block(body)
		obj.NumParams = params
		obj.Locals = d.tab.TopScope().Locals
		d.defined[obj] = true
	} else if !d.defined[obj] {
		obj.NumParams = params
	}
	n.Scope = d.tab.TopScope()
	d.tab.CloseScope()
}

// tagKey names the object that stands for a struct, union or enum tag.
// The space keeps tags apart from ordinary identifiers.
func tagKey(k Kind, name string) string {
	switch k {
	case KindStructType:
		return "struct " + name
	case KindUnionType:
		return "union " + name
	}
	return "enum " + name
}

// resolve maps a type node to a symtab type. incompleteOK is set where an
// undeclared tag creates an incomplete type instead of failing: the target
// of a pointer, a typedef, an extern object or a bare tag declaration.
func (d *declarer) resolve(id NodeID, incompleteOK bool) *symtab.Type {
	tab := d.tab
	switch n := d.t.Node(id).(type) {
	case nil:
		return tab.IntType
	case *VoidType:
		return tab.VoidType
	case *BoolType:
		return tab.BoolType
	case *IntegralType:
		switch n.Size {
		case 1:
			return tab.CharType
		case 2:
			return tab.ShortType
		case 4:
			if !n.Signed {
				return tab.UnsignedType
			}
			return tab.IntType
		}
		return tab.LongType
	case *RealType:
		if n.Size == 4 {
			return tab.FloatType
		}
		return tab.DoubleType
	case *TypedefName:
		obj := tab.Find(n.Name)
		if obj == tab.NoObj || obj.Kind != symtab.TypeName {
			d.errorf(id, "unknown type name '%s'", n.Name)
			return tab.NoType
		}
		return obj.Type
	case *PointerType:
		return tab.NewPointer(d.resolve(n.Base, true))
	case *ArrayType:
		elem := d.resolve(n.Elem, false)
		length := 0
		if n.Size != 0 {
			if v, ok := d.constValue(n.Size); ok && v > 0 {
				length = int(v)
			}
			d.visit(n.Size)
		}
		return tab.NewArray(elem, length)
	case *FunctionType:
		result := d.resolve(n.Result, false)
		for _, p := range d.t.Elems(n.Params) {
			if pd, ok := d.t.Node(p).(*ParmDecl); ok {
				d.resolve(pd.Type, false)
			}
		}
		return &symtab.Type{Kind: symtab.Function, Func: result, Size: 4}
	case *RecordType:
		if typ, ok := d.records[id]; ok {
			return typ
		}
		var typ *symtab.Type
		if n.Kind() == KindEnumeralType {
			typ = d.enum(id, n)
		} else {
			typ = d.aggregate(id, n, incompleteOK)
		}
		d.records[id] = typ
		return typ
	}
	return tab.NoType
}

func (d *declarer) aggregate(id NodeID, n *RecordType, incompleteOK bool) *symtab.Type {
	tab := d.tab
	name := d.t.Name(n.Name)
	kind := symtab.Struct
	what := "struct"
	if n.Kind() == KindUnionType {
		kind = symtab.Union
		what = "union"
	}

	if n.Body == 0 {
		if obj := tab.Find(tagKey(n.Kind(), name)); obj != tab.NoObj {
			return obj.Type
		}
		if !incompleteOK {
			d.errorf(id, "%s type '%s' not declared", what, name)
			return tab.NoType
		}
		typ := &symtab.Type{Kind: kind, Tag: name}
		tab.Insert(tagKey(n.Kind(), name), symtab.TypeName, typ)
		return typ
	}

	var typ *symtab.Type
	if name != "" {
		key := tagKey(n.Kind(), name)
		obj := tab.FindLocal(key)
		switch {
		case obj == tab.NoObj:
			typ = &symtab.Type{Kind: kind, Tag: name}
			tab.Insert(key, symtab.TypeName, typ)
		case obj.Type.Fields == nil:
			// completes an earlier forward reference
			typ = obj.Type
		default:
			d.errorf(id, "%s type '%s' already defined", what, name)
			typ = &symtab.Type{Kind: kind, Tag: name}
		}
	} else {
		typ = &symtab.Type{Kind: kind}
	}

	tab.OpenScope()
	for _, m := range d.t.Elems(n.Body) {
		f, ok := d.t.Node(m).(*FieldDecl)
		if !ok {
			d.visit(m)
			continue
		}
		ftype := d.resolve(f.Type, false)
		fname := d.t.Name(f.Name)
		if fname == "" {
			continue
		}
		if tab.Insert(fname, symtab.Var, ftype) == tab.NoObj {
			d.errorf(m, "member '%s' already declared", fname)
		}
	}
	scope := tab.TopScope()
	typ.Fields = scope.Locals
	typ.NumFields = scope.NumVars
	typ.Size = scope.AggregateSize(kind == symtab.Union)
	scope.Size = typ.Size
	if seq, ok := d.t.Node(n.Body).(*Sequence); ok {
		seq.Scope = scope
	}
	tab.CloseScope()
	return typ
}

func (d *declarer) enum(id NodeID, n *RecordType) *symtab.Type {
	tab := d.tab
	name := d.t.Name(n.Name)
	if n.Body == 0 {
		if obj := tab.Find(tagKey(KindEnumeralType, name)); obj != tab.NoObj {
			return obj.Type
		}
		return &symtab.Type{Kind: symtab.Enum, Tag: name, Size: 4, Signed: true}
	}

	typ := &symtab.Type{Kind: symtab.Enum, Tag: name, Size: 4, Signed: true}
	if name != "" {
		if tab.Insert(tagKey(KindEnumeralType, name), symtab.TypeName, typ) == tab.NoObj {
			d.errorf(id, "enum type '%s' already defined", name)
		}
	}
	next := int64(0)
	for _, e := range d.t.Elems(n.Body) {
		en, ok := d.t.Node(e).(*Enumerator)
		if !ok {
			continue
		}
		ename := d.t.Name(en.Name)
		if en.Value != 0 {
			v, ok := d.constValue(en.Value)
			if !ok {
				d.errorf(e, "enumerator value for '%s' is not an integer constant", ename)
			} else {
				next = v
			}
		}
		obj := tab.Insert(ename, symtab.Const, tab.IntType)
		if obj == tab.NoObj {
			d.errorf(e, "'%s' already declared", ename)
		} else {
			obj.Value = int(next)
		}
		next++
	}
	return typ
}

// constValue folds an integer constant expression
func (d *declarer) constValue(id NodeID) (int64, bool) {
	switch n := d.t.Node(id).(type) {
	case *IntegerConst:
		return n.Value, true
	case *CharConst:
		return n.Value, true
	case *Ident:
		if obj := d.tab.Find(n.Name); obj != d.tab.NoObj && obj.Kind == symtab.Const {
			return int64(obj.Value), true
		}
	case *Unary:
		if n.Kind() == KindSizeofExpr && d.t.Kind(n.X).IsType() {
			return int64(d.resolve(n.X, false).Size), true
		}
		x, ok := d.constValue(n.X)
		if !ok {
			return 0, false
		}
		switch n.Kind() {
		case KindNegateExpr:
			return -x, true
		case KindBitNotExpr:
			return ^x, true
		case KindLogNotExpr:
			if x == 0 {
				return 1, true
			}
			return 0, true
		}
	case *Binary:
		x, ok1 := d.constValue(n.X)
		y, ok2 := d.constValue(n.Y)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch n.Kind() {
		case KindPlusExpr:
			return x + y, true
		case KindMinusExpr:
			return x - y, true
		case KindMultExpr:
			return x * y, true
		case KindTruncDivExpr:
			if y != 0 {
				return x / y, true
			}
		case KindTruncModExpr:
			if y != 0 {
				return x % y, true
			}
		case KindLShiftExpr:
			if y >= 0 && y < 64 {
				return x << uint(y), true
			}
		case KindRShiftExpr:
			if y >= 0 && y < 64 {
				return x >> uint(y), true
			}
		case KindBitAndExpr:
			return x & y, true
		case KindBitIorExpr:
			return x | y, true
		case KindBitXorExpr:
			return x ^ y, true
		}
	}
	return 0, false
}
