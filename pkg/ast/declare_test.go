package ast

import (
	"strings"
	"testing"

	"github.com/raymyers/cformat/pkg/symtab"
)

func TestResolveBuiltins(t *testing.T) {
	tr := New()
	tab := symtab.New()
	tab.OpenScope()

	tests := []struct {
		name string
		want *symtab.Type
	}{
		{"char", tab.CharType},
		{"unsigned char", tab.CharType},
		{"short", tab.ShortType},
		{"int", tab.IntType},
		{"unsigned", tab.UnsignedType},
		{"long", tab.LongType},
		{"unsigned long", tab.LongType},
		{"float", tab.FloatType},
		{"double", tab.DoubleType},
		{"void", tab.VoidType},
		{"_Bool", tab.BoolType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := ResolveType(tr, tab, tr.Builtin(tt.name))
			if len(errs) > 0 {
				t.Fatalf("unexpected diagnostics: %v", errs)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if got, _ := ResolveType(tr, tab, 0); got != tab.IntType {
		t.Errorf("absent type resolves to %s, want int", got)
	}
}

func TestResolveDerived(t *testing.T) {
	tr := New()
	tab := symtab.New()
	tab.OpenScope()

	arr := tr.NewArrayType(1, tr.Builtin("short"), tr.NewBinary(1, KindMultExpr, tr.NewIntegerConst(1, 2), tr.NewIntegerConst(1, 5)))
	typ, errs := ResolveType(tr, tab, arr)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if typ.Kind != symtab.Array || typ.Length != 10 || typ.Size != 20 {
		t.Errorf("array = %+v", typ)
	}

	fp := tr.NewPointerType(1, tr.NewFunctionType(1, tr.Builtin("int"), tr.NewSequence(1), false))
	typ, _ = ResolveType(tr, tab, fp)
	if !tab.IsFunctionPointer(typ) || typ.Base.Func != tab.IntType {
		t.Errorf("function pointer = %s", typ)
	}
}

func TestResolveUnknownTypedef(t *testing.T) {
	tr := New()
	tab := symtab.New()
	tab.OpenScope()
	typ, errs := ResolveType(tr, tab, tr.NewTypedefName(4, "missing"))
	if typ != tab.NoType {
		t.Errorf("got %s, want NoType", typ)
	}
	if len(errs) != 1 || errs[0].Error() != "error: unknown type name 'missing'; line 4" {
		t.Errorf("diagnostics = %v", errs)
	}
}

// declare builds a file from top-level nodes and runs the declare pass
func declare(t *testing.T, tr *Tree, elems ...NodeID) (*symtab.Table, []string) {
	t.Helper()
	tab := symtab.New()
	root := tr.NewSequence(1, elems...)
	var msgs []string
	for _, d := range Declare(tr, tab, root) {
		msgs = append(msgs, d.Error())
	}
	return tab, msgs
}

func TestDeclareEnumValues(t *testing.T) {
	tr := New()
	enum := func(name string, v NodeID) NodeID { return tr.NewEnumerator(1, tr.NewIdent(1, name), v) }
	body := tr.NewSequence(1,
		enum("A", 0),
		enum("B", tr.NewIntegerConst(1, 10)),
		enum("C", 0),
		enum("D", tr.NewBinary(1, KindLShiftExpr, tr.NewIdent(1, "A"), tr.NewIntegerConst(1, 3))),
		enum("E", tr.NewUnary(1, KindNegateExpr, tr.NewIdent(1, "C"))),
		enum("F", tr.NewUnary(1, KindSizeofExpr, tr.Builtin("double"))),
	)
	tab, msgs := declare(t, tr, tr.NewRecordType(1, KindEnumeralType, tr.NewIdent(1, "e"), body))
	if len(msgs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}

	want := map[string]int{"A": 0, "B": 10, "C": 11, "D": 0, "E": -11, "F": 8}
	for name, v := range want {
		obj := tab.Find(name)
		if obj.Kind != symtab.Const || obj.Value != v {
			t.Errorf("%s = %d (%s), want %d", name, obj.Value, obj.Kind, v)
		}
	}
	if tag := tab.Find("enum e"); tag.Kind != symtab.TypeName || tag.Type.Kind != symtab.Enum {
		t.Errorf("enum tag = %+v", tag)
	}
}

func TestDeclareForwardStruct(t *testing.T) {
	tr := New()
	tag := func() NodeID { return tr.NewIdent(1, "node") }
	field := func(typ NodeID, name string) NodeID { return tr.NewFieldDecl(2, typ, tr.NewIdent(2, name), 0) }

	// struct node *head; struct node { int v; struct node *next; };
	head := tr.NewVarDecl(1, tr.NewPointerType(1, tr.NewRecordType(1, KindStructType, tag(), 0)), tr.NewIdent(1, "head"), 0)
	def := tr.NewRecordType(2, KindStructType, tag(), tr.NewSequence(2,
		field(tr.Builtin("int"), "v"),
		field(tr.NewPointerType(2, tr.NewRecordType(2, KindStructType, tag(), 0)), "next"),
	))
	tab, msgs := declare(t, tr, head, def)
	if len(msgs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}

	st := tab.Find("struct node").Type
	if st.Size != 8 || st.NumFields != 2 {
		t.Errorf("struct node = %+v", st)
	}
	if tab.Find("head").Type.Base != st {
		t.Error("forward reference not completed by the definition")
	}
	if seq := tr.Node(tr.Node(def).(*RecordType).Body).(*Sequence); seq.Scope == nil {
		t.Error("member scope not recorded on the body")
	}
}

func TestDeclareTypedefCompletedLater(t *testing.T) {
	tr := New()
	tag := func() NodeID { return tr.NewIdent(1, "Node") }

	// typedef struct Node Node; struct Node { Node *next; };
	td := tr.NewTypeDecl(1, tr.NewIdent(1, "Node"), tr.NewRecordType(1, KindStructType, tag(), 0))
	def := tr.NewRecordType(2, KindStructType, tag(), tr.NewSequence(2,
		tr.NewFieldDecl(2, tr.NewPointerType(2, tr.NewTypedefName(2, "Node")), tr.NewIdent(2, "next"), 0),
	))
	ext := tr.NewVarDecl(3, tr.NewRecordType(3, KindUnionType, tr.NewIdent(3, "U"), 0), tr.NewIdent(3, "u"), 0)
	tr.Node(ext).SetFlags(FlagExtern)

	tab, msgs := declare(t, tr, td, def, ext)
	if len(msgs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}
	st := tab.Find("struct Node").Type
	if tab.Find("Node").Type != st {
		t.Error("typedef does not name the struct completed later")
	}
	if st.NumFields != 1 || st.Size != 4 {
		t.Errorf("struct Node = %+v", st)
	}
	if u := tab.Find("u"); u.Type.Kind != symtab.Union {
		t.Errorf("u = %+v", u)
	}
}

func TestDeclareDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		build func(tr *Tree) []NodeID
		want  string
	}{
		{
			"struct redefined",
			func(tr *Tree) []NodeID {
				body := func() NodeID {
					return tr.NewSequence(1, tr.NewFieldDecl(1, tr.Builtin("int"), tr.NewIdent(1, "a"), 0))
				}
				return []NodeID{
					tr.NewRecordType(1, KindStructType, tr.NewIdent(1, "S"), body()),
					tr.NewRecordType(2, KindStructType, tr.NewIdent(2, "S"), body()),
				}
			},
			"error: struct type 'S' already defined; line 2",
		},
		{
			"union not declared",
			func(tr *Tree) []NodeID {
				return []NodeID{tr.NewVarDecl(3, tr.NewRecordType(3, KindUnionType, tr.NewIdent(3, "U"), 0), tr.NewIdent(3, "u"), 0)}
			},
			"error: union type 'U' not declared; line 3",
		},
		{
			"enum redefined",
			func(tr *Tree) []NodeID {
				return []NodeID{
					tr.NewRecordType(1, KindEnumeralType, tr.NewIdent(1, "E"), tr.NewSequence(1)),
					tr.NewRecordType(2, KindEnumeralType, tr.NewIdent(2, "E"), tr.NewSequence(2)),
				}
			},
			"error: enum type 'E' already defined; line 2",
		},
		{
			"variable then function",
			func(tr *Tree) []NodeID {
				return []NodeID{
					tr.NewVarDecl(1, tr.Builtin("int"), tr.NewIdent(1, "f"), 0),
					tr.NewFunctionDecl(2, tr.Builtin("int"), tr.NewIdent(2, "f"), tr.NewSequence(2), 0, false),
				}
			},
			"warning: 'f' already declared; line 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			_, msgs := declare(t, tr, tt.build(tr)...)
			if strings.Join(msgs, "\n") != tt.want {
				t.Errorf("got %v, want %q", msgs, tt.want)
			}
		})
	}
}

func TestDeclarePrototypeThenDefinition(t *testing.T) {
	tr := New()
	params := func() NodeID {
		return tr.NewSequence(1, tr.NewParmDecl(1, tr.Builtin("int"), tr.NewIdent(1, "n")))
	}
	proto := tr.NewFunctionDecl(1, tr.Builtin("int"), tr.NewIdent(1, "f"), params(), 0, false)
	local := tr.NewVarDecl(2, tr.Builtin("char"), tr.NewIdent(2, "c"), 0)
	body := tr.NewCompoundStmt(2, tr.NewSequence(2, local), tr.NewSequence(2))
	def := tr.NewFunctionDecl(2, tr.Builtin("int"), tr.NewIdent(2, "f"), params(), body, false)

	tab, msgs := declare(t, tr, proto, def)
	if len(msgs) > 0 {
		t.Fatalf("prototype then definition should be accepted: %v", msgs)
	}
	f := tab.Find("f")
	if f.Kind != symtab.Func || f.NumParams != 1 {
		t.Fatalf("f = %+v", f)
	}
	var locals []string
	for o := f.Locals; o != nil; o = o.Next {
		locals = append(locals, o.Name)
	}
	if got := strings.Join(locals, ","); got != "n,c" {
		t.Errorf("locals = %s, want n,c", got)
	}
	if tr.Node(def).(*FunctionDecl).Scope == nil {
		t.Error("function scope not recorded")
	}
}
