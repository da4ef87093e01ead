package parser

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/lexer"
	"github.com/raymyers/cformat/pkg/symtab"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name        string   `yaml:"name"`
	Input       string   `yaml:"input"`
	Shape       string   `yaml:"shape,omitempty"`
	C           string   `yaml:"c,omitempty"`
	Errors      []string `yaml:"errors,omitempty"`
	NoRoundTrip bool     `yaml:"no_roundtrip,omitempty"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func parse(t *testing.T, src string, opts ...Option) (*ast.File, *Parser) {
	t.Helper()
	p := New(lexer.New(src), opts...)
	return p.ParseTranslationUnit(), p
}

func printC(t *testing.T, f *ast.File) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ast.NewPrinter(&buf, f.Tree).PrintFile(f.Root); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	return buf.String()
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}
	if len(testFile.Tests) == 0 {
		t.Fatal("no tests in parse.yaml")
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			f, p := parse(t, tc.Input)

			var got []string
			for _, d := range p.Errors() {
				got = append(got, d.Error())
			}
			if strings.Join(got, "\n") != strings.Join(tc.Errors, "\n") {
				t.Fatalf("diagnostics mismatch\ngot:\n%s\nwant:\n%s",
					strings.Join(got, "\n"), strings.Join(tc.Errors, "\n"))
			}

			shape := ast.Shape(f.Tree, f.Root)
			if tc.Shape != "" && shape != tc.Shape {
				t.Errorf("shape mismatch\ngot:  %s\nwant: %s", shape, tc.Shape)
			}

			if len(tc.Errors) > 0 {
				return
			}
			out := printC(t, f)
			if tc.C != "" && out != tc.C {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", out, tc.C)
			}
			if tc.NoRoundTrip {
				return
			}
			again, p2 := parse(t, out)
			if len(p2.Errors()) > 0 {
				t.Fatalf("reparse of\n%s\nfailed: %v", out, p2.Errors())
			}
			if s := ast.Shape(again.Tree, again.Root); s != shape {
				t.Errorf("round trip changed the tree\nfirst:  %s\nsecond: %s", shape, s)
			}
		})
	}
}

func TestLookaheadRing(t *testing.T) {
	r := newRing(lexer.New("a b c d e"))
	want := []string{"a", "b", "c", "d"}
	for k, w := range want {
		if got := r.peek(k).Literal; got != w {
			t.Errorf("peek(%d) = %q, want %q", k, got, w)
		}
	}
	r.advance()
	if r.peek(0).Literal != "b" || r.peek(3).Literal != "e" {
		t.Errorf("after advance got %q..%q", r.peek(0).Literal, r.peek(3).Literal)
	}
	r.advance()
	if r.peek(3).Type != lexer.TokenEOF {
		t.Errorf("expected EOF at the end of the window, got %v", r.peek(3).Type)
	}

	defer func() {
		if recover() == nil {
			t.Error("peek beyond the window should panic")
		}
	}()
	r.peek(lookahead)
}

func TestCompoundAssignSharesTarget(t *testing.T) {
	f, p := parse(t, "void f(void) { x[i] <<= 2; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}

	var assign *ast.Binary
	ast.Inspect(f.Tree, f.Root, func(id ast.NodeID, n ast.Node) bool {
		if b, ok := n.(*ast.Binary); ok && b.Kind() == ast.KindAssignExpr {
			assign = b
		}
		return true
	})
	if assign == nil {
		t.Fatal("no assignment found")
	}
	shift, ok := f.Tree.Node(assign.Y).(*ast.Binary)
	if !ok || shift.Kind() != ast.KindLShiftExpr {
		t.Fatalf("right side is %s, want LShiftExpr", f.Tree.Kind(assign.Y))
	}
	if shift.X != assign.X {
		t.Errorf("target not shared: %d and %d", assign.X, shift.X)
	}
	if n := f.Tree.RefCount(assign.X); n != 2 {
		t.Errorf("target refcount = %d, want 2", n)
	}
}

func TestDeclaratorsShareSpecifier(t *testing.T) {
	f, _ := parse(t, "struct P { int x; } a, *b;")
	elems := f.Tree.Elems(f.Root)
	if len(elems) != 2 {
		t.Fatalf("got %s", ast.Shape(f.Tree, f.Root))
	}
	a := f.Tree.Node(elems[0]).(*ast.VarDecl)
	b := f.Tree.Node(elems[1]).(*ast.VarDecl)
	ptr := f.Tree.Node(b.Type).(*ast.PointerType)
	if a.Type != ptr.Base {
		t.Fatalf("declarators use different specifier nodes")
	}
	if n := f.Tree.RefCount(a.Type); n != 2 {
		t.Errorf("specifier refcount = %d, want 2", n)
	}
}

func TestReleaseFreesTree(t *testing.T) {
	f, p := parse(t, "struct P { int x; } a, b; int f(int n) { return n += 1; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if f.Tree.RefCount(f.Root) != 1 {
		t.Errorf("root refcount = %d, want 1", f.Tree.RefCount(f.Root))
	}
	f.Tree.Release(f.Root)
	if f.Tree.Live(f.Root) {
		t.Error("root still live")
	}
	// only the built-in int remains
	if n := f.Tree.LiveCount(); n != 1 {
		t.Errorf("%d nodes live after release, want 1", n)
	}
}

func findObject(s *symtab.Scope, name string) *symtab.Object {
	for _, o := range s.Objects() {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func TestAggregateSizes(t *testing.T) {
	f, p := parse(t, `struct S { int a; char b; double c; } s;
union U { int i; double d; } u;
struct S *ps;
int arr[2 + 3];
`)
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	tests := []struct {
		name string
		size int
	}{
		{"s", 13},
		{"u", 8},
		{"ps", 4},
		{"arr", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := findObject(f.Scope, tt.name)
			if obj == nil {
				t.Fatalf("%s not in file scope", tt.name)
			}
			if obj.Type.Size != tt.size {
				t.Errorf("size of %s = %d, want %d", tt.name, obj.Type.Size, tt.size)
			}
		})
	}

	s := findObject(f.Scope, "struct S")
	ps := findObject(f.Scope, "ps")
	if s == nil || ps == nil || ps.Type.Base != s.Type {
		t.Error("pointer does not refer to the declared struct")
	}
}

func TestParametersShareBodyScope(t *testing.T) {
	f, p := parse(t, "int f(int a) { int a; return a; }")
	errs := p.Errors()
	if len(errs) != 1 || errs[0].Error() != "warning: 'a' already declared; line 1" {
		t.Fatalf("got %v", errs)
	}

	fn := f.Tree.Node(f.Tree.Elems(f.Root)[0]).(*ast.FunctionDecl)
	if fn.Scope == nil {
		t.Fatal("function scope not recorded")
	}
	body := f.Tree.Node(fn.Body).(*ast.CompoundStmt)
	if body.Scope != fn.Scope {
		t.Error("body and parameters are in different scopes")
	}
	obj := findObject(f.Scope, "f")
	if obj == nil || obj.NumParams != 1 {
		t.Fatalf("function object %+v", obj)
	}
}

func TestStopOnFirstError(t *testing.T) {
	src := "int a = ;\nint b = ;\nint c = ;\n"
	_, p := parse(t, src, WithStopOnFirstError())
	if n := p.Errors().ErrorCount(); n != 1 {
		t.Errorf("got %d errors, want 1", n)
	}

	_, p = parse(t, src, WithMaxErrors(0))
	if n := p.Errors().ErrorCount(); n != 3 {
		t.Errorf("got %d errors without limit, want 3", n)
	}
}

func TestErrorLimitDefault(t *testing.T) {
	src := strings.Repeat("int = 1;\n", DefaultMaxErrors+5)
	_, p := parse(t, src)
	if n := p.Errors().ErrorCount(); n != DefaultMaxErrors {
		t.Errorf("got %d errors, want %d", n, DefaultMaxErrors)
	}
}

func TestBuiltinName(t *testing.T) {
	tests := []struct {
		words []lexer.TokenType
		want  string
	}{
		{nil, "int"},
		{[]lexer.TokenType{lexer.TokenUnsigned}, "unsigned"},
		{[]lexer.TokenType{lexer.TokenUnsigned, lexer.TokenChar}, "unsigned char"},
		{[]lexer.TokenType{lexer.TokenShort, lexer.TokenInt_}, "short"},
		{[]lexer.TokenType{lexer.TokenLong, lexer.TokenUnsigned, lexer.TokenLong}, "unsigned long long"},
		{[]lexer.TokenType{lexer.TokenLong, lexer.TokenDouble}, "long double"},
		{[]lexer.TokenType{lexer.TokenBool}, "_Bool"},
		{[]lexer.TokenType{lexer.TokenVoid}, "void"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := builtinName(tt.words); got != tt.want {
				t.Errorf("builtinName(%v) = %q, want %q", tt.words, got, tt.want)
			}
		})
	}
}

func TestTypedefFeedback(t *testing.T) {
	// (T)*p is a cast of a dereference when T is a type, a product otherwise
	tests := []struct {
		name string
		src  string
		kind ast.Kind
	}{
		{"type", "typedef int T; int f(int *p) { return (T)*p; }", ast.KindCastExpr},
		{"variable", "int T; int f(int *p) { return (T)*p; }", ast.KindMultExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, p := parse(t, tt.src)
			if len(p.Errors()) > 0 {
				t.Fatalf("unexpected errors: %v", p.Errors())
			}
			var ret *ast.ReturnStmt
			ast.Inspect(f.Tree, f.Root, func(id ast.NodeID, n ast.Node) bool {
				if r, ok := n.(*ast.ReturnStmt); ok {
					ret = r
				}
				return true
			})
			if ret == nil {
				t.Fatal("no return statement")
			}
			if k := f.Tree.Kind(ret.X); k != tt.kind {
				t.Errorf("got %s, want %s", k, tt.kind)
			}
		})
	}
}

func TestSymbolTableTracksTypedefs(t *testing.T) {
	_, p := parse(t, "typedef int T; void f(void) { typedef char U; }")
	tab := p.SymbolTable()
	if !tab.IsTypeName("T") {
		t.Error("T should be a type name at file level")
	}
	if tab.IsTypeName("U") {
		t.Error("U should have gone out of scope with its block")
	}
}

func TestBlockDeclarationList(t *testing.T) {
	f, p := parse(t, "void f(void) { int a; const int b = 1; while (a) a--; int c; return; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn := f.Tree.Node(f.Tree.Elems(f.Root)[0]).(*ast.FunctionDecl)
	body := f.Tree.Node(fn.Body).(*ast.CompoundStmt)

	kinds := func(seq ast.NodeID) []ast.Kind {
		var ks []ast.Kind
		for _, e := range f.Tree.Elems(seq) {
			ks = append(ks, f.Tree.Kind(e))
		}
		return ks
	}
	decls := kinds(body.Decls)
	if len(decls) != 2 || decls[0] != ast.KindVarDecl || decls[1] != ast.KindVarDecl {
		t.Errorf("decls = %v", decls)
	}
	stmts := kinds(body.Stmts)
	want := []ast.Kind{ast.KindWhileStmt, ast.KindVarDecl, ast.KindReturnStmt}
	if len(stmts) != len(want) {
		t.Fatalf("stmts = %v, want %v", stmts, want)
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Errorf("stmts[%d] = %s, want %s", i, stmts[i], want[i])
		}
	}
}
