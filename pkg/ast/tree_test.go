package ast

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetRetainsAndReleases(t *testing.T) {
	tr := New()
	x := tr.NewIdent(1, "x")
	y := tr.NewIdent(1, "y")
	if tr.RefCount(x) != 0 {
		t.Fatalf("new node refcount = %d, want 0", tr.RefCount(x))
	}

	stmt := tr.NewExprStmt(1, x)
	if tr.RefCount(x) != 1 {
		t.Errorf("child refcount = %d, want 1", tr.RefCount(x))
	}

	n := tr.Node(stmt).(*ExprStmt)
	tr.Set(&n.X, y)
	if tr.Live(x) {
		t.Error("replaced child should be freed")
	}
	if tr.RefCount(y) != 1 {
		t.Errorf("new child refcount = %d, want 1", tr.RefCount(y))
	}
}

func TestSharedSubtreeSurvivesOneParent(t *testing.T) {
	tr := New()
	a := tr.NewIdent(1, "a")
	one := tr.NewIntegerConst(1, 1)
	sum := tr.NewBinary(1, KindPlusExpr, a, one)
	assign := tr.NewBinary(1, KindAssignExpr, a, sum)
	tr.Retain(assign)

	if tr.RefCount(a) != 2 {
		t.Fatalf("shared refcount = %d, want 2", tr.RefCount(a))
	}
	before := tr.LiveCount()
	tr.Release(assign)
	if tr.LiveCount() != before-4 {
		t.Errorf("live count %d, want %d", tr.LiveCount(), before-4)
	}
	for _, id := range []NodeID{a, one, sum, assign} {
		if tr.Live(id) {
			t.Errorf("node %d still live", id)
		}
	}
}

func TestReleaseStopsAtSharedChild(t *testing.T) {
	tr := New()
	a := tr.NewIdent(1, "a")
	s1 := tr.NewExprStmt(1, a)
	s2 := tr.NewReturnStmt(2, a)
	tr.Retain(s1)
	tr.Retain(s2)

	tr.Release(s1)
	if !tr.Live(a) || tr.RefCount(a) != 1 {
		t.Fatalf("shared child freed too early: live=%v refs=%d", tr.Live(a), tr.RefCount(a))
	}
	tr.Release(s2)
	if tr.Live(a) {
		t.Error("child should be freed with its last parent")
	}
}

func TestAppendSplicesSequences(t *testing.T) {
	tr := New()
	inner := tr.NewSequence(1, tr.NewIdent(1, "b"), tr.NewIdent(1, "c"))
	outer := tr.NewSequence(1, tr.NewIdent(1, "a"), 0, inner)
	tr.Append(outer, tr.NewIdent(1, "d"))

	var names []string
	for _, e := range tr.Elems(outer) {
		names = append(names, tr.Name(e))
	}
	if got := strings.Join(names, " "); got != "a b c d" {
		t.Errorf("elements = %q, want %q", got, "a b c d")
	}
	if tr.Live(inner) {
		t.Error("spliced sequence should be freed")
	}
	for _, e := range tr.Elems(outer) {
		if tr.RefCount(e) != 1 {
			t.Errorf("%s refcount = %d, want 1", tr.Name(e), tr.RefCount(e))
		}
	}
}

func TestAppendToNonSequencePanics(t *testing.T) {
	tr := New()
	x := tr.NewIdent(1, "x")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	tr.Append(x, tr.NewIdent(1, "y"))
}

func TestBuiltinsAreShared(t *testing.T) {
	tr := New()
	a := tr.Builtin("int")
	b := tr.Builtin("int")
	if a != b {
		t.Fatalf("Builtin returned %d and %d", a, b)
	}
	if !tr.IsBuiltin(a) {
		t.Error("IsBuiltin(int) = false")
	}

	decl := tr.NewVarDecl(1, a, tr.NewIdent(1, "x"), 0)
	tr.Retain(decl)
	tr.Release(decl)
	if !tr.Live(a) {
		t.Error("builtin freed with its user")
	}

	it := tr.Node(tr.Builtin("unsigned long")).(*IntegralType)
	if it.Size != 8 || it.Signed {
		t.Errorf("unsigned long = %+v", it)
	}
	if tr.IsBuiltin(tr.NewPointerType(0, a)) {
		t.Error("pointer is not a builtin")
	}
}

func TestConstructorsCheckKinds(t *testing.T) {
	tests := []struct {
		name string
		f    func(tr *Tree)
	}{
		{"unary", func(tr *Tree) { tr.NewUnary(1, KindPlusExpr, 0) }},
		{"binary", func(tr *Tree) { tr.NewBinary(1, KindNegateExpr, 0, 0) }},
		{"loop", func(tr *Tree) { tr.NewLoop(1, KindForStmt, 0, 0) }},
		{"branch", func(tr *Tree) { tr.NewBranch(1, KindGotoStmt) }},
		{"record", func(tr *Tree) { tr.NewRecordType(1, KindPointerType, 0, 0) }},
		{"builtin", func(tr *Tree) { tr.Builtin("quad") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.f(New())
		})
	}
}

func TestChildrenSkipsAbsent(t *testing.T) {
	tr := New()
	cond := tr.NewIdent(1, "c")
	then := tr.NewBranch(1, KindBreakStmt)
	ifs := tr.NewIfStmt(1, cond, then, 0)
	got := tr.Children(ifs)
	if len(got) != 2 || got[0] != cond || got[1] != then {
		t.Errorf("Children = %v", got)
	}
	if tr.Kind(0) != KindInvalid || tr.Node(999) != nil {
		t.Error("absent ids should have no node")
	}
}

type counter struct {
	kinds map[Kind]int
	ends  int
}

func (c *counter) Visit(t *Tree, id NodeID) Visitor {
	if id == 0 {
		c.ends++
		return nil
	}
	c.kinds[t.Kind(id)]++
	return c
}

func TestWalkVisitsSharedNodesPerParent(t *testing.T) {
	tr := New()
	a := tr.NewIdent(1, "a")
	sum := tr.NewBinary(1, KindPlusExpr, a, tr.NewIntegerConst(1, 2))
	assign := tr.NewBinary(1, KindAssignExpr, a, sum)

	c := &counter{kinds: map[Kind]int{}}
	Walk(c, tr, assign)
	if c.kinds[KindIdent] != 2 {
		t.Errorf("ident visited %d times, want 2", c.kinds[KindIdent])
	}
	if c.ends != 5 {
		t.Errorf("got %d end calls, want 5", c.ends)
	}
}

func TestInspectPrunes(t *testing.T) {
	tr := New()
	inner := tr.NewCompoundStmt(2, tr.NewSequence(2), tr.NewSequence(2, tr.NewReturnStmt(3, 0)))
	outer := tr.NewCompoundStmt(1, tr.NewSequence(1), tr.NewSequence(1, inner))

	var seen []Kind
	Inspect(tr, outer, func(id NodeID, n Node) bool {
		seen = append(seen, n.Kind())
		return id != inner
	})
	for _, k := range seen {
		if k == KindReturnStmt {
			t.Error("pruned subtree was visited")
		}
	}
}

func TestDumpAndShape(t *testing.T) {
	tr := New()
	x := tr.NewIdent(3, "x")
	decl := tr.NewVarDecl(3, tr.Builtin("int"), x, tr.NewIntegerConst(3, 7))
	tr.Node(decl).SetFlags(FlagStatic | FlagConst)

	var buf bytes.Buffer
	if err := Dump(&buf, tr, decl); err != nil {
		t.Fatal(err)
	}
	want := "VarDecl [static const] (line 3)\n" +
		"  IntegralType int\n" +
		"  Ident x (line 3)\n" +
		"  IntegerConst 7 (line 3)\n"
	if buf.String() != want {
		t.Errorf("dump mismatch\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}

	if got := Shape(tr, decl); got != "(VarDecl [static const] (IntegralType int) (Ident x) (IntegerConst 7))" {
		t.Errorf("shape = %s", got)
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindPointerType.IsType() || KindIdent.IsType() {
		t.Error("IsType")
	}
	if !KindAssignExpr.IsBinary() || KindCondExpr.IsBinary() {
		t.Error("IsBinary")
	}
	if !KindAddrExpr.IsUnary() || KindCastExpr.IsUnary() {
		t.Error("IsUnary")
	}
	if KindWhileStmt.String() != "WhileStmt" || Kind(9999).String() != "?" {
		t.Error("String")
	}
	if got := (FlagExtern | FlagInline).String(); got != "extern inline" {
		t.Errorf("flags = %q", got)
	}
}
