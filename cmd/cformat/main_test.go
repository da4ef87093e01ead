package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/cformat/pkg/frontend"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
}

func TestFlagsExist(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)

	expectedFlags := []string{"output", "dump-tree", "dump-symbols", "max-errors", "jobs"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag --%s to exist", flagName)
		}
	}
}

func TestNormalizeFlags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"-dump-tree", "a.c"}, []string{"--dump-tree", "a.c"}},
		{[]string{"-dump-symbols", "-max-errors", "3"}, []string{"--dump-symbols", "--max-errors", "3"}},
		{[]string{"-o", "out.c", "-j", "2"}, []string{"-o", "out.c", "-j", "2"}},
		{[]string{"-"}, []string{"-"}},
	}
	for _, tt := range tests {
		got := normalizeFlags(tt.in)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("normalizeFlags(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNoInput(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{})
	err := cmd.Execute()

	if !errors.Is(err, frontend.ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if !strings.Contains(errOut.String(), "cformat: no input files") {
		t.Errorf("expected message about missing input, got: %s", errOut.String())
	}
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRegeneratesC(t *testing.T) {
	path := writeSource(t, "test.c", "int main(){return 1+2*3;}")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, errOut.String())
	}

	want := "int main()\n{\n  return 1 + 2 * 3;\n}\n"
	if out.String() != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestDumpTree(t *testing.T) {
	path := writeSource(t, "test.c", "int x = 5;")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dump-tree", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"Sequence", "VarDecl (line 1)", "IntegralType int", "Ident x", "IntegerConst 5"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in tree dump, got:\n%s", want, output)
		}
	}
}

func TestDumpSymbols(t *testing.T) {
	path := writeSource(t, "test.c", "struct P { int x; int y; } p; int f(int a) { int b; return a + b; }")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dump-symbols", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var summary frontend.SymbolSummary
	if err := yaml.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}
	if summary.File != path {
		t.Errorf("file = %q, want %q", summary.File, path)
	}
	names := map[string]frontend.Symbol{}
	for _, s := range summary.Symbols {
		names[s.Name] = s
	}
	if s, ok := names["p"]; !ok || s.Size != 8 {
		t.Errorf("expected p of size 8, got %+v", s)
	}
	f, ok := names["f"]
	if !ok {
		t.Fatalf("expected symbol f in %+v", summary.Symbols)
	}
	if f.Kind != "func" || f.Params != 1 || len(f.Locals) != 2 {
		t.Errorf("unexpected function summary %+v", f)
	}
}

func TestOutputFile(t *testing.T) {
	path := writeSource(t, "test.c", "int x;")
	outPath := filepath.Join(t.TempDir(), "out.c")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", outPath, path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(data) != "int x;\n" {
		t.Errorf("output file = %q", string(data))
	}
}

func TestOutputNeedsSingleInput(t *testing.T) {
	a := writeSource(t, "a.c", "int a;")
	b := writeSource(t, "b.c", "int b;")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-o", filepath.Join(t.TempDir(), "out.c"), a, b})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for -o with two inputs")
	}
	if !strings.Contains(errOut.String(), "single input") {
		t.Errorf("unexpected stderr: %s", errOut.String())
	}
}

func TestSyntaxErrorsReported(t *testing.T) {
	path := writeSource(t, "bad.c", "int x = ;\nint y;\n")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()

	if !errors.Is(err, ErrDiagnostics) {
		t.Errorf("expected ErrDiagnostics, got %v", err)
	}
	want := path + ": line 1; col 9; error: expected expression"
	if !strings.Contains(errOut.String(), want) {
		t.Errorf("expected %q in stderr, got: %s", want, errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("failed file should produce no output, got %q", out.String())
	}
}

func TestWarningsDoNotFail(t *testing.T) {
	path := writeSource(t, "warn.c", "int x;\nint x;\n")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("warnings should not fail: %v", err)
	}
	if !strings.Contains(errOut.String(), "warning: 'x' already declared; line 2") {
		t.Errorf("expected redeclaration warning, got: %s", errOut.String())
	}
}

func TestMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.c")})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing file")
	}
	if !strings.Contains(errOut.String(), "cformat: reading") {
		t.Errorf("unexpected stderr: %s", errOut.String())
	}
}

func TestJobsKeepInputOrder(t *testing.T) {
	var paths []string
	var want strings.Builder
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		paths = append(paths, writeSource(t, name+".c", "int "+name+";"))
		want.WriteString("int " + name + ";\n")
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"-j", "3"}, paths...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != want.String() {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want.String())
	}
}
