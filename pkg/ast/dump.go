package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagTypedef, "typedef"},
	{FlagExtern, "extern"},
	{FlagStatic, "static"},
	{FlagAuto, "auto"},
	{FlagRegister, "register"},
	{FlagInline, "inline"},
	{FlagConst, "const"},
	{FlagVolatile, "volatile"},
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, " ")
}

// label returns the attributes of a node that are not children
func label(n Node) string {
	var parts []string
	switch n := n.(type) {
	case *Ident:
		parts = append(parts, n.Name)
	case *IntegerConst:
		parts = append(parts, strconv.FormatInt(n.Value, 10))
	case *RealConst:
		parts = append(parts, strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *StringConst:
		parts = append(parts, `"`+n.Value+`"`)
	case *CharConst:
		parts = append(parts, strconv.FormatInt(n.Value, 10))
	case *AsmStmt:
		parts = append(parts, `"`+n.Data+`"`)
	case *IntegralType:
		parts = append(parts, n.Name)
	case *RealType:
		parts = append(parts, n.Name)
	case *TypedefName:
		parts = append(parts, n.Name)
	case *FunctionDecl:
		if n.Variadic {
			parts = append(parts, "...")
		}
	case *FunctionType:
		if n.Variadic {
			parts = append(parts, "...")
		}
	}
	if f := n.Flags(); f != 0 {
		parts = append(parts, "["+f.String()+"]")
	}
	return strings.Join(parts, " ")
}

type dumper struct {
	w     io.Writer
	depth int
	lines bool
	err   error
}

func (d *dumper) Visit(t *Tree, id NodeID) Visitor {
	if id == 0 {
		d.depth--
		return nil
	}
	if d.err != nil {
		return nil
	}
	n := t.Node(id)
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", d.depth))
	sb.WriteString(n.Kind().String())
	if l := label(n); l != "" {
		sb.WriteString(" ")
		sb.WriteString(l)
	}
	if d.lines && n.Line() > 0 {
		fmt.Fprintf(&sb, " (line %d)", n.Line())
	}
	sb.WriteString("\n")
	_, d.err = io.WriteString(d.w, sb.String())
	d.depth++
	return d
}

// Dump writes an indented listing of the tree rooted at id, one node per
// line with its source line.
func Dump(w io.Writer, t *Tree, id NodeID) error {
	d := &dumper{w: w, lines: true}
	Walk(d, t, id)
	return d.err
}

// Shape renders the structure of the tree rooted at id without source
// positions. Two trees with equal shapes describe the same program.
func Shape(t *Tree, id NodeID) string {
	var sb strings.Builder
	shape(&sb, t, id)
	return sb.String()
}

func shape(sb *strings.Builder, t *Tree, id NodeID) {
	n := t.Node(id)
	if n == nil {
		sb.WriteString("_")
		return
	}
	sb.WriteString("(")
	sb.WriteString(n.Kind().String())
	if l := label(n); l != "" {
		sb.WriteString(" ")
		sb.WriteString(l)
	}
	for _, c := range n.children() {
		sb.WriteString(" ")
		shape(sb, t, *c)
	}
	sb.WriteString(")")
}
