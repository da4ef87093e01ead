package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer regenerates C source from a tree
type Printer struct {
	w      io.Writer
	t      *Tree
	indent int
	err    error
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, t *Tree) *Printer {
	return &Printer{w: w, t: t, indent: 0}
}

// PrintFile prints a translation unit, a Sequence of external declarations
func (p *Printer) PrintFile(root NodeID) error {
	p.printDecls(p.t.Elems(root), true)
	return p.err
}

// PrintStmt prints a single statement at the current indentation
func (p *Printer) PrintStmt(id NodeID) error {
	p.printStmt(id)
	return p.err
}

// Expr renders an expression on one line
func (p *Printer) Expr(id NodeID) string {
	return p.expr(id, 0)
}

func (p *Printer) print(a ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprint(p.w, a...)
	}
}

func (p *Printer) printf(format string, a ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, a...)
	}
}

func (p *Printer) writeIndent() {
	p.print(strings.Repeat("  ", p.indent))
}

// baseOf strips pointer, array and function derivations off a type
func (p *Printer) baseOf(typ NodeID) NodeID {
	for {
		switch n := p.t.Node(typ).(type) {
		case *PointerType:
			typ = n.Base
		case *ArrayType:
			typ = n.Elem
		case *FunctionType:
			typ = n.Result
		default:
			return typ
		}
	}
}

// declParts returns the type and name of a declaration node
func (p *Printer) declParts(id NodeID) (typ, name NodeID) {
	switch n := p.t.Node(id).(type) {
	case *VarDecl:
		return n.Type, n.Name
	case *TypeDecl:
		return n.Body, n.Name
	case *FieldDecl:
		return n.Type, n.Name
	case *ParmDecl:
		return n.Type, n.Name
	}
	return 0, 0
}

func isDecl(k Kind) bool {
	return k == KindVarDecl || k == KindTypeDecl || k == KindFieldDecl
}

// printDecls prints a declaration list. Consecutive declarations sharing
// one specifier node are printed as a single declaration.
func (p *Printer) printDecls(elems []NodeID, top bool) {
	for i := 0; i < len(elems); {
		id := elems[i]
		n := p.t.Node(id)
		if n == nil {
			i++
			continue
		}
		switch {
		case isDecl(n.Kind()):
			typ, _ := p.declParts(id)
			base := p.baseOf(typ)
			j := i + 1
			for j < len(elems) {
				m := p.t.Node(elems[j])
				if m == nil || m.Kind() != n.Kind() || m.Flags() != n.Flags() {
					break
				}
				if mt, _ := p.declParts(elems[j]); p.baseOf(mt) != base {
					break
				}
				j++
			}
			p.printDeclGroup(elems[i:j])
			i = j
		case n.Kind() == KindFunctionDecl:
			p.printFunction(n.(*FunctionDecl))
			if top && i+1 < len(elems) && !p.t.Node(id).(*FunctionDecl).IsForward() {
				p.print("\n")
			}
			i++
		case n.Kind().IsType():
			p.writeIndent()
			p.printf("%s;\n", p.specifier(id))
			i++
		default:
			p.printStmt(id)
			i++
		}
	}
}

func (p *Printer) storage(f Flags) string {
	s := (f &^ FlagTypedef).String()
	if s != "" {
		s += " "
	}
	return s
}

func (p *Printer) printDeclGroup(group []NodeID) {
	first := p.t.Node(group[0])
	typ, _ := p.declParts(group[0])

	p.writeIndent()
	if first.Kind() == KindTypeDecl {
		p.print("typedef ")
	}
	p.print(p.storage(first.Flags()))
	p.print(p.specifier(p.baseOf(typ)))

	for i, id := range group {
		if i > 0 {
			p.print(",")
		}
		typ, name := p.declParts(id)
		if d := p.declarator(typ, p.t.Name(name)); d != "" {
			p.print(" ", d)
		}
		switch n := p.t.Node(id).(type) {
		case *VarDecl:
			if n.Init != 0 {
				p.print(" = ", p.expr(n.Init, precAssign))
			}
		case *FieldDecl:
			if n.Bits != 0 {
				p.print(" : ", p.expr(n.Bits, precCond))
			}
		}
	}
	p.print(";\n")
}

func (p *Printer) printFunction(f *FunctionDecl) {
	p.writeIndent()
	p.print(p.storage(f.Flags()))
	p.print(p.specifier(p.baseOf(f.Type)))
	head := p.t.Name(f.Name) + "(" + p.params(f.Params, f.Variadic) + ")"
	p.print(" ", p.declarator(f.Type, head))
	if f.IsForward() {
		p.print(";\n")
		return
	}
	p.print("\n")
	p.printStmt(f.Body)
}

// specifier renders a base type, with the body of a struct, union or
// enum when the node carries one.
func (p *Printer) specifier(id NodeID) string {
	switch n := p.t.Node(id).(type) {
	case *VoidType:
		return "void"
	case *BoolType:
		return "_Bool"
	case *IntegralType:
		return n.Name
	case *RealType:
		return n.Name
	case *TypedefName:
		return n.Name
	case *RecordType:
		var sb strings.Builder
		switch n.Kind() {
		case KindStructType:
			sb.WriteString("struct")
		case KindUnionType:
			sb.WriteString("union")
		default:
			sb.WriteString("enum")
		}
		if n.Name != 0 {
			sb.WriteString(" " + p.t.Name(n.Name))
		}
		if n.Body != 0 {
			sb.WriteString(" ")
			p.recordBody(&sb, n)
		}
		return sb.String()
	}
	return "int"
}

func (p *Printer) recordBody(sb *strings.Builder, n *RecordType) {
	sub := &Printer{w: sb, t: p.t, indent: p.indent + 1}
	sb.WriteString("{\n")
	if n.Kind() == KindEnumeralType {
		elems := p.t.Elems(n.Body)
		for i, e := range elems {
			en, ok := p.t.Node(e).(*Enumerator)
			if !ok {
				continue
			}
			sub.writeIndent()
			sub.print(p.t.Name(en.Name))
			if en.Value != 0 {
				sub.print(" = ", p.expr(en.Value, precCond))
			}
			if i < len(elems)-1 {
				sub.print(",")
			}
			sub.print("\n")
		}
	} else {
		sub.printDecls(p.t.Elems(n.Body), false)
	}
	sb.WriteString(strings.Repeat("  ", p.indent))
	sb.WriteString("}")
	if sub.err != nil && p.err == nil {
		p.err = sub.err
	}
}

// declarator renders the part of a declaration that wraps the name:
// pointers, arrays and parameter lists.
func (p *Printer) declarator(typ NodeID, inner string) string {
	switch n := p.t.Node(typ).(type) {
	case *PointerType:
		if q := n.Flags().String(); q != "" {
			if inner != "" {
				q += " "
			}
			inner = q + inner
		}
		return p.declarator(n.Base, "*"+inner)
	case *ArrayType:
		if strings.HasPrefix(inner, "*") {
			inner = "(" + inner + ")"
		}
		size := ""
		if n.Size != 0 {
			size = p.expr(n.Size, precAssign)
		}
		return p.declarator(n.Elem, inner+"["+size+"]")
	case *FunctionType:
		if strings.HasPrefix(inner, "*") {
			inner = "(" + inner + ")"
		}
		return p.declarator(n.Result, inner+"("+p.params(n.Params, n.Variadic)+")")
	}
	return inner
}

func (p *Printer) params(seq NodeID, variadic bool) string {
	var parts []string
	for _, e := range p.t.Elems(seq) {
		typ, name := p.declParts(e)
		s := p.specifier(p.baseOf(typ))
		if n := p.t.Node(e); n != nil {
			s = p.storage(n.Flags()) + s
		}
		if d := p.declarator(typ, p.t.Name(name)); d != "" {
			s += " " + d
		}
		parts = append(parts, s)
	}
	if variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// typeName renders a type as written in casts and sizeof
func (p *Printer) typeName(typ NodeID) string {
	s := p.specifier(p.baseOf(typ))
	if d := p.declarator(typ, ""); d != "" {
		s += " " + d
	}
	return s
}

func (p *Printer) printBody(id NodeID) {
	if p.t.Kind(id) == KindCompoundStmt {
		p.printStmt(id)
		return
	}
	p.indent++
	p.printStmt(id)
	p.indent--
}

func (p *Printer) printStmt(id NodeID) {
	n := p.t.Node(id)
	if n == nil {
		p.writeIndent()
		p.print(";\n")
		return
	}
	if isDecl(n.Kind()) || n.Kind() == KindFunctionDecl {
		p.printDecls([]NodeID{id}, false)
		return
	}

	switch s := n.(type) {
	case *CompoundStmt:
		p.writeIndent()
		p.print("{\n")
		p.indent++
		p.printDecls(p.t.Elems(s.Decls), false)
		for _, st := range p.t.Elems(s.Stmts) {
			p.printStmt(st)
		}
		p.indent--
		p.writeIndent()
		p.print("}\n")
	case *Sequence:
		for _, st := range s.Elems {
			p.printStmt(st)
		}
	case *ExprStmt:
		p.writeIndent()
		p.print(p.expr(s.X, 0), ";\n")
	case *IfStmt:
		p.writeIndent()
		p.printf("if (%s)\n", p.expr(s.Cond, 0))
		p.printBody(s.Then)
		if s.Else != 0 {
			p.writeIndent()
			p.print("else\n")
			p.printBody(s.Else)
		}
	case *LoopStmt:
		p.writeIndent()
		if s.Kind() == KindWhileStmt {
			p.printf("while (%s)\n", p.expr(s.Cond, 0))
			p.printBody(s.Body)
			return
		}
		p.print("do\n")
		p.printBody(s.Body)
		p.writeIndent()
		p.printf("while (%s);\n", p.expr(s.Cond, 0))
	case *ForStmt:
		p.writeIndent()
		p.printf("for (%s; %s; %s)\n", p.expr(s.Init, 0), p.expr(s.Cond, 0), p.expr(s.Step, 0))
		p.printBody(s.Body)
	case *SwitchStmt:
		p.writeIndent()
		p.printf("switch (%s)\n", p.expr(s.X, 0))
		p.printBody(s.Body)
	case *CaseLabel:
		p.writeIndent()
		p.printf("case %s:\n", p.expr(s.Expr, precCond))
		p.printStmt(s.Stmt)
	case *DefaultLabel:
		p.writeIndent()
		p.print("default:\n")
		p.printStmt(s.Stmt)
	case *LabelStmt:
		// Labels are printed without indent
		p.printf("%s:\n", p.t.Name(s.Label))
		p.printStmt(s.Stmt)
	case *GotoStmt:
		p.writeIndent()
		p.printf("goto %s;\n", p.t.Name(s.Label))
	case *BranchStmt:
		p.writeIndent()
		if s.Kind() == KindBreakStmt {
			p.print("break;\n")
		} else {
			p.print("continue;\n")
		}
	case *ReturnStmt:
		p.writeIndent()
		if s.X == 0 {
			p.print("return;\n")
		} else {
			p.printf("return %s;\n", p.expr(s.X, 0))
		}
	case *AsmStmt:
		p.writeIndent()
		p.printf("asm(\"%s\");\n", s.Data)
	default:
		p.writeIndent()
		p.printf("%s;\n", p.expr(id, 0))
	}
}

// Operator precedence, higher binds tighter
const (
	precComma   = 1
	precAssign  = 2
	precCond    = 3
	precUnary   = 14
	precPostfix = 15
	precPrimary = 16
)

var binaryOps = map[Kind]struct {
	op   string
	prec int
}{
	KindMultExpr:     {"*", 13},
	KindTruncDivExpr: {"/", 13},
	KindTruncModExpr: {"%", 13},
	KindPlusExpr:     {"+", 12},
	KindMinusExpr:    {"-", 12},
	KindLShiftExpr:   {"<<", 11},
	KindRShiftExpr:   {">>", 11},
	KindLtExpr:       {"<", 10},
	KindLeExpr:       {"<=", 10},
	KindGtExpr:       {">", 10},
	KindGeExpr:       {">=", 10},
	KindEqExpr:       {"==", 9},
	KindNeExpr:       {"!=", 9},
	KindBitAndExpr:   {"&", 8},
	KindBitXorExpr:   {"^", 7},
	KindBitIorExpr:   {"|", 6},
	KindLogAndExpr:   {"&&", 5},
	KindLogOrExpr:    {"||", 4},
	KindAssignExpr:   {"=", precAssign},
	KindCompoundExpr: {",", precComma},
}

// BinaryOp returns the C spelling of a binary expression kind
func BinaryOp(k Kind) string {
	return binaryOps[k].op
}

func (p *Printer) prec(id NodeID) int {
	n := p.t.Node(id)
	if n == nil {
		return precPrimary
	}
	switch n := n.(type) {
	case *Binary:
		return binaryOps[n.Kind()].prec
	case *CondExpr:
		return precCond
	case *ArrayRef, *CallExpr, *StructRef:
		return precPostfix
	case *IndirectRef:
		if n.Field != 0 {
			return precPostfix
		}
		return precUnary
	case *Unary:
		if n.Kind() == KindPostincrementExpr || n.Kind() == KindPostdecrementExpr {
			return precPostfix
		}
		return precUnary
	case *CastExpr:
		return precUnary
	}
	return precPrimary
}

// expr renders id, parenthesized when it binds looser than min
func (p *Printer) expr(id NodeID, min int) string {
	s := p.exprRaw(id)
	if p.prec(id) < min {
		return "(" + s + ")"
	}
	return s
}

// prefix joins a prefix operator and its operand without letting them
// lex as a different token, as in - -x or & &x.
func prefix(op, operand string) string {
	if operand != "" && op[len(op)-1] == operand[0] {
		return op + "(" + operand + ")"
	}
	return op + operand
}

func (p *Printer) exprRaw(id NodeID) string {
	switch n := p.t.Node(id).(type) {
	case nil:
		return ""
	case *Ident:
		return n.Name
	case *IntegerConst:
		return strconv.FormatInt(n.Value, 10)
	case *RealConst:
		s := strconv.FormatFloat(n.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case *StringConst:
		return `"` + n.Value + `"`
	case *CharConst:
		return charLiteral(n.Value)
	case *NopExpr:
		return ""
	case *Sequence:
		var parts []string
		for _, e := range n.Elems {
			parts = append(parts, p.expr(e, precAssign))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Binary:
		op := binaryOps[n.Kind()]
		switch n.Kind() {
		case KindAssignExpr:
			return p.expr(n.X, precUnary) + " = " + p.expr(n.Y, precAssign)
		case KindCompoundExpr:
			return p.expr(n.X, precComma) + ", " + p.expr(n.Y, precAssign)
		}
		return p.expr(n.X, op.prec) + " " + op.op + " " + p.expr(n.Y, op.prec+1)
	case *CondExpr:
		return p.expr(n.Cond, precCond+1) + " ? " + p.expr(n.Then, precComma) + " : " + p.expr(n.Else, precCond)
	case *Unary:
		return p.unary(n)
	case *CastExpr:
		return "(" + p.typeName(n.Type) + ")" + p.expr(n.X, precUnary)
	case *IndirectRef:
		if n.Field != 0 {
			return p.expr(n.X, precPostfix) + "->" + p.t.Name(n.Field)
		}
		return prefix("*", p.expr(n.X, precUnary))
	case *ArrayRef:
		return p.expr(n.X, precPostfix) + "[" + p.expr(n.Index, 0) + "]"
	case *StructRef:
		return p.expr(n.X, precPostfix) + "." + p.t.Name(n.Member)
	case *CallExpr:
		var args []string
		for _, a := range p.t.Elems(n.Args) {
			args = append(args, p.expr(a, precAssign))
		}
		return p.expr(n.Fun, precPostfix) + "(" + strings.Join(args, ", ") + ")"
	}
	if p.t.Kind(id).IsType() {
		return p.typeName(id)
	}
	return "/* unknown expr */"
}

func (p *Printer) unary(n *Unary) string {
	switch n.Kind() {
	case KindSizeofExpr, KindAlignofExpr:
		kw := "sizeof"
		if n.Kind() == KindAlignofExpr {
			kw = "_Alignof"
		}
		if p.t.Kind(n.X).IsType() {
			return kw + "(" + p.typeName(n.X) + ")"
		}
		return kw + "(" + p.expr(n.X, 0) + ")"
	case KindPostincrementExpr:
		return p.expr(n.X, precPostfix) + "++"
	case KindPostdecrementExpr:
		return p.expr(n.X, precPostfix) + "--"
	}
	ops := map[Kind]string{
		KindNegateExpr:       "-",
		KindBitNotExpr:       "~",
		KindLogNotExpr:       "!",
		KindPreincrementExpr: "++",
		KindPredecrementExpr: "--",
		KindAddrExpr:         "&",
	}
	return prefix(ops[n.Kind()], p.expr(n.X, precUnary))
}

func charLiteral(v int64) string {
	switch v {
	case 0:
		return `'\0'`
	case 8:
		return `'\b'`
	case 9:
		return `'\t'`
	case 10:
		return `'\n'`
	case 11:
		return `'\v'`
	case 12:
		return `'\f'`
	case 13:
		return `'\r'`
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	}
	return "'" + string(rune(v)) + "'"
}
