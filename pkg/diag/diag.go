// Package diag defines the diagnostics reported by the lexer, parser and
// declare pass.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Category tells which phase produced a diagnostic
type Category int

const (
	Lexical Category = iota
	Syntax
	Semantic
)

func (c Category) String() string {
	names := []string{"lexical", "syntax", "semantic"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Severity of a diagnostic. Warnings never fail a compilation.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single positioned message
type Diagnostic struct {
	Category Category
	Severity Severity
	Line     int
	Col      int
	Msg      string
}

// Error formats the diagnostic the way the command line prints it.
// Syntax errors carry a column, the other categories only a line.
func (d Diagnostic) Error() string {
	if d.Category == Syntax {
		return fmt.Sprintf("line %d; col %d; %s: %s", d.Line, d.Col, d.Severity, d.Msg)
	}
	return fmt.Sprintf("%s: %s; line %d", d.Severity, d.Msg, d.Line)
}

// List is an ordered collection of diagnostics
type List []Diagnostic

// Add appends a diagnostic built from its parts
func (l *List) Add(cat Category, sev Severity, line, col int, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Category: cat,
		Severity: sev,
		Line:     line,
		Col:      col,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// Errorf records an error
func (l *List) Errorf(cat Category, line, col int, format string, args ...any) {
	l.Add(cat, Error, line, col, format, args...)
}

// Warnf records a warning
func (l *List) Warnf(cat Category, line, col int, format string, args ...any) {
	l.Add(cat, Warning, line, col, format, args...)
}

// Append adds every diagnostic of other
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// ErrorCount returns the number of error-severity entries
func (l List) ErrorCount() int {
	n := 0
	for _, d := range l {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warnings
func (l List) WarningCount() int {
	return len(l) - l.ErrorCount()
}

// Sort orders the list by position. Entries on the same position keep
// their relative order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Line != l[j].Line {
			return l[i].Line < l[j].Line
		}
		return l[i].Col < l[j].Col
	})
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	for i, d := range l {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}

// Err returns the list as an error if it holds at least one error,
// nil when it is empty or only holds warnings.
func (l List) Err() error {
	if l.ErrorCount() == 0 {
		return nil
	}
	return l
}
