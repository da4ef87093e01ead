// Package frontend runs the lexer, parser and declare pass over source
// files and renders the results.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/raymyers/cformat/pkg/ast"
	"github.com/raymyers/cformat/pkg/diag"
	"github.com/raymyers/cformat/pkg/lexer"
	"github.com/raymyers/cformat/pkg/parser"
)

// ErrNoInput is returned when no input file is given
var ErrNoInput = errors.New("no input files")

// Stdin is the path that names standard input
const Stdin = "-"

// Options configures parsing
type Options struct {
	MaxErrors int // syntax errors before a file is abandoned, 0 for no limit
	Jobs      int // files parsed at once, at least 1

	// Stdin is read for the path "-". Defaults to os.Stdin.
	Stdin io.Reader
}

// DefaultOptions returns the options used by the command line
func DefaultOptions() Options {
	return Options{MaxErrors: parser.DefaultMaxErrors, Jobs: 1}
}

// Result is one parsed file
type Result struct {
	Path        string
	File        *ast.File
	Diagnostics diag.List
}

// Failed reports whether any error was diagnosed
func (r *Result) Failed() bool {
	return r.Diagnostics.ErrorCount() > 0
}

// ParseSource parses src, naming it path in the result
func ParseSource(path, src string, opts Options) *Result {
	p := parser.New(lexer.New(src), parser.WithMaxErrors(opts.MaxErrors))
	f := p.ParseTranslationUnit()
	return &Result{Path: path, File: f, Diagnostics: p.Errors()}
}

// ParseFile reads and parses one file. "-" reads opts.Stdin.
func ParseFile(path string, opts Options) (*Result, error) {
	var (
		data []byte
		err  error
	)
	if path == Stdin {
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseSource(path, string(data), opts), nil
}

// ProcessFiles parses paths concurrently, up to opts.Jobs at a time. Each
// file gets its own lexer, parser and symbol table. Results are in input
// order. The first read error cancels the files not yet started.
func ProcessFiles(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := ParseFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteC regenerates C source for the file
func (r *Result) WriteC(w io.Writer) error {
	return ast.NewPrinter(w, r.File.Tree).PrintFile(r.File.Root)
}

// WriteTree writes the indented node listing of the file
func (r *Result) WriteTree(w io.Writer) error {
	return ast.Dump(w, r.File.Tree, r.File.Root)
}

// WriteDiagnostics writes one diagnostic per line, prefixed with the path
func (r *Result) WriteDiagnostics(w io.Writer) error {
	for _, d := range r.Diagnostics {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Path, d.Error()); err != nil {
			return err
		}
	}
	return nil
}
