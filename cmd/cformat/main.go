package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/cformat/pkg/frontend"
	"github.com/raymyers/cformat/pkg/parser"
)

var version = "0.1"

// ErrDiagnostics is returned when an input has errors. The diagnostics
// themselves have already been printed.
var ErrDiagnostics = errors.New("errors in input")

// options holds the command line flags
type options struct {
	output      string
	dumpTree    bool
	dumpSymbols bool
	maxErrors   int
	jobs        int
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// singleDashFlags lists long flags also accepted with a single dash
var singleDashFlags = []string{"dump-tree", "dump-symbols", "max-errors"}

// normalizeFlags converts single-dash long flags like -dump-tree to
// --dump-tree for pflag.
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, name := range singleDashFlags {
			if arg == "-"+name {
				result[i] = "--" + name
				break
			}
		}
	}
	return result
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.output, "output", "o", "", "Write output to FILE (single input only)")
	fs.BoolVar(&o.dumpTree, "dump-tree", false, "Print the syntax tree instead of C source")
	fs.BoolVar(&o.dumpSymbols, "dump-symbols", false, "Print the file-scope symbols as YAML")
	fs.IntVar(&o.maxErrors, "max-errors", parser.DefaultMaxErrors, "Stop after N syntax errors per file (0 for no limit)")
	fs.IntVarP(&o.jobs, "jobs", "j", 1, "Parse N files at once")
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var opts options
	rootCmd := &cobra.Command{
		Use:   "cformat [flags] INPUT...",
		Short: "cformat parses C and prints it back",
		Long: `cformat parses C source files into a syntax tree with resolved
scopes and regenerates C from it. Use - to read standard input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintf(errOut, "cformat: %v\n", frontend.ErrNoInput)
				fmt.Fprint(errOut, cmd.UsageString())
				return frontend.ErrNoInput
			}
			return runFiles(cmd.Context(), args, opts, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetVersionTemplate("cformat version {{.Version}}\n")
	addFlags(rootCmd.Flags(), &opts)
	return rootCmd
}

func runFiles(ctx context.Context, paths []string, opts options, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.output != "" && len(paths) > 1 {
		err := errors.New("--output needs a single input")
		fmt.Fprintf(errOut, "cformat: %v\n", err)
		return err
	}

	fopts := frontend.DefaultOptions()
	fopts.MaxErrors = opts.maxErrors
	fopts.Jobs = opts.jobs
	results, err := frontend.ProcessFiles(ctx, paths, fopts)
	if err != nil {
		fmt.Fprintf(errOut, "cformat: %v\n", err)
		return err
	}

	w := out
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			fmt.Fprintf(errOut, "cformat: %v\n", err)
			return err
		}
		defer f.Close()
		w = f
	}

	failed := false
	for _, r := range results {
		if err := r.WriteDiagnostics(errOut); err != nil {
			return err
		}
		if r.Failed() {
			failed = true
			continue
		}
		if err := writeResult(w, r, opts); err != nil {
			fmt.Fprintf(errOut, "cformat: writing %s: %v\n", r.Path, err)
			return err
		}
	}
	if failed {
		return ErrDiagnostics
	}
	return nil
}

func writeResult(w io.Writer, r *frontend.Result, opts options) error {
	switch {
	case opts.dumpSymbols:
		return r.WriteSymbols(w)
	case opts.dumpTree:
		return r.WriteTree(w)
	}
	return r.WriteC(w)
}
