package frontend

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/cformat/pkg/symtab"
)

// Symbol describes one object of the file scope
type Symbol struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Type   string   `yaml:"type"`
	Size   int      `yaml:"size"`
	Value  *int     `yaml:"value,omitempty"`
	Params int      `yaml:"params,omitempty"`
	Fields []Symbol `yaml:"fields,omitempty"`
	Locals []Symbol `yaml:"locals,omitempty"`
}

// SymbolSummary lists the file-scope symbols of one file
type SymbolSummary struct {
	File    string   `yaml:"file"`
	Symbols []Symbol `yaml:"symbols"`
}

// Symbols summarizes the file scope built by the declare pass
func (r *Result) Symbols() SymbolSummary {
	s := SymbolSummary{File: r.Path}
	if r.File == nil || r.File.Scope == nil {
		return s
	}
	for _, obj := range r.File.Scope.Objects() {
		s.Symbols = append(s.Symbols, symbolOf(obj))
	}
	return s
}

func symbolOf(obj *symtab.Object) Symbol {
	sym := Symbol{
		Name: obj.Name,
		Kind: obj.Kind.String(),
		Type: obj.Type.String(),
	}
	if obj.Type != nil {
		sym.Size = obj.Type.Size
	}
	switch obj.Kind {
	case symtab.Const:
		v := obj.Value
		sym.Value = &v
	case symtab.Func:
		sym.Params = obj.NumParams
		for o := obj.Locals; o != nil; o = o.Next {
			sym.Locals = append(sym.Locals, symbolOf(o))
		}
	case symtab.TypeName:
		if t := obj.Type; t != nil && (t.Kind == symtab.Struct || t.Kind == symtab.Union) {
			for _, f := range t.Members() {
				sym.Fields = append(sym.Fields, symbolOf(f))
			}
		}
	}
	return sym
}

// WriteSymbols writes the symbol summary as YAML
func (r *Result) WriteSymbols(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Symbols()); err != nil {
		return err
	}
	return enc.Close()
}
