// Package astjson decodes the JSON-encoded typed AST the external
// parser/checker produces (spec.md §6/§7) into internal/tasmc/ast
// values. Lexing, parsing, and type checking all happen upstream; this
// package's only job is turning that checker's wire format into the Go
// types the Stack Manager, Monomorphizer, and Codegen Emitter consume.
//
// Every sum type in ast (Item, Type, Pattern, Stmt, Expr, MatchPattern)
// is represented on the wire as an object carrying a "kind" discriminator
// plus the fields that variant needs; Decode dispatches on "kind" by
// hand rather than relying on encoding/json's struct tags to pick a Go
// type, since Go has no native sum-type unmarshaling.
package astjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

// Decode reads one JSON-encoded ast.File from r.
func Decode(r io.Reader) (*ast.File, error) {
	var raw rawFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("astjson: decoding file: %w", err)
	}
	return raw.toAST()
}

type rawFile struct {
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	Items        []json.RawMessage `json:"items"`
	Declarations []json.RawMessage `json:"declarations"`
}

func (f *rawFile) toAST() (*ast.File, error) {
	out := &ast.File{Name: f.Name}
	switch f.Kind {
	case "", "module":
		out.Kind = ast.FileKindModule
	case "program":
		out.Kind = ast.FileKindProgram
	default:
		return nil, fmt.Errorf("astjson: unknown file kind %q", f.Kind)
	}

	for i, raw := range f.Items {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("astjson: item %d: %w", i, err)
		}
		out.Items = append(out.Items, item)
	}
	for i, raw := range f.Declarations {
		decl, err := decodeDeclaration(raw)
		if err != nil {
			return nil, fmt.Errorf("astjson: declaration %d: %w", i, err)
		}
		out.Declarations = append(out.Declarations, decl)
	}
	return out, nil
}

type kindTag struct {
	Kind string `json:"kind"`
}

func peekKind(raw json.RawMessage) (string, error) {
	var k kindTag
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", err
	}
	if k.Kind == "" {
		return "", fmt.Errorf("astjson: missing \"kind\" discriminator")
	}
	return k.Kind, nil
}
