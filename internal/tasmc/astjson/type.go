package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

type rawArraySize struct {
	Literal *uint64  `json:"literal"`
	Params  []string `json:"params"`
}

func (r rawArraySize) toAST() ast.ArraySize {
	return ast.ArraySize{Literal: r.Literal, Params: r.Params}
}

type rawType struct {
	Kind string            `json:"kind"`
	Elem json.RawMessage   `json:"elem"`
	Size rawArraySize      `json:"size"`
	Elems []json.RawMessage `json:"elems"`
	Path []string          `json:"path"`
}

func decodeType(raw json.RawMessage) (ast.Type, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var r rawType
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "field":
		return ast.FieldType{}, nil
	case "bool":
		return ast.BoolType{}, nil
	case "u32":
		return ast.U32Type{}, nil
	case "xfield":
		return ast.XFieldType{}, nil
	case "digest":
		return ast.DigestType{}, nil
	case "array":
		elem, err := decodeType(r.Elem)
		if err != nil {
			return nil, fmt.Errorf("array elem: %w", err)
		}
		return ast.ArrayType{Elem: elem, Size: r.Size.toAST()}, nil
	case "tuple":
		elems := make([]ast.Type, len(r.Elems))
		for i, er := range r.Elems {
			t, err := decodeType(er)
			if err != nil {
				return nil, fmt.Errorf("tuple elem %d: %w", i, err)
			}
			elems[i] = t
		}
		return ast.TupleType{Elems: elems}, nil
	case "named":
		return ast.NamedType{Path: r.Path}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown type kind %q", r.Kind)
	}
}
