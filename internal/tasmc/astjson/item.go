package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

type rawParam struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type rawStructField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type rawFnDef struct {
	Name       string            `json:"name"`
	TypeParams []string          `json:"type_params"`
	Params     []rawParam        `json:"params"`
	ReturnType json.RawMessage   `json:"return_type"`
	Body       json.RawMessage   `json:"body"`
	Intrinsic  string            `json:"intrinsic"`
	Cfg        string            `json:"cfg"`
	IsPub      bool              `json:"is_pub"`
	IsTest     bool              `json:"is_test"`
}

type rawStructDef struct {
	Name   string           `json:"name"`
	Fields []rawStructField `json:"fields"`
	Cfg    string           `json:"cfg"`
}

type rawEventDef struct {
	Name   string           `json:"name"`
	Fields []rawStructField `json:"fields"`
	Cfg    string           `json:"cfg"`
}

type rawConstDef struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
	Cfg   string          `json:"cfg"`
}

func decodeItem(raw json.RawMessage) (ast.Item, error) {
	kind, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "fn":
		var r rawFnDef
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		params := make([]ast.Param, len(r.Params))
		for i, p := range r.Params {
			t, err := decodeType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("fn %s param %s: %w", r.Name, p.Name, err)
			}
			params[i] = ast.Param{Name: p.Name, Type: t}
		}
		var retType ast.Type
		if len(r.ReturnType) > 0 {
			retType, err = decodeType(r.ReturnType)
			if err != nil {
				return nil, fmt.Errorf("fn %s return type: %w", r.Name, err)
			}
		}
		var body *ast.Block
		if len(r.Body) > 0 {
			b, err := decodeBlock(r.Body)
			if err != nil {
				return nil, fmt.Errorf("fn %s body: %w", r.Name, err)
			}
			body = b
		}
		return &ast.FnDef{
			Name:       r.Name,
			TypeParams: r.TypeParams,
			Params:     params,
			ReturnType: retType,
			Body:       body,
			Intrinsic:  r.Intrinsic,
			Cfg:        r.Cfg,
			IsPub:      r.IsPub,
			IsTest:     r.IsTest,
		}, nil

	case "struct":
		var r rawStructDef
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		fields, err := decodeStructFields(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", r.Name, err)
		}
		return &ast.StructDef{Name: r.Name, Fields: fields, Cfg: r.Cfg}, nil

	case "event":
		var r rawEventDef
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		fields, err := decodeStructFields(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", r.Name, err)
		}
		return &ast.EventDef{Name: r.Name, Fields: fields, Cfg: r.Cfg}, nil

	case "const":
		var r rawConstDef
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		val, err := decodeExpr(r.Value)
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", r.Name, err)
		}
		return &ast.ConstDef{Name: r.Name, Value: val, Cfg: r.Cfg}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown item kind %q", kind)
	}
}

func decodeStructFields(raw []rawStructField) ([]ast.StructField, error) {
	out := make([]ast.StructField, len(raw))
	for i, f := range raw {
		t, err := decodeType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[i] = ast.StructField{Name: f.Name, Type: t}
	}
	return out, nil
}

type rawSecRamEntry struct {
	Addr uint64          `json:"addr"`
	Type json.RawMessage `json:"type"`
}

type rawSecRamDecl struct {
	Entries []rawSecRamEntry `json:"entries"`
}

type rawIODecl struct {
	Public bool              `json:"public"`
	Input  bool              `json:"input"`
	Types  []json.RawMessage `json:"types"`
}

func decodeDeclaration(raw json.RawMessage) (ast.Declaration, error) {
	kind, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "sec_ram":
		var r rawSecRamDecl
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		entries := make([]ast.SecRamEntry, len(r.Entries))
		for i, e := range r.Entries {
			t, err := decodeType(e.Type)
			if err != nil {
				return nil, fmt.Errorf("sec_ram entry %d: %w", i, err)
			}
			entries[i] = ast.SecRamEntry{Addr: e.Addr, Type: t}
		}
		return &ast.SecRamDecl{Entries: entries}, nil

	case "io":
		var r rawIODecl
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		types := make([]ast.Type, len(r.Types))
		for i, tr := range r.Types {
			t, err := decodeType(tr)
			if err != nil {
				return nil, fmt.Errorf("io type %d: %w", i, err)
			}
			types[i] = t
		}
		return &ast.IODecl{Public: r.Public, Input: r.Input, Types: types}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown declaration kind %q", kind)
	}
}
